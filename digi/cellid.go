package digi

import (
	"fmt"
	"strconv"
	"strings"
)

// CellIDField is one bit field inside a packed cell identifier.
type CellIDField struct {
	Name   string
	Offset int
	Width  int
	Signed bool
}

// CellIDEncoding packs named integer fields into a 64-bit cell identifier.
// The layout is described by a format string of comma-separated
// "name:width" or "name:offset:width" items; a negative width marks a
// signed (two's complement) field. Example:
//
//	subdet:5,side:-2,layer:9,module:8,sensor:8
type CellIDEncoding struct {
	format string
	fields []CellIDField
	byName map[string]int
}

// ParseCellIDEncoding validates and compiles an encoding format string.
func ParseCellIDEncoding(format string) (*CellIDEncoding, error) {
	enc := &CellIDEncoding{
		format: format,
		byName: make(map[string]int),
	}
	offset := 0
	for _, item := range strings.Split(format, ",") {
		parts := strings.Split(strings.TrimSpace(item), ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("cellid: malformed field %q in %q", item, format)
		}
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, fmt.Errorf("cellid: empty field name in %q", format)
		}
		if _, dup := enc.byName[name]; dup {
			return nil, fmt.Errorf("cellid: duplicate field %q in %q", name, format)
		}
		if len(parts) == 3 {
			start, err := strconv.Atoi(parts[1])
			if err != nil || start < 0 {
				return nil, fmt.Errorf("cellid: bad offset for field %q in %q", name, format)
			}
			offset = start
		}
		width, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil || width == 0 {
			return nil, fmt.Errorf("cellid: bad width for field %q in %q", name, format)
		}
		f := CellIDField{Name: name, Offset: offset, Width: width, Signed: width < 0}
		if f.Signed {
			f.Width = -width
		}
		if f.Offset+f.Width > 64 {
			return nil, fmt.Errorf("cellid: field %q exceeds 64 bits in %q", name, format)
		}
		enc.byName[name] = len(enc.fields)
		enc.fields = append(enc.fields, f)
		offset = f.Offset + f.Width
	}
	if len(enc.fields) == 0 {
		return nil, fmt.Errorf("cellid: empty format %q", format)
	}
	return enc, nil
}

// Format returns the original format string.
func (e *CellIDEncoding) Format() string { return e.format }

// Has reports whether the encoding defines a field with the given name.
func (e *CellIDEncoding) Has(name string) bool {
	_, ok := e.byName[name]
	return ok
}

// Encode packs the given field values; fields absent from values are zero.
// Unknown names and values outside a field's range are errors.
func (e *CellIDEncoding) Encode(values map[string]int) (uint64, error) {
	var id uint64
	for name, v := range values {
		idx, ok := e.byName[name]
		if !ok {
			return 0, fmt.Errorf("cellid: unknown field %q", name)
		}
		f := e.fields[idx]
		mask := uint64(1)<<f.Width - 1
		if f.Signed {
			limit := int64(1) << (f.Width - 1)
			if int64(v) < -limit || int64(v) >= limit {
				return 0, fmt.Errorf("cellid: value %d out of range for signed field %q", v, name)
			}
		} else if v < 0 || uint64(v) > mask {
			return 0, fmt.Errorf("cellid: value %d out of range for field %q", v, name)
		}
		id |= (uint64(v) & mask) << f.Offset
	}
	return id, nil
}

// Decode unpacks all fields of a cell identifier.
func (e *CellIDEncoding) Decode(id uint64) map[string]int {
	out := make(map[string]int, len(e.fields))
	for _, f := range e.fields {
		mask := uint64(1)<<f.Width - 1
		raw := (id >> f.Offset) & mask
		v := int(raw)
		if f.Signed && raw>>(f.Width-1) == 1 {
			v = int(raw) - int(mask) - 1
		}
		out[f.Name] = v
	}
	return out
}
