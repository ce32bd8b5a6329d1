package digi

// PixelStatus is the lifecycle stage of one pixel. Transitions are driven
// only by ClockSync ticks and threshold comparisons; charge deposits never
// change status directly.
type PixelStatus int

const (
	// PixelOff is the idle state: charge below threshold.
	PixelOff PixelStatus = iota
	// PixelStart is the first clock period after the charge crossed threshold.
	PixelStart
	// PixelOn means the pixel is fired and visible to the clustering scan.
	PixelOn
	// PixelReady is the one-period tail after the charge decayed back below
	// threshold, before the pixel returns to PixelOff.
	PixelReady
	// PixelOutOfBounds reports a query outside the matrix.
	PixelOutOfBounds
	// PixelGeometryError reports a query against a matrix whose geometry
	// failed validation at construction.
	PixelGeometryError
)

func (s PixelStatus) String() string {
	switch s {
	case PixelOff:
		return "off"
	case PixelStart:
		return "start"
	case PixelOn:
		return "on"
	case PixelReady:
		return "ready"
	case PixelOutOfBounds:
		return "out_of_bounds"
	case PixelGeometryError:
		return "geometry_error"
	}
	return "unknown"
}

// PixelData is the immutable snapshot returned by a matrix query.
type PixelData struct {
	Charge float64
	Time   float64
	Status PixelStatus
}

// MatrixStatus reports the health of the matrix geometry.
type MatrixStatus int

const (
	// MatrixOK means the ladder geometry is consistent.
	MatrixOK MatrixStatus = iota
	// MatrixPixelNumberError means the pixel counts do not divide evenly
	// into the configured sensor segments.
	MatrixPixelNumberError
	// MatrixSegmentNumberError means the segment counts are not positive.
	MatrixSegmentNumberError
)

func (s MatrixStatus) String() string {
	switch s {
	case MatrixOK:
		return "ok"
	case MatrixPixelNumberError:
		return "pixel_number_error"
	case MatrixSegmentNumberError:
		return "segment_number_error"
	}
	return "unknown"
}

// pixelCell is the mutable per-pixel state. counter ages the pixel: it counts
// clock periods spent above threshold since the last crossing.
type pixelCell struct {
	charge  float64
	counter int
	status  PixelStatus
}

// step advances the pixel by exactly one clock period. thr is the firing
// threshold and decay the charge removed per period (slope x clock step).
//
//	off --(charge >= thr)--> start --(next tick)--> on
//	on --(decayed charge < thr)--> ready --(next tick)--> off
//
// The ready tail drops to off first and then takes the same threshold
// check as off, so a deposit landing during the tail re-fires the pixel
// on this tick instead of being lost.
func (p *pixelCell) step(thr, decay float64) {
	if p.status == PixelReady {
		p.status = PixelOff
		p.counter = 0
	}
	switch p.status {
	case PixelOff:
		if p.charge >= thr {
			p.status = PixelStart
			p.counter = 0
		}
	case PixelStart:
		p.status = PixelOn
	}
	if p.status == PixelStart || p.status == PixelOn {
		p.counter++
		p.charge -= decay
		if p.charge < 0 {
			p.charge = 0
		}
		if p.status == PixelOn && p.charge < thr {
			p.status = PixelReady
		}
	}
}

// fired reports whether the pixel participates in the next clustering scan
// or will on the following tick.
func (p *pixelCell) fired() bool {
	return p.status == PixelStart || p.status == PixelOn
}
