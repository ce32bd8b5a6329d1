package digi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellIDEncoding_EncodeDecode_Roundtrip(t *testing.T) {
	enc, err := ParseCellIDEncoding("subdet:5,side:-2,layer:9,module:8,sensor:8")
	require.NoError(t, err)

	values := map[string]int{
		"subdet": 1,
		"side":   -1,
		"layer":  3,
		"module": 17,
		"sensor": 250,
	}
	id, err := enc.Encode(values)
	require.NoError(t, err)
	assert.Equal(t, values, enc.Decode(id))
}

func TestCellIDEncoding_ExplicitOffsets(t *testing.T) {
	enc, err := ParseCellIDEncoding("system:0:5,layer:16:8")
	require.NoError(t, err)

	id, err := enc.Encode(map[string]int{"system": 2, "layer": 9})
	require.NoError(t, err)
	assert.Equal(t, uint64(2|9<<16), id)
}

func TestCellIDEncoding_UnsetFieldsAreZero(t *testing.T) {
	enc, err := ParseCellIDEncoding("subdet:5,layer:9")
	require.NoError(t, err)
	id, err := enc.Encode(map[string]int{"layer": 4})
	require.NoError(t, err)
	assert.Equal(t, 0, enc.Decode(id)["subdet"])
	assert.Equal(t, 4, enc.Decode(id)["layer"])
}

func TestCellIDEncoding_ParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		format string
	}{
		{"empty", ""},
		{"missing width", "subdet"},
		{"zero width", "subdet:0"},
		{"duplicate field", "layer:4,layer:4"},
		{"over 64 bits", "a:40,b:40"},
		{"bad offset", "a:x:4"},
		{"empty name", ":4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCellIDEncoding(tc.format)
			assert.Error(t, err)
		})
	}
}

func TestCellIDEncoding_EncodeErrors(t *testing.T) {
	enc, err := ParseCellIDEncoding("subdet:5,side:-2")
	require.NoError(t, err)

	_, err = enc.Encode(map[string]int{"bogus": 1})
	assert.Error(t, err, "unknown field")

	_, err = enc.Encode(map[string]int{"subdet": 32})
	assert.Error(t, err, "unsigned overflow")

	_, err = enc.Encode(map[string]int{"side": 2})
	assert.Error(t, err, "signed overflow")

	_, err = enc.Encode(map[string]int{"subdet": -1})
	assert.Error(t, err, "negative value in unsigned field")
}
