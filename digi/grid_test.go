package digi

import "testing"

func TestGridPosition_Linear_RowMajor(t *testing.T) {
	// GIVEN a 10x10 grid mapper
	locate := NewGridPosition(10, 10)

	// THEN (3,3) and (3,4) map to 33 and 34
	if got := locate.Linear(3, 3); got != 33 {
		t.Errorf("Linear(3,3): got %d, want 33", got)
	}
	if got := locate.Linear(3, 4); got != 34 {
		t.Errorf("Linear(3,4): got %d, want 34", got)
	}
}

func TestGridPosition_Roundtrip(t *testing.T) {
	// GIVEN a non-square grid
	rows, cols := 7, 13
	locate := NewGridPosition(rows, cols)

	// THEN every in-range coordinate survives a roundtrip
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pos := locate.Linear(r, c)
			got := locate.Coordinate(pos)
			if got.Row != r || got.Col != c {
				t.Fatalf("roundtrip (%d,%d): got (%d,%d) via pos %d", r, c, got.Row, got.Col, pos)
			}
		}
	}
}

func TestGridPosition_Coordinate_RowMajor(t *testing.T) {
	locate := NewGridPosition(10, 10)
	got := locate.Coordinate(34)
	if got.Row != 3 || got.Col != 4 {
		t.Errorf("Coordinate(34): got (%d,%d), want (3,4)", got.Row, got.Col)
	}
}
