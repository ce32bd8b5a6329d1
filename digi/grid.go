package digi

// LinearPosition is a row-major flattened index into a 2D grid.
type LinearPosition = int

// GridCoordinate is a (row, col) pair addressing one grid cell.
type GridCoordinate struct {
	Row int
	Col int
}

// GridPosition is the bijective mapping between GridCoordinate and
// LinearPosition for a grid of fixed width. It is pure and carries no state
// beyond the column count; range validation is the caller's responsibility.
type GridPosition struct {
	cols int
}

// NewGridPosition returns the mapper for a rows x cols grid. Only cols is
// needed for the bijection; rows is accepted to mirror the grid geometry.
func NewGridPosition(rows, cols int) GridPosition {
	return GridPosition{cols: cols}
}

// Linear maps (row, col) to its row-major index.
func (g GridPosition) Linear(row, col int) LinearPosition {
	return row*g.cols + col
}

// Coordinate maps a row-major index back to (row, col).
func (g GridPosition) Coordinate(pos LinearPosition) GridCoordinate {
	return GridCoordinate{Row: pos / g.cols, Col: pos % g.cols}
}

// Connectivity selects the neighborhood used by the clustering scan:
// orthogonal only (Conn4) or including diagonals (Conn8).
type Connectivity int

const (
	// Conn4 uses 4-directional connectivity: N, E, S, W.
	Conn4 Connectivity = iota
	// Conn8 uses 8-directional connectivity: N, NE, E, SE, S, SW, W, NW.
	Conn8
)
