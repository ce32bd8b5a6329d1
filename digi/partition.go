package digi

import "sort"

// ClusterOfPixel is the raw output of one clustering pass: the linear
// positions of one connected component, ordered by position.
type ClusterOfPixel []LinearPosition

// GetBound computes the bounding box of a cluster as
// (minRow, maxRow, minCol, maxCol). It lets the caller reason about a
// cluster's extent without re-deriving coordinates pixel by pixel.
func GetBound(cluster ClusterOfPixel, locate GridPosition) (minRow, maxRow, minCol, maxCol int) {
	if len(cluster) == 0 {
		return 0, -1, 0, -1
	}
	first := locate.Coordinate(cluster[0])
	minRow, maxRow = first.Row, first.Row
	minCol, maxCol = first.Col, first.Col
	for _, pos := range cluster[1:] {
		c := locate.Coordinate(pos)
		if c.Row < minRow {
			minRow = c.Row
		}
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if c.Col < minCol {
			minCol = c.Col
		}
		if c.Col > maxCol {
			maxCol = c.Col
		}
	}
	return minRow, maxRow, minCol, maxCol
}

const cellUnassigned = -1

// clusterData pairs a component label with one member position; Close sorts
// these so every component occupies a contiguous run.
type clusterData struct {
	label int
	pos   LinearPosition
}

// GridPartitionedSet maintains Hoshen-Kopelman connectivity labels over a 2D
// grid. Labels live in a flat parent array indexed by linear position and
// the flatten buffer is reused across passes. Merging always keeps the
// smaller numeric root, which makes the final label of every component its
// minimum linear position regardless of merge order.
//
// The set is exclusively owned by one scan pass at a time: call Init, then
// Find/Merge/Invalidate while scanning, then Close, then Next until it
// returns an empty cluster.
type GridPartitionedSet struct {
	rows       int
	cols       int
	conn       Connectivity
	validCells int
	cCurr      int
	locate     GridPosition
	data       []int
	invalid    []bool
	cBuffer    []clusterData
}

// NewGridPartitionedSet creates a clusterer for a rows x cols grid with the
// given connectivity policy, fixed for the lifetime of the set.
func NewGridPartitionedSet(rows, cols int, conn Connectivity) *GridPartitionedSet {
	g := &GridPartitionedSet{
		rows:   rows,
		cols:   cols,
		conn:   conn,
		locate:  NewGridPosition(rows, cols),
		data:    make([]int, rows*cols),
		invalid: make([]bool, rows*cols),
	}
	g.Init()
	return g
}

// Init resets all cell labels to unassigned, preparing a new scan pass.
// Cost is O(grid size).
func (g *GridPartitionedSet) Init() {
	for i := range g.data {
		g.data[i] = cellUnassigned
		g.invalid[i] = false
	}
	g.validCells = 0
	g.cBuffer = g.cBuffer[:0]
	g.cCurr = 0
}

// NeighborOffsets returns the already-visited neighbor offsets for a
// row-major scan under the set's connectivity: up and left for Conn4, plus
// the two upper diagonals for Conn8.
func (g *GridPartitionedSet) NeighborOffsets() [][2]int {
	if g.conn == Conn8 {
		return [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}}
	}
	return [][2]int{{-1, 0}, {0, -1}}
}

// Find resolves the root label of the component containing (x, y), applying
// path compression. An unassigned cell becomes a fresh singleton component.
// Returns -1 for an invalidated cell.
func (g *GridPartitionedSet) Find(x, y int) int {
	return g.findPos(g.locate.Linear(x, y))
}

func (g *GridPartitionedSet) findPos(pos LinearPosition) int {
	if g.invalid[pos] {
		return -1
	}
	if g.data[pos] == cellUnassigned {
		g.data[pos] = pos
		g.validCells++
		return pos
	}
	return g.rootOf(pos)
}

// rootOf follows parent links without consulting invalidation flags, so
// chains running through an invalidated cell still resolve for the
// remaining members of its component.
func (g *GridPartitionedSet) rootOf(pos LinearPosition) int {
	root := pos
	for g.data[root] != root {
		root = g.data[root]
	}
	for g.data[pos] != root {
		pos, g.data[pos] = g.data[pos], root
	}
	return root
}

// Merge unions the components containing (x1, y1) and (x2, y2). The smaller
// numeric root becomes the representative, so results are independent of
// merge order. Cells touched for the first time are assigned on the fly;
// invalidated cells are ignored.
func (g *GridPartitionedSet) Merge(x1, y1, x2, y2 int) {
	r1 := g.findPos(g.locate.Linear(x1, y1))
	r2 := g.findPos(g.locate.Linear(x2, y2))
	if r1 < 0 || r2 < 0 || r1 == r2 {
		return
	}
	if r1 < r2 {
		g.data[r2] = r1
	} else {
		g.data[r1] = r2
	}
}

// Invalidate removes (x, y) from consideration for the current pass, e.g.
// because the pixel decayed below threshold mid-scan. Earlier merges are
// untouched: the rest of the cell's component survives and only this cell
// disappears from the Close output. Later merges through the cell are
// ignored.
func (g *GridPartitionedSet) Invalidate(x, y int) {
	pos := g.locate.Linear(x, y)
	if g.invalid[pos] {
		return
	}
	g.invalid[pos] = true
	if g.data[pos] != cellUnassigned {
		g.validCells--
	}
}

// Close finalizes the pass: it flattens the union-find forest into a buffer
// of (label, position) pairs sorted by label, ties broken by position, so
// each component occupies a contiguous run consumable via Next. A component
// whose root was invalidated is relabeled with its smallest surviving
// position, keeping the label equal to the minimum member.
func (g *GridPartitionedSet) Close() {
	if cap(g.cBuffer) < g.validCells {
		g.cBuffer = make([]clusterData, 0, g.validCells)
	} else {
		g.cBuffer = g.cBuffer[:0]
	}
	labels := make(map[int]int)
	for pos := range g.data {
		if g.data[pos] == cellUnassigned || g.invalid[pos] {
			continue
		}
		root := g.rootOf(pos)
		if _, ok := labels[root]; !ok {
			labels[root] = pos
		}
	}
	for pos := range g.data {
		if g.data[pos] == cellUnassigned || g.invalid[pos] {
			continue
		}
		g.cBuffer = append(g.cBuffer, clusterData{label: labels[g.rootOf(pos)], pos: pos})
	}
	sort.Slice(g.cBuffer, func(i, j int) bool {
		if g.cBuffer[i].label != g.cBuffer[j].label {
			return g.cBuffer[i].label < g.cBuffer[j].label
		}
		return g.cBuffer[i].pos < g.cBuffer[j].pos
	})
	g.cCurr = 0
}

// Next pops the next completed component from the closed pass, ordered by
// the smallest linear position in each cluster. Returns an empty cluster
// once the pass is exhausted.
func (g *GridPartitionedSet) Next() ClusterOfPixel {
	if g.cCurr >= len(g.cBuffer) {
		return nil
	}
	label := g.cBuffer[g.cCurr].label
	start := g.cCurr
	for g.cCurr < len(g.cBuffer) && g.cBuffer[g.cCurr].label == label {
		g.cCurr++
	}
	out := make(ClusterOfPixel, 0, g.cCurr-start)
	for _, cd := range g.cBuffer[start:g.cCurr] {
		out = append(out, cd.pos)
	}
	return out
}
