package digi

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// ChargePoint is one pixel inside a buffered cluster, in the coordinates of
// the heap's grid. Charge is the peak collected charge observed for the
// pixel while its cluster was live.
type ChargePoint struct {
	Row    int
	Col    int
	Charge float64
}

// BufferedCluster is a cluster awaiting finalization. It grows while the
// underlying physical hit is still collecting charge across clock cycles and
// is frozen once popped. Time is the threshold-crossing time of the latest
// pixel update.
type BufferedCluster struct {
	Pixels []ChargePoint
	Time   float64
}

// ClusterItem is one heap-table entry: the growing buffer plus its pixel
// count. Size always equals len(Buffer.Pixels).
type ClusterItem struct {
	Buffer BufferedCluster
	Size   int

	// round is the AddCluster round that last touched this item. An item
	// untouched for a full round stopped growing: any of its pixels still
	// over threshold would have produced an overlapping cluster in that
	// round's scan.
	round int
}

// ClusterTable maps cluster id to its heap entry.
type ClusterTable = map[int]*ClusterItem

// ReferenceTable maps a pixel position to the id of the buffered cluster
// that owns it. A pixel belongs to at most one buffered cluster.
type ReferenceTable = map[LinearPosition]int

// ClusterHeap buffers clusters discovered by the partition set across clock
// cycles. Because a physical hit can keep gaining pixels over consecutive
// cycles, a cluster found at tick T may overlap one found at tick T+1; the
// heap merges overlapping clusters into a single growing BufferedCluster and
// releases a cluster once it stops growing.
type ClusterHeap struct {
	hashCnt    int
	round      int
	locate     GridPosition
	debugLabel string
	table      ClusterTable
	refs       ReferenceTable
}

// NewClusterHeap creates a heap for a rows x cols pixel grid.
func NewClusterHeap(rows, cols int) *ClusterHeap {
	return &ClusterHeap{
		locate: NewGridPosition(rows, cols),
		table:  make(ClusterTable),
		refs:   make(ReferenceTable),
	}
}

// SetLabel attaches a diagnostic label used in log lines.
func (h *ClusterHeap) SetLabel(dlabel string) { h.debugLabel = dlabel }

// Len returns the number of clusters currently buffered.
func (h *ClusterHeap) Len() int { return len(h.table) }

// AddCluster folds one freshly scanned cluster into the heap. If any of its
// positions is already owned by a buffered cluster, the incoming cluster is
// merged into that entry; when several entries claim overlap they are first
// unified transitively, keeping the smallest id. Otherwise a fresh id is
// allocated. Either way all positions of the incoming cluster end up
// registered in the reference table.
func (h *ClusterHeap) AddCluster(cluster ClusterOfPixel) {
	if len(cluster) == 0 {
		return
	}

	var owners []int
	seen := make(map[int]struct{})
	for _, pos := range cluster {
		if id, ok := h.refs[pos]; ok {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				owners = append(owners, id)
			}
		}
	}

	var target int
	if len(owners) == 0 {
		target = h.hashCnt
		h.hashCnt++
		h.table[target] = &ClusterItem{}
	} else {
		sort.Ints(owners)
		target = owners[0]
		item := h.table[target]
		for _, id := range owners[1:] {
			other := h.table[id]
			item.Buffer.Pixels = append(item.Buffer.Pixels, other.Buffer.Pixels...)
			if other.Buffer.Time > item.Buffer.Time {
				item.Buffer.Time = other.Buffer.Time
			}
			for _, cp := range other.Buffer.Pixels {
				h.refs[h.locate.Linear(cp.Row, cp.Col)] = target
			}
			delete(h.table, id)
			logrus.Debugf("%s: cluster %d merged into %d", h.debugLabel, id, target)
		}
	}

	item := h.table[target]
	for _, pos := range cluster {
		if owner, ok := h.refs[pos]; ok {
			if owner != target {
				panic(fmt.Sprintf("cluster heap %s: position %d owned by %d while merging into %d",
					h.debugLabel, pos, owner, target))
			}
			continue
		}
		c := h.locate.Coordinate(pos)
		item.Buffer.Pixels = append(item.Buffer.Pixels, ChargePoint{Row: c.Row, Col: c.Col})
		h.refs[pos] = target
	}
	item.Size = len(item.Buffer.Pixels)
	item.round = h.round
}

// SetupPixel records the charge and time snapshot for the pixel at
// (posX, posY) inside whichever buffered cluster owns it. The peak charge is
// kept and the cluster time tracks the latest threshold crossing. A position
// not owned by any cluster is a no-op.
func (h *ClusterHeap) SetupPixel(posX, posY int, pix PixelData) {
	pos := h.locate.Linear(posX, posY)
	id, ok := h.refs[pos]
	if !ok {
		logrus.Debugf("%s: setup for unowned pixel (%d,%d)", h.debugLabel, posX, posY)
		return
	}
	item := h.table[id]
	for i := range item.Buffer.Pixels {
		cp := &item.Buffer.Pixels[i]
		if cp.Row == posX && cp.Col == posY {
			if pix.Charge > cp.Charge {
				cp.Charge = pix.Charge
			}
			if pix.Time > item.Buffer.Time {
				item.Buffer.Time = pix.Time
			}
			return
		}
	}
}

// PopClusters returns, and removes from the table, every cluster that did
// not grow during the most recent AddCluster round. Popped clusters are
// drained from both tables, their pixels ordered by position, and the
// clusters themselves ordered by id, so repeated runs are identical. No
// position appears in more than one returned cluster.
func (h *ClusterHeap) PopClusters() []BufferedCluster {
	var ready []int
	for id, item := range h.table {
		if item.round < h.round {
			ready = append(ready, id)
		}
	}
	h.round++
	if len(ready) == 0 {
		return nil
	}
	sort.Ints(ready)

	out := make([]BufferedCluster, 0, len(ready))
	for _, id := range ready {
		item := h.table[id]
		sort.Slice(item.Buffer.Pixels, func(i, j int) bool {
			a, b := item.Buffer.Pixels[i], item.Buffer.Pixels[j]
			return h.locate.Linear(a.Row, a.Col) < h.locate.Linear(b.Row, b.Col)
		})
		for _, cp := range item.Buffer.Pixels {
			delete(h.refs, h.locate.Linear(cp.Row, cp.Col))
		}
		delete(h.table, id)
		out = append(out, item.Buffer)
	}
	return out
}
