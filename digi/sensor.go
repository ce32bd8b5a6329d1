package digi

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ClusterProcessor reshapes a raw cluster before it is handed to the heap,
// e.g. splitting clusters the scan merged. The default processor passes the
// cluster through unchanged. Returned clusters must not add positions that
// were not in the input.
type ClusterProcessor func(in ClusterOfPixel) []ClusterOfPixel

// HKSensor is the Hoshen-Kopelman sensor: a PixelDigiMatrix plus the
// clustering pipeline that turns fired pixels into SegmentDigiHit records.
// One GridPartitionedSet spans the whole ladder; each sensor segment owns
// its own ClusterHeap so hits are finalized per segment.
type HKSensor struct {
	*PixelDigiMatrix

	gridSet *GridPartitionedSet
	heaps   []*ClusterHeap
	proc    ClusterProcessor
	cellIDs []uint64
}

// NewHKSensor builds a sensor from its configuration. A geometry error in
// the matrix does not fail construction (it surfaces through GetStatus and
// BuildHits); a malformed cell ID encoding does.
func NewHKSensor(cfg SensorConfig) (*HKSensor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := NewPixelDigiMatrix(cfg)
	s := &HKSensor{
		PixelDigiMatrix: m,
		proc:            func(in ClusterOfPixel) []ClusterOfPixel { return []ClusterOfPixel{in} },
	}
	if m.GetStatus() != MatrixOK {
		logrus.Warnf("sensor %d:%d has inconsistent geometry: %s", cfg.Layer, cfg.Ladder, m.GetStatus())
		return s, nil
	}

	enc, err := ParseCellIDEncoding(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("sensor %d:%d: %w", cfg.Layer, cfg.Ladder, err)
	}

	s.gridSet = NewGridPartitionedSet(m.GetLadderRows(), m.GetLadderCols(), cfg.Conn())
	nseg := m.GetSegNumX() * m.GetSegNumY()
	s.heaps = make([]*ClusterHeap, nseg)
	s.cellIDs = make([]uint64, nseg)
	for i := range s.heaps {
		s.heaps[i] = NewClusterHeap(m.GetSensorRows(), m.GetSensorCols())
		s.heaps[i].SetLabel(fmt.Sprintf("heap %d:%d:%d", cfg.Layer, cfg.Ladder, i))
		id, err := segmentCellID(enc, cfg, i)
		if err != nil {
			return nil, fmt.Errorf("sensor %d:%d: %w", cfg.Layer, cfg.Ladder, err)
		}
		s.cellIDs[i] = id
	}
	return s, nil
}

// segmentCellID packs the identifier for one sensor segment, filling only
// the fields the encoding actually defines.
func segmentCellID(enc *CellIDEncoding, cfg SensorConfig, seg int) (uint64, error) {
	values := make(map[string]int)
	for name, v := range map[string]int{
		"subdet": cfg.BarrelID,
		"side":   0,
		"layer":  cfg.Layer,
		"module": cfg.Ladder,
		"sensor": seg,
	} {
		if enc.Has(name) {
			values[name] = v
		}
	}
	return enc.Encode(values)
}

// SetClusterProcessor installs a post-processing hook for raw clusters.
// A nil processor restores the identity behavior.
func (s *HKSensor) SetClusterProcessor(p ClusterProcessor) {
	if p == nil {
		p = func(in ClusterOfPixel) []ClusterOfPixel { return []ClusterOfPixel{in} }
	}
	s.proc = p
}

// Reset clears the matrix and all buffered clustering state between
// independent runs.
func (s *HKSensor) Reset() {
	s.PixelDigiMatrix.Reset()
	if s.gridSet == nil {
		return
	}
	s.gridSet.Init()
	for i := range s.heaps {
		fresh := NewClusterHeap(s.GetSensorRows(), s.GetSensorCols())
		fresh.SetLabel(fmt.Sprintf("heap %d:%d:%d", s.GetLayer(), s.GetLadder(), i))
		s.heaps[i] = fresh
	}
}

// BuildHits runs clock cycles until the matrix goes inactive and every
// buffered cluster has been released, appending one SegmentDigiHit per
// finalized cluster to output. Each cycle: ClockSync, a full partition pass
// over pixels in the on state, cluster post-processing and routing into the
// per-segment heaps, then a pop of every cluster that stopped growing.
func (s *HKSensor) BuildHits(output *SegmentDigiHitList) error {
	if s.GetStatus() != MatrixOK {
		return fmt.Errorf("sensor %d:%d: cannot build hits, matrix status %s",
			s.GetLayer(), s.GetLadder(), s.GetStatus())
	}
	for {
		s.ClockSync()
		s.scanPass()
		for cl := s.gridSet.Next(); len(cl) > 0; cl = s.gridSet.Next() {
			for _, part := range s.proc(cl) {
				if len(part) > 0 {
					s.dispatch(part)
				}
			}
		}
		buffered := 0
		for seg, h := range s.heaps {
			for _, buf := range h.PopClusters() {
				*output = append(*output, s.makeHit(seg, buf))
			}
			buffered += h.Len()
		}
		logrus.Debugf("[tick %09.1f] sensor %d:%d: %d pixels active, %d clusters buffered",
			s.GetClockTime(), s.GetLayer(), s.GetLadder(), s.activeCnt, buffered)
		if !s.IsActive() && buffered == 0 {
			return nil
		}
	}
}

// scanPass is pass 1 of Hoshen-Kopelman: a row-major sweep that labels every
// on pixel and merges it with its already-visited fired neighbors.
func (s *HKSensor) scanPass() {
	s.gridSet.Init()
	offsets := s.gridSet.NeighborOffsets()
	rows, cols := s.GetLadderRows(), s.GetLadderCols()
	for x := 0; x < rows; x++ {
		for y := 0; y < cols; y++ {
			if !s.CheckStatus(x, y, PixelOn) {
				continue
			}
			s.gridSet.Find(x, y)
			for _, d := range offsets {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || ny >= cols {
					continue
				}
				if s.CheckStatus(nx, ny, PixelOn) {
					s.gridSet.Merge(x, y, nx, ny)
				}
			}
		}
	}
	s.gridSet.Close()
}

// dispatch routes one processed cluster into the heap of the sensor segment
// it belongs to. The common case is a cluster fully inside one segment; a
// cluster crossing a segment boundary is split so each segment's readout
// sees only its own pixels.
func (s *HKSensor) dispatch(cl ClusterOfPixel) {
	minRow, maxRow, minCol, maxCol := GetBound(cl, s.Position())
	if s.segOf(minRow, minCol) == s.segOf(maxRow, maxCol) {
		s.feedSegment(s.segOf(minRow, minCol), cl)
		return
	}

	logrus.Debugf("sensor %d:%d: cluster of %d pixels spans segments, splitting",
		s.GetLayer(), s.GetLadder(), len(cl))
	bySeg := make(map[int]ClusterOfPixel)
	for _, pos := range cl {
		c := s.Position().Coordinate(pos)
		seg := s.segOf(c.Row, c.Col)
		bySeg[seg] = append(bySeg[seg], pos)
	}
	segs := make([]int, 0, len(bySeg))
	for seg := range bySeg {
		segs = append(segs, seg)
	}
	sort.Ints(segs)
	for _, seg := range segs {
		s.feedSegment(seg, bySeg[seg])
	}
}

// feedSegment translates ladder positions to segment-local ones, adds the
// cluster to the segment's heap and captures the charge/time snapshot of
// every pixel.
func (s *HKSensor) feedSegment(seg int, cl ClusterOfPixel) {
	segX, segY := seg/s.GetSegNumY(), seg%s.GetSegNumY()
	h := s.heaps[seg]
	local := make(ClusterOfPixel, len(cl))
	for i, pos := range cl {
		c := s.Position().Coordinate(pos)
		local[i] = h.locate.Linear(c.Row-segX*s.GetSensorRows(), c.Col-segY*s.GetSensorCols())
	}
	h.AddCluster(local)
	for _, pos := range local {
		c := h.locate.Coordinate(pos)
		h.SetupPixel(c.Row, c.Col, s.GetSensorPixel(segX, segY, c.Row, c.Col))
	}
}

// segOf returns the segment index owning ladder pixel (row, col).
func (s *HKSensor) segOf(row, col int) int {
	return (row/s.GetSensorRows())*s.GetSegNumY() + col/s.GetSensorCols()
}

// makeHit converts a released cluster into a hit record: charge-weighted
// centroid in ladder-local mm, summed charge, cluster time and the
// segment's packed cell ID. A cluster whose pixels carry no charge falls
// back to the geometric centroid.
func (s *HKSensor) makeHit(seg int, buf BufferedCluster) SegmentDigiHit {
	segX, segY := seg/s.GetSegNumY(), seg%s.GetSegNumY()
	n := len(buf.Pixels)
	xs := make([]float64, n)
	ys := make([]float64, n)
	ws := make([]float64, n)
	for i, cp := range buf.Pixels {
		xs[i] = s.PixelRowToX(s.SensorRowToLadderRow(segX, cp.Row))
		ys[i] = s.PixelColToY(s.SensorColToLadderCol(segY, cp.Col))
		ws[i] = cp.Charge
	}
	total := floats.Sum(ws)
	var weights []float64
	if total > 0 {
		weights = ws
	}
	return SegmentDigiHit{
		X:      stat.Mean(xs, weights),
		Y:      stat.Mean(ys, weights),
		Charge: total,
		Time:   buf.Time,
		Size:   n,
		CellID: s.cellIDs[seg],
	}
}
