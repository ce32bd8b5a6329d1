package digi

// SegmentDigiHit is one finalized hit on a sensor segment: the
// charge-weighted centroid of a released cluster, its summed charge, the
// cluster time and the packed cell identifier of the segment.
type SegmentDigiHit struct {
	X      float64
	Y      float64
	Charge float64
	Time   float64
	Size   int
	CellID uint64
}

// SegmentDigiHitList collects the hits produced by BuildHits.
type SegmentDigiHitList []SegmentDigiHit
