package digi

import (
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RunMetrics summarizes the hits produced by one digitization run.
type RunMetrics struct {
	HitCount    int
	TotalCharge float64
	MeanCharge  float64
	MeanSize    float64
	ChargeP50   float64
	ChargeP95   float64
	FirstTime   float64
	LastTime    float64
}

// SummarizeHits computes run statistics over a hit list.
func SummarizeHits(hits SegmentDigiHitList) RunMetrics {
	m := RunMetrics{HitCount: len(hits)}
	if len(hits) == 0 {
		return m
	}
	charges := make([]float64, len(hits))
	sizes := make([]float64, len(hits))
	m.FirstTime = hits[0].Time
	m.LastTime = hits[0].Time
	for i, h := range hits {
		charges[i] = h.Charge
		sizes[i] = float64(h.Size)
		if h.Time < m.FirstTime {
			m.FirstTime = h.Time
		}
		if h.Time > m.LastTime {
			m.LastTime = h.Time
		}
	}
	m.TotalCharge = floats.Sum(charges)
	m.MeanCharge = stat.Mean(charges, nil)
	m.MeanSize = stat.Mean(sizes, nil)
	sort.Float64s(charges)
	m.ChargeP50 = stat.Quantile(0.50, stat.Empirical, charges, nil)
	m.ChargeP95 = stat.Quantile(0.95, stat.Empirical, charges, nil)
	return m
}

// Log writes the summary at Info level.
func (m RunMetrics) Log() {
	logrus.Infof("hits: %d, cluster size mean: %.2f", m.HitCount, m.MeanSize)
	logrus.Infof("charge: total %.1f e-, mean %.1f e-, p50 %.1f e-, p95 %.1f e-",
		m.TotalCharge, m.MeanCharge, m.ChargeP50, m.ChargeP95)
	logrus.Infof("time window: %.1f .. %.1f ns", m.FirstTime, m.LastTime)
}
