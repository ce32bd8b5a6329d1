package digi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeHits_Empty(t *testing.T) {
	m := SummarizeHits(nil)
	assert.Zero(t, m.HitCount)
	assert.Zero(t, m.TotalCharge)
}

func TestSummarizeHits_Statistics(t *testing.T) {
	hits := SegmentDigiHitList{
		{Charge: 100, Time: 25, Size: 1},
		{Charge: 300, Time: 75, Size: 3},
		{Charge: 200, Time: 50, Size: 2},
	}
	m := SummarizeHits(hits)

	assert.Equal(t, 3, m.HitCount)
	assert.InDelta(t, 600.0, m.TotalCharge, 1e-9)
	assert.InDelta(t, 200.0, m.MeanCharge, 1e-9)
	assert.InDelta(t, 2.0, m.MeanSize, 1e-9)
	assert.InDelta(t, 200.0, m.ChargeP50, 1e-9)
	assert.InDelta(t, 25.0, m.FirstTime, 1e-9)
	assert.InDelta(t, 75.0, m.LastTime, 1e-9)
}
