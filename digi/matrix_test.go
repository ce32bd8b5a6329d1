package digi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a single-segment rows x cols matrix with 1 mm pixels,
// so pixel (r,c) sits at ladder coordinates derived trivially.
func testConfig(rows, cols int, threshold, slope, step float64) SensorConfig {
	cfg := DefaultSensorConfig()
	cfg.LadderWidth = float64(rows)
	cfg.LadderLength = float64(cols)
	cfg.PixelSizeX = 1.0
	cfg.PixelSizeY = 1.0
	cfg.XSegments = 1
	cfg.YSegments = 1
	cfg.Threshold = threshold
	cfg.FESlope = slope
	cfg.ClockStep = step
	cfg.StartTime = 0
	return cfg
}

func TestMatrix_ThresholdCrossing_StartThenOn(t *testing.T) {
	// GIVEN a 10x10 matrix with threshold 100 and two deposits in one tick
	m := NewPixelDigiMatrix(testConfig(10, 10, 100, 20, 1))
	require.Equal(t, MatrixOK, m.GetStatus())
	m.UpdatePixel(3, 3, 150)
	m.UpdatePixel(3, 4, 140)

	// WHEN the first clock period elapses
	m.ClockSync()

	// THEN both pixels are in the start state
	assert.Equal(t, PixelStart, m.GetPixel(3, 3).Status)
	assert.Equal(t, PixelStart, m.GetPixel(3, 4).Status)
	assert.True(t, m.IsActive())

	// AND on the next tick both are on
	m.ClockSync()
	assert.Equal(t, PixelOn, m.GetPixel(3, 3).Status)
	assert.Equal(t, PixelOn, m.GetPixel(3, 4).Status)
}

func TestMatrix_Decay_ReturnsToOff(t *testing.T) {
	// GIVEN a fired pixel with no further deposits
	charge, slope, step := 150.0, 20.0, 1.0
	m := NewPixelDigiMatrix(testConfig(4, 4, 100, slope, step))
	m.UpdatePixel(1, 1, charge)

	// WHEN the clock runs for charge/(slope*step) periods plus the state
	// machine tail
	bound := int(charge/(slope*step)) + 3
	sawReady := false
	for i := 0; i < bound; i++ {
		m.ClockSync()
		if m.GetPixel(1, 1).Status == PixelReady {
			sawReady = true
		}
	}

	// THEN the pixel passed through ready and is off again
	assert.True(t, sawReady, "pixel must pass through ready on its way off")
	assert.Equal(t, PixelOff, m.GetPixel(1, 1).Status)
	assert.False(t, m.IsActive())
}

func TestMatrix_DepositOnFiredPixel_DoesNotRestart(t *testing.T) {
	// GIVEN a pixel already in the on state
	m := NewPixelDigiMatrix(testConfig(4, 4, 100, 10, 1))
	m.UpdatePixel(2, 2, 200)
	m.ClockSync() // start
	m.ClockSync() // on
	require.Equal(t, PixelOn, m.GetPixel(2, 2).Status)
	before := m.GetPixel(2, 2).Charge

	// WHEN more charge arrives
	m.UpdatePixel(2, 2, 50)

	// THEN it sums into the accumulator without touching the status
	assert.Equal(t, PixelOn, m.GetPixel(2, 2).Status)
	assert.InDelta(t, before+50, m.GetPixel(2, 2).Charge, 1e-9)
	m.ClockSync()
	assert.Equal(t, PixelOn, m.GetPixel(2, 2).Status, "no restart through start")
}

func TestMatrix_DepositDuringReadyTail_Refires(t *testing.T) {
	// GIVEN a pixel sitting in the ready tail
	m := NewPixelDigiMatrix(testConfig(4, 4, 100, 50, 1))
	m.UpdatePixel(1, 1, 120)
	m.ClockSync() // start
	m.ClockSync() // on, decayed below threshold
	require.Equal(t, PixelReady, m.GetPixel(1, 1).Status)

	// WHEN a new deposit lands before the tail tick runs
	m.UpdatePixel(1, 1, 200)
	m.ClockSync()

	// THEN the pixel re-fires instead of going dark with its charge
	assert.Equal(t, PixelStart, m.GetPixel(1, 1).Status)
	assert.True(t, m.IsActive())
	assert.InDelta(t, 2.0, m.GetPixel(1, 1).Time, 1e-9, "fire time pinned to the new crossing")
	m.ClockSync()
	assert.Equal(t, PixelOn, m.GetPixel(1, 1).Status)
}

func TestMatrix_NegativeDeposit_CancelsCharge(t *testing.T) {
	// GIVEN offsetting deposits in the same tick
	m := NewPixelDigiMatrix(testConfig(4, 4, 100, 10, 1))
	m.UpdatePixel(1, 1, 150)
	m.UpdatePixel(1, 1, -150)

	// THEN the pixel never fires
	m.ClockSync()
	assert.Equal(t, PixelOff, m.GetPixel(1, 1).Status)
	assert.False(t, m.IsActive())
}

func TestMatrix_OutOfBounds_IsSoftStatus(t *testing.T) {
	m := NewPixelDigiMatrix(testConfig(4, 4, 100, 10, 1))

	// Deposits out of range are no-ops, queries report the status
	m.UpdatePixel(-1, 0, 500)
	m.UpdatePixel(0, 99, 500)
	assert.Equal(t, PixelOutOfBounds, m.GetPixel(4, 0).Status)
	assert.Equal(t, PixelOutOfBounds, m.GetPixel(0, -1).Status)
	m.ClockSync()
	assert.False(t, m.IsActive())
}

func TestMatrix_GeometryError_NonDivisibleSegments(t *testing.T) {
	// GIVEN 10 pixel rows split into 3 segments
	cfg := testConfig(10, 10, 100, 10, 1)
	cfg.XSegments = 3
	m := NewPixelDigiMatrix(cfg)

	// THEN the matrix reports the geometry error and refuses to process
	assert.Equal(t, MatrixPixelNumberError, m.GetStatus())
	assert.Equal(t, PixelGeometryError, m.GetPixel(0, 0).Status)
	m.UpdatePixel(0, 0, 500)
	m.ClockSync()
	assert.False(t, m.IsActive())
}

func TestMatrix_GeometryError_BadSegmentCount(t *testing.T) {
	cfg := testConfig(10, 10, 100, 10, 1)
	cfg.YSegments = 0
	m := NewPixelDigiMatrix(cfg)
	assert.Equal(t, MatrixSegmentNumberError, m.GetStatus())
}

func TestMatrix_Reset_ClearsState(t *testing.T) {
	// GIVEN a fired matrix
	m := NewPixelDigiMatrix(testConfig(4, 4, 100, 10, 1))
	m.UpdatePixel(1, 1, 500)
	m.ClockSync()
	require.True(t, m.IsActive())

	// WHEN reset between runs
	m.Reset()

	// THEN all pixel state and the clock are cleared
	assert.False(t, m.IsActive())
	assert.Equal(t, PixelOff, m.GetPixel(1, 1).Status)
	assert.Zero(t, m.GetPixel(1, 1).Charge)
	assert.Zero(t, m.GetClockTime())
}

func TestMatrix_FireTime_IsThresholdCrossing(t *testing.T) {
	// GIVEN a deposit before the second clock period
	m := NewPixelDigiMatrix(testConfig(4, 4, 100, 10, 1))
	m.ClockSync() // empty first period
	m.UpdatePixel(1, 1, 300)
	m.ClockSync()
	m.ClockSync()

	// THEN the reported time stays pinned to the crossing period
	pix := m.GetPixel(1, 1)
	assert.Equal(t, PixelOn, pix.Status)
	assert.InDelta(t, 1.0, pix.Time, 1e-9)
}

func TestMatrix_CoordinateTransforms_Roundtrip(t *testing.T) {
	m := NewPixelDigiMatrix(testConfig(10, 20, 100, 10, 1))
	for _, ix := range []int{0, 3, 9} {
		x := m.PixelRowToX(ix)
		assert.Equal(t, ix, m.XToPixelRow(x), "row %d", ix)
	}
	for _, iy := range []int{0, 7, 19} {
		y := m.PixelColToY(iy)
		assert.Equal(t, iy, m.YToPixelCol(y), "col %d", iy)
	}
}

func TestMatrix_SensorSegmentAddressing(t *testing.T) {
	// GIVEN a 10x10 ladder split 2x2 into 5x5 sensors
	cfg := testConfig(10, 10, 100, 10, 1)
	cfg.XSegments = 2
	cfg.YSegments = 2
	m := NewPixelDigiMatrix(cfg)
	require.Equal(t, MatrixOK, m.GetStatus())
	assert.Equal(t, 5, m.GetSensorRows())
	assert.Equal(t, 5, m.GetSensorCols())

	// WHEN a pixel in segment (1,1) fires
	m.UpdatePixel(7, 8, 500)
	m.ClockSync()

	// THEN the sensor-local query sees it
	assert.Equal(t, PixelStart, m.GetSensorPixel(1, 1, 2, 3).Status)
	assert.Equal(t, PixelOff, m.GetSensorPixel(0, 0, 2, 3).Status)
}
