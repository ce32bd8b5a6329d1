package digi

import (
	"math"

	"github.com/sirupsen/logrus"
)

// PixelDigiMatrix simulates the pixel matrix of a binary-readout chip.
//
// The matrix covers one full ladder; the ladder is divided into a grid of
// xSegnum x ySegnum sensor segments. Each pixel accumulates deposited charge
// and performs a linear charge-depletion measurement against a single
// threshold. The matrix must be operated by an agent that feeds it charge
// via UpdatePixel and synchronizes the evolution through ClockSync.
type PixelDigiMatrix struct {
	barrelID     int
	layer        int
	ladder       int
	thickness    float64
	pixelSizeX   float64
	pixelSizeY   float64
	ladderLength float64
	ladderWidth  float64
	lRows        int
	lCols        int
	sRows        int
	sCols        int
	xSegnum      int
	ySegnum      int
	encodingStr  string
	thrLevel     float64
	startTime    float64
	clockTime    float64
	clockStep    float64
	deltaC       float64 // charge removed per clock period
	locate       GridPosition
	pixels       []pixelCell
	status       MatrixStatus
	activeCnt    int
}

// NewPixelDigiMatrix creates the matrix for one ladder. Geometry
// inconsistencies do not fail construction; they surface through GetStatus
// and make every subsequent operation a no-op.
func NewPixelDigiMatrix(cfg SensorConfig) *PixelDigiMatrix {
	m := &PixelDigiMatrix{
		barrelID:     cfg.BarrelID,
		layer:        cfg.Layer,
		ladder:       cfg.Ladder,
		thickness:    cfg.Thickness,
		pixelSizeX:   cfg.PixelSizeX,
		pixelSizeY:   cfg.PixelSizeY,
		ladderLength: cfg.LadderLength,
		ladderWidth:  cfg.LadderWidth,
		xSegnum:      cfg.XSegments,
		ySegnum:      cfg.YSegments,
		encodingStr:  cfg.Encoding,
		thrLevel:     cfg.Threshold,
		startTime:    cfg.StartTime,
		clockTime:    cfg.StartTime,
		clockStep:    cfg.ClockStep,
		deltaC:       cfg.FESlope * cfg.ClockStep,
		status:       MatrixOK,
	}

	m.lRows = int(math.Round(cfg.LadderWidth / cfg.PixelSizeX))
	m.lCols = int(math.Round(cfg.LadderLength / cfg.PixelSizeY))

	if cfg.XSegments <= 0 || cfg.YSegments <= 0 {
		m.status = MatrixSegmentNumberError
		return m
	}
	if m.lRows <= 0 || m.lCols <= 0 || m.lRows%cfg.XSegments != 0 || m.lCols%cfg.YSegments != 0 {
		m.status = MatrixPixelNumberError
		return m
	}

	m.sRows = m.lRows / cfg.XSegments
	m.sCols = m.lCols / cfg.YSegments
	m.locate = NewGridPosition(m.lRows, m.lCols)
	m.pixels = make([]pixelCell, m.lRows*m.lCols)
	return m
}

func (m *PixelDigiMatrix) GetLayer() int              { return m.layer }
func (m *PixelDigiMatrix) GetLadder() int             { return m.ladder }
func (m *PixelDigiMatrix) GetBarrelID() int           { return m.barrelID }
func (m *PixelDigiMatrix) GetThickness() float64      { return m.thickness }
func (m *PixelDigiMatrix) GetHalfThickness() float64  { return m.thickness / 2 }
func (m *PixelDigiMatrix) GetLength() float64         { return m.ladderLength }
func (m *PixelDigiMatrix) GetHalfLength() float64     { return m.ladderLength / 2 }
func (m *PixelDigiMatrix) GetWidth() float64          { return m.ladderWidth }
func (m *PixelDigiMatrix) GetHalfWidth() float64      { return m.ladderWidth / 2 }
func (m *PixelDigiMatrix) GetPixelSizeX() float64     { return m.pixelSizeX }
func (m *PixelDigiMatrix) GetPixelSizeY() float64     { return m.pixelSizeY }
func (m *PixelDigiMatrix) GetLadderRows() int         { return m.lRows }
func (m *PixelDigiMatrix) GetLadderCols() int         { return m.lCols }
func (m *PixelDigiMatrix) GetSensorRows() int         { return m.sRows }
func (m *PixelDigiMatrix) GetSensorCols() int         { return m.sCols }
func (m *PixelDigiMatrix) GetSegNumX() int            { return m.xSegnum }
func (m *PixelDigiMatrix) GetSegNumY() int            { return m.ySegnum }
func (m *PixelDigiMatrix) GetStatus() MatrixStatus    { return m.status }
func (m *PixelDigiMatrix) GetCellIDFormatStr() string { return m.encodingStr }
func (m *PixelDigiMatrix) GetClockTime() float64      { return m.clockTime }

// Position returns the coordinate mapper for the full ladder grid.
func (m *PixelDigiMatrix) Position() GridPosition { return m.locate }

// Reset clears all pixel state and rewinds the clock. Safe only between
// BuildHits calls, never mid-pass.
func (m *PixelDigiMatrix) Reset() {
	for i := range m.pixels {
		m.pixels[i] = pixelCell{}
	}
	m.clockTime = m.startTime
	m.activeCnt = 0
}

// ClockSync advances the matrix by one clock period. For every pixel the
// internal counter is updated, the charge level is checked against the
// threshold to advance the status machine, and the charge is decreased by
// the depletion slope times the clock period. This is the only place pixel
// status changes.
func (m *PixelDigiMatrix) ClockSync() {
	if m.status != MatrixOK {
		return
	}
	m.clockTime += m.clockStep
	active := 0
	for i := range m.pixels {
		m.pixels[i].step(m.thrLevel, m.deltaC)
		if m.pixels[i].fired() {
			active++
		}
	}
	m.activeCnt = active
}

// UpdatePixel aggregates a quantity of charge into pixel (x, y). Negative or
// zero charge still sums into the accumulator; status is untouched. Out of
// range coordinates are a no-op.
func (m *PixelDigiMatrix) UpdatePixel(x, y int, chrg float64) {
	if m.status != MatrixOK {
		return
	}
	if !m.check(x, y) {
		logrus.Debugf("deposit out of bounds: pixel (%d,%d) on ladder %d:%d", x, y, m.layer, m.ladder)
		return
	}
	m.pixels[m.locate.Linear(x, y)].charge += chrg
}

// GetPixel returns the snapshot of pixel (x, y): accumulated charge, the
// clock time at which it last crossed threshold, and its status. Read-only.
func (m *PixelDigiMatrix) GetPixel(x, y int) PixelData {
	if m.status != MatrixOK {
		return PixelData{Status: PixelGeometryError}
	}
	if !m.check(x, y) {
		return PixelData{Status: PixelOutOfBounds}
	}
	p := m.pixels[m.locate.Linear(x, y)]
	return PixelData{
		Charge: p.charge,
		Time:   m.clockTime - float64(p.counter)*m.clockStep,
		Status: p.status,
	}
}

// GetSensorPixel is GetPixel addressed in sensor-segment-local coordinates.
func (m *PixelDigiMatrix) GetSensorPixel(segX, segY, posX, posY int) PixelData {
	return m.GetPixel(m.SensorRowToLadderRow(segX, posX), m.SensorColToLadderCol(segY, posY))
}

// CheckStatus reports whether pixel (x, y) currently has status pstat.
// Out-of-range coordinates match only PixelOutOfBounds.
func (m *PixelDigiMatrix) CheckStatus(x, y int, pstat PixelStatus) bool {
	return m.GetPixel(x, y).Status == pstat
}

// IsActive reports whether at least one pixel is in the start or on state.
func (m *PixelDigiMatrix) IsActive() bool {
	return m.activeCnt > 0
}

func (m *PixelDigiMatrix) SensorRowToLadderRow(segX, posX int) int { return segX*m.sRows + posX }
func (m *PixelDigiMatrix) SensorColToLadderCol(segY, posY int) int { return segY*m.sCols + posY }

// XToPixelRow converts a ladder-local x coordinate (mm) to a pixel row.
func (m *PixelDigiMatrix) XToPixelRow(x float64) int {
	return int((x + m.ladderWidth/2) / m.pixelSizeX)
}

// YToPixelCol converts a ladder-local y coordinate (mm) to a pixel column.
func (m *PixelDigiMatrix) YToPixelCol(y float64) int {
	return int((y + m.ladderLength/2) / m.pixelSizeY)
}

// PixelRowToX returns the x coordinate (mm) of the center of a pixel row.
func (m *PixelDigiMatrix) PixelRowToX(ix int) float64 {
	return (0.5+float64(ix))*m.pixelSizeX - m.ladderWidth/2
}

// PixelColToY returns the y coordinate (mm) of the center of a pixel column.
func (m *PixelDigiMatrix) PixelColToY(iy int) float64 {
	return (0.5+float64(iy))*m.pixelSizeY - m.ladderLength/2
}

func (m *PixelDigiMatrix) check(x, y int) bool {
	return 0 <= x && x < m.lRows && 0 <= y && y < m.lCols
}
