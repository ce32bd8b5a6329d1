package digi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SensorConfig holds the full geometry and front-end parameters for one
// sensor ladder, loadable from a YAML file. Lengths are in mm, charge in
// electrons, times in ns.
type SensorConfig struct {
	Layer    int `yaml:"layer"`     // layer ID containing the pixel matrix
	Ladder   int `yaml:"ladder"`    // ladder ID matching this matrix
	BarrelID int `yaml:"barrel_id"` // ID of the vertex barrel inside the detector

	XSegments int `yaml:"x_segments"` // sensors per ladder width
	YSegments int `yaml:"y_segments"` // sensors per ladder length

	LadderLength float64 `yaml:"ladder_length"` // mm
	LadderWidth  float64 `yaml:"ladder_width"`  // mm
	Thickness    float64 `yaml:"thickness"`     // mm
	PixelSizeX   float64 `yaml:"pixel_size_x"`  // pixel width, mm
	PixelSizeY   float64 `yaml:"pixel_size_y"`  // pixel length, mm

	Encoding string `yaml:"encoding"` // cell ID bit-field layout

	Threshold float64 `yaml:"threshold"`  // firing threshold, electrons
	FESlope   float64 `yaml:"fe_slope"`   // front-end depletion slope, electrons/ns
	StartTime float64 `yaml:"start_time"` // clock start, ns
	ClockStep float64 `yaml:"clock_step"` // clock period, ns

	Connectivity string `yaml:"connectivity"` // "4" (default) or "8"
}

// DefaultSensorConfig returns the reference chip parameters: 25 um pixels on
// a 12.8 x 12.8 mm single-segment ladder, 200 e- threshold.
func DefaultSensorConfig() SensorConfig {
	return SensorConfig{
		Layer:        0,
		Ladder:       0,
		BarrelID:     1,
		XSegments:    1,
		YSegments:    1,
		LadderLength: 12.8,
		LadderWidth:  12.8,
		Thickness:    0.05,
		PixelSizeX:   0.025,
		PixelSizeY:   0.025,
		Encoding:     "subdet:5,side:-2,layer:9,module:8,sensor:8",
		Threshold:    200,
		FESlope:      10,
		StartTime:    0,
		ClockStep:    25,
		Connectivity: "4",
	}
}

// LoadSensorConfig reads and parses a YAML sensor configuration file.
func LoadSensorConfig(path string) (*SensorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sensor config: %w", err)
	}
	cfg := DefaultSensorConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing sensor config: %w", err)
	}
	return &cfg, nil
}

// Validate checks parameter ranges. Geometry divisibility is not checked
// here; it surfaces as a MatrixStatus at construction.
func (c *SensorConfig) Validate() error {
	if c.LadderLength <= 0 || c.LadderWidth <= 0 {
		return fmt.Errorf("sensor config: ladder dimensions must be > 0, got %gx%g", c.LadderWidth, c.LadderLength)
	}
	if c.PixelSizeX <= 0 || c.PixelSizeY <= 0 {
		return fmt.Errorf("sensor config: pixel sizes must be > 0, got %gx%g", c.PixelSizeX, c.PixelSizeY)
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("sensor config: threshold must be > 0, got %g", c.Threshold)
	}
	if c.FESlope <= 0 {
		return fmt.Errorf("sensor config: fe_slope must be > 0, got %g", c.FESlope)
	}
	if c.ClockStep <= 0 {
		return fmt.Errorf("sensor config: clock_step must be > 0, got %g", c.ClockStep)
	}
	switch c.Connectivity {
	case "", "4", "8":
	default:
		return fmt.Errorf("sensor config: connectivity must be \"4\" or \"8\", got %q", c.Connectivity)
	}
	return nil
}

// Conn returns the connectivity policy for the clustering scan.
func (c *SensorConfig) Conn() Connectivity {
	if c.Connectivity == "8" {
		return Conn8
	}
	return Conn4
}
