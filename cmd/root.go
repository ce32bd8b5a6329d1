package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MuonColliderSoft/MuonCVXDDigitiser/digi"
	"github.com/MuonColliderSoft/MuonCVXDDigitiser/digi/workload"
)

var (
	// CLI flags for the sensor and the synthetic workload
	configPath   string  // YAML sensor configuration file (defaults when empty)
	logLevel     string  // Log verbosity level
	seed         uint64  // Seed for synthetic event generation
	numEvents    int     // Number of particle crossings to simulate
	meanCharge   float64 // Mean electrons collected per fired pixel
	chargeSigma  float64 // Gaussian sigma of the per-pixel charge
	maxTrackLen  int     // Max pixels fired along one crossing
	poissonSmear bool    // Apply Poisson smearing of collected electrons
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "digisim",
	Short: "Clock-driven pixel-matrix digitizer with Hoshen-Kopelman clustering",
}

// runCmd digitizes a synthetic workload and reports hit statistics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the digitization pipeline over a synthetic workload",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := digi.DefaultSensorConfig()
		if configPath != "" {
			loaded, err := digi.LoadSensorConfig(configPath)
			if err != nil {
				return err
			}
			cfg = *loaded
		}

		sensor, err := digi.NewHKSensor(cfg)
		if err != nil {
			return err
		}
		logrus.Infof("sensor %d:%d: %dx%d pixels, %dx%d segments, threshold %g e-",
			cfg.Layer, cfg.Ladder, sensor.GetLadderRows(), sensor.GetLadderCols(),
			cfg.XSegments, cfg.YSegments, cfg.Threshold)

		events, err := workload.Generate(sensor.GetLadderRows(), sensor.GetLadderCols(), workload.Params{
			NumEvents:    numEvents,
			MeanCharge:   meanCharge,
			ChargeSigma:  chargeSigma,
			MaxTrackLen:  maxTrackLen,
			PoissonSmear: poissonSmear,
			Seed:         seed,
		})
		if err != nil {
			return err
		}

		var hits digi.SegmentDigiHitList
		for i, ev := range events {
			for _, d := range ev.Deposits {
				sensor.UpdatePixel(d.Row, d.Col, d.Charge)
			}
			if err := sensor.BuildHits(&hits); err != nil {
				return err
			}
			logrus.Debugf("event %d: %d deposits, %d hits total", i, len(ev.Deposits), len(hits))
		}

		for _, h := range hits {
			logrus.Debugf("hit: x=%.4f mm y=%.4f mm charge=%.1f e- time=%.1f ns size=%d cell=0x%x",
				h.X, h.Y, h.Charge, h.Time, h.Size, h.CellID)
		}
		digi.SummarizeHits(hits).Log()
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML sensor configuration file")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	runCmd.Flags().Uint64Var(&seed, "seed", 42, "Seed for synthetic event generation")
	runCmd.Flags().IntVar(&numEvents, "events", 100, "Number of particle crossings to simulate")
	runCmd.Flags().Float64Var(&meanCharge, "mean-charge", 600, "Mean electrons collected per fired pixel")
	runCmd.Flags().Float64Var(&chargeSigma, "charge-sigma", 120, "Gaussian sigma of the per-pixel charge")
	runCmd.Flags().IntVar(&maxTrackLen, "max-track-len", 4, "Max pixels fired along one crossing")
	runCmd.Flags().BoolVar(&poissonSmear, "poisson", true, "Apply Poisson smearing of collected electrons")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
