package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MuonColliderSoft/MuonCVXDDigitiser/digi"
)

// configCmd prints the default sensor configuration as YAML, ready to be
// saved and edited for a custom run.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the default sensor configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := digi.DefaultSensorConfig()
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding default config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}
