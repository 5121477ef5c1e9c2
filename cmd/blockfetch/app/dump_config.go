package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitcoin-sv/blockfetch/config"
)

var DumpConfigCmd = &cobra.Command{
	Use:   "dump-config FILE",
	Short: "Write the effective configuration to a yaml file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if _, _, err := loadConfig(); err != nil {
			return err
		}

		if err := config.DumpConfig(args[0]); err != nil {
			return fmt.Errorf("failed to dump config: %w", err)
		}

		return nil
	},
}
