package app

import (
	"errors"
	"fmt"
	"log"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bitcoin-sv/blockfetch/config"
	blockfetchLogger "github.com/bitcoin-sv/blockfetch/internal/logger"
)

// ErrCommandFailed marks errors which the command has already logged.
var ErrCommandFailed = errors.New("command failed")

var RootCmd = &cobra.Command{
	Use:           "blockfetch",
	Short:         "Download a range of blocks from a bitcoin node",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	var err error

	RootCmd.PersistentFlags().String("config", "", "directory to look for config.yaml")
	err = viper.BindPFlag("configDir", RootCmd.PersistentFlags().Lookup("config"))
	if err != nil {
		log.Fatal(err)
	}

	RootCmd.PersistentFlags().String("network", "", "bitcoin network: mainnet, testnet or regtest")
	err = viper.BindPFlag("network", RootCmd.PersistentFlags().Lookup("network"))
	if err != nil {
		log.Fatal(err)
	}

	RootCmd.PersistentFlags().String("log-level", "", "log level: TRACE, DEBUG, INFO, WARN or ERROR")
	err = viper.BindPFlag("logLevel", RootCmd.PersistentFlags().Lookup("log-level"))
	if err != nil {
		log.Fatal(err)
	}

	RootCmd.PersistentFlags().String("out", "", "directory of the block files")
	err = viper.BindPFlag("fetch.outputDir", RootCmd.PersistentFlags().Lookup("out"))
	if err != nil {
		log.Fatal(err)
	}

	RootCmd.PersistentFlags().Int64("height", 0, "height of the first (newest) block")
	err = viper.BindPFlag("fetch.startHeight", RootCmd.PersistentFlags().Lookup("height"))
	if err != nil {
		log.Fatal(err)
	}

	RootCmd.PersistentFlags().Int("count", 0, "number of blocks")
	err = viper.BindPFlag("fetch.count", RootCmd.PersistentFlags().Lookup("count"))
	if err != nil {
		log.Fatal(err)
	}

	RootCmd.AddCommand(FetchCmd)
	RootCmd.AddCommand(VerifyCmd)
	RootCmd.AddCommand(DumpConfigCmd)
}

func Execute() error {
	return RootCmd.Execute()
}

// loadConfig loads the configuration including values given as flags.
func loadConfig() (*config.BlockfetchConfig, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetString("configDir"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := blockfetchLogger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return cfg, logger, nil
}
