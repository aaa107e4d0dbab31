package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/MichalMitros/coral-price-aggregator/cmd/aggregator/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is state shared by subcommands, filled before any subcommand runs.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "aggregator",
		Short:         "Collects coral listings from Shopify and WooCommerce shops",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return a.load(envFile)
		},
	}
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading environment")

	root.AddCommand(
		newServeCmd(a),
		newRunCmd(a),
		newMigrateCmd(a),
		newTriggerCmd(a),
	)

	return root
}

func (a *app) load(envFile string) error {
	a.logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		a.logger.Error().
			Err(err).
			Str("file", envFile).
			Msg("can't load env file")
		return err
	}

	cfg, err := config.Parse()
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("can't parse config")
		return err
	}
	a.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		a.logger.Warn().
			Str("level", cfg.LogLevel).
			Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	a.logger = a.logger.Level(level)

	return nil
}
