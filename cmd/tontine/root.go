package main

import (
	"context"
	"fmt"
	"os"

	"TontineSim/internal/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		logLevel string
	)
	root := &cobra.Command{
		Use:           "tontine",
		Short:         "Simulate a rotating savings association month by month",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("parse log level: %w", err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "path to the YAML or JSON configuration")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(runCmd(&cfgPath))
	root.AddCommand(validateCmd(&cfgPath))
	root.AddCommand(scheduleCmd(&cfgPath))
	root.AddCommand(inspectCmd())
	return root
}

// loadConfig loads and validates the configuration at path.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}
