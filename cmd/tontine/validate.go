package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration without running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration OK: %d participants, %d months, cycle of %d months\n",
				len(cfg.Participants), cfg.Simulation.Months, cfg.Tontine.CycleDurationMonths)
			return nil
		},
	}
}
