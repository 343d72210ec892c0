package main

import (
	"TontineSim/internal/engine"
	"TontineSim/internal/ledger"
	"TontineSim/internal/random"
	"TontineSim/internal/recorder"
	"TontineSim/internal/report"
	"TontineSim/internal/snapshot"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runCmd(cfgPath *string) *cobra.Command {
	var (
		months         int
		seed           uint64
		output         string
		quiet          bool
		cycleSnapshots bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and save its results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("months") {
				cfg.Simulation.Months = months
			}
			if flags.Changed("seed") {
				cfg.Simulation.Seed = seed
			}
			if flags.Changed("output") {
				cfg.Simulation.OutputDir = output
			}

			console := report.NewConsole(cmd.OutOrStdout(), quiet)
			if err := console.PrintStart(cfg.Tontine, cfg.Participants); err != nil {
				return err
			}
			writer := snapshot.NewWriter(cfg.Simulation.OutputDir)
			writer.EveryCycle = cycleSnapshots
			reporters := []engine.Reporter{console, writer}

			state := ledger.NewState(cfg.Tontine, cfg.Participants, cfg.Simulation.StartDate)

			if cfg.Database.SQLitePath != "" {
				rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
				if err != nil {
					log.Warn().Err(err).Msg("sqlite recorder unavailable, run will not be recorded")
				} else {
					defer rec.Close()
					runID := xid.New().String()
					if err := rec.BeginRun(&recorder.RunInfo{
						ID:        runID,
						Seed:      cfg.Simulation.Seed,
						Months:    cfg.Simulation.Months,
						StartDate: cfg.Simulation.StartDate,
						Members:   state.ActiveCount(),
						Source:    *cfgPath,
					}); err != nil {
						return err
					}
					reporters = append(reporters, rec)
					log.Info().Str("run", runID).Msg("recording run")
				}
			}

			log.Info().
				Int("months", cfg.Simulation.Months).
				Uint64("seed", cfg.Simulation.Seed).
				Int("members", state.ActiveCount()).
				Msg("starting simulation")

			d := engine.New(cfg.Tontine, cfg.Participants, random.New(cfg.Simulation.Seed), reporters...)
			d.Run(state, cfg.Simulation.Months)
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", 0, "months to simulate (default max_cycles * cycle_duration_months)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&output, "output", "simulation_results", "directory for snapshot and timeline files")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "print only the final report")
	cmd.Flags().BoolVar(&cycleSnapshots, "cycle-snapshots", false, "also save a snapshot at every cycle end")
	return cmd
}
