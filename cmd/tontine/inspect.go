package main

import (
	"fmt"

	"TontineSim/internal/ledger"
	"TontineSim/internal/model"
	"TontineSim/internal/report"
	"TontineSim/internal/snapshot"

	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <snapshot.json>",
		Short: "Render a saved ledger snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			state, err := doc.Restore()
			if err != nil {
				return fmt.Errorf("restore snapshot: %w", err)
			}

			final := model.FinalReport{
				Outcome:   doc.Outcome,
				MonthsRun: doc.MonthsRun,
				Timeline:  ledger.Timeline(state),
			}
			if doc.Outcome == model.RunFailed {
				final.FailedAt = doc.MonthsRun
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Snapshot %q saved %s\n", doc.Label, doc.SavedAt.Format("2006-01-02 15:04"))
			fmt.Fprintln(out, report.FormatFinal(state, final))
			fmt.Fprintln(out, report.FormatMembers(state))
			return nil
		},
	}
}
