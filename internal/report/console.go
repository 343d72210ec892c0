// Package report renders simulation progress for a terminal.
package report

import (
	"fmt"
	"io"

	"TontineSim/internal/model"
)

// Console writes summaries to w as they are emitted. In quiet mode only the
// final report is printed.
type Console struct {
	w     io.Writer
	quiet bool
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer, quiet bool) *Console {
	return &Console{w: w, quiet: quiet}
}

// PrintStart shows the configuration the run starts from.
func (c *Console) PrintStart(cfg model.AssociationConfig, archetypes []model.MemberArchetype) error {
	if c.quiet {
		return nil
	}
	_, err := fmt.Fprintln(c.w, FormatConfig(cfg, archetypes))
	return err
}

func (c *Console) ReportMonth(state *model.LedgerState, s model.MonthSummary) error {
	if c.quiet {
		return nil
	}
	_, err := fmt.Fprintln(c.w, FormatMonth(state, s))
	return err
}

func (c *Console) ReportCycle(state *model.LedgerState, s model.CycleSummary) error {
	if c.quiet {
		return nil
	}
	if _, err := fmt.Fprintln(c.w, FormatCycle(s)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.w, FormatMembers(state))
	return err
}

func (c *Console) ReportFinal(state *model.LedgerState, r model.FinalReport) error {
	_, err := fmt.Fprintln(c.w, FormatFinal(state, r))
	return err
}
