package report

import (
	"bytes"
	"testing"
	"time"

	"TontineSim/internal/ledger"
	"TontineSim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func fixture() (model.AssociationConfig, []model.MemberArchetype, *model.LedgerState) {
	cfg := model.AssociationConfig{
		NumParticipantsStart: 2,
		NumParticipantsMin:   1,
		MonthlyContrib:       100,
		CycleDurationMonths:  12,
	}
	archetypes := []model.MemberArchetype{
		{ID: "a", Name: "Ama", RepayProbability: 0.9},
		{ID: "b", Name: "Kofi", RepayProbability: 0.2},
	}
	return cfg, archetypes, ledger.NewState(cfg, archetypes, start)
}

func TestFormatMonth_ResolvesNamesThroughHistory(t *testing.T) {
	_, _, state := fixture()
	kofi, _ := state.Active.Get("b")
	kofi.Status = model.StatusExited
	state.Active.Remove("b")

	out := FormatMonth(state, model.MonthSummary{
		Month: 3, Cycle: 1, MonthInCycle: 3, Date: start,
		BeneficiaryID: "a", Payout: 45,
		Defaulters: []string{"b"},
		Collected:  100, DebtRefunded: 12.5,
	})

	assert.Contains(t, out, "Month 3")
	assert.Contains(t, out, "Beneficiary: Ama (45.00)")
	assert.Contains(t, out, "Defaults: Kofi")
	assert.Contains(t, out, "Collected: 100.00 | Refunded: 12.50")
}

func TestFormatMonth_NoBeneficiary(t *testing.T) {
	_, _, state := fixture()
	out := FormatMonth(state, model.MonthSummary{Month: 1})
	assert.Contains(t, out, "Beneficiary: none")
	assert.NotContains(t, out, "Defaults:")
}

func TestFormatCycle(t *testing.T) {
	out := FormatCycle(model.CycleSummary{
		Cycle:       2,
		ExitedNames: []string{"Kofi"},
		Refunded:    300,
	})
	assert.Contains(t, out, "End of cycle 2")
	assert.Contains(t, out, "Exits: Kofi")
	assert.Contains(t, out, "Arrivals: none")
	assert.Contains(t, out, "Refunded: 300.00")
}

func TestFormatFinal(t *testing.T) {
	_, _, state := fixture()

	failed := FormatFinal(state, model.FinalReport{Outcome: model.RunFailed, MonthsRun: 4, FailedAt: 4})
	assert.Contains(t, failed, "TONTINE FAILED in month 4")

	done := FormatFinal(state, model.FinalReport{Outcome: model.RunCompleted, MonthsRun: 36})
	assert.Contains(t, done, "Simulation completed after 36 months")
	assert.Contains(t, done, "COMPLETED")
	assert.Contains(t, done, "n/a", "recovery rate undefined without loans")
}

func TestConsole_QuietPrintsOnlyFinal(t *testing.T) {
	cfg, archetypes, state := fixture()
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	require.NoError(t, c.PrintStart(cfg, archetypes))
	require.NoError(t, c.ReportMonth(state, model.MonthSummary{Month: 1}))
	require.NoError(t, c.ReportCycle(state, model.CycleSummary{Cycle: 1}))
	assert.Zero(t, buf.Len())

	require.NoError(t, c.ReportFinal(state, model.FinalReport{Outcome: model.RunCompleted, MonthsRun: 1}))
	assert.Contains(t, buf.String(), "Simulation completed")
}

func TestConsole_Verbose(t *testing.T) {
	cfg, archetypes, state := fixture()
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	require.NoError(t, c.PrintStart(cfg, archetypes))
	require.NoError(t, c.ReportCycle(state, model.CycleSummary{Cycle: 1}))

	out := buf.String()
	assert.Contains(t, out, "Tontine configuration")
	assert.Contains(t, out, "Kofi")
	assert.Contains(t, out, "End of cycle 1")
	assert.Contains(t, out, "Contributions")
}
