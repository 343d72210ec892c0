package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"TontineSim/internal/engine"
	"TontineSim/internal/ledger"
	"TontineSim/internal/model"
	"TontineSim/internal/random"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func simulation() (model.AssociationConfig, []model.MemberArchetype) {
	cfg := model.AssociationConfig{
		NumParticipantsStart:          3,
		NumParticipantsMin:            1,
		MonthlyContrib:                100,
		MonthlyInterestRate:           0.02,
		CycleDurationMonths:           2,
		EmergencyFundPercentage:       0.1,
		MonthlyDistributionPercentage: 0.5,
		MaxSimultaneousLoans:          3,
	}
	archetypes := []model.MemberArchetype{
		{ID: "a", Name: "Ama"},
		{ID: "b", Name: "Kofi", DefaultProbability: 1},
		{ID: "c", Name: "Esi", ExitProbability: 1},
	}
	return cfg, archetypes
}

func count(t *testing.T, r *SQLiteRecorder, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, r.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestSQLiteRecorder_RecordsWholeRun(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	cfg, archetypes := simulation()
	state := ledger.NewState(cfg, archetypes, start)
	require.NoError(t, r.BeginRun(&RunInfo{
		ID: "run-1", Seed: 1<<63 + 5, Months: 4, StartDate: start, Members: 3, Source: "test",
	}))

	report := engine.New(cfg, archetypes, random.Fixed{Value: 0.5, Int: -2}, r).Run(state, 4)
	require.Equal(t, model.RunCompleted, report.Outcome)

	assert.Equal(t, 4, count(t, r, `SELECT COUNT(*) FROM monthly_summaries WHERE run_id = ?`, "run-1"))
	assert.Equal(t, 2, count(t, r, `SELECT COUNT(*) FROM cycle_summaries WHERE run_id = ?`, "run-1"))
	assert.Equal(t, 3, count(t, r, `SELECT COUNT(*) FROM member_outcomes WHERE run_id = ?`, "run-1"))
	assert.Equal(t, 1, count(t, r, `SELECT COUNT(*) FROM member_outcomes WHERE exit_date IS NOT NULL`))

	var outcome, seed string
	var monthsRun, active int
	require.NoError(t, r.db.QueryRow(
		`SELECT outcome, seed, months_run, active_members FROM runs WHERE id = ?`, "run-1",
	).Scan(&outcome, &seed, &monthsRun, &active))
	assert.Equal(t, "COMPLETED", outcome)
	assert.Equal(t, "9223372036854775813", seed)
	assert.Equal(t, 4, monthsRun)
	assert.Equal(t, 2, active)

	var defaulters string
	require.NoError(t, r.db.QueryRow(
		`SELECT defaulters FROM monthly_summaries WHERE run_id = ? AND month = 1`, "run-1",
	).Scan(&defaulters))
	assert.Equal(t, "b", defaulters)
}

func TestSQLiteRecorder_RejectsReportsOutsideRun(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	cfg, archetypes := simulation()
	state := ledger.NewState(cfg, archetypes, start)

	assert.ErrorIs(t, r.ReportMonth(state, model.MonthSummary{Month: 1}), errNoRun)
	assert.ErrorIs(t, r.ReportCycle(state, model.CycleSummary{Cycle: 1}), errNoRun)
	assert.ErrorIs(t, r.ReportFinal(state, model.FinalReport{}), errNoRun)
}

func TestSQLiteRecorder_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	r1, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r1.BeginRun(&RunInfo{ID: "x", StartDate: start}))
	require.NoError(t, r1.Close())

	r2, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r2.Close()
	assert.Equal(t, 1, count(t, r2, `SELECT COUNT(*) FROM runs`))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.BeginRun(&RunInfo{}))
	assert.NoError(t, r.ReportFinal(nil, model.FinalReport{}))
	assert.NoError(t, r.Close())
}
