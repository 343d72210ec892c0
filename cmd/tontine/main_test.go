package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"TontineSim/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
tontine:
  num_participants_min: 2
  monthly_contrib: 100
  monthly_interest_rate: 0.02
  arrival_probability: 0.2
  cycle_duration_months: 6
  max_cycles: 2
  max_loan_amount: 300
participants:
  - {id: ama, name: Ama, default_probability: 0.05, loan_prob: 0.2, loan_reemboursement_prob: 0.8, exit_probability: 0.05}
  - {id: kofi, name: Kofi, default_probability: 0.2, loan_prob: 0.4, loan_reemboursement_prob: 0.4, exit_probability: 0.1}
  - {id: esi, name: Esi, default_probability: 0.1, loan_prob: 0.1, loan_reemboursement_prob: 0.9, exit_probability: 0.05}
simulation:
  start_date: "2025-01-01"
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--config", writeTestConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "configuration OK: 3 participants, 12 months")
}

func TestRunThenInspect(t *testing.T) {
	cfgPath := writeTestConfig(t)
	outDir := filepath.Join(t.TempDir(), "results")
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	t.Setenv("SQLITE_PATH", dbPath)

	out, err := execute(t, "run", "--config", cfgPath, "--output", outDir, "--seed", "7", "--quiet")
	require.NoError(t, err)
	assert.NotContains(t, out, "Tontine configuration")

	final := filepath.Join(outDir, snapshot.FileName("final"))
	assert.FileExists(t, final)
	assert.FileExists(t, filepath.Join(outDir, snapshot.TimelineFile))
	assert.FileExists(t, dbPath)

	out, err = execute(t, "inspect", final)
	require.NoError(t, err)
	assert.Contains(t, out, `Snapshot "final"`)
	assert.Contains(t, out, "Treasury")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tontine:\n  monthly_contrib: 1\n"), 0o644))

	_, err := execute(t, "run", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestBadLogLevel(t *testing.T) {
	_, err := execute(t, "validate", "--config", writeTestConfig(t), "--log-level", "loud")
	require.Error(t, err)
}
