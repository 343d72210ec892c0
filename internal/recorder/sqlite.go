package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"TontineSim/internal/model"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var errNoRun = errors.New("recorder: no run in progress")

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db    *sql.DB
	mu    sync.Mutex
	runID string
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id             TEXT PRIMARY KEY,
			started_at     INTEGER NOT NULL,
			seed           TEXT,
			month_budget   INTEGER,
			start_date     INTEGER,
			members        INTEGER,
			source         TEXT,
			outcome        TEXT,
			months_run     INTEGER,
			failed_at      INTEGER,
			finished_at    INTEGER,
			treasury       REAL,
			emergency_fund REAL,
			active_members INTEGER,
			total_admitted INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS monthly_summaries (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			month             INTEGER NOT NULL,
			cycle             INTEGER,
			month_in_cycle    INTEGER,
			sim_date          INTEGER,
			beneficiary_id    TEXT,
			payout            REAL,
			defaulters        TEXT,
			collected         REAL,
			debt_refunded     REAL,
			loans_issued      INTEGER,
			loan_volume       REAL,
			repaid            REAL,
			treasury          REAL,
			emergency_fund    REAL,
			loans_outstanding REAL,
			default_rate      REAL,
			recovery_rate     REAL,
			active_members    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_monthly_run ON monthly_summaries(run_id, month)`,

		`CREATE TABLE IF NOT EXISTS cycle_summaries (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			cycle         INTEGER NOT NULL,
			month         INTEGER,
			exited        TEXT,
			joined        TEXT,
			refunded      REAL,
			contributions REAL,
			defaults      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_run ON cycle_summaries(run_id, cycle)`,

		`CREATE TABLE IF NOT EXISTS member_outcomes (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			member_id       TEXT NOT NULL,
			name            TEXT,
			status          TEXT,
			join_date       INTEGER,
			exit_date       INTEGER,
			contributions   REAL,
			debt            REAL,
			borrowed        REAL,
			repaid          REAL,
			distributions   REAL,
			missed_payments INTEGER,
			repay_prob      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_member_run ON member_outcomes(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// BeginRun opens a run row. Every report until the final one is attached to it.
func (r *SQLiteRecorder) BeginRun(info *RunInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(id, started_at, seed, month_budget, start_date, members, source, outcome)
		VALUES (?,?,?,?,?,?,?,?)`,
		info.ID, time.Now().Unix(), strconv.FormatUint(info.Seed, 10), info.Months,
		info.StartDate.Unix(), info.Members, info.Source, string(model.RunRunning),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	r.runID = info.ID
	return nil
}

func (r *SQLiteRecorder) ReportMonth(state *model.LedgerState, s model.MonthSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runID == "" {
		return errNoRun
	}

	_, err := r.db.Exec(`INSERT INTO monthly_summaries
		(run_id, month, cycle, month_in_cycle, sim_date, beneficiary_id, payout, defaulters,
		 collected, debt_refunded, loans_issued, loan_volume, repaid,
		 treasury, emergency_fund, loans_outstanding, default_rate, recovery_rate, active_members)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.runID, s.Month, s.Cycle, s.MonthInCycle, s.Date.Unix(), s.BeneficiaryID, s.Payout,
		strings.Join(s.Defaulters, ","),
		s.Collected, s.DebtRefunded, s.LoansIssued, s.LoanVolume, s.Repaid,
		state.TreasuryBalance, state.EmergencyFund, state.TotalLoansOutstanding,
		state.DefaultRate, state.LoanRecoveryRate, state.ActiveCount(),
	)
	if err != nil {
		return fmt.Errorf("insert month %d: %w", s.Month, err)
	}
	return nil
}

func (r *SQLiteRecorder) ReportCycle(_ *model.LedgerState, s model.CycleSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runID == "" {
		return errNoRun
	}

	_, err := r.db.Exec(`INSERT INTO cycle_summaries
		(run_id, cycle, month, exited, joined, refunded, contributions, defaults)
		VALUES (?,?,?,?,?,?,?,?)`,
		r.runID, s.Cycle, s.Month,
		strings.Join(s.ExitedIDs, ","), strings.Join(s.JoinedIDs, ","),
		s.Refunded, s.Contributions, s.Defaults,
	)
	if err != nil {
		return fmt.Errorf("insert cycle %d: %w", s.Cycle, err)
	}
	return nil
}

// ReportFinal writes every member's outcome and closes the run row in one
// transaction.
func (r *SQLiteRecorder) ReportFinal(state *model.LedgerState, rep model.FinalReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runID == "" {
		return errNoRun
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, m := range state.History.Members() {
		var exit any
		if m.ExitDate != nil {
			exit = m.ExitDate.Unix()
		}
		_, err := tx.Exec(`INSERT INTO member_outcomes
			(run_id, member_id, name, status, join_date, exit_date, contributions, debt,
			 borrowed, repaid, distributions, missed_payments, repay_prob)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			r.runID, m.ID, m.Name(), string(m.Status), m.JoinDate.Unix(), exit,
			m.TotalContributions, m.CurrentDebt, m.TotalBorrowed, m.TotalRepaid,
			m.DistributionsReceived, m.MissedPayments, m.Archetype.RepayProbability,
		)
		if err != nil {
			return fmt.Errorf("insert member %s: %w", m.ID, err)
		}
	}

	_, err = tx.Exec(`UPDATE runs SET outcome = ?, months_run = ?, failed_at = ?, finished_at = ?,
		treasury = ?, emergency_fund = ?, active_members = ?, total_admitted = ?
		WHERE id = ?`,
		string(rep.Outcome), rep.MonthsRun, rep.FailedAt, time.Now().Unix(),
		state.TreasuryBalance, state.EmergencyFund, state.ActiveCount(), state.TotalAdmitted,
		r.runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.runID = ""
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
