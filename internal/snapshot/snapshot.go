// Package snapshot saves and restores the ledger as JSON files.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"TontineSim/internal/model"

	"github.com/rs/zerolog/log"
)

// TimelineFile is the name of the member timeline export.
const TimelineFile = "timeline.json"

// Document is the on-disk form of a LedgerState.
type Document struct {
	SavedAt time.Time       `json:"saved_at"`
	Label   string          `json:"label"`
	Outcome model.RunStatus `json:"outcome,omitempty"`
	// MonthsRun is set on final snapshots only.
	MonthsRun int `json:"months_run,omitempty"`

	CurrentDate  time.Time `json:"current_date"`
	StartDate    time.Time `json:"start_date"`
	CycleNumber  int       `json:"cycle_number"`
	MonthInCycle int       `json:"month_in_cycle"`

	TreasuryBalance            float64 `json:"treasury_balance"`
	EmergencyFund              float64 `json:"emergency_fund"`
	TotalLoansOutstanding      float64 `json:"total_loans_outstanding"`
	TotalContributionsReceived float64 `json:"total_contributions_received"`
	TotalInterestEarned        float64 `json:"total_interest_earned"`
	DefaultRate                float64 `json:"default_rate"`
	LoanRecoveryRate           float64 `json:"loan_recovery_rate"`

	CycleContributions float64 `json:"cycle_contributions"`
	CycleDefaults      int     `json:"cycle_defaults"`
	CycleNewMembers    int     `json:"cycle_new_members"`
	CycleExits         int     `json:"cycle_exits"`

	TotalAdmitted       int                  `json:"total_participants_history"`
	ActiveMemberIDs     []string             `json:"active_participants"`
	Members             []model.MemberRecord `json:"participants_history"`
	DistributionHistory []string             `json:"distribution_history"`
}

// FromState copies state into a Document. Members are copied by value.
func FromState(state *model.LedgerState, label string, outcome model.RunStatus) *Document {
	doc := &Document{
		SavedAt:                    time.Now().UTC(),
		Label:                      label,
		Outcome:                    outcome,
		CurrentDate:                state.CurrentDate,
		StartDate:                  state.StartDate,
		CycleNumber:                state.CycleNumber,
		MonthInCycle:               state.MonthInCycle,
		TreasuryBalance:            state.TreasuryBalance,
		EmergencyFund:              state.EmergencyFund,
		TotalLoansOutstanding:      state.TotalLoansOutstanding,
		TotalContributionsReceived: state.TotalContributionsReceived,
		TotalInterestEarned:        state.TotalInterestEarned,
		DefaultRate:                state.DefaultRate,
		LoanRecoveryRate:           state.LoanRecoveryRate,
		CycleContributions:         state.CycleContributions,
		CycleDefaults:              state.CycleDefaults,
		CycleNewMembers:            state.CycleNewMembers,
		CycleExits:                 state.CycleExits,
		TotalAdmitted:              state.TotalAdmitted,
		ActiveMemberIDs:            state.Active.IDs(),
		DistributionHistory:        append([]string{}, state.DistributionHistory...),
	}
	for _, m := range state.History.Members() {
		rec := *m
		rec.ActiveLoans = append([]float64{}, m.ActiveLoans...)
		doc.Members = append(doc.Members, rec)
	}
	return doc
}

// Restore rebuilds a LedgerState. The active roster shares records with the
// history, as it does in a live run.
func (d *Document) Restore() (*model.LedgerState, error) {
	state := &model.LedgerState{
		CurrentDate:                d.CurrentDate,
		StartDate:                  d.StartDate,
		CycleNumber:                d.CycleNumber,
		MonthInCycle:               d.MonthInCycle,
		Active:                     model.NewRoster(),
		History:                    model.NewRoster(),
		TotalAdmitted:              d.TotalAdmitted,
		TreasuryBalance:            d.TreasuryBalance,
		EmergencyFund:              d.EmergencyFund,
		TotalLoansOutstanding:      d.TotalLoansOutstanding,
		TotalContributionsReceived: d.TotalContributionsReceived,
		TotalInterestEarned:        d.TotalInterestEarned,
		DefaultRate:                d.DefaultRate,
		LoanRecoveryRate:           d.LoanRecoveryRate,
		CycleContributions:         d.CycleContributions,
		CycleDefaults:              d.CycleDefaults,
		CycleNewMembers:            d.CycleNewMembers,
		CycleExits:                 d.CycleExits,
		DistributionHistory:        append([]string{}, d.DistributionHistory...),
	}
	for i := range d.Members {
		rec := d.Members[i]
		if rec.ActiveLoans == nil {
			rec.ActiveLoans = []float64{}
		}
		state.History.Add(&rec)
	}
	for _, id := range d.ActiveMemberIDs {
		m, ok := state.History.Get(id)
		if !ok {
			return nil, fmt.Errorf("active member %s missing from history", id)
		}
		state.Active.Add(m)
	}
	return state, nil
}

// FileName returns the snapshot file name for label.
func FileName(label string) string {
	return fmt.Sprintf("tontine_state_%s.json", label)
}

// Save writes doc into dir and returns the file path.
func Save(dir string, doc *Document) (string, error) {
	path := filepath.Join(dir, FileName(doc.Label))
	if err := writeJSON(path, doc); err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return path, nil
}

// SaveTimeline writes the member timeline into dir.
func SaveTimeline(dir string, timeline []model.TimelineEntry) (string, error) {
	if timeline == nil {
		timeline = []model.TimelineEntry{}
	}
	path := filepath.Join(dir, TimelineFile)
	if err := writeJSON(path, timeline); err != nil {
		return "", fmt.Errorf("save timeline: %w", err)
	}
	return path, nil
}

// Load reads a snapshot written by Save.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &doc, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Writer is a reporter that saves the final snapshot and timeline of a run,
// and optionally one snapshot per closed cycle.
type Writer struct {
	Dir        string
	EveryCycle bool

	paths []string
}

// NewWriter creates a Writer targeting dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Paths lists the files written so far.
func (w *Writer) Paths() []string {
	return append([]string(nil), w.paths...)
}

func (w *Writer) ReportMonth(_ *model.LedgerState, _ model.MonthSummary) error { return nil }

func (w *Writer) ReportCycle(state *model.LedgerState, s model.CycleSummary) error {
	if !w.EveryCycle {
		return nil
	}
	path, err := Save(w.Dir, FromState(state, fmt.Sprintf("cycle_%d", s.Cycle), model.RunRunning))
	if err != nil {
		return err
	}
	w.paths = append(w.paths, path)
	return nil
}

func (w *Writer) ReportFinal(state *model.LedgerState, r model.FinalReport) error {
	doc := FromState(state, "final", r.Outcome)
	doc.MonthsRun = r.MonthsRun
	path, err := Save(w.Dir, doc)
	if err != nil {
		return err
	}
	w.paths = append(w.paths, path)

	tl, err := SaveTimeline(w.Dir, r.Timeline)
	if err != nil {
		return err
	}
	w.paths = append(w.paths, tl)
	log.Info().Str("snapshot", path).Str("timeline", tl).Msg("results saved")
	return nil
}
