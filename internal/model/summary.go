package model

import (
	"encoding/json"
	"time"
)

// RunStatus is the state of the simulation driver.
type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunFailed    RunStatus = "FAILED"
	RunCompleted RunStatus = "COMPLETED"
)

// MonthSummary describes the events of one simulated month.
type MonthSummary struct {
	Month         int       `json:"month"`
	Cycle         int       `json:"cycle"`
	MonthInCycle  int       `json:"month_in_cycle"`
	Date          time.Time `json:"date"`
	BeneficiaryID string    `json:"beneficiary_id"`
	Payout        float64   `json:"payout"`
	Defaulters    []string  `json:"defaulters"`
	Collected     float64   `json:"total_collected"`
	DebtRefunded  float64   `json:"debt_refunded"`
	LoansIssued   int       `json:"loans_issued"`
	LoanVolume    float64   `json:"loan_volume"`
	Repaid        float64   `json:"repaid"`
}

// CycleSummary describes the membership churn at a cycle boundary.
type CycleSummary struct {
	Cycle         int      `json:"cycle"`
	Month         int      `json:"month"`
	ExitedIDs     []string `json:"exited_ids"`
	ExitedNames   []string `json:"exited_names"`
	JoinedIDs     []string `json:"joined_ids"`
	JoinedNames   []string `json:"joined_names"`
	Refunded      float64  `json:"refunded"`
	Contributions float64  `json:"contributions"`
	Defaults      int      `json:"defaults"`
}

// TimelineEntry is one member's presence in the association.
// A nil Exit means the member is still active.
type TimelineEntry struct {
	MemberID             string
	Name                 string
	Join                 time.Time
	Exit                 *time.Time
	RepaymentProbability float64
}

// StillActive is the exit marker used for members that never left.
const StillActive = "still active"

// MarshalJSON writes join and exit as unix timestamps, with the exit
// replaced by StillActive for current members.
func (e TimelineEntry) MarshalJSON() ([]byte, error) {
	var exit any = StillActive
	if e.Exit != nil {
		exit = e.Exit.Unix()
	}
	return json.Marshal(struct {
		MemberID             string  `json:"member_id"`
		Name                 string  `json:"name"`
		Join                 int64   `json:"join"`
		Exit                 any     `json:"exit"`
		RepaymentProbability float64 `json:"repayment_probability"`
	}{e.MemberID, e.Name, e.Join.Unix(), exit, e.RepaymentProbability})
}

// FinalReport is handed to reporters when a run terminates.
type FinalReport struct {
	Outcome   RunStatus       `json:"outcome"`
	MonthsRun int             `json:"months_run"`
	FailedAt  int             `json:"failed_at,omitempty"`
	Timeline  []TimelineEntry `json:"timeline"`
}

// RunResult is the compact record of a finished run.
type RunResult struct {
	RunID         string    `json:"run_id"`
	Seed          uint64    `json:"seed"`
	Outcome       RunStatus `json:"outcome"`
	MonthsRun     int       `json:"months_run"`
	FinishedAt    time.Time `json:"finished_at"`
	Treasury      float64   `json:"treasury_balance"`
	EmergencyFund float64   `json:"emergency_fund"`
	ActiveMembers int       `json:"active_members"`
	TotalAdmitted int       `json:"total_participants_history"`
}
