package model

import "time"

// MemberStatus is the lifecycle state of a member.
type MemberStatus string

const (
	StatusActive MemberStatus = "active"
	// StatusDefaulted is reserved: defaults are tracked through counters and
	// no rule currently moves a member into this state.
	StatusDefaulted MemberStatus = "defaulted"
	StatusExited    MemberStatus = "exited"
)

// MemberRecord is the mutable ledger entry of one member.
//
// CurrentDebt is the single source of truth for what the member owes.
// ActiveLoans only logs issued principals and is cleared when the debt
// reaches zero.
type MemberRecord struct {
	ID                    string          `json:"id"`
	Archetype             MemberArchetype `json:"archetype"`
	JoinDate              time.Time       `json:"join_date"`
	ExitDate              *time.Time      `json:"exit_date"`
	ProjectedExitDate     time.Time       `json:"projected_exit_date"`
	Status                MemberStatus    `json:"status"`
	TotalContributions    float64         `json:"total_contributions"`
	CurrentDebt           float64         `json:"current_debt"`
	ActiveLoans           []float64       `json:"active_loans"`
	MissedPayments        int             `json:"missed_payments"`
	ConsecutiveDefaults   int             `json:"consecutive_defaults"`
	LastPaymentDate       time.Time       `json:"last_payment_date"`
	TotalBorrowed         float64         `json:"total_borrowed"`
	TotalRepaid           float64         `json:"total_repaid"`
	LoanEligible          bool            `json:"is_eligible_for_loan"`
	DistributionsReceived float64         `json:"monthly_distributions_received"`
}

// Name is the display name carried by the member's archetype clone.
func (m *MemberRecord) Name() string {
	return m.Archetype.Name
}
