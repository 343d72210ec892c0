package model

// AssociationConfig holds the immutable parameters of one tontine.
type AssociationConfig struct {
	NumParticipantsStart          int     `json:"num_participants_start"`
	NumParticipantsMin            int     `json:"num_participants_min"`
	MonthlyContrib                float64 `json:"monthly_contrib"`
	MonthlyInterestRate           float64 `json:"monthly_interest_rate"`
	ArrivalProbability            float64 `json:"arrival_probability"`
	CycleDurationMonths           int     `json:"cycle_duration_months"`
	MaxCycles                     int     `json:"max_cycles"`
	EmergencyFundPercentage       float64 `json:"emergency_fund_percentage"`
	MaxLoanAmount                 float64 `json:"max_loan_amount"`
	LatePaymentPenalty            float64 `json:"late_payment_penalty"` // loaded and reported, not applied
	MaxSimultaneousLoans          int     `json:"max_simultaneous_loans"`
	MinMembershipMonths           int     `json:"min_membership_months"`
	MonthlyDistributionPercentage float64 `json:"monthly_distribution_percentage"`
}

// MemberArchetype is the behavioral template a member is instantiated from.
type MemberArchetype struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	DefaultProbability     float64 `json:"default_probability"`
	LoanProbability        float64 `json:"loan_prob"`
	RepayProbability       float64 `json:"loan_reemboursement_prob"`
	ExitProbability        float64 `json:"exit_probability"`
	MaxConsecutiveDefaults int     `json:"max_consecutive_defaults"`
}

// Clone returns a copy carrying a new identity.
func (a MemberArchetype) Clone(id, name string) MemberArchetype {
	c := a
	c.ID = id
	c.Name = name
	return c
}
