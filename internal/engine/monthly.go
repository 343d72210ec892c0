package engine

import (
	"math"

	"TontineSim/internal/ledger"
	"TontineSim/internal/model"
	"TontineSim/internal/random"
)

// MonthlyProcessor runs the fixed sequence of one month's operations:
// collection, distribution, loan issuance and loan repayment.
type MonthlyProcessor struct {
	cfg model.AssociationConfig
	rng random.Source
}

// NewMonthlyProcessor creates a processor drawing from rng.
func NewMonthlyProcessor(cfg model.AssociationConfig, rng random.Source) *MonthlyProcessor {
	return &MonthlyProcessor{cfg: cfg, rng: rng}
}

// Process mutates state for the given month and returns what happened.
func (p *MonthlyProcessor) Process(state *model.LedgerState, month int) model.MonthSummary {
	summary := model.MonthSummary{
		Month:        month,
		Cycle:        state.CycleNumber,
		MonthInCycle: state.MonthInCycle,
		Date:         state.CurrentDate,
	}
	collected := p.collectContributions(state, &summary)
	p.distribute(state, collected, &summary)
	p.issueLoans(state, &summary)
	p.collectRepayments(state, &summary)
	return summary
}

// collectContributions draws once per active member against its default
// probability. Defaulted contributions become debt and are never collected.
func (p *MonthlyProcessor) collectContributions(state *model.LedgerState, summary *model.MonthSummary) float64 {
	var collected float64
	for _, m := range state.Active.Members() {
		if m.Status != model.StatusActive {
			continue
		}

		if p.rng.Float64() < m.Archetype.DefaultProbability {
			m.ConsecutiveDefaults++
			m.MissedPayments++
			interest := m.CurrentDebt * p.cfg.MonthlyInterestRate
			m.CurrentDebt += p.cfg.MonthlyContrib + interest

			state.CycleDefaults++
			state.DefaultRate = ledger.DefaultRate(state.CycleDefaults, state.ActiveCount(), state.MonthInCycle)
			summary.Defaulters = append(summary.Defaulters, m.ID)
			continue
		}

		m.TotalContributions += p.cfg.MonthlyContrib
		m.ConsecutiveDefaults = 0
		m.LastPaymentDate = state.CurrentDate
		collected += p.cfg.MonthlyContrib

		tenure := ledger.MonthsBetween(m.JoinDate, state.CurrentDate)
		m.LoanEligible = tenure >= p.cfg.MinMembershipMonths &&
			len(m.ActiveLoans) < p.cfg.MaxSimultaneousLoans
	}

	state.TotalContributionsReceived += collected
	state.CycleContributions += collected
	summary.Collected = collected
	return collected
}

// distribute splits the month's collection into the emergency fund, one
// member's payout and the treasury.
func (p *MonthlyProcessor) distribute(state *model.LedgerState, collected float64, summary *model.MonthSummary) {
	if collected <= 0 {
		return
	}

	emergency := collected * p.cfg.EmergencyFundPercentage
	state.EmergencyFund += emergency

	distributable := collected - emergency
	payout := distributable * p.cfg.MonthlyDistributionPercentage
	state.TreasuryBalance += distributable - payout

	beneficiary := selectBeneficiary(state.Active)
	if beneficiary == nil {
		state.TreasuryBalance += payout
		return
	}

	beneficiary.DistributionsReceived += payout
	state.DistributionHistory = append(state.DistributionHistory, beneficiary.ID)
	summary.BeneficiaryID = beneficiary.ID
	summary.Payout = payout
}

// selectBeneficiary picks the active member with the smallest cumulative
// distribution, breaking ties by ascending id.
func selectBeneficiary(roster *model.Roster) *model.MemberRecord {
	var next *model.MemberRecord
	for _, m := range roster.Members() {
		if m.Status != model.StatusActive {
			continue
		}
		if next == nil ||
			m.DistributionsReceived < next.DistributionsReceived ||
			(m.DistributionsReceived == next.DistributionsReceived && m.ID < next.ID) {
			next = m
		}
	}
	return next
}

// issueLoans lends to eligible members out of half the treasury, capped by
// the configured maximum loan.
func (p *MonthlyProcessor) issueLoans(state *model.LedgerState, summary *model.MonthSummary) {
	for _, m := range state.Active.Members() {
		if m.Status != model.StatusActive || !m.LoanEligible {
			continue
		}
		if p.rng.Float64() >= m.Archetype.LoanProbability {
			continue
		}

		ceiling := math.Min(state.TreasuryBalance*0.5, p.cfg.MaxLoanAmount)
		if ceiling <= 0 {
			continue
		}
		amount := random.Uniform(p.rng, 0.5*ceiling, ceiling)

		m.ActiveLoans = append(m.ActiveLoans, amount)
		m.CurrentDebt += amount
		m.TotalBorrowed += amount

		state.TreasuryBalance -= amount
		state.TotalLoansOutstanding += amount
		summary.LoansIssued++
		summary.LoanVolume += amount
	}
}

// collectRepayments lets indebted members pay this month's interest and, on
// a coin flip, chip off some principal.
func (p *MonthlyProcessor) collectRepayments(state *model.LedgerState, summary *model.MonthSummary) {
	for _, m := range state.Active.Members() {
		if m.Status != model.StatusActive || m.CurrentDebt <= 0 {
			continue
		}
		if p.rng.Float64() >= m.Archetype.RepayProbability {
			continue
		}

		interest := m.CurrentDebt * p.cfg.MonthlyInterestRate
		var principal float64
		if p.rng.Float64() > 0.5 {
			principal = random.Uniform(p.rng, p.cfg.MonthlyContrib, m.CurrentDebt*0.2)
		}
		repayment := interest + principal

		m.CurrentDebt -= principal
		m.TotalRepaid += repayment
		if m.CurrentDebt <= 0 {
			m.ActiveLoans = m.ActiveLoans[:0]
			m.CurrentDebt = 0
		}

		state.TreasuryBalance += repayment
		state.TotalLoansOutstanding -= principal
		state.TotalInterestEarned += interest
		if rate, ok := ledger.RecoveryRate(state.TotalInterestEarned, state.TotalLoansOutstanding); ok {
			state.LoanRecoveryRate = rate
		}
		summary.Repaid += repayment
	}
}
