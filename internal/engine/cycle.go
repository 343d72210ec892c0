package engine

import (
	"math"

	"TontineSim/internal/ledger"
	"TontineSim/internal/model"
	"TontineSim/internal/random"
)

// CycleProcessor handles membership churn at the end of a cycle.
type CycleProcessor struct {
	cfg        model.AssociationConfig
	archetypes []model.MemberArchetype
	rng        random.Source
}

// NewCycleProcessor creates a processor that admits arrivals cloned from archetypes.
func NewCycleProcessor(cfg model.AssociationConfig, archetypes []model.MemberArchetype, rng random.Source) *CycleProcessor {
	return &CycleProcessor{cfg: cfg, archetypes: archetypes, rng: rng}
}

// Process runs exits then arrivals, resets the cycle counters and opens the
// next cycle.
func (p *CycleProcessor) Process(state *model.LedgerState, month int) model.CycleSummary {
	summary := model.CycleSummary{Cycle: state.CycleNumber, Month: month}

	for _, m := range state.Active.Members() {
		if m.Status != model.StatusActive {
			continue
		}
		if p.rng.Float64() < m.Archetype.ExitProbability {
			summary.Refunded += p.exit(state, m)
			summary.ExitedIDs = append(summary.ExitedIDs, m.ID)
			summary.ExitedNames = append(summary.ExitedNames, m.Name())
			continue
		}
		m.ProjectedExitDate = ledger.ProjectedExit(state.StartDate, state.CycleNumber, state.MonthInCycle)
	}

	for i, n := 0, p.arrivals(state); i < n; i++ {
		m := p.admit(state)
		summary.JoinedIDs = append(summary.JoinedIDs, m.ID)
		summary.JoinedNames = append(summary.JoinedNames, m.Name())
	}

	summary.Contributions = state.CycleContributions
	summary.Defaults = state.CycleDefaults

	state.CycleContributions = 0
	state.CycleDefaults = 0
	state.CycleNewMembers = 0
	state.CycleExits = 0
	state.CycleNumber++
	state.MonthInCycle = 1
	return summary
}

// exit removes m from the active roster and returns the refund paid out.
// Only indebted members are refunded, and only their contributions net of
// debt. The treasury is debited without a floor.
func (p *CycleProcessor) exit(state *model.LedgerState, m *model.MemberRecord) float64 {
	exitDate := state.CurrentDate
	m.Status = model.StatusExited
	m.ExitDate = &exitDate
	state.Active.Remove(m.ID)

	var refund float64
	if m.CurrentDebt > 0 {
		refund = math.Max(0, m.TotalContributions-m.CurrentDebt)
	}
	state.TreasuryBalance -= refund
	state.CycleExits++
	return refund
}

// arrivals draws how many members join at this boundary.
func (p *CycleProcessor) arrivals(state *model.LedgerState) int {
	if len(p.archetypes) == 0 {
		return 0
	}
	base := int(math.RoundToEven(float64(state.ActiveCount()) * p.cfg.ArrivalProbability))
	n := base + p.rng.IntRange(-2, 2)
	if n < 0 {
		return 0
	}
	return n
}

// admit clones a uniformly chosen archetype into a new ACTIVE member.
func (p *CycleProcessor) admit(state *model.LedgerState) *model.MemberRecord {
	seq := state.TotalAdmitted + 1
	arch := p.archetypes[p.rng.IntRange(0, len(p.archetypes)-1)]
	m := ledger.NewMember(arch, ledger.JoinContext{
		ID:            ledger.MemberID(seq),
		Name:          ledger.MemberName(seq),
		JoinDate:      state.CurrentDate,
		ProjectedExit: ledger.ProjectedExit(state.StartDate, state.CycleNumber, state.MonthInCycle),
	})

	state.Active.Add(m)
	state.History.Add(m)
	state.TotalAdmitted++
	state.CycleNewMembers++
	return m
}
