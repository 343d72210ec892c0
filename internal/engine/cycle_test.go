package engine

import (
	"testing"

	"TontineSim/internal/ledger"
	"TontineSim/internal/model"
	"TontineSim/internal/random"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycle_ExitRefundsContributionsNetOfDebt(t *testing.T) {
	cfg := testConfig()
	archetypes := []model.MemberArchetype{
		archetype("indebted", 0, 0, 0, 1),
		archetype("clean", 0, 0, 0, 1),
		archetype("underwater", 0, 0, 0, 1),
		archetype("stayer", 0, 0, 0, 0),
	}
	state := newState(cfg, archetypes...)
	state.TreasuryBalance = 100
	state.MonthInCycle = 12

	indebted := member(t, state, "indebted")
	indebted.TotalContributions = 1000
	indebted.CurrentDebt = 300
	clean := member(t, state, "clean")
	clean.TotalContributions = 1000
	underwater := member(t, state, "underwater")
	underwater.TotalContributions = 200
	underwater.CurrentDebt = 900

	p := NewCycleProcessor(cfg, archetypes, random.Fixed{Value: 0.5, Int: -2})
	summary := p.Process(state, 12)

	assert.Equal(t, 700.0, summary.Refunded)
	assert.Equal(t, -600.0, state.TreasuryBalance, "treasury has no floor at exit")
	assert.Equal(t, []string{"indebted", "clean", "underwater"}, summary.ExitedIDs)
	assert.Equal(t, []string{"member indebted", "member clean", "member underwater"}, summary.ExitedNames)
	assert.Empty(t, summary.JoinedIDs)

	assert.Equal(t, []string{"stayer"}, state.Active.IDs())
	assert.Equal(t, 4, state.History.Len())
	for _, id := range summary.ExitedIDs {
		m := member(t, state, id)
		assert.Equal(t, model.StatusExited, m.Status)
		require.NotNil(t, m.ExitDate)
		assert.Equal(t, state.CurrentDate, *m.ExitDate)
	}

	stayer := member(t, state, "stayer")
	assert.Nil(t, stayer.ExitDate)
	assert.Equal(t, ledger.ProjectedExit(start, 1, 12), stayer.ProjectedExitDate)
}

func TestCycle_ResetsCountersAndOpensNextCycle(t *testing.T) {
	cfg := testConfig()
	archetypes := []model.MemberArchetype{archetype("a", 0, 0, 0, 0)}
	state := newState(cfg, archetypes...)
	state.MonthInCycle = 12
	state.CycleContributions = 1200
	state.CycleDefaults = 3
	state.CycleExits = 1
	state.CycleNewMembers = 2

	summary := NewCycleProcessor(cfg, archetypes, random.Fixed{Value: 0.5, Int: -2}).Process(state, 12)

	assert.Equal(t, 1200.0, summary.Contributions)
	assert.Equal(t, 3, summary.Defaults)
	assert.Equal(t, 1, summary.Cycle)
	assert.Equal(t, 2, state.CycleNumber)
	assert.Equal(t, 1, state.MonthInCycle)
	assert.Zero(t, state.CycleContributions)
	assert.Zero(t, state.CycleDefaults)
	assert.Zero(t, state.CycleExits)
	assert.Zero(t, state.CycleNewMembers)
}

func TestCycle_ArrivalCountRoundsHalfToEven(t *testing.T) {
	tests := []struct {
		active    int
		prob      float64
		variation int
		want      int
	}{
		{5, 0.5, 0, 2},
		{3, 0.5, 0, 2},
		{4, 0.25, 2, 3},
		{4, 0.25, -2, 0},
		{10, 0, -2, 0},
		{10, 0.3, 1, 4},
	}
	for _, tt := range tests {
		cfg := testConfig()
		cfg.ArrivalProbability = tt.prob
		archetypes := make([]model.MemberArchetype, tt.active)
		for i := range archetypes {
			archetypes[i] = archetype(ledger.MemberID(100+i), 0, 0, 0, 0)
		}
		state := newState(cfg, archetypes...)

		p := NewCycleProcessor(cfg, archetypes, random.Fixed{Int: tt.variation})
		assert.Equal(t, tt.want, p.arrivals(state), "active=%d prob=%v variation=%d", tt.active, tt.prob, tt.variation)
	}
}

func TestCycle_ArrivalsCloneArchetypesWithFreshIdentity(t *testing.T) {
	cfg := testConfig()
	cfg.ArrivalProbability = 0.5
	archetypes := []model.MemberArchetype{
		archetype("a", 0.1, 0.2, 0.3, 0),
		archetype("b", 0, 0, 0, 0),
	}
	state := newState(cfg, archetypes...)
	state.MonthInCycle = 12
	state.CurrentDate = start.AddDate(0, 0, 11*ledger.DaysPerMonth)

	// exits: two draws of 0.5; variation +1 -> round(2*0.5)+1 = 2 arrivals;
	// archetype picks: index 0 then 1.
	rng := random.NewSequence(0.5, 0.5).WithInts(1, 0, 1)
	summary := NewCycleProcessor(cfg, archetypes, rng).Process(state, 12)

	require.Len(t, summary.JoinedIDs, 2)
	assert.Equal(t, []string{"Participant 3", "Participant 4"}, summary.JoinedNames)
	assert.Equal(t, []string{ledger.MemberID(3), ledger.MemberID(4)}, summary.JoinedIDs)
	assert.Equal(t, 4, state.TotalAdmitted)
	assert.Equal(t, 4, state.ActiveCount())
	assert.Equal(t, 4, state.History.Len())

	joined := member(t, state, ledger.MemberID(3))
	assert.Equal(t, model.StatusActive, joined.Status)
	assert.Equal(t, state.CurrentDate, joined.JoinDate)
	assert.False(t, joined.LoanEligible)
	assert.Zero(t, joined.TotalContributions)
	assert.Empty(t, joined.ActiveLoans)
	assert.Equal(t, joined.ID, joined.Archetype.ID)
	assert.Equal(t, 0.3, joined.Archetype.RepayProbability)

	assert.Equal(t, "a", archetypes[0].ID, "template untouched")
	assert.Equal(t, 0.0, member(t, state, ledger.MemberID(4)).Archetype.RepayProbability)
}

func TestCycle_ChurnNeverMakesRosterNegative(t *testing.T) {
	cfg := testConfig()
	archetypes := []model.MemberArchetype{
		archetype("a", 0, 0, 0, 1),
		archetype("b", 0, 0, 0, 1),
	}
	state := newState(cfg, archetypes...)

	NewCycleProcessor(cfg, archetypes, random.Fixed{Value: 0, Int: -2}).Process(state, 12)

	assert.Zero(t, state.ActiveCount())
	assert.Equal(t, 2, state.History.Len())
	assert.Equal(t, 2, state.TotalAdmitted)
}
