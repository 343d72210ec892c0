package ledger

import "TontineSim/internal/model"

// DefaultRate is the moving ratio of this cycle's defaults to member-months
// elapsed in the cycle. It is not an annualized rate.
func DefaultRate(cycleDefaults, activeCount, monthInCycle int) float64 {
	if activeCount <= 0 || monthInCycle <= 0 {
		return 0
	}
	return float64(cycleDefaults) / float64(activeCount*monthInCycle)
}

// RecoveryRate is interest earned over loans still outstanding. The second
// return value is false when nothing is outstanding and the rate is undefined.
func RecoveryRate(interestEarned, outstanding float64) (float64, bool) {
	if outstanding <= 0 {
		return 0, false
	}
	return interestEarned / outstanding, true
}

// Timeline lists every admitted member in admission order.
func Timeline(state *model.LedgerState) []model.TimelineEntry {
	members := state.History.Members()
	out := make([]model.TimelineEntry, 0, len(members))
	for _, m := range members {
		out = append(out, model.TimelineEntry{
			MemberID:             m.ID,
			Name:                 m.Name(),
			Join:                 m.JoinDate,
			Exit:                 m.ExitDate,
			RepaymentProbability: m.Archetype.RepayProbability,
		})
	}
	return out
}

// OutstandingDebt sums the debt of the active members.
func OutstandingDebt(state *model.LedgerState) float64 {
	var total float64
	for _, m := range state.Active.Members() {
		total += m.CurrentDebt
	}
	return total
}
