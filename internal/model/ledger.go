package model

import "time"

// LedgerState is the whole simulation at one point in time.
type LedgerState struct {
	CurrentDate  time.Time
	StartDate    time.Time
	CycleNumber  int
	MonthInCycle int

	Active        *Roster // members currently in the association
	History       *Roster // every member ever admitted, append-only
	TotalAdmitted int

	TreasuryBalance            float64
	EmergencyFund              float64
	TotalLoansOutstanding      float64
	TotalContributionsReceived float64
	TotalInterestEarned        float64

	DefaultRate      float64
	LoanRecoveryRate float64

	CycleContributions float64
	CycleDefaults      int
	CycleNewMembers    int
	CycleExits         int

	DistributionHistory []string
}

// ActiveCount returns the number of members in the active roster.
func (s *LedgerState) ActiveCount() int {
	return s.Active.Len()
}

// IsCycleEnd reports whether the current month closes a cycle.
func (s *LedgerState) IsCycleEnd(cycleLength int) bool {
	return s.MonthInCycle >= cycleLength
}

// Roster is an id-keyed member set that remembers insertion order.
type Roster struct {
	order   []string
	members map[string]*MemberRecord
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{members: make(map[string]*MemberRecord)}
}

// Add inserts m at the end of the order. Re-adding an id replaces the record in place.
func (r *Roster) Add(m *MemberRecord) {
	if _, ok := r.members[m.ID]; !ok {
		r.order = append(r.order, m.ID)
	}
	r.members[m.ID] = m
}

// Get looks up a member by id.
func (r *Roster) Get(id string) (*MemberRecord, bool) {
	m, ok := r.members[id]
	return m, ok
}

// Remove deletes id from the roster and reports whether it was present.
func (r *Roster) Remove(id string) bool {
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of members.
func (r *Roster) Len() int {
	return len(r.order)
}

// Members returns the records in insertion order. The slice is a copy, so
// the roster may be modified while iterating it.
func (r *Roster) Members() []*MemberRecord {
	out := make([]*MemberRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.members[id])
	}
	return out
}

// IDs returns the member ids in insertion order.
func (r *Roster) IDs() []string {
	return append([]string(nil), r.order...)
}
