package ledger

import (
	"fmt"
	"time"

	"TontineSim/internal/model"

	"github.com/google/uuid"
)

// DaysPerMonth is the fixed length of a simulated month.
const DaysPerMonth = 30

var memberNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tontinesim/members"))

// MemberID returns the id of the seq-th admitted member. Ids are name-based
// UUIDs so that two runs over the same draws admit identical members.
func MemberID(seq int) string {
	return uuid.NewSHA1(memberNamespace, []byte(fmt.Sprintf("member-%d", seq))).String()
}

// MemberName returns the display label of the seq-th admitted member.
func MemberName(seq int) string {
	return fmt.Sprintf("Participant %d", seq)
}

// JoinContext carries what a new member takes from the moment it joins.
type JoinContext struct {
	ID            string // empty keeps the archetype id
	Name          string // empty keeps the archetype name
	JoinDate      time.Time
	ProjectedExit time.Time
}

// NewMember instantiates an ACTIVE member from an archetype. The archetype
// is cloned, so later changes to the template never reach the record.
func NewMember(arch model.MemberArchetype, jc JoinContext) *model.MemberRecord {
	id, name := arch.ID, arch.Name
	if jc.ID != "" {
		id = jc.ID
	}
	if jc.Name != "" {
		name = jc.Name
	}
	return &model.MemberRecord{
		ID:                id,
		Archetype:         arch.Clone(id, name),
		JoinDate:          jc.JoinDate,
		ProjectedExitDate: jc.ProjectedExit,
		Status:            model.StatusActive,
		ActiveLoans:       []float64{},
		LastPaymentDate:   jc.JoinDate,
	}
}

// NewState builds the opening ledger: NumParticipantsStart ACTIVE members
// and every balance at zero. The first members take the archetypes as
// configured; when more members are requested than archetypes exist, the
// archetypes are cycled and the extra members get fresh identities.
func NewState(cfg model.AssociationConfig, archetypes []model.MemberArchetype, start time.Time) *model.LedgerState {
	state := &model.LedgerState{
		CurrentDate:  start,
		StartDate:    start,
		CycleNumber:  1,
		MonthInCycle: 1,
		Active:       model.NewRoster(),
		History:      model.NewRoster(),
	}
	if len(archetypes) == 0 {
		return state
	}

	count := cfg.NumParticipantsStart
	if count <= 0 {
		count = len(archetypes)
	}
	for i := 0; i < count; i++ {
		jc := JoinContext{JoinDate: start}
		if i >= len(archetypes) {
			jc.ID = MemberID(i + 1)
			jc.Name = MemberName(i + 1)
		}
		m := NewMember(archetypes[i%len(archetypes)], jc)
		state.Active.Add(m)
		state.History.Add(m)
	}
	state.TotalAdmitted = state.History.Len()
	return state
}

// ProjectedExit is the bookkeeping exit date assigned to members that stay
// through a cycle boundary.
func ProjectedExit(start time.Time, cycle, monthInCycle int) time.Time {
	return start.AddDate(0, 0, DaysPerMonth*cycle*monthInCycle)
}

// MonthsBetween counts whole simulated months between two dates.
func MonthsBetween(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / DaysPerMonth
}

// Advance moves the calendar forward by one simulated month.
func Advance(state *model.LedgerState) {
	state.CurrentDate = state.CurrentDate.AddDate(0, 0, DaysPerMonth)
}
