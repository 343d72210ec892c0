// Package engine advances a tontine ledger month by month.
//
// A Driver is not safe for concurrent use: it mutates the ledger it is given
// in place and consumes a single random stream in a fixed order.
package engine

import (
	"TontineSim/internal/ledger"
	"TontineSim/internal/model"
	"TontineSim/internal/random"

	"github.com/rs/zerolog/log"
)

// Reporter receives the summaries a run emits.
type Reporter interface {
	ReportMonth(state *model.LedgerState, s model.MonthSummary) error
	ReportCycle(state *model.LedgerState, s model.CycleSummary) error
	ReportFinal(state *model.LedgerState, r model.FinalReport) error
}

// Failed reports whether membership dropped below the configured floor.
func Failed(state *model.LedgerState, cfg model.AssociationConfig) bool {
	return state.ActiveCount() < cfg.NumParticipantsMin
}

// Driver owns the month loop.
type Driver struct {
	cfg       model.AssociationConfig
	monthly   *MonthlyProcessor
	cycle     *CycleProcessor
	reporters []Reporter
	status    model.RunStatus
}

// New wires both processors to the same random stream.
func New(cfg model.AssociationConfig, archetypes []model.MemberArchetype, rng random.Source, reporters ...Reporter) *Driver {
	return &Driver{
		cfg:       cfg,
		monthly:   NewMonthlyProcessor(cfg, rng),
		cycle:     NewCycleProcessor(cfg, archetypes, rng),
		reporters: reporters,
		status:    model.RunRunning,
	}
}

// Status returns the current driver state.
func (d *Driver) Status() model.RunStatus {
	return d.status
}

// Run advances state for at most months months. It stops early, in the FAILED
// state, the moment the active roster falls below the minimum.
func (d *Driver) Run(state *model.LedgerState, months int) model.FinalReport {
	cycleLength := d.cfg.CycleDurationMonths
	if cycleLength <= 0 {
		cycleLength = 12
	}

	monthsRun := 0
	for month := 1; month <= months; month++ {
		summary := d.monthly.Process(state, month)
		monthsRun = month

		if Failed(state, d.cfg) {
			return d.finish(state, model.RunFailed, monthsRun)
		}

		if !state.IsCycleEnd(cycleLength) {
			d.emitMonth(state, summary)
			ledger.Advance(state)
			state.MonthInCycle++
			continue
		}

		cs := d.cycle.Process(state, month)
		summary.DebtRefunded = cs.Refunded
		d.emitMonth(state, summary)
		d.emitCycle(state, cs)
		log.Debug().
			Int("cycle", cs.Cycle).
			Int("exits", len(cs.ExitedIDs)).
			Int("arrivals", len(cs.JoinedIDs)).
			Msg("cycle closed")

		if Failed(state, d.cfg) {
			return d.finish(state, model.RunFailed, monthsRun)
		}
	}
	return d.finish(state, model.RunCompleted, monthsRun)
}

func (d *Driver) finish(state *model.LedgerState, outcome model.RunStatus, monthsRun int) model.FinalReport {
	d.status = outcome
	report := model.FinalReport{
		Outcome:   outcome,
		MonthsRun: monthsRun,
		Timeline:  ledger.Timeline(state),
	}
	if outcome == model.RunFailed {
		report.FailedAt = monthsRun
		log.Warn().
			Int("month", monthsRun).
			Int("active", state.ActiveCount()).
			Int("minimum", d.cfg.NumParticipantsMin).
			Msg("tontine failed: membership below minimum")
	} else {
		log.Info().
			Int("months", monthsRun).
			Float64("treasury", state.TreasuryBalance).
			Int("active", state.ActiveCount()).
			Msg("simulation complete")
	}

	for _, r := range d.reporters {
		if err := r.ReportFinal(state, report); err != nil {
			log.Error().Err(err).Msg("report final state")
		}
	}
	return report
}

func (d *Driver) emitMonth(state *model.LedgerState, s model.MonthSummary) {
	log.Debug().
		Int("month", s.Month).
		Int("cycle", s.Cycle).
		Float64("collected", s.Collected).
		Int("defaults", len(s.Defaulters)).
		Msg("month closed")
	for _, r := range d.reporters {
		if err := r.ReportMonth(state, s); err != nil {
			log.Error().Err(err).Int("month", s.Month).Msg("report month")
		}
	}
}

func (d *Driver) emitCycle(state *model.LedgerState, s model.CycleSummary) {
	for _, r := range d.reporters {
		if err := r.ReportCycle(state, s); err != nil {
			log.Error().Err(err).Int("cycle", s.Cycle).Msg("report cycle")
		}
	}
}
