// Package metrics exposes simulation state as Prometheus metrics.
package metrics

import (
	"TontineSim/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector is a reporter that mirrors the ledger into gauges after every
// emitted month and counts finished runs by outcome.
type Collector struct {
	Treasury         prometheus.Gauge
	EmergencyFund    prometheus.Gauge
	LoansOutstanding prometheus.Gauge
	ActiveMembers    prometheus.Gauge
	DefaultRate      prometheus.Gauge
	RecoveryRate     prometheus.Gauge
	Cycle            prometheus.Gauge

	MonthsSimulated prometheus.Counter
	Defaults        prometheus.Counter
	Exits           prometheus.Counter
	Arrivals        prometheus.Counter
	Runs            *prometheus.CounterVec
}

// New registers every metric on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Treasury: f.NewGauge(prometheus.GaugeOpts{
			Name: "tontine_treasury_balance",
			Help: "Treasury balance after the last simulated month",
		}),
		EmergencyFund: f.NewGauge(prometheus.GaugeOpts{
			Name: "tontine_emergency_fund",
			Help: "Emergency fund after the last simulated month",
		}),
		LoansOutstanding: f.NewGauge(prometheus.GaugeOpts{
			Name: "tontine_loans_outstanding",
			Help: "Total loan principal not yet repaid",
		}),
		ActiveMembers: f.NewGauge(prometheus.GaugeOpts{
			Name: "tontine_active_members",
			Help: "Members in the active roster",
		}),
		DefaultRate: f.NewGauge(prometheus.GaugeOpts{
			Name: "tontine_default_rate",
			Help: "Cycle defaults over member-months elapsed in the cycle",
		}),
		RecoveryRate: f.NewGauge(prometheus.GaugeOpts{
			Name: "tontine_loan_recovery_rate",
			Help: "Interest earned over loans outstanding",
		}),
		Cycle: f.NewGauge(prometheus.GaugeOpts{
			Name: "tontine_cycle_number",
			Help: "Current cycle number",
		}),
		MonthsSimulated: f.NewCounter(prometheus.CounterOpts{
			Name: "tontine_months_simulated_total",
			Help: "Simulated months across all runs",
		}),
		Defaults: f.NewCounter(prometheus.CounterOpts{
			Name: "tontine_defaults_total",
			Help: "Missed contributions across all runs",
		}),
		Exits: f.NewCounter(prometheus.CounterOpts{
			Name: "tontine_exits_total",
			Help: "Members that left at a cycle boundary",
		}),
		Arrivals: f.NewCounter(prometheus.CounterOpts{
			Name: "tontine_arrivals_total",
			Help: "Members admitted at a cycle boundary",
		}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tontine_runs_total",
			Help: "Finished runs by outcome",
		}, []string{"outcome"}),
	}
}

func (c *Collector) observe(state *model.LedgerState) {
	c.Treasury.Set(state.TreasuryBalance)
	c.EmergencyFund.Set(state.EmergencyFund)
	c.LoansOutstanding.Set(state.TotalLoansOutstanding)
	c.ActiveMembers.Set(float64(state.ActiveCount()))
	c.DefaultRate.Set(state.DefaultRate)
	c.RecoveryRate.Set(state.LoanRecoveryRate)
	c.Cycle.Set(float64(state.CycleNumber))
}

func (c *Collector) ReportMonth(state *model.LedgerState, s model.MonthSummary) error {
	c.MonthsSimulated.Inc()
	c.Defaults.Add(float64(len(s.Defaulters)))
	c.observe(state)
	return nil
}

func (c *Collector) ReportCycle(state *model.LedgerState, s model.CycleSummary) error {
	c.Exits.Add(float64(len(s.ExitedIDs)))
	c.Arrivals.Add(float64(len(s.JoinedIDs)))
	c.observe(state)
	return nil
}

func (c *Collector) ReportFinal(state *model.LedgerState, r model.FinalReport) error {
	c.Runs.WithLabelValues(string(r.Outcome)).Inc()
	c.observe(state)
	return nil
}
