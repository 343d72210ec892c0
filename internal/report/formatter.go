package report

import (
	"fmt"
	"strings"

	"TontineSim/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const dateLayout = "2006-01-02"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	goodStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// memberName resolves id through the history roster, which keeps exited
// members.
func memberName(state *model.LedgerState, id string) string {
	if m, ok := state.History.Get(id); ok {
		return m.Name()
	}
	return id
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// FormatConfig renders the association parameters and participant archetypes.
func FormatConfig(cfg model.AssociationConfig, archetypes []model.MemberArchetype) string {
	params := newTable("Parameter", "Value").Rows(
		[]string{"Starting members", fmt.Sprint(cfg.NumParticipantsStart)},
		[]string{"Minimum members", fmt.Sprint(cfg.NumParticipantsMin)},
		[]string{"Monthly contribution", money(cfg.MonthlyContrib)},
		[]string{"Monthly interest rate", percent(cfg.MonthlyInterestRate)},
		[]string{"Arrival probability", percent(cfg.ArrivalProbability)},
		[]string{"Cycle length (months)", fmt.Sprint(cfg.CycleDurationMonths)},
		[]string{"Max cycles", fmt.Sprint(cfg.MaxCycles)},
		[]string{"Emergency fund", percent(cfg.EmergencyFundPercentage)},
		[]string{"Monthly distribution", percent(cfg.MonthlyDistributionPercentage)},
		[]string{"Max loan", money(cfg.MaxLoanAmount)},
		[]string{"Late payment penalty", percent(cfg.LatePaymentPenalty)},
		[]string{"Max simultaneous loans", fmt.Sprint(cfg.MaxSimultaneousLoans)},
		[]string{"Min membership (months)", fmt.Sprint(cfg.MinMembershipMonths)},
	)

	members := newTable("Name", "Default", "Loan", "Repay", "Exit", "Max defaults")
	for _, a := range archetypes {
		members.Row(a.Name,
			percent(a.DefaultProbability), percent(a.LoanProbability),
			percent(a.RepayProbability), percent(a.ExitProbability),
			fmt.Sprint(a.MaxConsecutiveDefaults))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Tontine configuration"),
		params.Render(),
		titleStyle.Render("Participants"),
		members.Render(),
	)
}

// FormatMonth renders one month summary with member names resolved.
func FormatMonth(state *model.LedgerState, s model.MonthSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Month %d", s.Month)))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  cycle %d, month %d of cycle, %s",
		s.Cycle, s.MonthInCycle, s.Date.Format(dateLayout))))
	b.WriteString("\n")

	beneficiary := "none"
	if s.BeneficiaryID != "" {
		beneficiary = fmt.Sprintf("%s (%s)", memberName(state, s.BeneficiaryID), money(s.Payout))
	}
	b.WriteString(fmt.Sprintf("Beneficiary: %s\n", beneficiary))

	if len(s.Defaulters) > 0 {
		names := make([]string, 0, len(s.Defaulters))
		for _, id := range s.Defaulters {
			names = append(names, memberName(state, id))
		}
		b.WriteString(alertStyle.Render("Defaults: " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Collected: %s | Refunded: %s\n", money(s.Collected), money(s.DebtRefunded)))
	if s.LoansIssued > 0 {
		b.WriteString(fmt.Sprintf("Loans issued: %d (%s)\n", s.LoansIssued, money(s.LoanVolume)))
	}
	if s.Repaid > 0 {
		b.WriteString(fmt.Sprintf("Repaid: %s\n", money(s.Repaid)))
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("Treasury %s | Emergency %s | Active %d | Default rate %s",
		money(state.TreasuryBalance), money(state.EmergencyFund), state.ActiveCount(), percent(state.DefaultRate))))
	return panelStyle.Render(b.String())
}

// FormatCycle renders the churn of a closed cycle.
func FormatCycle(s model.CycleSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("End of cycle %d", s.Cycle)))
	b.WriteString("\n")

	exited := "none"
	if len(s.ExitedNames) > 0 {
		exited = strings.Join(s.ExitedNames, ", ")
	}
	joined := "none"
	if len(s.JoinedNames) > 0 {
		joined = strings.Join(s.JoinedNames, ", ")
	}
	b.WriteString(fmt.Sprintf("Exits: %s\n", exited))
	b.WriteString(fmt.Sprintf("Arrivals: %s\n", joined))
	b.WriteString(fmt.Sprintf("Refunded: %s | Contributions: %s | Defaults: %d",
		money(s.Refunded), money(s.Contributions), s.Defaults))
	return panelStyle.Render(b.String())
}

// FormatMembers renders the detailed table of active members.
func FormatMembers(state *model.LedgerState) string {
	t := newTable("Name", "Status", "Contributions", "Debt", "Loans", "Distributions", "Missed", "Eligible")
	for _, m := range state.Active.Members() {
		eligible := "no"
		if m.LoanEligible {
			eligible = "yes"
		}
		t.Row(m.Name(), string(m.Status),
			money(m.TotalContributions), money(m.CurrentDebt),
			fmt.Sprint(len(m.ActiveLoans)), money(m.DistributionsReceived),
			fmt.Sprint(m.MissedPayments), eligible)
	}
	return t.Render()
}

// FormatFinal renders the failure banner or the closing statistics.
func FormatFinal(state *model.LedgerState, r model.FinalReport) string {
	var headline string
	if r.Outcome == model.RunFailed {
		headline = alertStyle.Render(fmt.Sprintf(
			"TONTINE FAILED in month %d: %d active members, below the minimum", r.FailedAt, state.ActiveCount()))
	} else {
		headline = goodStyle.Render(fmt.Sprintf("Simulation completed after %d months", r.MonthsRun))
	}

	var exited int
	for _, e := range r.Timeline {
		if e.Exit != nil {
			exited++
		}
	}
	recovery := "n/a"
	if state.TotalLoansOutstanding > 0 {
		recovery = percent(state.LoanRecoveryRate)
	}

	stats := newTable("Statistic", "Value").Rows(
		[]string{"Outcome", string(r.Outcome)},
		[]string{"Months run", fmt.Sprint(r.MonthsRun)},
		[]string{"Final date", state.CurrentDate.Format(dateLayout)},
		[]string{"Cycle", fmt.Sprint(state.CycleNumber)},
		[]string{"Active members", fmt.Sprint(state.ActiveCount())},
		[]string{"Members admitted", fmt.Sprint(state.TotalAdmitted)},
		[]string{"Members exited", fmt.Sprint(exited)},
		[]string{"Treasury", money(state.TreasuryBalance)},
		[]string{"Emergency fund", money(state.EmergencyFund)},
		[]string{"Loans outstanding", money(state.TotalLoansOutstanding)},
		[]string{"Contributions received", money(state.TotalContributionsReceived)},
		[]string{"Interest earned", money(state.TotalInterestEarned)},
		[]string{"Default rate", percent(state.DefaultRate)},
		[]string{"Recovery rate", recovery},
	)
	return lipgloss.JoinVertical(lipgloss.Left, headline, stats.Render())
}
