package notifier

import (
	"fmt"
	"strings"

	"TontineSim/internal/model"
)

// FormatRunResult formats a finished scheduled run into a Telegram message.
func FormatRunResult(r *model.RunResult) string {
	var b strings.Builder

	icon := "✅"
	if r.Outcome == model.RunFailed {
		icon = "❌"
	}
	b.WriteString(fmt.Sprintf("%s <b>Tontine run %s</b> | %s\n\n", icon, r.Outcome, r.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Run: <code>%s</code> (seed %d)\n", r.RunID, r.Seed))
	b.WriteString(fmt.Sprintf("Months simulated: %d\n", r.MonthsRun))
	b.WriteString(fmt.Sprintf("Active members: %d of %d admitted\n", r.ActiveMembers, r.TotalAdmitted))
	b.WriteString(fmt.Sprintf("Treasury: %.2f\n", r.Treasury))
	b.WriteString(fmt.Sprintf("Emergency fund: %.2f\n", r.EmergencyFund))
	return b.String()
}

// FormatHelp lists the commands the bot answers.
func FormatHelp() string {
	return "Available commands:\n• /latest: last finished run\n• /run: start a run now"
}
