package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/calculator"
	"Bingo2Gether/internal/game"
	"Bingo2Gether/internal/ledger"
	"Bingo2Gether/internal/model"
	"Bingo2Gether/internal/pace"
)

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func name(state model.GameState, id model.PlayerID) string {
	n := state.Players.Get(id).Name
	if n == "" {
		n = string(id)
	}
	return html.EscapeString(n)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

// FormatStatus formats the progress overview of the couple.
func FormatStatus(state model.GameState, p calculator.Progress, pc pace.Pace, turn model.PlayerID) string {
	var b strings.Builder
	title := "Bingo2Gether"
	if state.Settings.CustomGoalName != "" {
		title = html.EscapeString(state.Settings.CustomGoalName)
	}
	b.WriteString(fmt.Sprintf("🎯 <b>%s</b> | %s\n\n", title, time.Now().Format("02/01/2006")))
	b.WriteString(fmt.Sprintf("Saved: %s of %s (%.1f%%)\n", money(p.TotalSaved), money(p.TotalGoal), p.Percent))
	b.WriteString(fmt.Sprintf("Remaining: %s\n", money(p.Remaining)))
	b.WriteString(fmt.Sprintf("Numbers left: %d of %d\n", len(state.AvailableNumbers), state.Settings.MaxNumber))
	b.WriteString(fmt.Sprintf("Deadline: %s (%d months)\n\n", state.TargetDate.Display(), state.Settings.DeadlineMonths))

	b.WriteString(fmt.Sprintf("📈 <b>Pace:</b> %s (expected %.1f%%, %+.1f)\n", pc.Tier.Label, pc.ExpectedPercent, pc.Delta))
	b.WriteString(fmt.Sprintf("   %s\n", pc.Tier.Advice))
	b.WriteString(fmt.Sprintf("   Suggested draws: %d\n", pc.SuggestedDraws))
	if pc.Survival {
		b.WriteString("   ⚠️ Survival mode is on\n")
	}

	b.WriteString(fmt.Sprintf("\n👫 %s: %d (%d%%) | %s: %d (%d%%)\n",
		name(state, model.P1), state.Players.P1.TotalContributed, state.Players.P1.IncomeShare,
		name(state, model.P2), state.Players.P2.TotalContributed, state.Players.P2.IncomeShare))
	b.WriteString(fmt.Sprintf("🔥 Streak: %d | Next single draw: %s\n", state.Retention.CoupleStreak, name(state, turn)))
	return b.String()
}

// FormatDraw formats the outcome of a draw, penalty, payoff or undo.
func FormatDraw(op string, res game.Result) string {
	var b strings.Builder
	switch op {
	case "undo":
		b.WriteString("↩️ <b>Undone</b>\n")
	case "penalty":
		b.WriteString(fmt.Sprintf("⚖️ <b>Penalty for %s</b>\n", name(res.State, res.Player)))
	case "extra":
		b.WriteString("💸 <b>Extra payoff</b>\n")
	case "single":
		b.WriteString(fmt.Sprintf("🎲 <b>%s drew</b>\n", name(res.State, res.Player)))
	default:
		b.WriteString("🎲 <b>Monthly draw</b>\n")
	}

	switch {
	case op == "undo" && len(res.Drawn) > 0:
		b.WriteString(fmt.Sprintf("  Returned: %s\n", joinInts(res.Drawn)))
	case len(res.Transactions) > 0:
		var sum int64
		for _, tx := range res.Transactions {
			sum += int64(tx.Number)
			b.WriteString(fmt.Sprintf("  %d → %s\n", tx.Number, name(res.State, tx.PlayerID)))
		}
		b.WriteString(fmt.Sprintf("  Total: %s\n", money(decimal.NewFromInt(sum))))
	default:
		b.WriteString("  Nothing changed\n")
	}

	if res.Bingo {
		b.WriteString(fmt.Sprintf("\n🎉 <b>BINGO!</b> Card(s) %s complete\n", joinInts(res.NewCards)))
		if res.Reward != "" {
			b.WriteString(fmt.Sprintf("🎁 Reward: %s\n", html.EscapeString(res.Reward)))
		}
	}
	if res.State.Phase() == model.PhaseCompleted {
		b.WriteString("\n🏁 <b>Goal reached!</b> Every number has been drawn.\n")
	}
	return b.String()
}

// FormatCards formats the derived bingo cards.
func FormatCards(cs []model.BingoCard, size int) string {
	var b strings.Builder
	done := 0
	for _, c := range cs {
		if c.IsComplete {
			done++
		}
	}
	b.WriteString(fmt.Sprintf("🃏 <b>Cards</b> %d/%d complete\n\n", done, len(cs)))
	for _, c := range cs {
		mark := "⬜"
		if c.IsComplete {
			mark = "✅"
		}
		first, last := 0, 0
		if len(c.Numbers) > 0 {
			first, last = c.Numbers[0], c.Numbers[len(c.Numbers)-1]
		}
		b.WriteString(fmt.Sprintf("%s #%d (%d-%d)\n", mark, c.ID, first, last))
	}
	if size > 0 {
		b.WriteString(fmt.Sprintf("\nCard size: %d\n", size))
	}
	return b.String()
}

// FormatBatch formats the deposit instructions of a monthly batch.
func FormatBatch(state model.GameState, batch ledger.Batch) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧾 <b>Deposit for %s</b>\n\n", batch.Date.Display()))
	b.WriteString(fmt.Sprintf("%s: %s (%s)\n", name(state, model.P1), money(decimal.NewFromInt(batch.P1Sum)), joinInts(batch.P1Numbers)))
	b.WriteString(fmt.Sprintf("%s: %s (%s)\n", name(state, model.P2), money(decimal.NewFromInt(batch.P2Sum)), joinInts(batch.P2Numbers)))
	b.WriteString(fmt.Sprintf("Total: %s\n", money(decimal.NewFromInt(batch.Total()))))
	return b.String()
}

// FormatIncentive formats a coach tip.
func FormatIncentive(in model.Incentive) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💡 <b>%s</b>\n\n", html.EscapeString(in.Title)))
	b.WriteString(html.EscapeString(in.PracticalTip) + "\n\n")
	if in.BingoImpact != "" {
		b.WriteString(fmt.Sprintf("🎲 %s\n", html.EscapeString(in.BingoImpact)))
	}
	if in.TimeImpact != "" {
		b.WriteString(fmt.Sprintf("⏱ %s\n", html.EscapeString(in.TimeImpact)))
	}
	return b.String()
}

// FormatChallenge formats a coach challenge with the loser's options.
func FormatChallenge(c model.Challenge, coachUses int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏆 <b>%s</b>\n\n", html.EscapeString(c.Title)))
	b.WriteString(html.EscapeString(c.Description) + "\n")
	b.WriteString(fmt.Sprintf("Win: %s\n\n", html.EscapeString(c.VictoryCriteria)))
	b.WriteString("<b>The loser picks:</b>\n")
	b.WriteString(fmt.Sprintf("  💰 %s\n", html.EscapeString(c.FinancialOption)))
	b.WriteString(fmt.Sprintf("  🧹 %s\n", html.EscapeString(c.TaskOption)))
	b.WriteString("\nResolve with /resolve p1|p2 financial|task\n")
	if coachUses > 0 {
		b.WriteString(fmt.Sprintf("Coach used %d time(s) this month\n", coachUses))
	}
	return b.String()
}

// FormatRitualReminder formats the weekly ritual reminder.
func FormatRitualReminder(state model.GameState, pc pace.Pace) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("It's ritual day, %s and %s!\n", name(state, model.P1), name(state, model.P2)))
	b.WriteString(fmt.Sprintf("%d numbers left. Pace: %s.\n", len(state.AvailableNumbers), pc.Tier.Label))
	b.WriteString(fmt.Sprintf("Suggested draws: %d. Use /single to draw.\n", pc.SuggestedDraws))
	return b.String()
}

// FormatSurvival formats the inactivity nudge.
func FormatSurvival(state model.GameState, threshold time.Duration) string {
	days := int(threshold.Hours() / 24)
	return fmt.Sprintf("%s, %s: nobody has played for over %d days. Survival mode is on and the plan is halved "+
		"until your next draw.\n", name(state, model.P1), name(state, model.P2), days)
}

// FormatMonthlyReminder formats the monthly batch reminder.
func FormatMonthlyReminder(state model.GameState) string {
	return fmt.Sprintf("New month! Time for the monthly draw of %d numbers. Use /draw.\n", state.Settings.MonthlyTarget)
}
