package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Bingo2Gether/internal/calculator"
	"Bingo2Gether/internal/game"
	"Bingo2Gether/internal/ledger"
	"Bingo2Gether/internal/model"
	"Bingo2Gether/internal/pace"
)

type sent struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func telegramServer(t *testing.T, failures int) (*httptest.Server, *[]sent) {
	t.Helper()
	var mu sync.Mutex
	var got []sent
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= failures {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		assert.True(t, strings.HasSuffix(r.URL.Path, "/botTOKEN/sendMessage"), r.URL.Path)
		var msg sent
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		got = append(got, msg)
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func testNotifier(base string) *TelegramNotifier {
	tn := NewTelegramNotifier("TOKEN", "100", "")
	tn.APIBase = base
	tn.Backoff = time.Millisecond
	return tn
}

func TestNotify_RoutesToPrivateChat(t *testing.T) {
	srv, got := telegramServer(t, 0)
	tn := testNotifier(srv.URL)
	tn.UserChat["p2"] = "200"

	require.NoError(t, tn.Notify(context.Background(), "p2", "Ritual <day>", "draw now"))
	require.NoError(t, tn.Notify(context.Background(), "p1", "", "plain"))

	require.Len(t, *got, 2)
	assert.Equal(t, "200", (*got)[0].ChatID)
	assert.Equal(t, "<b>Ritual &lt;day&gt;</b>\ndraw now", (*got)[0].Text)
	assert.Equal(t, "HTML", (*got)[0].ParseMode)
	assert.Equal(t, "100", (*got)[1].ChatID)
	assert.Equal(t, "plain", (*got)[1].Text)
}

func TestNotify_RetriesThenSucceeds(t *testing.T) {
	srv, got := telegramServer(t, 2)
	tn := testNotifier(srv.URL)

	require.NoError(t, tn.Notify(context.Background(), "p1", "t", "b"))
	assert.Len(t, *got, 1)
}

func TestNotify_GivesUp(t *testing.T) {
	srv, got := telegramServer(t, 10)
	tn := testNotifier(srv.URL)
	tn.Retries = 1

	err := tn.Notify(context.Background(), "p1", "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
	assert.Empty(t, *got)
}

func TestNotify_NoChat(t *testing.T) {
	tn := NewTelegramNotifier("TOKEN", "", "")
	assert.Error(t, tn.Notify(context.Background(), "p1", "t", "b"))
}

func TestPoll_RepliesToSender(t *testing.T) {
	var mu sync.Mutex
	var replies []sent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if strings.HasSuffix(r.URL.Path, "/getUpdates") {
			assert.Equal(t, "5", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"ok":true,"result":[{"update_id":5,"message":{"text":" /status ","chat":{"id":42}}},{"update_id":6}]}`))
			return
		}
		var msg sent
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		replies = append(replies, msg)
	}))
	defer srv.Close()

	tn := testNotifier(srv.URL)
	var commands []string
	next, err := tn.poll(context.Background(), srv.Client(), 5, func(cmd string) string {
		commands = append(commands, cmd)
		return "ok: " + cmd
	})
	require.NoError(t, err)
	assert.Equal(t, 7, next)
	assert.Equal(t, []string{"/status"}, commands)
	require.Len(t, replies, 1)
	assert.Equal(t, "42", replies[0].ChatID)
	assert.Equal(t, "ok: /status", replies[0].Text)
}

func sampleState() model.GameState {
	return model.GameState{
		AvailableNumbers: []int{1, 2, 3},
		DrawnNumbers:     []int{5, 4},
		Players: model.Players{
			P1: model.Player{Name: "Ana", IncomeShare: 60, TotalContributed: 5},
			P2: model.Player{Name: "Bruno & co", IncomeShare: 40, TotalContributed: 4},
		},
		Settings: model.Settings{
			MaxNumber:      5,
			TotalBingoGoal: decimal.NewFromInt(15),
			DeadlineMonths: 6,
			MonthlyTarget:  2,
		},
		IsSetup:    true,
		TargetDate: model.Date{Year: 2024, Month: time.July, Day: 1},
	}
}

func TestFormatStatus(t *testing.T) {
	st := sampleState()
	p := calculator.Progress{
		TotalSaved: decimal.NewFromInt(9),
		TotalGoal:  decimal.NewFromInt(15),
		Percent:    60,
		Remaining:  decimal.NewFromInt(6),
	}
	pc := pace.Pace{ExpectedPercent: 50, Delta: 10, Tier: pace.Tiers[0].Tier, SuggestedDraws: 2, Survival: true}

	msg := FormatStatus(st, p, pc, model.P2)
	assert.Contains(t, msg, "Saved: $9.00 of $15.00 (60.0%)")
	assert.Contains(t, msg, "Numbers left: 3 of 5")
	assert.Contains(t, msg, "Deadline: 01/07/2024")
	assert.Contains(t, msg, "Ahead")
	assert.Contains(t, msg, "Survival mode")
	assert.Contains(t, msg, "Next single draw: Bruno &amp; co")
}

func TestFormatDraw(t *testing.T) {
	st := sampleState()
	res := game.Result{
		State:  st,
		Drawn:  []int{5, 4},
		Player: model.P1,
		Transactions: []model.Transaction{
			{Number: 5, PlayerID: model.P1},
			{Number: 4, PlayerID: model.P2},
		},
		Bingo:    true,
		NewCards: []int{1},
		Reward:   "Movie night",
	}
	msg := FormatDraw("batch", res)
	assert.Contains(t, msg, "Monthly draw")
	assert.Contains(t, msg, "5 → Ana")
	assert.Contains(t, msg, "Total: $9.00")
	assert.Contains(t, msg, "BINGO!")
	assert.Contains(t, msg, "Movie night")

	undo := FormatDraw("undo", game.Result{State: st, Drawn: []int{5}, Transactions: []model.Transaction{{Number: 5, PlayerID: model.P1}}})
	assert.Contains(t, undo, "Returned: 5")

	st.AvailableNumbers = nil
	done := FormatDraw("single", game.Result{State: st, Player: model.P1, Transactions: []model.Transaction{{Number: 3, PlayerID: model.P1}}})
	assert.Contains(t, done, "Ana drew")
	assert.Contains(t, done, "Goal reached")
}

func TestFormatCardsAndBatch(t *testing.T) {
	cs := []model.BingoCard{
		{ID: 1, Numbers: []int{1, 2, 3}, IsComplete: true},
		{ID: 2, Numbers: []int{4, 5}},
	}
	msg := FormatCards(cs, 3)
	assert.Contains(t, msg, "1/2 complete")
	assert.Contains(t, msg, "✅ #1 (1-3)")
	assert.Contains(t, msg, "⬜ #2 (4-5)")

	b := ledger.Batch{
		Date:      model.Date{Year: 2024, Month: time.March, Day: 9},
		P1Numbers: []int{1, 7},
		P2Numbers: []int{3},
		P1Sum:     8,
		P2Sum:     3,
	}
	out := FormatBatch(sampleState(), b)
	assert.Contains(t, out, "Deposit for 09/03/2024")
	assert.Contains(t, out, "Ana: $8.00 (1, 7)")
	assert.Contains(t, out, "Total: $11.00")
}

func TestFormatCoach(t *testing.T) {
	in := FormatIncentive(model.Incentive{Title: "Cook <in>", PracticalTip: "Batch cook", BingoImpact: "2 chips"})
	assert.Contains(t, in, "Cook &lt;in&gt;")
	assert.Contains(t, in, "2 chips")
	assert.NotContains(t, in, "⏱")

	ch := FormatChallenge(model.Challenge{Title: "No delivery", FinancialOption: "Draw a chip", TaskOption: "Dishes"}, 2)
	assert.Contains(t, ch, "Draw a chip")
	assert.Contains(t, ch, "/resolve")
	assert.Contains(t, ch, "2 time(s)")
}

func TestFormatReminders(t *testing.T) {
	st := sampleState()
	assert.Contains(t, FormatRitualReminder(st, pace.Pace{Tier: pace.DefaultTier, SuggestedDraws: 4}), "Suggested draws: 4")
	assert.Contains(t, FormatSurvival(st, 14*24*time.Hour), "over 14 days")
	assert.Contains(t, FormatMonthlyReminder(st), "2 numbers")
}
