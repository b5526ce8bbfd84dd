package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/coach"
	"Bingo2Gether/internal/couple"
	"Bingo2Gether/internal/game"
	"Bingo2Gether/internal/ledger"
	"Bingo2Gether/internal/model"
	"Bingo2Gether/internal/notifier"
)

// Scheduler runs the couple's reminders and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Manager   *couple.Manager
	Coach     *coach.Coach
	Notifier  notifier.Notifier
	Clock     game.Clock
	Threshold time.Duration
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, m *couple.Manager, c *coach.Coach, n notifier.Notifier, threshold time.Duration) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Manager:   m,
		Coach:     c,
		Notifier:  n,
		Clock:     game.RealClock{},
		Threshold: threshold,
		Ctx:       ctx,
	}
}

// RegisterAll registers the ritual, inactivity and monthly tasks.
func (s *Scheduler) RegisterAll(ritualCron, inactivityCron, monthlyCron string) error {
	if _, err := s.Cron.AddFunc(ritualCron, s.ritualTask); err != nil {
		return fmt.Errorf("register ritual task: %w", err)
	}
	if _, err := s.Cron.AddFunc(inactivityCron, s.inactivityTask); err != nil {
		return fmt.Errorf("register inactivity task: %w", err)
	}
	if _, err := s.Cron.AddFunc(monthlyCron, s.monthlyTask); err != nil {
		return fmt.Errorf("register monthly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunChecksNow runs the inactivity check immediately (RUN_ON_START).
func (s *Scheduler) RunChecksNow() {
	s.inactivityTask()
}

// ritualTask fires daily and only reminds on the couple's ritual weekday.
func (s *Scheduler) ritualTask() {
	st := s.Manager.State()
	if st.Phase() != model.PhaseActive {
		return
	}
	if s.Clock.Now().Weekday() != st.Settings.RitualDay {
		return
	}
	log.Println("[INFO] running ritual reminder")
	pc, err := s.Manager.Pace()
	if err != nil {
		log.Printf("[ERROR] ritual pace: %v", err)
		return
	}
	s.notifyBoth("Ritual day", notifier.FormatRitualReminder(st, pc))
}

func (s *Scheduler) inactivityTask() {
	log.Println("[INFO] running inactivity check")
	raised, err := s.Manager.RefreshSurvival(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] inactivity check: %v", err)
		return
	}
	if raised {
		s.notifyBoth("We miss you", notifier.FormatSurvival(s.Manager.State(), s.Threshold))
	}
}

func (s *Scheduler) monthlyTask() {
	st := s.Manager.State()
	if st.Phase() != model.PhaseActive {
		return
	}
	log.Println("[INFO] running monthly reminder")
	s.notifyBoth("Monthly draw", notifier.FormatMonthlyReminder(st))
}

// notifyBoth sends to p1 and, when partners have separate chats, to p2.
func (s *Scheduler) notifyBoth(title, body string) {
	for _, id := range []model.PlayerID{model.P1, model.P2} {
		if err := s.Notifier.Notify(s.Ctx, string(id), title, body); err != nil {
			log.Printf("[ERROR] notify %s: %v", id, err)
		}
		if tn, ok := s.Notifier.(*notifier.TelegramNotifier); ok && tn.UserChat[string(model.P2)] == "" {
			return
		}
	}
}

const helpText = "Commands:\n" +
	"• /setup &lt;p1&gt; &lt;p2&gt; &lt;goal&gt; &lt;months&gt; [income1 income2]\n" +
	"• /status\n" +
	"• /draw (monthly batch)\n" +
	"• /single [p1|p2]\n" +
	"• /undo\n" +
	"• /penalty p1|p2\n" +
	"• /extra &lt;amount&gt;\n" +
	"• /deadline &lt;months&gt;\n" +
	"• /income &lt;p1&gt; &lt;p2&gt;\n" +
	"• /skin &lt;name&gt;\n" +
	"• /cards\n" +
	"• /batch\n" +
	"• /tip\n" +
	"• /challenge\n" +
	"• /resolve p1|p2 financial|task\n" +
	"• /reset\n" +
	"• /deletegame confirm"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram appends the bot name in groups: /draw@bingo_bot.
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]
	ctx := s.Ctx

	switch cmd {
	case "/setup":
		in, err := parseSetup(args)
		if err != nil {
			return replyError(err)
		}
		res, err := s.Manager.Setup(ctx, in)
		if err != nil {
			return replyError(err)
		}
		return fmt.Sprintf("✅ Game ready: %d numbers, %d per month until %s.",
			res.State.Settings.MaxNumber, res.State.Settings.MonthlyTarget, res.State.TargetDate.Display())
	case "/status":
		return s.status()
	case "/draw":
		return s.draw("batch", func() (game.Result, error) { return s.Manager.BatchDraw(ctx) })
	case "/single":
		var player model.PlayerID
		if len(args) > 0 {
			player = model.PlayerID(strings.ToLower(args[0]))
		}
		return s.draw("single", func() (game.Result, error) { return s.Manager.SingleDraw(ctx, player) })
	case "/undo":
		return s.draw("undo", func() (game.Result, error) { return s.Manager.Undo(ctx) })
	case "/penalty":
		if len(args) != 1 {
			return "Usage: /penalty p1|p2"
		}
		loser := model.PlayerID(strings.ToLower(args[0]))
		return s.draw("penalty", func() (game.Result, error) { return s.Manager.Penalty(ctx, loser) })
	case "/extra":
		if len(args) != 1 {
			return "Usage: /extra &lt;amount&gt;"
		}
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return replyError(fmt.Errorf("%w: amount %q", model.ErrInvalidArgument, args[0]))
		}
		return s.draw("extra", func() (game.Result, error) { return s.Manager.ExtraValuePayoff(ctx, amount) })
	case "/deadline":
		if len(args) != 1 {
			return "Usage: /deadline &lt;months&gt;"
		}
		months, err := strconv.Atoi(args[0])
		if err != nil {
			return replyError(fmt.Errorf("%w: months %q", model.ErrInvalidArgument, args[0]))
		}
		res, err := s.Manager.UpdateDeadline(ctx, months)
		if err != nil {
			return replyError(err)
		}
		return fmt.Sprintf("📅 New deadline %s, %d numbers per month.", res.State.TargetDate.Display(), res.State.Settings.MonthlyTarget)
	case "/income":
		if len(args) != 2 {
			return "Usage: /income &lt;p1&gt; &lt;p2&gt;"
		}
		i1, err1 := decimal.NewFromString(args[0])
		i2, err2 := decimal.NewFromString(args[1])
		if err1 != nil || err2 != nil {
			return replyError(fmt.Errorf("%w: incomes must be numbers", model.ErrInvalidArgument))
		}
		res, err := s.Manager.UpdateIncomeShares(ctx, i1, i2)
		if err != nil {
			return replyError(err)
		}
		return fmt.Sprintf("⚖️ Shares now %d%% / %d%%.", res.State.Players.P1.IncomeShare, res.State.Players.P2.IncomeShare)
	case "/skin":
		if len(args) != 1 {
			return "Usage: /skin &lt;name&gt;"
		}
		if _, err := s.Manager.SetSkin(ctx, args[0]); err != nil {
			return replyError(err)
		}
		return "🎨 Skin updated."
	case "/cards":
		return notifier.FormatCards(s.Manager.Cards(), s.Manager.CardSize())
	case "/batch":
		st := s.Manager.State()
		b, ok := ledger.LatestBatch(st.History)
		if !ok {
			return "No monthly draw yet."
		}
		return notifier.FormatBatch(st, b)
	case "/tip":
		return s.tip()
	case "/challenge":
		return s.challenge()
	case "/resolve":
		if len(args) != 2 {
			return "Usage: /resolve p1|p2 financial|task"
		}
		loser := model.PlayerID(strings.ToLower(args[0]))
		option := model.ChallengeOption(strings.ToLower(args[1]))
		res, err := s.Manager.ResolveChallenge(ctx, loser, option)
		if err != nil {
			return replyError(err)
		}
		if option == model.OptionTask {
			return fmt.Sprintf("🧹 %s takes the task. Have fun!", res.State.Players.Get(loser).Name)
		}
		return notifier.FormatDraw("penalty", res)
	case "/deletegame":
		if len(args) != 1 || args[0] != "confirm" {
			return "This erases the game and its history. Send /deletegame confirm to continue."
		}
		if err := s.Manager.DeleteGame(ctx); err != nil {
			return replyError(err)
		}
		return "🗑 Game deleted. Use /setup to start again."
	case "/reset":
		if _, err := s.Manager.Reset(ctx); err != nil {
			return replyError(err)
		}
		return "🔄 Game reset. Use /setup to start again."
	default:
		return helpText
	}
}

func (s *Scheduler) status() string {
	st := s.Manager.State()
	if !st.IsSetup {
		return "No game yet.\n\n" + helpText
	}
	p, err := s.Manager.Progress()
	if err != nil {
		return replyError(err)
	}
	pc, err := s.Manager.Pace()
	if err != nil {
		return replyError(err)
	}
	return notifier.FormatStatus(st, p, pc, s.Manager.Turn())
}

func (s *Scheduler) draw(op string, fn func() (game.Result, error)) string {
	res, err := fn()
	if err != nil {
		return replyError(err)
	}
	return notifier.FormatDraw(op, res)
}

func (s *Scheduler) tip() string {
	if s.Coach == nil {
		return "Coach is not configured."
	}
	if _, err := s.Manager.CoachUsed(s.Ctx); err != nil {
		log.Printf("[WARN] coach usage: %v", err)
	}
	in, err := s.Coach.Tip(s.Ctx, coach.ContextFromState(s.Manager.State()))
	if err != nil {
		log.Printf("[ERROR] coach tip: %v", err)
		return "The coach is unavailable right now."
	}
	return notifier.FormatIncentive(in)
}

func (s *Scheduler) challenge() string {
	if s.Coach == nil {
		return "Coach is not configured."
	}
	uses, err := s.Manager.CoachUsed(s.Ctx)
	if err != nil {
		log.Printf("[WARN] coach usage: %v", err)
	}
	ch, err := s.Coach.Challenge(s.Ctx, coach.ContextFromState(s.Manager.State()))
	if err != nil {
		log.Printf("[ERROR] coach challenge: %v", err)
		return "The coach is unavailable right now."
	}
	return notifier.FormatChallenge(ch, uses)
}

// parseSetup reads "/setup <p1> <p2> <goal> <months> [income1 income2]".
func parseSetup(args []string) (game.SetupInput, error) {
	if len(args) != 4 && len(args) != 6 {
		return game.SetupInput{}, fmt.Errorf("%w: usage /setup <p1> <p2> <goal> <months> [income1 income2]", model.ErrInvalidArgument)
	}
	goal, err := decimal.NewFromString(args[2])
	if err != nil {
		return game.SetupInput{}, fmt.Errorf("%w: goal %q", model.ErrInvalidArgument, args[2])
	}
	months, err := strconv.Atoi(args[3])
	if err != nil {
		return game.SetupInput{}, fmt.Errorf("%w: months %q", model.ErrInvalidArgument, args[3])
	}
	in := game.SetupInput{
		P1:             game.PlayerInput{Name: args[0]},
		P2:             game.PlayerInput{Name: args[1]},
		TotalBingoGoal: goal,
		DeadlineMonths: months,
		RitualDay:      time.Sunday,
	}
	if len(args) == 6 {
		if in.P1.Income, err = decimal.NewFromString(args[4]); err != nil {
			return game.SetupInput{}, fmt.Errorf("%w: income %q", model.ErrInvalidArgument, args[4])
		}
		if in.P2.Income, err = decimal.NewFromString(args[5]); err != nil {
			return game.SetupInput{}, fmt.Errorf("%w: income %q", model.ErrInvalidArgument, args[5])
		}
	}
	return in, nil
}

// replyError turns a domain error into a chat reply.
func replyError(err error) string {
	msg := html.EscapeString(err.Error())
	switch {
	case errors.Is(err, model.ErrPreconditionViolation):
		return "⛔ Not possible right now: " + msg
	case errors.Is(err, model.ErrInsufficientPool):
		return "💸 " + msg
	case errors.Is(err, model.ErrInvalidConfiguration), errors.Is(err, model.ErrInvalidArgument):
		return "❓ " + msg
	default:
		log.Printf("[ERROR] command failed: %v", err)
		return "❌ Something went wrong, please try again."
	}
}
