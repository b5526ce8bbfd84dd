// Package coach provides saving tips and couple challenges, from Gemini when configured
// and from a built-in pool otherwise.
package coach

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/calculator"
	"Bingo2Gether/internal/model"
)

// ErrNoCredentials is returned by providers that need an API key they were not given.
var ErrNoCredentials = errors.New("coach: missing API credentials")

// Context is what a provider knows about the couple.
type Context struct {
	P1Name           string
	P2Name           string
	TotalGoal        decimal.Decimal
	DeadlineMonths   int
	TotalNumbers     int
	RemainingNumbers int
	ProgressPercent  float64
	Objective        string
}

// ContextFromState builds a Context from a game state.
func ContextFromState(st model.GameState) Context {
	c := Context{
		P1Name:           st.Players.P1.Name,
		P2Name:           st.Players.P2.Name,
		TotalGoal:        st.Settings.TotalGoal(),
		DeadlineMonths:   st.Settings.DeadlineMonths,
		TotalNumbers:     st.Settings.MaxNumber,
		RemainingNumbers: len(st.AvailableNumbers),
		Objective:        st.Settings.CustomGoalName,
	}
	if p, err := calculator.ComputeProgress(st); err == nil {
		c.ProgressPercent = p.Percent
	}
	return c
}

// Provider produces coach content. recent holds titles the couple saw lately, oldest first.
type Provider interface {
	Incentive(ctx context.Context, c Context, recent []string) (model.Incentive, error)
	Challenge(ctx context.Context, c Context, recent []string) (model.Challenge, error)
	Name() string
}

// DefaultRecent is how many titles are kept for anti-repetition.
const DefaultRecent = 10

// Coach wraps a Provider and remembers recently shown titles.
type Coach struct {
	provider Provider
	size     int

	mu         sync.Mutex
	incentives []string
	challenges []string
}

// New creates a Coach over p keeping size recent titles per kind.
func New(p Provider, size int) *Coach {
	if size <= 0 {
		size = DefaultRecent
	}
	return &Coach{provider: p, size: size}
}

// Tip returns a saving tip that was not among the recent ones.
func (c *Coach) Tip(ctx context.Context, cc Context) (model.Incentive, error) {
	c.mu.Lock()
	recent := append([]string(nil), c.incentives...)
	c.mu.Unlock()

	inc, err := c.provider.Incentive(ctx, cc, recent)
	if err != nil {
		return model.Incentive{}, err
	}
	c.mu.Lock()
	c.incentives = remember(c.incentives, inc.Title, c.size)
	c.mu.Unlock()
	return inc, nil
}

// Challenge returns a new couple challenge.
func (c *Coach) Challenge(ctx context.Context, cc Context) (model.Challenge, error) {
	c.mu.Lock()
	recent := append([]string(nil), c.challenges...)
	c.mu.Unlock()

	ch, err := c.provider.Challenge(ctx, cc, recent)
	if err != nil {
		return model.Challenge{}, err
	}
	c.mu.Lock()
	c.challenges = remember(c.challenges, ch.Title, c.size)
	c.mu.Unlock()
	return ch, nil
}

func remember(titles []string, title string, size int) []string {
	titles = append(titles, title)
	if len(titles) > size {
		titles = titles[len(titles)-size:]
	}
	return titles
}
