package coach

import (
	"context"
	"log"

	"Bingo2Gether/internal/model"
)

// WithFallback returns a provider that prefers primary and falls back on any error.
func WithFallback(primary, fallback Provider) Provider {
	return &fallbackProvider{p: primary, f: fallback}
}

type fallbackProvider struct{ p, f Provider }

func (n *fallbackProvider) Name() string {
	if n.p == nil {
		return n.f.Name()
	}
	return n.p.Name() + "+" + n.f.Name()
}

func (n *fallbackProvider) Incentive(ctx context.Context, c Context, recent []string) (model.Incentive, error) {
	if n.p == nil {
		return n.f.Incentive(ctx, c, recent)
	}
	inc, err := n.p.Incentive(ctx, c, recent)
	if err == nil {
		return inc, nil
	}
	log.Printf("[WARN] %s incentive failed, using %s: %v", n.p.Name(), n.f.Name(), err)
	return n.f.Incentive(ctx, c, recent)
}

func (n *fallbackProvider) Challenge(ctx context.Context, c Context, recent []string) (model.Challenge, error) {
	if n.p == nil {
		return n.f.Challenge(ctx, c, recent)
	}
	ch, err := n.p.Challenge(ctx, c, recent)
	if err == nil {
		return ch, nil
	}
	log.Printf("[WARN] %s challenge failed, using %s: %v", n.p.Name(), n.f.Name(), err)
	return n.f.Challenge(ctx, c, recent)
}
