package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/visioncrafter/internal/model"
)

// ThrottledGateway is a decorator that enforces a minimum delay between
// consecutive completion requests before delegating to the wrapped gateway.
// Failures are passed through untouched; there is no retry.
type ThrottledGateway struct {
	inner    model.ModelGateway
	minDelay time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewThrottledGateway wraps inner. A zero minDelay disables throttling.
func NewThrottledGateway(inner model.ModelGateway, minDelay time.Duration) *ThrottledGateway {
	return &ThrottledGateway{inner: inner, minDelay: minDelay}
}

// Complete waits out the remainder of minDelay since the previous call, then delegates.
func (g *ThrottledGateway) Complete(ctx context.Context, history []model.Message, onToken model.TokenObserver) (model.Completion, error) {
	if err := g.wait(ctx); err != nil {
		return model.Completion{}, &model.TransientServiceError{Op: "throttle", Err: err}
	}
	return g.inner.Complete(ctx, history, onToken)
}

func (g *ThrottledGateway) wait(ctx context.Context) error {
	g.mu.Lock()
	now := time.Now()
	if g.lastCall.IsZero() || now.Sub(g.lastCall) >= g.minDelay {
		g.lastCall = now
		g.mu.Unlock()
		return nil
	}
	remaining := g.minDelay - now.Sub(g.lastCall)
	g.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("throttle wait: %w", ctx.Err())
	case <-time.After(remaining):
	}

	g.mu.Lock()
	g.lastCall = time.Now()
	g.mu.Unlock()
	return nil
}
