package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/visioncrafter/internal/model"
)

type countingGateway struct {
	calls []time.Time
}

func (g *countingGateway) Complete(_ context.Context, _ []model.Message, _ model.TokenObserver) (model.Completion, error) {
	g.calls = append(g.calls, time.Now())
	return model.Completion{Text: "ok"}, nil
}

func TestDryRun_FirstAnswerIsTitle(t *testing.T) {
	g := NewDryRunGateway()
	var tokens []string
	got, err := g.Complete(context.Background(), testHistory, func(tok string) { tokens = append(tokens, tok) })
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Text != "Dry Run Role" {
		t.Errorf("Text = %q, want Dry Run Role", got.Text)
	}
	if strings.Join(tokens, "") != got.Text {
		t.Errorf("streamed %q, returned %q", strings.Join(tokens, ""), got.Text)
	}
}

func TestDryRun_LaterAnswersEchoPrompt(t *testing.T) {
	history := append(append([]model.Message{}, testHistory...),
		model.AssistantMessage("Dry Run Role"),
		model.HumanMessage("What are the Priorities for the Dry Run Role?"),
	)
	got, err := NewDryRunGateway().Complete(context.Background(), history, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Text != "(dry run) What are the Priorities for the Dry Run Role?" {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestDryRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDryRunGateway().Complete(ctx, testHistory, nil)
	if !model.IsTransient(err) {
		t.Fatalf("err = %v, want TransientServiceError", err)
	}
}

func TestThrottle_ZeroDelayPassesThrough(t *testing.T) {
	inner := &countingGateway{}
	g := NewThrottledGateway(inner, 0)
	for i := 0; i < 3; i++ {
		if _, err := g.Complete(context.Background(), testHistory, nil); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}
	if len(inner.calls) != 3 {
		t.Errorf("calls = %d, want 3", len(inner.calls))
	}
}

func TestThrottle_EnforcesMinDelay(t *testing.T) {
	inner := &countingGateway{}
	g := NewThrottledGateway(inner, 50*time.Millisecond)

	_, _ = g.Complete(context.Background(), testHistory, nil)
	_, _ = g.Complete(context.Background(), testHistory, nil)

	if len(inner.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(inner.calls))
	}
	if gap := inner.calls[1].Sub(inner.calls[0]); gap < 40*time.Millisecond {
		t.Errorf("gap between calls = %v, want >= ~50ms", gap)
	}
}

func TestThrottle_CancelledWhileWaiting(t *testing.T) {
	inner := &countingGateway{}
	g := NewThrottledGateway(inner, time.Hour)
	_, _ = g.Complete(context.Background(), testHistory, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Complete(ctx, testHistory, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if len(inner.calls) != 1 {
		t.Errorf("inner called %d times, want 1", len(inner.calls))
	}
}
