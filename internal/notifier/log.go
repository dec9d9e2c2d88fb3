package notifier

import (
	"log/slog"

	"github.com/amishk599/visioncrafter/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes each assembled document to the given logger as a structured message.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs title, path, model and counters. Returns nil (logging does not fail).
func (n *LogNotifier) Notify(t model.Transcript) error {
	n.logger.Info("document crafted",
		"title", t.Title,
		"path", t.Path,
		"session_id", t.SessionID,
		"model", t.Model,
		"tokens", t.Tokens,
		"cost_usd", t.Cost,
	)
	return nil
}
