package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/amishk599/visioncrafter/internal/model"
)

// Ensure DryRunGateway implements model.ModelGateway.
var _ model.ModelGateway = (*DryRunGateway)(nil)

// DryRunGateway answers every request locally with canned text. It is used
// in --dry-run mode so the whole pipeline can be exercised without an API key.
type DryRunGateway struct {
	Title string
}

// NewDryRunGateway returns a DryRunGateway that names every role "Dry Run Role".
func NewDryRunGateway() *DryRunGateway {
	return &DryRunGateway{Title: "Dry Run Role"}
}

// Complete answers the first question with Title and echoes every later
// prompt, streamed word by word.
func (g *DryRunGateway) Complete(ctx context.Context, history []model.Message, onToken model.TokenObserver) (model.Completion, error) {
	if err := ctx.Err(); err != nil {
		return model.Completion{}, &model.TransientServiceError{Op: "dry run", Err: err}
	}

	var prompt string
	answered := 0
	for _, m := range history {
		switch m.Role {
		case model.RoleHuman:
			prompt = m.Content
		case model.RoleAssistant:
			answered++
		}
	}
	if prompt == "" {
		return model.Completion{}, &model.TransientServiceError{Op: "dry run", Err: fmt.Errorf("no human message in history")}
	}

	text := fmt.Sprintf("(dry run) %s", prompt)
	if answered == 0 {
		// The opening question always asks for the title.
		text = g.Title
	}

	words := strings.SplitAfter(text, " ")
	if onToken != nil {
		for _, w := range words {
			onToken(w)
		}
	}

	prompted := 0
	for _, m := range history {
		prompted += len(strings.Fields(m.Content))
	}
	return model.Completion{
		Text:  text,
		Usage: model.Usage{PromptTokens: prompted, CompletionTokens: len(words)},
	}, nil
}
