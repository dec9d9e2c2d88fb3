// Package pipeline drives the staged conversation: it decides which stage
// may run next, calls the model with the full conversation, records the
// answer, and assembles the document once every stage has answered.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/amishk599/visioncrafter/internal/document"
	"github.com/amishk599/visioncrafter/internal/model"
	"github.com/amishk599/visioncrafter/internal/session"
)

// Assembler persists a finished document and returns its Markdown and path.
type Assembler interface {
	Assemble(doc model.Document) (markdown string, path string, err error)
}

// CostFunc estimates the USD cost of one completion.
type CostFunc func(u model.Usage) float64

// StepKind says what one call to Advance did.
type StepKind int

const (
	StepIdle      StepKind = iota // nothing eligible; no state changed
	StepStage                     // one stage ran and its slot was written
	StepAssembled                 // the document was written
)

// Step describes the outcome of Advance.
type Step struct {
	Kind  StepKind
	Stage Stage
	Text  string
	Usage model.Usage

	Document model.Document
	Markdown string
	Path     string
}

// Pipeline is the state machine over one session. Not safe for concurrent
// use: at most one Advance may be in flight.
type Pipeline struct {
	stages    []Stage
	state     *session.State
	gateway   model.ModelGateway
	assembler Assembler
	cost      CostFunc
	logger    *slog.Logger
}

// New creates a pipeline over state. cost may be nil.
func New(stages []Stage, state *session.State, gateway model.ModelGateway, assembler Assembler, cost CostFunc, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		stages:    stages,
		state:     state,
		gateway:   gateway,
		assembler: assembler,
		cost:      cost,
		logger:    logger,
	}
}

// Stages returns the stage list in order.
func (p *Pipeline) Stages() []Stage { return p.stages }

// Session returns the underlying session state.
func (p *Pipeline) Session() *session.State { return p.state }

// Submit stores the seed description and reports whether it was accepted.
// Blank input is stored too; it simply leaves the first stage ineligible.
// Once any stage has answered the seed is fixed until Reset.
func (p *Pipeline) Submit(seed string) bool {
	for _, st := range p.stages {
		if p.state.Has(st.ID) {
			p.logger.Debug("seed ignored, session already started", "session_id", p.state.ID())
			return false
		}
	}
	p.state.Set(session.KeySeed, seed)
	return true
}

// Reset clears every session slot.
func (p *Pipeline) Reset() {
	p.state.Reset()
	p.logger.Debug("session reset", "session_id", p.state.ID())
}

// Advance runs at most one eligible stage, or assembles the document when
// every stage has answered and nothing has been assembled yet. When nothing
// is eligible it returns StepIdle and changes nothing.
//
// A model failure leaves the stage's slot empty; calling Advance again
// retries the same stage.
func (p *Pipeline) Advance(ctx context.Context, onToken model.TokenObserver) (Step, error) {
	for _, st := range p.stages {
		if !p.state.Filled(st.Needs) {
			return Step{Kind: StepIdle}, nil
		}
		if p.state.Has(st.ID) {
			continue
		}
		return p.runStage(ctx, st, onToken)
	}

	if len(p.stages) == 0 || p.state.Has(session.KeyTranscript) {
		return Step{Kind: StepIdle}, nil
	}
	return p.assemble()
}

// Run calls Advance until the document is assembled, nothing is eligible,
// or an error occurs. onStep, when set, sees every non-idle step.
func (p *Pipeline) Run(ctx context.Context, onToken model.TokenObserver, onStep func(Step)) (Step, error) {
	for {
		step, err := p.Advance(ctx, onToken)
		if err != nil {
			return step, err
		}
		if step.Kind == StepIdle {
			return step, nil
		}
		if onStep != nil {
			onStep(step)
		}
		if step.Kind == StepAssembled {
			return step, nil
		}
	}
}

func (p *Pipeline) runStage(ctx context.Context, st Stage, onToken model.TokenObserver) (Step, error) {
	log := p.logger.With("session_id", p.state.ID(), "stage", st.ID)

	prompt, err := st.Prompt(PromptData{
		Description: p.state.Text(session.KeySeed),
		JobTitle:    p.state.Text(session.KeyJobTitle),
	})
	if err != nil {
		return Step{}, err
	}

	mem := p.state.Memory()
	msg := model.HumanMessage(prompt)
	// A failed call leaves its prompt unanswered at the tail; reuse it
	// instead of asking twice.
	if last, ok := mem.Last(); ok && last == msg {
		log.Debug("reusing unanswered prompt")
	} else if err := mem.Append(msg); err != nil {
		return Step{}, fmt.Errorf("stage %s: %w", st.ID, err)
	}

	log.Info("running stage", "messages", mem.Len())
	completion, err := p.gateway.Complete(ctx, mem.Snapshot(), onToken)
	if err != nil {
		log.Error("stage failed", "error", err)
		return Step{}, fmt.Errorf("stage %s: %w", st.ID, err)
	}

	if err := mem.Append(model.AssistantMessage(completion.Text)); err != nil {
		return Step{}, fmt.Errorf("stage %s: %w", st.ID, err)
	}
	p.state.Set(st.ID, completion.Text)

	var cost float64
	if p.cost != nil {
		cost = p.cost(completion.Usage)
	}
	p.state.AddUsage(completion.Usage.Total(), cost)

	log.Info("stage complete",
		"tokens", completion.Usage.Total(),
		"session_tokens", p.state.Tokens(),
		"session_cost", p.state.Cost(),
	)

	return Step{Kind: StepStage, Stage: st, Text: completion.Text, Usage: completion.Usage}, nil
}

// Document builds the document from the current slots: the seed section
// followed by every stage after the first, in stage order.
func (p *Pipeline) Document() model.Document {
	if len(p.stages) == 0 {
		return model.Document{}
	}
	var sections []model.Section
	for _, st := range p.stages[1:] {
		sections = append(sections, model.Section{Heading: st.Heading, Body: p.state.Text(st.ID)})
	}
	return document.Build(p.state.Text(p.stages[0].ID), p.state.Text(session.KeySeed), sections)
}

func (p *Pipeline) assemble() (Step, error) {
	doc := p.Document()
	markdown, path, err := p.assembler.Assemble(doc)
	if err != nil {
		p.logger.Error("assembly failed", "session_id", p.state.ID(), "error", err)
		return Step{}, err
	}
	p.state.Set(session.KeyTranscript, path)

	p.logger.Info("document assembled", "session_id", p.state.ID(), "title", doc.Title, "path", path)
	return Step{Kind: StepAssembled, Document: doc, Markdown: markdown, Path: path}, nil
}
