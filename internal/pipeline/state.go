package pipeline

import "github.com/amishk599/visioncrafter/internal/session"

// Status is the coarse position of a session in the pipeline.
type Status int

const (
	StatusNotStarted    Status = iota // no seed submitted
	StatusAwaitingInput               // seed, or a stage result, is blank
	StatusPending                     // Progress.Stage is next to run
	StatusComplete                    // every stage has answered
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not started"
	case StatusAwaitingInput:
		return "awaiting input"
	case StatusPending:
		return "pending"
	case StatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Progress reports where the pipeline stands without changing anything.
type Progress struct {
	Status    Status
	Stage     int // index of the pending stage; -1 otherwise
	Completed int // number of stages with an answer
	Assembled bool
}

// Progress evaluates the gating rule read-only.
func (p *Pipeline) Progress() Progress {
	pr := Progress{Stage: -1, Assembled: p.state.Has(session.KeyTranscript)}
	for _, st := range p.stages {
		if p.state.Has(st.ID) {
			pr.Completed++
		}
	}

	for i, st := range p.stages {
		if !p.state.Filled(st.Needs) {
			if i == 0 && !p.state.Has(st.Needs) {
				pr.Status = StatusNotStarted
			} else {
				pr.Status = StatusAwaitingInput
			}
			return pr
		}
		if !p.state.Has(st.ID) {
			pr.Status = StatusPending
			pr.Stage = i
			return pr
		}
	}
	pr.Status = StatusComplete
	return pr
}
