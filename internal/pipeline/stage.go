package pipeline

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/amishk599/visioncrafter/internal/session"
)

// Stage is one elicitation step. It runs once Needs holds a non-blank value
// and its own slot is still absent, and writes the model's answer to ID.
type Stage struct {
	ID      session.Key // slot the answer is written to
	Heading string      // section heading in the assembled document
	Needs   session.Key // gating dependency: the predecessor's slot
	prompt  *template.Template
}

// PromptData is what stage prompt templates can refer to.
type PromptData struct {
	Description string // the seed description
	JobTitle    string
}

// Prompt renders the human message for this stage.
func (s Stage) Prompt(data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := s.prompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", s.ID, err)
	}
	return buf.String(), nil
}

type stageSpec struct {
	id      session.Key
	heading string
	prompt  string
}

// The first stage names the document; the rest each become a section.
var defaultSpecs = []stageSpec{
	{session.KeyJobTitle, "Job Title",
		"Suggest a job title for the following basic job description: {{.Description}}.  Only respond with just the job title and no other text."},
	{session.KeyJobDescription, "Job Description",
		"Write a formal Job Description that sets the {{.JobTitle}} up for success."},
	{session.KeyGoalsAndObjectives, "Goals and Objectives",
		"What are the Goals and Objectives for the {{.JobTitle}}?"},
	{session.KeyPriorities, "Priorities",
		"What are the Priorities for the {{.JobTitle}}?"},
	{session.KeySkillsAndCompetencies, "Skills and Competencies",
		"What are the Skills and Competencies for the {{.JobTitle}}?"},
	{session.KeyPerformanceStandards, "Performance Standards",
		"What are the Performance Standards for the {{.JobTitle}}?"},
}

// DefaultStages returns the six job-charter stages in order.
func DefaultStages() []Stage {
	stages, err := NewStages(nil)
	if err != nil {
		panic(err) // built-in templates are constants
	}
	return stages
}

// NewStages builds the default stage list, replacing the prompt template of
// any stage whose ID appears in overrides. Unknown IDs are an error.
func NewStages(overrides map[string]string) ([]Stage, error) {
	known := make(map[string]bool, len(defaultSpecs))
	for _, sp := range defaultSpecs {
		known[string(sp.id)] = true
	}
	for id := range overrides {
		if !known[id] {
			return nil, fmt.Errorf("prompt override for unknown stage %q", id)
		}
	}

	stages := make([]Stage, 0, len(defaultSpecs))
	needs := session.KeySeed
	for _, sp := range defaultSpecs {
		text := sp.prompt
		if o, ok := overrides[string(sp.id)]; ok {
			text = o
		}
		tmpl, err := template.New(string(sp.id)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s prompt: %w", sp.id, err)
		}
		stages = append(stages, Stage{ID: sp.id, Heading: sp.heading, Needs: needs, prompt: tmpl})
		needs = sp.id
	}
	return stages, nil
}
