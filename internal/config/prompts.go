package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/amishk599/visioncrafter/internal/model"
)

//go:embed templates/prompts.json
var defaultPromptsRaw []byte

//go:embed templates/visioncrafter.yaml
var exampleConfigRaw []byte

// Prompts is the content of the prompts file. System opens every
// conversation; Stages optionally overrides stage prompt templates by stage ID.
type Prompts struct {
	System string            `json:"System"`
	Stages map[string]string `json:"Stages,omitempty"`
}

// DefaultPromptsJSON returns the bundled prompts file, as written by `init`.
func DefaultPromptsJSON() []byte {
	return append([]byte(nil), defaultPromptsRaw...)
}

// ExampleConfigYAML returns the bundled example config, as written by `init`.
func ExampleConfigYAML() []byte {
	return append([]byte(nil), exampleConfigRaw...)
}

// LoadPrompts reads the prompts file at path. A missing or unreadable file,
// or one without a System instruction, is a ConfigurationError.
func LoadPrompts(path string) (Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, &model.ConfigurationError{Field: "prompts_file", Err: err}
	}

	var p Prompts
	if err := json.Unmarshal(data, &p); err != nil {
		return Prompts{}, &model.ConfigurationError{Field: "prompts_file", Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	if strings.TrimSpace(p.System) == "" {
		return Prompts{}, &model.ConfigurationError{Field: "prompts_file", Err: errors.New(path + ": System instruction is empty")}
	}
	return p, nil
}

// DefaultPrompts returns the bundled prompts.
func DefaultPrompts() Prompts {
	var p Prompts
	if err := json.Unmarshal(defaultPromptsRaw, &p); err != nil {
		panic(err) // embedded at build time
	}
	return p
}
