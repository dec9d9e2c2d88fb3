// Package session stores everything one crafting session accumulates:
// the seed description, per-stage results, the conversation memory and the
// token/cost counters.
package session

import (
	"strings"

	"github.com/google/uuid"

	"github.com/amishk599/visioncrafter/internal/memory"
)

// Key names a slot in the session.
type Key string

const (
	KeySeed                  Key = "basic_description"
	KeyJobTitle              Key = "job_title"
	KeyJobDescription        Key = "job_description"
	KeyGoalsAndObjectives    Key = "goals_and_objectives"
	KeyPriorities            Key = "priorities"
	KeySkillsAndCompetencies Key = "skills_and_competencies"
	KeyPerformanceStandards  Key = "performance_standards"
	KeyMemory                Key = "memory"
	KeyTokens                Key = "tokens"
	KeyCost                  Key = "cost"
	// KeyTranscript is the completion record: the path of the assembled document.
	KeyTranscript Key = "transcript"
)

// RecognizedKeys lists every slot Reset clears.
var RecognizedKeys = []Key{
	KeySeed,
	KeyJobTitle,
	KeyJobDescription,
	KeyGoalsAndObjectives,
	KeyPriorities,
	KeySkillsAndCompetencies,
	KeyPerformanceStandards,
	KeyMemory,
	KeyTokens,
	KeyCost,
	KeyTranscript,
}

// State is a keyed store for a single session. It is not safe for
// concurrent use; one pipeline owns it.
type State struct {
	id     string
	system string
	slots  map[Key]any
}

// New creates an empty session. system is the instruction that opens every
// fresh conversation memory.
func New(system string) *State {
	return &State{
		id:     uuid.NewString(),
		system: system,
		slots:  make(map[Key]any),
	}
}

// ID identifies the session. It changes on Reset.
func (s *State) ID() string { return s.id }

// Get returns the raw value stored under key.
func (s *State) Get(key Key) (any, bool) {
	v, ok := s.slots[key]
	return v, ok
}

// Set stores value under key.
func (s *State) Set(key Key, value any) {
	s.slots[key] = value
}

// Has reports whether key is present.
func (s *State) Has(key Key) bool {
	_, ok := s.slots[key]
	return ok
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *State) Delete(key Key) {
	delete(s.slots, key)
}

// Text returns the string stored under key, or "" when absent or not a string.
func (s *State) Text(key Key) string {
	v, _ := s.slots[key].(string)
	return v
}

// Filled reports whether key holds a string that is non-empty after trimming.
func (s *State) Filled(key Key) bool {
	return strings.TrimSpace(s.Text(key)) != ""
}

// Memory returns the session's conversation memory, creating it with the
// system instruction as its only message when absent.
func (s *State) Memory() *memory.ConversationMemory {
	if m, ok := s.slots[KeyMemory].(*memory.ConversationMemory); ok {
		return m
	}
	m := memory.New(s.system)
	s.slots[KeyMemory] = m
	return m
}

// Tokens returns the accumulated token count.
func (s *State) Tokens() int {
	v, _ := s.slots[KeyTokens].(int)
	return v
}

// Cost returns the accumulated estimated cost in USD.
func (s *State) Cost() float64 {
	v, _ := s.slots[KeyCost].(float64)
	return v
}

// AddUsage accumulates the token and cost counters.
func (s *State) AddUsage(tokens int, cost float64) {
	s.slots[KeyTokens] = s.Tokens() + tokens
	s.slots[KeyCost] = s.Cost() + cost
}

// Reset deletes every recognized slot and assigns a new session ID.
// Unrecognized keys are left alone.
func (s *State) Reset() {
	for _, k := range RecognizedKeys {
		delete(s.slots, k)
	}
	s.id = uuid.NewString()
}
