package session

import (
	"testing"

	"github.com/amishk599/visioncrafter/internal/model"
)

func TestFilled(t *testing.T) {
	s := New("sys")

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"absent", nil, false},
		{"empty", "", false},
		{"whitespace", "  \n\t ", false},
		{"text", "Senior Backend Engineer", true},
		{"not a string", 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.Delete(KeyJobTitle)
			if tt.value != nil {
				s.Set(KeyJobTitle, tt.value)
			}
			if got := s.Filled(KeyJobTitle); got != tt.want {
				t.Errorf("Filled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemory_CreatedLazilyWithSystemMessage(t *testing.T) {
	s := New("You write job descriptions.")
	if s.Has(KeyMemory) {
		t.Fatal("memory should not exist before first use")
	}

	m := s.Memory()
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	if got := m.Snapshot()[0]; got.Role != model.RoleSystem || got.Content != "You write job descriptions." {
		t.Errorf("first message = %+v", got)
	}
	if s.Memory() != m {
		t.Error("Memory should return the same instance on repeated calls")
	}
}

func TestAddUsage_Accumulates(t *testing.T) {
	s := New("sys")
	s.AddUsage(100, 0.01)
	s.AddUsage(50, 0.005)

	if s.Tokens() != 150 {
		t.Errorf("Tokens = %d, want 150", s.Tokens())
	}
	if got := s.Cost(); got < 0.0149 || got > 0.0151 {
		t.Errorf("Cost = %f, want 0.015", got)
	}
}

func TestReset_ClearsRecognizedKeysOnly(t *testing.T) {
	s := New("sys")
	for _, k := range RecognizedKeys {
		s.Set(k, "value")
	}
	s.Set("ui.scroll_offset", 12)
	before := s.ID()

	s.Reset()

	for _, k := range RecognizedKeys {
		if s.Has(k) {
			t.Errorf("Has(%q) = true after Reset", k)
		}
	}
	if v, ok := s.Get("ui.scroll_offset"); !ok || v != 12 {
		t.Errorf("unrecognized key changed by Reset: %v, %v", v, ok)
	}
	if s.ID() == before {
		t.Error("Reset should assign a new session ID")
	}
}

func TestReset_Idempotent(t *testing.T) {
	s := New("sys")
	s.Reset()
	s.Reset()
	for _, k := range RecognizedKeys {
		if s.Has(k) {
			t.Errorf("Has(%q) = true on empty session", k)
		}
	}
}

func TestReset_NextMemoryHasOnlySystemMessage(t *testing.T) {
	s := New("sys")
	m := s.Memory()
	_ = m.Append(model.HumanMessage("q"))
	_ = m.Append(model.AssistantMessage("a"))

	s.Reset()

	if got := s.Memory().Len(); got != 1 {
		t.Errorf("memory Len after reset = %d, want 1", got)
	}
}
