package model

import "time"

// Section is one heading and its body in an assembled document.
type Section struct {
	Heading string
	Body    string
}

// Document is the ordered set of sections produced by a finished session.
// Title comes from the job-title stage.
type Document struct {
	Title    string
	Sections []Section
}

// Transcript records a document that was assembled and written to disk.
type Transcript struct {
	SessionID string
	Title     string
	Path      string
	Model     string
	Tokens    int
	Cost      float64
	CreatedAt time.Time
}

// TranscriptStore keeps a history of assembled documents.
type TranscriptStore interface {
	Record(t Transcript) error
	List(limit int) ([]Transcript, error)
	Close() error
}

// Notifier announces newly assembled documents.
type Notifier interface {
	Notify(t Transcript) error
}
