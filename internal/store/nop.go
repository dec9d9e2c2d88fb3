package store

import "github.com/amishk599/visioncrafter/internal/model"

// NopStore is a no-op store used in dry-run mode. Nothing is recorded.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Record(t model.Transcript) error { return nil }
func (s *NopStore) List(limit int) ([]model.Transcript, error) { return nil, nil }
func (s *NopStore) Close() error { return nil }
