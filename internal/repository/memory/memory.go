// Package memory keeps snapshots in process memory. Stored documents go
// through the same encoding as durable stores so behavior matches.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
)

type store struct {
	mu    sync.RWMutex
	saves map[string][]byte
	order []string
}

// NewSaveStore returns an empty in-memory store.
func NewSaveStore() repository.SaveStore {
	return &store{saves: make(map[string][]byte)}
}

func (s *store) Save(_ context.Context, sessionID string, data model.SaveData) (string, error) {
	b, err := repository.EncodeSave(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saves[sessionID]; !ok {
		s.order = append(s.order, sessionID)
	}
	s.saves[sessionID] = b
	return sessionID, nil
}

func (s *store) Load(_ context.Context, handle string) (model.SaveData, error) {
	s.mu.RLock()
	b, ok := s.saves[handle]
	s.mu.RUnlock()
	if !ok {
		return model.SaveData{}, repository.ErrNotFound
	}
	return repository.DecodeSave(b)
}

func (s *store) Delete(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saves[handle]; !ok {
		return repository.ErrNotFound
	}
	delete(s.saves, handle)
	if i := slices.Index(s.order, handle); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

func (s *store) List(_ context.Context) ([]repository.SaveInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repository.SaveInfo, 0, len(s.order))
	for _, h := range s.order {
		data, err := repository.DecodeSave(s.saves[h])
		if err != nil {
			return nil, err
		}
		out = append(out, repository.InfoOf(h, data))
	}
	return out, nil
}

// Ping always succeeds.
func (s *store) Ping(context.Context) error { return nil }
