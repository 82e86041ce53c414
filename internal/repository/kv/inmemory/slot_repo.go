package inmemory

import (
	"context"
	"sync"

	"goalTracker/internal/logger"
	repo "goalTracker/internal/repository"
)

type SlotStorage struct {
	storage map[string][]byte
	mtx     *sync.RWMutex
}

func NewSlotStorage() *SlotStorage {
	return &SlotStorage{
		storage: make(map[string][]byte),
		mtx:     &sync.RWMutex{},
	}
}

func (s *SlotStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: in-memory slots ready")
	return nil
}

func (s *SlotStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, repo.ErrInvalidKey
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.storage[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(value), nil
}

func (s *SlotStorage) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return repo.ErrInvalidKey
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage[key] = clone(value)
	return nil
}

// callers must not be able to mutate stored bytes through a shared slice
func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
