package photoflow

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jung602/roro/internal/places"
)

// Store keeps live photo batches keyed by id.
type Store struct {
	places places.Provider

	mu      sync.RWMutex
	batches map[string]*Batch
}

func NewStore(provider places.Provider) *Store {
	return &Store{places: provider, batches: map[string]*Batch{}}
}

func (s *Store) Create(images [][]byte) (string, *Batch, error) {
	b, err := NewBatch(images, s.places)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.batches[id] = b
	s.mu.Unlock()
	return id, b, nil
}

func (s *Store) Get(id string) (*Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	return b, ok
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, id)
}
