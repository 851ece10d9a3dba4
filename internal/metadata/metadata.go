package metadata

import (
	"context"
	"sync"
)

// Record holds human-authored fields for one auction. All fields optional;
// the projector substitutes deterministic fallbacks for anything missing.
type Record struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Store is the enrichment port keyed by auction index. A miss (ok=false) is
// a normal outcome, not an error; correctness never depends on this store.
type Store interface {
	Get(ctx context.Context, auctionID uint64) (Record, bool, error)
}

// StaticStore serves records from an in-memory map.
type StaticStore struct {
	mu   sync.RWMutex
	data map[uint64]Record
}

func NewStaticStore() *StaticStore {
	return &StaticStore{data: make(map[uint64]Record)}
}

func (s *StaticStore) Get(_ context.Context, auctionID uint64) (Record, bool, error) {
	s.mu.RLock()
	rec, ok := s.data[auctionID]
	s.mu.RUnlock()
	return rec, ok, nil
}

func (s *StaticStore) Set(auctionID uint64, rec Record) {
	s.mu.Lock()
	s.data[auctionID] = rec
	s.mu.Unlock()
}
