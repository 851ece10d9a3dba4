package service

import (
	"sync"
	"time"

	"auctionScope/internal/model"
)

// listCache holds the most recent auction list with an explicit TTL. The
// clock is injected so tests can advance time without sleeping.
type listCache struct {
	mu       sync.Mutex
	clock    func() time.Time
	ttl      time.Duration
	auctions []model.Auction
	storedAt time.Time
	valid    bool
}

func newListCache(ttl time.Duration, clock func() time.Time) *listCache {
	if clock == nil {
		clock = time.Now
	}
	return &listCache{clock: clock, ttl: ttl}
}

func (c *listCache) get() ([]model.Auction, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || c.clock().Sub(c.storedAt) >= c.ttl {
		return nil, false
	}
	out := make([]model.Auction, len(c.auctions))
	copy(out, c.auctions)
	return out, true
}

func (c *listCache) set(auctions []model.Auction) {
	if c.ttl <= 0 {
		return
	}
	stored := make([]model.Auction, len(auctions))
	copy(stored, auctions)

	c.mu.Lock()
	c.auctions = stored
	c.storedAt = c.clock()
	c.valid = true
	c.mu.Unlock()
}
