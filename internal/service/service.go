package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"auctionScope/internal/contract"
	"auctionScope/internal/ledger"
	"auctionScope/internal/model"
	"auctionScope/internal/projector"
)

const (
	defaultConcurrency = 8

	// maxAuctionCount bounds how many indexes a single list walks. The count
	// comes from an untrusted RPC answer and sizes the result allocation.
	maxAuctionCount = 100_000
)

// Config controls service behavior. CacheTTL of zero disables caching.
type Config struct {
	Concurrency int
	CacheTTL    time.Duration
	Clock       func() time.Time
}

// Service orchestrates projections and bid-history reconstruction across the
// whole contract.
type Service struct {
	cfg        Config
	reader     *contract.Reader
	projector  *projector.Projector
	reconciler *ledger.Reconciler
	cache      *listCache
	logger     *zap.Logger
}

func New(cfg Config, reader *contract.Reader, proj *projector.Projector, reconciler *ledger.Reconciler, logger *zap.Logger) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:        cfg,
		reader:     reader,
		projector:  proj,
		reconciler: reconciler,
		cache:      newListCache(cfg.CacheTTL, cfg.Clock),
		logger:     logger,
	}
}

// ListAuctions projects every auction index concurrently. A failed index is
// logged and left out; one broken auction never blanks the list.
func (s *Service) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	if cached, ok := s.cache.get(); ok {
		return cached, nil
	}

	count, err := s.reader.AuctionCount(ctx)
	if err != nil {
		return nil, err
	}
	if count > maxAuctionCount {
		return nil, fmt.Errorf("implausible auction count %d exceeds %d", count, maxAuctionCount)
	}

	results := make([]*model.Auction, count)
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)
	for i := uint64(0); i < count; i++ {
		i := i
		g.Go(func() error {
			auction, err := s.projector.Project(ctx, i)
			if err != nil {
				s.logger.Warn("auction projection failed", zap.Uint64("auction", i), zap.Error(err))
				return nil
			}
			results[i] = &auction
			return nil
		})
	}
	_ = g.Wait()

	list := make([]model.Auction, 0, count)
	for _, auction := range results {
		if auction != nil {
			list = append(list, *auction)
		}
	}

	s.cache.set(list)
	return list, nil
}

// GetAuction projects one auction, or reports NotFound for an index past the
// end. NotFound is distinct from an auction that merely has no bids.
func (s *Service) GetAuction(ctx context.Context, index uint64) (model.Auction, error) {
	count, err := s.reader.AuctionCount(ctx)
	if err != nil {
		return model.Auction{}, err
	}
	if index >= count {
		return model.Auction{}, &model.NotFoundError{Index: index}
	}
	return s.projector.Project(ctx, index)
}

// GetBidHistory reconstructs the bid ledger for one auction. An existing
// auction with no recoverable bids yields an empty slice, never an error.
func (s *Service) GetBidHistory(ctx context.Context, index uint64) ([]model.Bid, error) {
	count, err := s.reader.AuctionCount(ctx)
	if err != nil {
		return nil, err
	}
	if index >= count {
		return nil, &model.NotFoundError{Index: index}
	}
	return s.reconciler.BidHistory(ctx, index), nil
}

// Stats folds the full auction list into contract-wide numbers. Completed
// volume sums the current bid of every ended auction that has a winner.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	list, err := s.ListAuctions(ctx)
	if err != nil {
		return model.Stats{}, err
	}

	stats := model.Stats{TotalAuctions: len(list)}
	volume := new(big.Int)
	for _, auction := range list {
		switch auction.Status {
		case model.StatusActive:
			stats.ActiveAuctions++
		case model.StatusEnded:
			stats.EndedAuctions++
		}
		if auction.Status == model.StatusEnded && auction.WinnerID != nil {
			if v, ok := new(big.Int).SetString(auction.CurrentBid, 10); ok {
				volume.Add(volume, v)
			}
		}
	}
	stats.TotalVolume = volume.String()
	return stats, nil
}
