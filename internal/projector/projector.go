package projector

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"auctionScope/internal/contract"
	"auctionScope/internal/metadata"
	"auctionScope/internal/model"
)

// DefaultNominalDuration approximates auction length when back-computing the
// start time. The contract records only a deadline.
const DefaultNominalDuration = 72 * time.Hour

// Projector combines a raw struct read, a details read, and metadata
// enrichment into one Auction record.
type Projector struct {
	reader   *contract.Reader
	meta     metadata.Store
	duration time.Duration
	logger   *zap.Logger
}

// New builds a Projector. meta may be nil; duration <= 0 uses the default.
func New(reader *contract.Reader, meta metadata.Store, duration time.Duration, logger *zap.Logger) *Projector {
	if duration <= 0 {
		duration = DefaultNominalDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{reader: reader, meta: meta, duration: duration, logger: logger}
}

// Project reads the auction at index and derives its domain record. The
// struct and details reads go out in parallel; the two may straddle a state
// change on chain, which is an accepted staleness window.
func (p *Projector) Project(ctx context.Context, index uint64) (model.Auction, error) {
	var (
		raw        model.RawAuctionState
		details    model.AuctionDetails
		rawErr     error
		detailsErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		raw, rawErr = p.reader.AuctionState(ctx, index)
	}()
	go func() {
		defer wg.Done()
		details, detailsErr = p.reader.AuctionDetails(ctx, index)
	}()
	wg.Wait()

	if rawErr != nil {
		return model.Auction{}, fmt.Errorf("auction %d struct read: %w", index, rawErr)
	}
	if detailsErr != nil {
		return model.Auction{}, fmt.Errorf("auction %d details read: %w", index, detailsErr)
	}

	meta, hasMeta := p.lookupMetadata(ctx, index)
	return Build(index, raw, details, meta, hasMeta, p.duration), nil
}

// lookupMetadata consults the enrichment port. Misses and port failures both
// fall back to deterministic placeholders; they never fail the projection.
func (p *Projector) lookupMetadata(ctx context.Context, index uint64) (metadata.Record, bool) {
	if p.meta == nil {
		return metadata.Record{}, false
	}
	rec, ok, err := p.meta.Get(ctx, index)
	if err != nil {
		p.logger.Warn("metadata lookup failed", zap.Uint64("auction", index), zap.Error(err))
		return metadata.Record{}, false
	}
	return rec, ok
}

// Build derives the Auction record. Pure: identical inputs always produce
// identical output, and status is recomputed from scratch on every call.
func Build(index uint64, raw model.RawAuctionState, details model.AuctionDetails, meta metadata.Record, hasMeta bool, duration time.Duration) model.Auction {
	endTime := time.Unix(int64(raw.Deadline), 0).UTC()

	auction := model.Auction{
		ID:         index,
		Title:      buildTitle(index, raw, meta, hasMeta),
		StartPrice: amountString(raw.InitialPrice),
		CurrentBid: displayPrice(raw),
		TotalBids:  raw.BidCount,
		Status:     deriveStatus(raw.Status, details.SecondsRemaining),
		StartTime:  endTime.Add(-duration),
		EndTime:    endTime,
	}

	if hasMeta && meta.Description != "" {
		auction.Description = meta.Description
	} else {
		auction.Description = fmt.Sprintf("On-chain auction with %d bids recorded.", raw.BidCount)
	}
	if hasMeta && meta.ImageURL != "" {
		auction.ArtworkURL = meta.ImageURL
	} else {
		auction.ArtworkURL = fmt.Sprintf("https://picsum.photos/seed/auction-%d/600/400", index)
	}

	if winner := pickWinner(raw, details); winner != "" {
		auction.WinnerID = &winner
	}

	return auction
}

// deriveStatus maps contract status plus the contract's own remaining-time
// view onto the domain enum. Open with zero remaining is a legitimate
// transient: the deadline passed but the contract has not transitioned yet.
// Closed and Paid both collapse to ended.
func deriveStatus(status model.ContractStatus, secondsRemaining uint64) model.Status {
	if status == model.ContractStatusOpen && secondsRemaining > 0 {
		return model.StatusActive
	}
	return model.StatusEnded
}

// displayPrice prefers currentPrice once any bid has been accepted; a zero
// currentPrice means no bids yet, so the initial price shows instead.
func displayPrice(raw model.RawAuctionState) string {
	if raw.CurrentPrice != nil && raw.CurrentPrice.Sign() > 0 {
		return raw.CurrentPrice.String()
	}
	return amountString(raw.InitialPrice)
}

func buildTitle(index uint64, raw model.RawAuctionState, meta metadata.Record, hasMeta bool) string {
	if hasMeta && meta.Title != "" {
		return meta.Title
	}
	if raw.Name != "" {
		return raw.Name
	}
	return fmt.Sprintf("Auction #%d", index)
}

func pickWinner(raw model.RawAuctionState, details model.AuctionDetails) string {
	if details.CurrentWinner != (common.Address{}) {
		return details.CurrentWinner.Hex()
	}
	if raw.Bidder != (common.Address{}) {
		return raw.Bidder.Hex()
	}
	return ""
}

func amountString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}
