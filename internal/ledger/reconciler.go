package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"auctionScope/internal/contract"
	"auctionScope/internal/model"
)

// Pseudo transaction hash for bids synthesized from current contract state
// rather than observed as discrete transactions.
const stateDerivedTx = "derived-from-state"

// Reconciler rebuilds the ordered bid ledger for one auction from whichever
// data source still works. Strategies run in order; the first one that
// produces a non-empty, successfully decoded set wins.
type Reconciler struct {
	reader *contract.Reader
	logger *zap.Logger
	now    func() time.Time
}

// NewReconciler builds a Reconciler. A nil clock defaults to time.Now.
func NewReconciler(reader *contract.Reader, logger *zap.Logger, now func() time.Time) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Reconciler{reader: reader, logger: logger, now: now}
}

type strategy struct {
	name string
	run  func(ctx context.Context, auctionID uint64) ([]model.Bid, error)
}

func (r *Reconciler) strategies() []strategy {
	return []strategy{
		{name: "topic-scan", run: r.scanByTopic},
		{name: "named-scan", run: r.scanByName},
		{name: "state-fallback", run: r.fromCurrentState},
	}
}

// BidHistory returns the reconstructed bid ledger for an auction, sorted by
// amount descending with winning bids flagged. Total failure of every
// strategy degrades to an empty ledger with a warning; callers cannot tell
// that apart from a genuinely empty auction.
func (r *Reconciler) BidHistory(ctx context.Context, auctionID uint64) []model.Bid {
	for _, s := range r.strategies() {
		bids, err := s.run(ctx, auctionID)
		if err != nil {
			r.logger.Warn("bid ledger strategy failed",
				zap.String("strategy", s.name),
				zap.Uint64("auction", auctionID),
				zap.Error(err),
			)
			continue
		}
		if len(bids) == 0 {
			continue
		}
		return rankBids(bids)
	}
	return []model.Bid{}
}

// scanByTopic queries the full chain history for logs matching the BidPlaced
// signature hash and decodes each against the known layout. One bad log is
// skipped, never fatal.
func (r *Reconciler) scanByTopic(ctx context.Context, auctionID uint64) ([]model.Bid, error) {
	topic, err := contract.BidPlacedTopic()
	if err != nil {
		return nil, err
	}

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{r.reader.Address()},
		Topics:    [][]common.Hash{{topic}},
	}
	logs, err := r.filterLogsWithRetry(ctx, "bid-logs-topic", query)
	if err != nil {
		return nil, err
	}

	bids := make([]model.Bid, 0, len(logs))
	for _, lg := range logs {
		event, err := contract.DecodeBidTopic(lg)
		if err != nil {
			r.logSkippedLog(lg, err)
			continue
		}
		if event.AuctionID != auctionID {
			continue
		}
		bids = append(bids, r.buildBid(ctx, event, lg))
	}
	return bids, nil
}

// scanByName queries by contract address only and resolves each log's event
// by symbolic name through the ABI. Functionally the same scan as
// scanByTopic, but the two decode paths disagree on malformed logs, so both
// are kept.
func (r *Reconciler) scanByName(ctx context.Context, auctionID uint64) ([]model.Bid, error) {
	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{r.reader.Address()},
	}
	logs, err := r.filterLogsWithRetry(ctx, "bid-logs-named", query)
	if err != nil {
		return nil, err
	}

	bids := make([]model.Bid, 0, len(logs))
	for _, lg := range logs {
		event, err := contract.DecodeBidNamed(lg)
		if err != nil {
			r.logSkippedLog(lg, err)
			continue
		}
		if event.AuctionID != auctionID {
			continue
		}
		bids = append(bids, r.buildBid(ctx, event, lg))
	}
	return bids, nil
}

// fromCurrentState synthesizes a single-entry ledger holding only the
// current leading bid. Earlier history is lost at this point; the log scans
// already failed to produce it.
func (r *Reconciler) fromCurrentState(ctx context.Context, auctionID uint64) ([]model.Bid, error) {
	raw, err := r.reader.AuctionState(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	if raw.Bidder == (common.Address{}) || raw.BidCount == 0 {
		return []model.Bid{}, nil
	}

	amount := raw.CurrentPrice
	if amount == nil {
		amount = big.NewInt(0)
	}

	r.logger.Info("bid ledger synthesized from state",
		zap.Uint64("auction", auctionID),
		zap.Uint64("bid_count", raw.BidCount),
	)

	return []model.Bid{{
		ID:         fmt.Sprintf("state:%d", auctionID),
		AuctionID:  auctionID,
		Bidder:     raw.Bidder.Hex(),
		Amount:     amount.String(),
		TxHash:     stateDerivedTx,
		ObservedAt: r.now().UTC().Format(time.RFC3339),
		IsWinning:  true,
	}}, nil
}

// buildBid stamps a decoded event into a Bid. The timestamp comes from the
// containing block; if that fetch fails too, the wall clock stands in for
// this one bid rather than discarding it.
func (r *Reconciler) buildBid(ctx context.Context, event contract.BidEvent, lg types.Log) model.Bid {
	observedAt := r.now().UTC()
	if ts, err := r.blockTimestampWithRetry(ctx, lg.BlockNumber); err == nil {
		observedAt = time.Unix(int64(ts), 0).UTC()
	} else {
		r.logger.Warn("block timestamp unavailable, using wall clock",
			zap.Uint64("block", lg.BlockNumber),
			zap.Error(err),
		)
	}

	return model.Bid{
		ID:         fmt.Sprintf("%s:%d", lg.TxHash.Hex(), lg.Index),
		AuctionID:  event.AuctionID,
		Bidder:     event.Bidder.Hex(),
		Amount:     event.Amount.String(),
		TxHash:     lg.TxHash.Hex(),
		ObservedAt: observedAt.Format(time.RFC3339),
	}
}

func (r *Reconciler) filterLogsWithRetry(ctx context.Context, label string, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := r.reader.Retrier().Do(ctx, label, func(ctx context.Context) error {
		var err error
		logs, err = r.reader.Backend().FilterLogs(ctx, query)
		return err
	})
	return logs, err
}

func (r *Reconciler) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := r.reader.Retrier().Do(ctx, fmt.Sprintf("block-timestamp-%d", blockNumber), func(ctx context.Context) error {
		var err error
		ts, err = r.reader.Backend().BlockTimestamp(ctx, blockNumber)
		return err
	})
	return ts, err
}

func (r *Reconciler) logSkippedLog(lg types.Log, err error) {
	rec := contract.NewDecodeError(lg, err)
	r.logger.Warn("skip undecodable log",
		zap.Uint64("block", rec.BlockNumber),
		zap.String("tx", rec.TxHash),
		zap.Uint64("log_index", rec.LogIndex),
		zap.String("topic0", rec.Topic0),
		zap.String("reason", rec.Error),
	)
}

// rankBids sorts by amount descending, ties kept in source order, and flags
// every bid matching the maximum as winning. Amount order is the robust
// invariant here: event order does not survive reorgs or duplicate
// emissions, the leading amount does.
func rankBids(bids []model.Bid) []model.Bid {
	if len(bids) == 0 {
		return bids
	}

	amounts := make([]*big.Int, len(bids))
	for i, bid := range bids {
		amounts[i] = amountValue(bid.Amount)
	}

	indices := make([]int, len(bids))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return amounts[indices[a]].Cmp(amounts[indices[b]]) > 0
	})

	ranked := make([]model.Bid, len(bids))
	for pos, idx := range indices {
		ranked[pos] = bids[idx]
	}

	max := amounts[indices[0]]
	for i := range ranked {
		ranked[i].IsWinning = amountValue(ranked[i].Amount).Cmp(max) == 0
	}
	return ranked
}

func amountValue(amount string) *big.Int {
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return big.NewInt(0)
	}
	return value
}
