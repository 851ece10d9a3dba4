package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"auctionScope/internal/chain"
	"auctionScope/internal/contract"
	"auctionScope/internal/ledger"
	"auctionScope/internal/model"
	"auctionScope/internal/projector"
)

type fixture struct {
	name      string
	initial   int64
	current   int64
	bidder    common.Address
	deadline  uint64
	bidCount  uint64
	status    uint8
	remaining uint64
}

// contractBackend serves a fixed set of auctions; indices listed in broken
// always fail their calls.
type contractBackend struct {
	auctions   []fixture
	broken     map[uint64]bool
	countCalls int

	// reportCount, when set, overrides the auctionCount answer.
	reportCount *big.Int
}

func (b *contractBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	parsed, err := contract.AuctionHouseABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "auctionCount":
		b.countCalls++
		if b.reportCount != nil {
			return method.Outputs.Pack(b.reportCount)
		}
		return method.Outputs.Pack(new(big.Int).SetInt64(int64(len(b.auctions))))
	case "auctions", "getAuctionDetails", "getBidCount":
		args, err := method.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		index := args[0].(*big.Int).Uint64()
		if b.broken[index] {
			return nil, errors.New("execution reverted")
		}
		if index >= uint64(len(b.auctions)) {
			return nil, fmt.Errorf("no auction %d", index)
		}
		fx := b.auctions[index]
		switch method.Name {
		case "auctions":
			return method.Outputs.Pack(
				fx.name,
				big.NewInt(fx.initial),
				big.NewInt(fx.current),
				fx.bidder,
				new(big.Int).SetUint64(fx.deadline),
				new(big.Int).SetUint64(fx.bidCount),
				fx.status,
			)
		case "getAuctionDetails":
			return method.Outputs.Pack(
				fx.bidder,
				big.NewInt(fx.current),
				new(big.Int).SetUint64(fx.remaining),
				fx.status,
			)
		default:
			return method.Outputs.Pack(new(big.Int).SetUint64(fx.bidCount))
		}
	default:
		return nil, fmt.Errorf("unexpected method %s", method.Name)
	}
}

func (b *contractBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (b *contractBackend) BlockTimestamp(context.Context, uint64) (uint64, error) {
	return 0, errors.New("not used")
}

func newTestService(t *testing.T, backend *contractBackend, cfg Config) *Service {
	t.Helper()
	retrier := chain.Retrier{MaxAttempts: 1, BaseDelay: time.Millisecond, Logger: zap.NewNop()}
	reader, err := contract.NewReader(backend, common.HexToAddress("0x4444444444444444444444444444444444444444"), retrier)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	proj := projector.New(reader, nil, projector.DefaultNominalDuration, zap.NewNop())
	reconciler := ledger.NewReconciler(reader, zap.NewNop(), func() time.Time { return time.Unix(1700001000, 0) })
	return New(cfg, reader, proj, reconciler, zap.NewNop())
}

func bidderAddr(b byte) common.Address {
	var addr common.Address
	for i := range addr {
		addr[i] = b
	}
	return addr
}

func fiveAuctions() []fixture {
	return []fixture{
		{name: "a0", initial: 100, current: 150, bidder: bidderAddr(0xaa), deadline: 1700100000, bidCount: 1, status: 0, remaining: 500},
		{name: "a1", initial: 200, current: 0, deadline: 1700100000, status: 0, remaining: 500},
		{name: "a2", initial: 300, current: 900, bidder: bidderAddr(0xbb), deadline: 1700000000, bidCount: 3, status: 1},
		{name: "a3", initial: 400, current: 0, deadline: 1700100000, status: 0, remaining: 500},
		{name: "a4", initial: 500, current: 600, bidder: bidderAddr(0xcc), deadline: 1700000000, bidCount: 2, status: 2},
	}
}

func TestListAuctionsSkipsBrokenIndex(t *testing.T) {
	backend := &contractBackend{auctions: fiveAuctions(), broken: map[uint64]bool{3: true}}
	svc := newTestService(t, backend, Config{Concurrency: 4})

	list, err := svc.ListAuctions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 auctions, got %d", len(list))
	}
	for _, auction := range list {
		if auction.ID == 3 {
			t.Fatalf("broken index leaked into list")
		}
	}
}

func TestListAuctionsPreservesIndexOrder(t *testing.T) {
	backend := &contractBackend{auctions: fiveAuctions()}
	svc := newTestService(t, backend, Config{Concurrency: 2})

	list, err := svc.ListAuctions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("expected 5 auctions, got %d", len(list))
	}
	for i, auction := range list {
		if auction.ID != uint64(i) {
			t.Fatalf("order broken at %d: %+v", i, auction)
		}
	}
}

func TestGetAuctionNotFound(t *testing.T) {
	backend := &contractBackend{auctions: fiveAuctions()}
	svc := newTestService(t, backend, Config{})

	_, err := svc.GetAuction(context.Background(), 7)
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Index != 7 {
		t.Fatalf("index mismatch: %d", notFound.Index)
	}
}

func TestGetAuctionFound(t *testing.T) {
	backend := &contractBackend{auctions: fiveAuctions()}
	svc := newTestService(t, backend, Config{})

	auction, err := svc.GetAuction(context.Background(), 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if auction.Title != "a0" || auction.Status != model.StatusActive {
		t.Fatalf("auction mismatch: %+v", auction)
	}
}

func TestGetBidHistoryNotFoundVsEmpty(t *testing.T) {
	backend := &contractBackend{auctions: fiveAuctions()}
	svc := newTestService(t, backend, Config{})

	_, err := svc.GetBidHistory(context.Background(), 99)
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	// Index 1 exists but has no bids anywhere: empty, not an error.
	bids, err := svc.GetBidHistory(context.Background(), 1)
	if err != nil {
		t.Fatalf("existing auction must not error: %v", err)
	}
	if len(bids) != 0 {
		t.Fatalf("expected empty history, got %d", len(bids))
	}
}

func TestStatsFold(t *testing.T) {
	backend := &contractBackend{auctions: fiveAuctions()}
	svc := newTestService(t, backend, Config{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalAuctions != 5 {
		t.Fatalf("total mismatch: %d", stats.TotalAuctions)
	}
	if stats.ActiveAuctions != 3 {
		t.Fatalf("active mismatch: %d", stats.ActiveAuctions)
	}
	if stats.EndedAuctions != 2 {
		t.Fatalf("ended mismatch: %d", stats.EndedAuctions)
	}
	// a2 (900) and a4 (600) are ended with winners.
	if stats.TotalVolume != "1500" {
		t.Fatalf("volume mismatch: %s", stats.TotalVolume)
	}
}

func TestListAuctionsRejectsImplausibleCount(t *testing.T) {
	backend := &contractBackend{
		auctions:    fiveAuctions(),
		reportCount: new(big.Int).SetUint64(1 << 40),
	}
	svc := newTestService(t, backend, Config{})

	_, err := svc.ListAuctions(context.Background())
	if err == nil {
		t.Fatal("expected error for implausible auction count")
	}
	if backend.countCalls != 1 {
		t.Fatalf("expected a single count call, got %d", backend.countCalls)
	}
}

func TestStatsZeroAuctions(t *testing.T) {
	backend := &contractBackend{}
	svc := newTestService(t, backend, Config{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := model.Stats{TotalAuctions: 0, ActiveAuctions: 0, EndedAuctions: 0, TotalVolume: "0"}
	if stats != want {
		t.Fatalf("stats mismatch: %+v", stats)
	}
}

func TestListAuctionsUsesCacheWithinTTL(t *testing.T) {
	backend := &contractBackend{auctions: fiveAuctions()}

	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	svc := newTestService(t, backend, Config{CacheTTL: 30 * time.Second, Clock: clock})

	if _, err := svc.ListAuctions(context.Background()); err != nil {
		t.Fatalf("first list: %v", err)
	}
	if backend.countCalls != 1 {
		t.Fatalf("expected 1 count call, got %d", backend.countCalls)
	}

	if _, err := svc.ListAuctions(context.Background()); err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if backend.countCalls != 1 {
		t.Fatalf("cache miss within TTL: %d count calls", backend.countCalls)
	}

	now = now.Add(31 * time.Second)
	if _, err := svc.ListAuctions(context.Background()); err != nil {
		t.Fatalf("expired list: %v", err)
	}
	if backend.countCalls != 2 {
		t.Fatalf("expected refresh after TTL, got %d count calls", backend.countCalls)
	}
}
