package contract

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
	"auctionScope/internal/model"
)

type callBackend struct {
	calls   int
	failFor int
	handler func(msg ethereum.CallMsg) ([]byte, error)
}

func (b *callBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.calls++
	if b.calls <= b.failFor {
		return nil, errors.New("connection refused")
	}
	return b.handler(msg)
}

func (b *callBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, errors.New("not used")
}

func (b *callBackend) BlockTimestamp(context.Context, uint64) (uint64, error) {
	return 0, errors.New("not used")
}

func structHandler(t *testing.T) func(msg ethereum.CallMsg) ([]byte, error) {
	t.Helper()
	return func(msg ethereum.CallMsg) ([]byte, error) {
		parsed, err := AuctionHouseABI()
		if err != nil {
			return nil, err
		}
		method, err := parsed.MethodById(msg.Data[:4])
		if err != nil {
			return nil, err
		}
		switch method.Name {
		case "auctionCount":
			return method.Outputs.Pack(big.NewInt(3))
		case "auctions":
			return method.Outputs.Pack(
				"painting",
				big.NewInt(1000),
				big.NewInt(2500),
				common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
				big.NewInt(1700100000),
				big.NewInt(4),
				uint8(0),
			)
		case "getAuctionDetails":
			return method.Outputs.Pack(
				common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
				big.NewInt(2500),
				big.NewInt(3600),
				uint8(0),
			)
		case "getBidCount":
			return method.Outputs.Pack(big.NewInt(4))
		default:
			return nil, fmt.Errorf("unexpected method %s", method.Name)
		}
	}
}

func newTestReader(t *testing.T, backend Backend) *Reader {
	t.Helper()
	retrier := chain.Retrier{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: zap.NewNop()}
	reader, err := NewReader(backend, common.HexToAddress("0x4444444444444444444444444444444444444444"), retrier)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	return reader
}

func TestReaderAuctionState(t *testing.T) {
	backend := &callBackend{handler: structHandler(t)}
	reader := newTestReader(t, backend)

	raw, err := reader.AuctionState(context.Background(), 1)
	if err != nil {
		t.Fatalf("auction state: %v", err)
	}
	if raw.Name != "painting" {
		t.Fatalf("name mismatch: %s", raw.Name)
	}
	if raw.InitialPrice.String() != "1000" || raw.CurrentPrice.String() != "2500" {
		t.Fatalf("prices mismatch: %+v", raw)
	}
	if raw.Deadline != 1700100000 || raw.BidCount != 4 {
		t.Fatalf("deadline/bid count mismatch: %+v", raw)
	}
	if raw.Status != model.ContractStatusOpen {
		t.Fatalf("status mismatch: %d", raw.Status)
	}
}

func TestReaderAuctionDetails(t *testing.T) {
	backend := &callBackend{handler: structHandler(t)}
	reader := newTestReader(t, backend)

	details, err := reader.AuctionDetails(context.Background(), 1)
	if err != nil {
		t.Fatalf("auction details: %v", err)
	}
	if details.SecondsRemaining != 3600 {
		t.Fatalf("seconds remaining mismatch: %d", details.SecondsRemaining)
	}
	if details.CurrentPrice.String() != "2500" {
		t.Fatalf("current price mismatch: %s", details.CurrentPrice)
	}
}

func TestReaderCountAndBidCount(t *testing.T) {
	backend := &callBackend{handler: structHandler(t)}
	reader := newTestReader(t, backend)

	count, err := reader.AuctionCount(context.Background())
	if err != nil {
		t.Fatalf("auction count: %v", err)
	}
	if count != 3 {
		t.Fatalf("count mismatch: %d", count)
	}

	bidCount, err := reader.BidCount(context.Background(), 0)
	if err != nil {
		t.Fatalf("bid count: %v", err)
	}
	if bidCount != 4 {
		t.Fatalf("bid count mismatch: %d", bidCount)
	}
}

func TestReaderRetriesTransientFailures(t *testing.T) {
	backend := &callBackend{failFor: 2, handler: structHandler(t)}
	reader := newTestReader(t, backend)

	if _, err := reader.AuctionCount(context.Background()); err != nil {
		t.Fatalf("expected recovery within budget: %v", err)
	}
	if backend.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", backend.calls)
	}
}

func TestAsUint8Range(t *testing.T) {
	cases := []struct {
		name    string
		value   interface{}
		want    uint8
		wantErr bool
	}{
		{"uint8", uint8(2), 2, false},
		{"uint64 in range", uint64(255), 255, false},
		{"uint16 overflow", uint16(300), 0, true},
		{"uint32 overflow", uint32(1 << 16), 0, true},
		{"uint64 overflow", uint64(256), 0, true},
		{"big in range", big.NewInt(1), 1, false},
		{"big overflow", big.NewInt(512), 0, true},
		{"big negative", big.NewInt(-1), 0, true},
		{"unsupported", "0", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := asUint8(tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v, got %d", tc.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReaderSurfacesRPCUnavailable(t *testing.T) {
	backend := &callBackend{failFor: 100, handler: structHandler(t)}
	reader := newTestReader(t, backend)

	_, err := reader.AuctionState(context.Background(), 5)
	var unavailable *model.RPCUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected RPCUnavailableError, got %v", err)
	}
	if unavailable.Label != "auction-struct-5" {
		t.Fatalf("label mismatch: %s", unavailable.Label)
	}
}
