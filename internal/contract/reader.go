package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"auctionScope/internal/chain"
	"auctionScope/internal/model"
)

// Backend is the subset of the chain client the contract layer needs.
// chain.Client satisfies it; tests substitute fakes.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// Reader performs read-only calls against the auction house contract.
// Every call goes through the retrier with a diagnostic label.
type Reader struct {
	backend Backend
	address common.Address
	retrier chain.Retrier
}

// NewReader builds a Reader for a contract address.
func NewReader(backend Backend, address common.Address, retrier chain.Retrier) (*Reader, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if _, err := AuctionHouseABI(); err != nil {
		return nil, fmt.Errorf("parse auction house abi: %w", err)
	}
	return &Reader{backend: backend, address: address, retrier: retrier}, nil
}

// Address returns the contract address the reader is bound to.
func (r *Reader) Address() common.Address {
	return r.address
}

// Backend returns the underlying chain backend.
func (r *Reader) Backend() Backend {
	return r.backend
}

// Retrier returns the retry policy shared with callers that issue their own
// chain reads (log scans, block fetches).
func (r *Reader) Retrier() chain.Retrier {
	return r.retrier
}

// AuctionCount reads the total number of auctions ever created.
func (r *Reader) AuctionCount(ctx context.Context) (uint64, error) {
	values, err := r.call(ctx, "auction-count", "auctionCount")
	if err != nil {
		return 0, err
	}
	count, err := asBigInt(values[0])
	if err != nil {
		return 0, fmt.Errorf("auction count: %w", err)
	}
	return count.Uint64(), nil
}

// AuctionState reads the raw auction struct at an index.
func (r *Reader) AuctionState(ctx context.Context, index uint64) (model.RawAuctionState, error) {
	values, err := r.call(ctx, fmt.Sprintf("auction-struct-%d", index), "auctions", new(big.Int).SetUint64(index))
	if err != nil {
		return model.RawAuctionState{}, err
	}
	if len(values) != 7 {
		return model.RawAuctionState{}, fmt.Errorf("unexpected auction struct values: %d", len(values))
	}

	name, ok := values[0].(string)
	if !ok {
		return model.RawAuctionState{}, fmt.Errorf("auction name type %T", values[0])
	}
	initialPrice, err := asBigInt(values[1])
	if err != nil {
		return model.RawAuctionState{}, fmt.Errorf("initial price: %w", err)
	}
	currentPrice, err := asBigInt(values[2])
	if err != nil {
		return model.RawAuctionState{}, fmt.Errorf("current price: %w", err)
	}
	bidder, err := asAddress(values[3])
	if err != nil {
		return model.RawAuctionState{}, fmt.Errorf("bidder: %w", err)
	}
	deadline, err := asBigInt(values[4])
	if err != nil {
		return model.RawAuctionState{}, fmt.Errorf("deadline: %w", err)
	}
	bidCount, err := asBigInt(values[5])
	if err != nil {
		return model.RawAuctionState{}, fmt.Errorf("bid count: %w", err)
	}
	status, err := asUint8(values[6])
	if err != nil {
		return model.RawAuctionState{}, fmt.Errorf("status: %w", err)
	}

	return model.RawAuctionState{
		Name:         name,
		InitialPrice: initialPrice,
		CurrentPrice: currentPrice,
		Bidder:       bidder,
		Deadline:     deadline.Uint64(),
		BidCount:     bidCount.Uint64(),
		Status:       model.ContractStatus(status),
	}, nil
}

// AuctionDetails reads the contract-computed details view at an index.
func (r *Reader) AuctionDetails(ctx context.Context, index uint64) (model.AuctionDetails, error) {
	values, err := r.call(ctx, fmt.Sprintf("auction-details-%d", index), "getAuctionDetails", new(big.Int).SetUint64(index))
	if err != nil {
		return model.AuctionDetails{}, err
	}
	if len(values) != 4 {
		return model.AuctionDetails{}, fmt.Errorf("unexpected auction details values: %d", len(values))
	}

	winner, err := asAddress(values[0])
	if err != nil {
		return model.AuctionDetails{}, fmt.Errorf("current winner: %w", err)
	}
	currentPrice, err := asBigInt(values[1])
	if err != nil {
		return model.AuctionDetails{}, fmt.Errorf("current price: %w", err)
	}
	remaining, err := asBigInt(values[2])
	if err != nil {
		return model.AuctionDetails{}, fmt.Errorf("seconds remaining: %w", err)
	}
	status, err := asUint8(values[3])
	if err != nil {
		return model.AuctionDetails{}, fmt.Errorf("status: %w", err)
	}

	return model.AuctionDetails{
		CurrentWinner:    winner,
		CurrentPrice:     currentPrice,
		SecondsRemaining: remaining.Uint64(),
		Status:           model.ContractStatus(status),
	}, nil
}

// BidCount reads the bid count for an auction index.
func (r *Reader) BidCount(ctx context.Context, index uint64) (uint64, error) {
	values, err := r.call(ctx, fmt.Sprintf("bid-count-%d", index), "getBidCount", new(big.Int).SetUint64(index))
	if err != nil {
		return 0, err
	}
	count, err := asBigInt(values[0])
	if err != nil {
		return 0, fmt.Errorf("bid count: %w", err)
	}
	return count.Uint64(), nil
}

func (r *Reader) call(ctx context.Context, label, method string, args ...interface{}) ([]interface{}, error) {
	parsed, err := AuctionHouseABI()
	if err != nil {
		return nil, fmt.Errorf("parse auction house abi: %w", err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	var resp []byte
	msg := ethereum.CallMsg{To: &r.address, Data: data}
	err = r.retrier.Do(ctx, label, func(ctx context.Context) error {
		var callErr error
		resp, callErr = r.backend.CallContract(ctx, msg, nil)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		if v > 255 {
			return 0, fmt.Errorf("uint8 out of range: %d", v)
		}
		return uint8(v), nil
	case uint32:
		if v > 255 {
			return 0, fmt.Errorf("uint8 out of range: %d", v)
		}
		return uint8(v), nil
	case uint64:
		if v > 255 {
			return 0, fmt.Errorf("uint8 out of range: %d", v)
		}
		return uint8(v), nil
	case *big.Int:
		if !v.IsUint64() || v.Uint64() > 255 {
			return 0, fmt.Errorf("uint8 out of range: %s", v)
		}
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
