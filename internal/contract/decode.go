package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"auctionScope/internal/model"
)

// BidEvent is the decoded BidPlaced payload.
type BidEvent struct {
	AuctionID uint64
	Bidder    common.Address
	Amount    *big.Int
}

// BidPlacedTopic returns the BidPlaced event signature hash.
func BidPlacedTopic() (common.Hash, error) {
	parsed, err := AuctionHouseABI()
	if err != nil {
		return common.Hash{}, err
	}
	return parsed.Events[bidPlacedEvent].ID, nil
}

// DecodeBidTopic decodes a log against the BidPlaced layout by matching its
// topic0 hash and reading the indexed fields straight from the topics.
// A mismatching or malformed log yields an error the caller skips.
func DecodeBidTopic(log types.Log) (BidEvent, error) {
	parsed, err := AuctionHouseABI()
	if err != nil {
		return BidEvent{}, err
	}
	event := parsed.Events[bidPlacedEvent]

	if len(log.Topics) == 0 {
		return BidEvent{}, fmt.Errorf("missing topics")
	}
	if log.Topics[0] != event.ID {
		return BidEvent{}, fmt.Errorf("unexpected topic0: %s", log.Topics[0].Hex())
	}
	if len(log.Topics) != 3 {
		return BidEvent{}, fmt.Errorf("expected 3 topics, got %d", len(log.Topics))
	}

	auctionID := new(big.Int).SetBytes(log.Topics[1].Bytes())
	if !auctionID.IsUint64() {
		return BidEvent{}, fmt.Errorf("auction id overflow: %s", auctionID)
	}
	bidder := common.BytesToAddress(log.Topics[2].Bytes())

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return BidEvent{}, fmt.Errorf("unpack %s: %w", bidPlacedEvent, err)
	}
	if len(values) != 1 {
		return BidEvent{}, fmt.Errorf("unexpected %s values: %d", bidPlacedEvent, len(values))
	}
	amount, err := asBigInt(values[0])
	if err != nil {
		return BidEvent{}, fmt.Errorf("amount: %w", err)
	}

	return BidEvent{AuctionID: auctionID.Uint64(), Bidder: bidder, Amount: amount}, nil
}

// DecodeBidNamed decodes a log by resolving its event from the ABI by ID and
// checking the symbolic name, then parsing the indexed topics through the ABI
// machinery. Same event, different code path: the two have been observed to
// disagree on malformed logs, so the reconciler tries both.
func DecodeBidNamed(log types.Log) (BidEvent, error) {
	parsed, err := AuctionHouseABI()
	if err != nil {
		return BidEvent{}, err
	}

	if len(log.Topics) == 0 {
		return BidEvent{}, fmt.Errorf("missing topics")
	}
	event, err := parsed.EventByID(log.Topics[0])
	if err != nil {
		return BidEvent{}, fmt.Errorf("resolve event: %w", err)
	}
	if event.Name != bidPlacedEvent {
		return BidEvent{}, fmt.Errorf("unexpected event: %s", event.Name)
	}

	indexed := indexedArguments(event.Inputs)
	if len(log.Topics) != len(indexed)+1 {
		return BidEvent{}, fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(log.Topics))
	}

	var header struct {
		AuctionId *big.Int
		Bidder    common.Address
	}
	if err := abi.ParseTopics(&header, indexed, log.Topics[1:]); err != nil {
		return BidEvent{}, fmt.Errorf("parse topics: %w", err)
	}
	if !header.AuctionId.IsUint64() {
		return BidEvent{}, fmt.Errorf("auction id overflow: %s", header.AuctionId)
	}

	values, err := parsed.Unpack(event.Name, log.Data)
	if err != nil {
		return BidEvent{}, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	if len(values) != 1 {
		return BidEvent{}, fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}
	amount, err := asBigInt(values[0])
	if err != nil {
		return BidEvent{}, fmt.Errorf("amount: %w", err)
	}

	return BidEvent{AuctionID: header.AuctionId.Uint64(), Bidder: header.Bidder, Amount: amount}, nil
}

// NewDecodeError builds a decode failure record for a skipped log.
func NewDecodeError(log types.Log, err error) model.DecodeError {
	topic0 := ""
	if len(log.Topics) > 0 {
		topic0 = log.Topics[0].Hex()
	}
	return model.DecodeError{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topic0:      topic0,
		Error:       err.Error(),
	}
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
