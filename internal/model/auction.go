package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ContractStatus is the auction status enum exactly as stored on chain.
type ContractStatus uint8

const (
	ContractStatusOpen ContractStatus = iota
	ContractStatusClosed
	ContractStatusPaid
)

// Status classifies an auction for consumers. Cancelled is reserved: the
// contract never reports it today, but the enum keeps room for it.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
)

// RawAuctionState mirrors the on-chain auction struct for one auction.
// A fresh read supersedes any prior one; reads are never merged.
type RawAuctionState struct {
	Name         string
	InitialPrice *big.Int
	CurrentPrice *big.Int
	Bidder       common.Address
	Deadline     uint64
	BidCount     uint64
	Status       ContractStatus
}

// AuctionDetails is the point-in-time derived view the contract computes
// itself. SecondsRemaining comes from the chain, not local clocks.
type AuctionDetails struct {
	CurrentWinner    common.Address
	CurrentPrice     *big.Int
	SecondsRemaining uint64
	Status           ContractStatus
}

// Auction is the projected record exposed to collaborators. Prices are
// decimal strings since amounts are uint256.
type Auction struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ArtworkURL  string    `json:"artwork_url"`
	StartPrice  string    `json:"start_price"`
	CurrentBid  string    `json:"current_bid"`
	TotalBids   uint64    `json:"total_bids"`
	Status      Status    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	WinnerID    *string   `json:"winner_id,omitempty"`
}

// Stats summarizes the whole contract.
type Stats struct {
	TotalAuctions  int    `json:"total_auctions"`
	ActiveAuctions int    `json:"active_auctions"`
	EndedAuctions  int    `json:"ended_auctions"`
	TotalVolume    string `json:"total_volume"`
}
