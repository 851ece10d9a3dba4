package model

// Bid is one reconstructed bid from the event ledger. ID derives from the
// transaction hash and log position, so re-deriving it is idempotent.
// Amount is a decimal string (uint256). ObservedAt is RFC3339, sourced from
// the containing block when available, wall clock otherwise.
type Bid struct {
	ID         string `json:"id"`
	AuctionID  uint64 `json:"auction_id"`
	Bidder     string `json:"bidder"`
	Amount     string `json:"amount"`
	TxHash     string `json:"tx_hash"`
	ObservedAt string `json:"observed_at"`
	IsWinning  bool   `json:"is_winning"`
}
