package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	BidActive    = "ACTIVE"
	BidOutbid    = "OUTBID"
	BidWithdrawn = "WITHDRAWN"
	BidWinning   = "WINNING"
	BidExpired   = "EXPIRED"
)

type Bid struct {
	ID               string              `json:"id"`
	AuctionID        string              `json:"auction_id"`
	BidderID         string              `json:"bidder_id"`
	Amount           decimal.Decimal     `json:"amount"`
	Status           string              `json:"status"`
	IsAutoBid        bool                `json:"is_auto_bid"`
	MaxAutoBidAmount decimal.NullDecimal `json:"max_auto_bid_amount,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type PlaceBidRequest struct {
	Amount           decimal.Decimal  `json:"amount"`
	IsAutoBid        bool             `json:"is_auto_bid"`
	MaxAutoBidAmount *decimal.Decimal `json:"max_auto_bid_amount,omitempty"`
}
