package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventBidPlaced       = "bid_placed"
	EventAuctionStarted  = "auction_started"
	EventAuctionEnded    = "auction_ended"
	EventAuctionExtended = "auction_extended"
)

type WSEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewWSEvent wraps a payload in the event envelope. Payloads are our own
// structs, so marshalling cannot fail in practice.
func NewWSEvent(eventType string, payload any) *WSEvent {
	data, _ := json.Marshal(payload)
	return &WSEvent{Type: eventType, Data: data}
}

type BidSummary struct {
	ID        string          `json:"id"`
	BidderID  string          `json:"bidderId"`
	Amount    decimal.Decimal `json:"amount"`
	IsAutoBid bool            `json:"isAutoBid"`
	CreatedAt time.Time       `json:"createdAt"`
}

type BidPlacedEvent struct {
	AuctionID  string          `json:"auctionId"`
	Bid        BidSummary      `json:"bid"`
	CurrentBid decimal.Decimal `json:"currentBid"`
	NextMinBid decimal.Decimal `json:"nextMinBid"`
}

type AuctionStartedEvent struct {
	AuctionID string    `json:"auctionId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type WinningBidSummary struct {
	ID       string          `json:"id"`
	BidderID string          `json:"bidderId"`
	Amount   decimal.Decimal `json:"amount"`
}

type AuctionEndedEvent struct {
	AuctionID  string             `json:"auctionId"`
	EndTime    time.Time          `json:"endTime"`
	WinningBid *WinningBidSummary `json:"winningBid"`
	ReserveMet bool               `json:"reserveMet"`
}

type AuctionExtendedEvent struct {
	AuctionID  string    `json:"auctionId"`
	NewEndTime time.Time `json:"newEndTime"`
	Reason     string    `json:"reason"`
}
