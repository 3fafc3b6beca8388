package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EscrowPending  = "PENDING"
	EscrowHeld     = "HELD"
	EscrowReleased = "RELEASED"
	EscrowRefunded = "REFUNDED"
	EscrowDisputed = "DISPUTED"
	EscrowExpired  = "EXPIRED"
)

const (
	EscrowAuctionDeposit     = "AUCTION_DEPOSIT"
	EscrowTransactionDeposit = "TRANSACTION_DEPOSIT"
)

// EscrowHold is a reserved buyer deposit gating auction admission. The
// auction core only reads holds and requests release/refund; the payments
// side owns the gateway lifecycle.
type EscrowHold struct {
	ID              string          `json:"id"`
	BuyerID         string          `json:"buyer_id"`
	ListingID       string          `json:"listing_id"`
	AuctionID       *string         `json:"auction_id,omitempty"`
	Type            string          `json:"type"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentIntentID string          `json:"payment_intent_id"`
	PaymentGateway  string          `json:"payment_gateway"`
	ExpiryTime      time.Time       `json:"expiry_time"`
	HeldAt          *time.Time      `json:"held_at,omitempty"`
	ReleasedAt      *time.Time      `json:"released_at,omitempty"`
	RefundedAt      *time.Time      `json:"refunded_at,omitempty"`
	Reason          *string         `json:"reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type DepositRequest struct {
	ListingID string          `json:"listing_id"`
	Amount    decimal.Decimal `json:"amount"`
	Gateway   string          `json:"gateway"`
}
