package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AuctionScheduled = "SCHEDULED"
	AuctionLive      = "LIVE"
	AuctionPaused    = "PAUSED"
	AuctionEnded     = "ENDED"
	AuctionCancelled = "CANCELLED"
	AuctionCompleted = "COMPLETED"
)

const (
	AuctionEnglish = "ENGLISH" // ascending price
	AuctionDutch   = "DUTCH"   // descending price
	AuctionSealed  = "SEALED"  // sealed bids
)

type Auction struct {
	ID                string              `json:"id"`
	ListingID         string              `json:"listing_id"`
	FarmerID          string              `json:"farmer_id"`
	Type              string              `json:"type"`
	Status            string              `json:"status"`
	StartTime         time.Time           `json:"start_time"`
	EndTime           time.Time           `json:"end_time"`
	ActualStartTime   *time.Time          `json:"actual_start_time,omitempty"`
	ActualEndTime     *time.Time          `json:"actual_end_time,omitempty"`
	StartingBid       decimal.Decimal     `json:"starting_bid"`
	ReservePrice      decimal.NullDecimal `json:"reserve_price,omitempty"`
	CurrentBid        decimal.NullDecimal `json:"current_bid,omitempty"`
	MinBidIncrement   decimal.Decimal     `json:"min_bid_increment"`
	AntiSnipingBuffer int                 `json:"anti_sniping_buffer"` // seconds
	Extensions        int                 `json:"extensions"`
	ReserveMet        bool                `json:"reserve_met"`
	WinningBidID      *string             `json:"winning_bid_id,omitempty"`
	WinningBidderID   *string             `json:"winning_bidder_id,omitempty"`
	WinningBidAmount  decimal.NullDecimal `json:"winning_bid_amount,omitempty"`
	TotalBids         int                 `json:"total_bids"`
	UniqueBidders     int                 `json:"unique_bidders"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`

	// Loaded on detail reads only.
	Bids []Bid `json:"bids,omitempty"`
}

func (a *Auction) IsLive() bool {
	return a.Status == AuctionLive
}

// CanStart reports whether the auction is due for promotion to LIVE.
func (a *Auction) CanStart(now time.Time) bool {
	return a.Status == AuctionScheduled && !now.Before(a.StartTime)
}

// ShouldEnd reports whether a live auction has passed its end time.
func (a *Auction) ShouldEnd(now time.Time) bool {
	return a.IsLive() && !now.Before(a.EndTime)
}

// TimeRemaining returns how long until the auction closes. Zero when the
// auction is not live or the end time has passed.
func (a *Auction) TimeRemaining(now time.Time) time.Duration {
	if !a.IsLive() {
		return 0
	}
	remaining := a.EndTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NextMinBid is the smallest amount the next bid must reach: the starting bid
// until a bid lands, then current bid plus the minimum increment.
func (a *Auction) NextMinBid() decimal.Decimal {
	if !a.CurrentBid.Valid {
		return a.StartingBid
	}
	return a.CurrentBid.Decimal.Add(a.MinBidIncrement)
}

// SnipeWindow is the anti-sniping buffer as a duration.
func (a *Auction) SnipeWindow() time.Duration {
	return time.Duration(a.AntiSnipingBuffer) * time.Second
}

// AuctionView decorates an auction with the time-dependent derived fields
// clients render (countdown, minimum next bid).
type AuctionView struct {
	*Auction
	TimeRemainingSeconds int64           `json:"time_remaining_seconds"`
	NextMinBid           decimal.Decimal `json:"next_min_bid"`
}

func NewAuctionView(a *Auction, now time.Time) *AuctionView {
	return &AuctionView{
		Auction:              a,
		TimeRemainingSeconds: int64(a.TimeRemaining(now) / time.Second),
		NextMinBid:           a.NextMinBid(),
	}
}

type CreateAuctionRequest struct {
	ListingID         string           `json:"listing_id"`
	Type              string           `json:"type"`
	StartTime         time.Time        `json:"start_time"`
	EndTime           time.Time        `json:"end_time"`
	StartingBid       decimal.Decimal  `json:"starting_bid"`
	ReservePrice      *decimal.Decimal `json:"reserve_price,omitempty"`
	MinBidIncrement   *decimal.Decimal `json:"min_bid_increment,omitempty"`
	AntiSnipingBuffer *int             `json:"anti_sniping_buffer,omitempty"`
}
