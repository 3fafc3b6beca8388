package model

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func testAuction() *Auction {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &Auction{
		ID:                "a1",
		Status:            AuctionScheduled,
		StartTime:         start,
		EndTime:           start.Add(2 * time.Hour),
		StartingBid:       decimal.NewFromInt(100),
		MinBidIncrement:   decimal.NewFromInt(5),
		AntiSnipingBuffer: 120,
	}
}

func TestCanStart(t *testing.T) {
	a := testAuction()

	check.False(t, a.CanStart(a.StartTime.Add(-time.Minute)))
	check.True(t, a.CanStart(a.StartTime))
	check.True(t, a.CanStart(a.StartTime.Add(time.Minute)))

	a.Status = AuctionLive
	check.False(t, a.CanStart(a.StartTime.Add(time.Minute)))

	a.Status = AuctionCancelled
	check.False(t, a.CanStart(a.StartTime.Add(time.Minute)))
}

func TestShouldEnd(t *testing.T) {
	a := testAuction()
	a.Status = AuctionLive

	check.False(t, a.ShouldEnd(a.EndTime.Add(-time.Second)))
	check.True(t, a.ShouldEnd(a.EndTime))
	check.True(t, a.ShouldEnd(a.EndTime.Add(time.Hour)))

	// Only live auctions end; a paused one waits for resume.
	a.Status = AuctionPaused
	check.False(t, a.ShouldEnd(a.EndTime.Add(time.Hour)))
}

func TestTimeRemaining(t *testing.T) {
	a := testAuction()
	a.Status = AuctionLive

	check.Equal(t, 2*time.Hour, a.TimeRemaining(a.StartTime))
	check.Equal(t, 30*time.Minute, a.TimeRemaining(a.EndTime.Add(-30*time.Minute)))
	check.Equal(t, time.Duration(0), a.TimeRemaining(a.EndTime.Add(time.Minute)))

	a.Status = AuctionEnded
	check.Equal(t, time.Duration(0), a.TimeRemaining(a.StartTime))
}

func TestNextMinBid(t *testing.T) {
	a := testAuction()

	// No bids yet: the starting bid itself is acceptable.
	check.True(t, a.NextMinBid().Equal(decimal.NewFromInt(100)))

	a.CurrentBid.Decimal = decimal.NewFromInt(150)
	a.CurrentBid.Valid = true
	check.True(t, a.NextMinBid().Equal(decimal.NewFromInt(155)))
}

func TestNewAuctionView(t *testing.T) {
	a := testAuction()
	a.Status = AuctionLive
	a.CurrentBid.Decimal = decimal.NewFromFloat(102.50)
	a.CurrentBid.Valid = true

	v := NewAuctionView(a, a.EndTime.Add(-90*time.Second))

	check.Equal(t, int64(90), v.TimeRemainingSeconds)
	check.True(t, v.NextMinBid.Equal(decimal.NewFromFloat(107.50)))
}

func TestSnipeWindow(t *testing.T) {
	a := testAuction()
	check.Equal(t, 2*time.Minute, a.SnipeWindow())

	a.AntiSnipingBuffer = 0
	check.Equal(t, time.Duration(0), a.SnipeWindow())
}
