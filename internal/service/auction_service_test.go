package service

import (
	"testing"
	"time"

	"farmdirect-backend/internal/model"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func TestReserveMet(t *testing.T) {
	s := &AuctionService{}

	a := &model.Auction{}

	// No bids at all: nothing to sell.
	check.False(t, s.reserveMet(a))

	// Any bid wins when no reserve is set.
	a.CurrentBid.Decimal = decimal.NewFromInt(100)
	a.CurrentBid.Valid = true
	check.True(t, s.reserveMet(a))

	// Reserve above the current bid blocks the sale.
	a.ReservePrice.Decimal = decimal.NewFromInt(150)
	a.ReservePrice.Valid = true
	check.False(t, s.reserveMet(a))

	// Meeting the reserve exactly is enough.
	a.CurrentBid.Decimal = decimal.NewFromInt(150)
	check.True(t, s.reserveMet(a))
}

func closingAuction(buffer, extensions int, end time.Time) *model.Auction {
	return &model.Auction{
		Status:            model.AuctionLive,
		EndTime:           end,
		AntiSnipingBuffer: buffer,
		Extensions:        extensions,
	}
}

// A check inside the closing window pushes the end out by exactly the
// buffer, anchored on the scheduled end rather than the current clock.
func TestSnipeExtension_AddsExactlyTheBuffer(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := closingAuction(30, 0, end)

	newEnd, ok := snipeExtension(a, end.Add(-10*time.Second), 0)

	check.True(t, ok)
	check.Equal(t, end.Add(30*time.Second), newEnd)
}

func TestSnipeExtension_OutsideWindow(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := closingAuction(30, 0, end)

	_, ok := snipeExtension(a, end.Add(-31*time.Second), 0)
	check.False(t, ok)
}

func TestSnipeExtension_ZeroBufferNeverExtends(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := closingAuction(0, 0, end)

	_, ok := snipeExtension(a, end.Add(-time.Second), 0)
	check.False(t, ok)
}

func TestSnipeExtension_CapStopsExtensions(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := end.Add(-10 * time.Second)

	_, ok := snipeExtension(closingAuction(30, 3, end), now, 3)
	check.False(t, ok)

	_, ok = snipeExtension(closingAuction(30, 2, end), now, 3)
	check.True(t, ok)

	// Cap zero means unlimited.
	_, ok = snipeExtension(closingAuction(30, 500, end), now, 0)
	check.True(t, ok)
}

func TestValidSnipingBuffer(t *testing.T) {
	check.True(t, validSnipingBuffer(0))
	check.True(t, validSnipingBuffer(30))
	check.True(t, validSnipingBuffer(300))
	check.False(t, validSnipingBuffer(-1))
	check.False(t, validSnipingBuffer(301))
}

func TestAuctionChannel(t *testing.T) {
	check.Equal(t, "auction:abc-123", AuctionChannel("abc-123"))
}

func TestMultiBroadcaster_FansOut(t *testing.T) {
	var got []string
	rec := recordingBroadcaster{&got}

	m := MultiBroadcaster{rec, rec}
	m.Publish("auction:a1", model.NewWSEvent(model.EventBidPlaced, nil))

	check.Equal(t, 2, len(got))
	check.Equal(t, "auction:a1", got[0])
}

type recordingBroadcaster struct {
	channels *[]string
}

func (r recordingBroadcaster) Publish(channel string, event *model.WSEvent) {
	*r.channels = append(*r.channels, channel)
}
