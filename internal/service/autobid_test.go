package service

import (
	"testing"
	"time"

	"farmdirect-backend/internal/model"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func liveAuction(currentBid string, winner string) *model.Auction {
	a := &model.Auction{
		ID:              "a1",
		Status:          model.AuctionLive,
		StartingBid:     decimal.NewFromInt(100),
		MinBidIncrement: decimal.NewFromInt(5),
	}
	if currentBid != "" {
		a.CurrentBid.Decimal = decimal.RequireFromString(currentBid)
		a.CurrentBid.Valid = true
	}
	if winner != "" {
		a.WinningBidderID = &winner
	}
	return a
}

func proxy(id, bidder, max string, created time.Time) model.Bid {
	b := model.Bid{
		ID:        id,
		AuctionID: "a1",
		BidderID:  bidder,
		Status:    model.BidActive,
		IsAutoBid: true,
		CreatedAt: created,
	}
	b.MaxAutoBidAmount.Decimal = decimal.RequireFromString(max)
	b.MaxAutoBidAmount.Valid = true
	return b
}

func TestNextAutoBid_CountersLeader(t *testing.T) {
	now := time.Now()
	a := liveAuction("110", "manual-bidder")
	proxies := []model.Bid{
		proxy("p1", "proxy-bidder", "150", now),
	}

	cand := nextAutoBid(a, proxies, nil)

	check.NotNil(t, cand)
	check.Equal(t, "proxy-bidder", cand.BidderID)
	// Counter at the cheapest winning price, not the ceiling.
	check.True(t, cand.Amount.Equal(decimal.NewFromInt(115)))
	check.True(t, cand.Max.Equal(decimal.NewFromInt(150)))
}

func TestNextAutoBid_LeaderDoesNotCounterItself(t *testing.T) {
	now := time.Now()
	a := liveAuction("115", "proxy-bidder")
	proxies := []model.Bid{
		proxy("p1", "proxy-bidder", "150", now),
	}

	check.Nil(t, nextAutoBid(a, proxies, nil))
}

func TestNextAutoBid_CeilingTooLow(t *testing.T) {
	now := time.Now()
	a := liveAuction("148", "manual-bidder")
	proxies := []model.Bid{
		proxy("p1", "proxy-bidder", "150", now), // needs 153, ceiling 150
	}

	check.Nil(t, nextAutoBid(a, proxies, nil))
}

func TestNextAutoBid_ExactCeilingStillBids(t *testing.T) {
	now := time.Now()
	a := liveAuction("145", "manual-bidder")
	proxies := []model.Bid{
		proxy("p1", "proxy-bidder", "150", now),
	}

	cand := nextAutoBid(a, proxies, nil)
	check.NotNil(t, cand)
	check.True(t, cand.Amount.Equal(decimal.NewFromInt(150)))
}

// Being outbid does not retire a proxy: its standing ceiling keeps
// countering until exhausted. A manual 150 against a 200 ceiling draws an
// automatic 160 reply (increment 10) even though the proxy's last bid row
// was demoted to OUTBID when the manual bid landed.
func TestNextAutoBid_OutbidProxyStillCounters(t *testing.T) {
	now := time.Now()
	a := liveAuction("150", "bob")
	a.MinBidIncrement = decimal.NewFromInt(10)
	standing := proxy("p1", "alice", "200", now.Add(-time.Hour))
	standing.Status = model.BidOutbid

	cand := nextAutoBid(a, []model.Bid{standing}, nil)

	check.NotNil(t, cand)
	check.Equal(t, "alice", cand.BidderID)
	check.True(t, cand.Amount.Equal(decimal.NewFromInt(160)))
	check.True(t, cand.Max.Equal(decimal.NewFromInt(200)))
}

func TestNextAutoBid_EarliestProxyWinsTies(t *testing.T) {
	now := time.Now()
	a := liveAuction("110", "manual-bidder")
	// Repository orders by created_at; first eligible entry drives.
	proxies := []model.Bid{
		proxy("p1", "early-bidder", "200", now.Add(-time.Hour)),
		proxy("p2", "late-bidder", "200", now),
	}

	cand := nextAutoBid(a, proxies, nil)
	check.NotNil(t, cand)
	check.Equal(t, "early-bidder", cand.BidderID)
}

func TestNextAutoBid_BlockedBidderSkipped(t *testing.T) {
	now := time.Now()
	a := liveAuction("110", "manual-bidder")
	proxies := []model.Bid{
		proxy("p1", "blocked-bidder", "200", now.Add(-time.Hour)),
		proxy("p2", "ok-bidder", "200", now),
	}

	cand := nextAutoBid(a, proxies, map[string]bool{"blocked-bidder": true})
	check.NotNil(t, cand)
	check.Equal(t, "ok-bidder", cand.BidderID)
}

func TestNextAutoBid_NoBidsYetUsesStartingBid(t *testing.T) {
	now := time.Now()
	a := liveAuction("", "")
	proxies := []model.Bid{
		proxy("p1", "proxy-bidder", "150", now),
	}

	cand := nextAutoBid(a, proxies, nil)
	check.NotNil(t, cand)
	check.True(t, cand.Amount.Equal(decimal.NewFromInt(100)))
}

// Simulates a whole cascade by replaying nextAutoBid against in-memory state:
// two proxies ping-pong until the lower ceiling is exhausted, and the higher
// ceiling wins at one increment past it.
func TestAutoBidCascade_Terminates(t *testing.T) {
	now := time.Now()
	a := liveAuction("100", "manual-bidder")
	proxies := []model.Bid{
		proxy("p1", "alice", "130", now.Add(-2*time.Hour)),
		proxy("p2", "bob", "120", now.Add(-time.Hour)),
	}

	rounds := 0
	for rounds < maxAutoBidRounds {
		cand := nextAutoBid(a, proxies, nil)
		if cand == nil {
			break
		}
		a.CurrentBid.Decimal = cand.Amount
		a.CurrentBid.Valid = true
		winner := cand.BidderID
		a.WinningBidderID = &winner
		rounds++
	}

	check.True(t, rounds < maxAutoBidRounds)
	check.NotNil(t, a.WinningBidderID)
	check.Equal(t, "alice", *a.WinningBidderID)
	// Final price never exceeds the winning ceiling.
	check.True(t, a.CurrentBid.Decimal.LessThanOrEqual(decimal.NewFromInt(130)))
	// And it beat bob's ceiling by at most one increment.
	check.True(t, a.CurrentBid.Decimal.GreaterThan(decimal.NewFromInt(120).Sub(a.MinBidIncrement)))
}
