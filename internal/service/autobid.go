package service

import (
	"farmdirect-backend/internal/model"

	"github.com/shopspring/decimal"
)

// maxAutoBidRounds caps a single resolver cascade. The price strictly
// increases each round so the loop terminates anyway; the cap guards against
// pathological increment values.
const maxAutoBidRounds = 500

// autoBidCandidate is one proxy counter-bid the resolver wants placed.
type autoBidCandidate struct {
	BidID    string // the standing proxy bid this counter derives from
	BidderID string
	Amount   decimal.Decimal
	Max      decimal.Decimal
}

// nextAutoBid picks the proxy that should counter the current leader, or nil
// when no proxy can. Proxies arrive ordered by creation time, so ties go to
// the earliest registered ceiling. A proxy is skipped when it belongs to the
// leader, when its bidder is blocked (failed admission this cascade), or when
// its ceiling cannot cover the minimum next bid.
func nextAutoBid(a *model.Auction, proxies []model.Bid, blocked map[string]bool) *autoBidCandidate {
	minNext := a.NextMinBid()

	for i := range proxies {
		p := &proxies[i]
		if !p.MaxAutoBidAmount.Valid {
			continue
		}
		if a.WinningBidderID != nil && *a.WinningBidderID == p.BidderID {
			continue
		}
		if blocked[p.BidderID] {
			continue
		}
		if p.MaxAutoBidAmount.Decimal.LessThan(minNext) {
			continue
		}
		return &autoBidCandidate{
			BidID:    p.ID,
			BidderID: p.BidderID,
			Amount:   minNext,
			Max:      p.MaxAutoBidAmount.Decimal,
		}
	}
	return nil
}
