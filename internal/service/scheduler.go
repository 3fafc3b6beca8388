package service

import (
	"context"
	"log"
	"time"
)

// AuctionTicker is the scheduler's view of the auction service: the two
// periodic sweeps it drives.
type AuctionTicker interface {
	StartDueAuctions(ctx context.Context)
	ServiceLiveAuctions(ctx context.Context)
}

// Scheduler owns the two auction clocks: a slow tick that promotes due
// SCHEDULED auctions and a fast tick that services LIVE ones (closing
// overdue auctions, running the auto-bid resolver).
type Scheduler struct {
	auctions     AuctionTicker
	promoteEvery time.Duration
	liveEvery    time.Duration
}

func NewScheduler(auctions AuctionTicker, promoteEvery, liveEvery time.Duration) *Scheduler {
	return &Scheduler{
		auctions:     auctions,
		promoteEvery: promoteEvery,
		liveEvery:    liveEvery,
	}
}

// Run blocks until ctx is cancelled. Both sweeps fire once at startup so a
// restart picks up overdue work immediately.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("SCHEDULER: promote every %s, live sweep every %s", s.promoteEvery, s.liveEvery)

	s.auctions.StartDueAuctions(ctx)
	s.auctions.ServiceLiveAuctions(ctx)

	promote := time.NewTicker(s.promoteEvery)
	defer promote.Stop()
	live := time.NewTicker(s.liveEvery)
	defer live.Stop()

	for {
		select {
		case <-promote.C:
			s.auctions.StartDueAuctions(ctx)
		case <-live.C:
			s.auctions.ServiceLiveAuctions(ctx)
		case <-ctx.Done():
			log.Println("SCHEDULER: stopped")
			return
		}
	}
}
