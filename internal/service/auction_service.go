package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"farmdirect-backend/internal/model"
	"farmdirect-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrAuctionNotLive       = errors.New("auction is not live")
	ErrBidTooLow            = errors.New("bid below minimum")
	ErrInsufficientEscrow   = errors.New("no sufficient escrow deposit for this listing")
	ErrOwnAuctionBid        = errors.New("cannot bid on your own auction")
	ErrBidderNotEligible    = errors.New("bidder account must be active with verified KYC")
	ErrDuplicateScheduled   = errors.New("listing already has a scheduled auction")
	ErrInvalidAuctionWindow = errors.New("end time must be after start time")
	ErrInvalidStartingBid   = errors.New("starting bid must be greater than zero")
	ErrInvalidReserve       = errors.New("reserve price must be at least the starting bid")
	ErrInvalidAutoBidMax    = errors.New("auto-bid maximum must be at least the bid amount")
	ErrInvalidTransition    = errors.New("invalid auction state transition")
	ErrNotAuctionOwner      = errors.New("not the auction owner")
	ErrUnsupportedType      = errors.New("invalid auction type")
	ErrBiddingNotSupported  = errors.New("bidding is only supported for ENGLISH auctions")
	ErrStartTimeInPast      = errors.New("start time must be in the future")
	ErrAuctionTooShort      = errors.New("auction must run at least 5 minutes")
	ErrInvalidSnipingBuffer = errors.New("anti-sniping buffer must be between 0 and 300 seconds")
)

const (
	defaultMinIncrement  = "1.00"
	defaultSnipingBuffer = 30  // seconds
	maxSnipingBuffer     = 300 // seconds
	minAuctionDuration   = 5 * time.Minute
)

var auctionTypes = map[string]bool{
	model.AuctionEnglish: true,
	model.AuctionDutch:   true,
	model.AuctionSealed:  true,
}

func validSnipingBuffer(seconds int) bool {
	return seconds >= 0 && seconds <= maxSnipingBuffer
}

// pendingEvent is an event produced inside the auction lock, published only
// after the transaction commits.
type pendingEvent struct {
	channel string
	event   *model.WSEvent
}

type AuctionService struct {
	auctionRepo *repository.AuctionRepository
	bidRepo     *repository.BidRepository
	escrowRepo  *repository.EscrowRepository
	listingRepo *repository.ListingRepository
	userRepo    *repository.UserRepository
	eventRepo   *repository.AuctionEventRepository
	broadcaster Broadcaster

	// 0 means unlimited anti-sniping extensions.
	maxExtensions int
}

func NewAuctionService(
	auctionRepo *repository.AuctionRepository,
	bidRepo *repository.BidRepository,
	escrowRepo *repository.EscrowRepository,
	listingRepo *repository.ListingRepository,
	userRepo *repository.UserRepository,
	eventRepo *repository.AuctionEventRepository,
	broadcaster Broadcaster,
	maxExtensions int,
) *AuctionService {
	return &AuctionService{
		auctionRepo:   auctionRepo,
		bidRepo:       bidRepo,
		escrowRepo:    escrowRepo,
		listingRepo:   listingRepo,
		userRepo:      userRepo,
		eventRepo:     eventRepo,
		broadcaster:   broadcaster,
		maxExtensions: maxExtensions,
	}
}

func (s *AuctionService) Create(ctx context.Context, farmerID string, req *model.CreateAuctionRequest) (*model.Auction, error) {
	farmer, err := s.userRepo.GetByID(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("load farmer: %w", err)
	}
	if !farmer.CanCreateAuctions() {
		return nil, ErrFarmerNotVerified
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	if listing.FarmerID != farmerID {
		return nil, ErrNotListingOwner
	}
	if listing.Status != model.ListingActive {
		return nil, ErrListingNotActive
	}

	if req.Type == "" {
		req.Type = model.AuctionEnglish
	}
	if !auctionTypes[req.Type] {
		return nil, ErrUnsupportedType
	}
	if req.StartTime.Before(time.Now()) {
		return nil, ErrStartTimeInPast
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidAuctionWindow
	}
	if req.EndTime.Sub(req.StartTime) < minAuctionDuration {
		return nil, ErrAuctionTooShort
	}
	if req.StartingBid.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidStartingBid
	}
	if req.ReservePrice != nil && req.ReservePrice.LessThan(req.StartingBid) {
		return nil, ErrInvalidReserve
	}

	increment := decimal.RequireFromString(defaultMinIncrement)
	if req.MinBidIncrement != nil {
		if req.MinBidIncrement.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidStartingBid
		}
		increment = *req.MinBidIncrement
	}

	buffer := defaultSnipingBuffer
	if req.AntiSnipingBuffer != nil {
		if !validSnipingBuffer(*req.AntiSnipingBuffer) {
			return nil, ErrInvalidSnipingBuffer
		}
		buffer = *req.AntiSnipingBuffer
	}

	// One pending auction per listing at a time; the partial unique index
	// backs this up against concurrent creates.
	if exists, err := s.auctionRepo.HasScheduledForListing(ctx, listing.ID); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrDuplicateScheduled
	}

	a := &model.Auction{
		ListingID:         listing.ID,
		FarmerID:          farmerID,
		Type:              req.Type,
		Status:            model.AuctionScheduled,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		StartingBid:       req.StartingBid,
		MinBidIncrement:   increment,
		AntiSnipingBuffer: buffer,
	}
	if req.ReservePrice != nil {
		a.ReservePrice.Decimal = *req.ReservePrice
		a.ReservePrice.Valid = true
	}

	created, err := s.auctionRepo.Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}
	log.Printf("AUCTION: %s scheduled for listing %s (%s - %s)", created.ID, listing.ID,
		created.StartTime.Format(time.RFC3339), created.EndTime.Format(time.RFC3339))
	return created, nil
}

// Start promotes a SCHEDULED auction whose start time has arrived. Empty
// actorID means an internal caller (scheduler, admin surface); otherwise the
// actor must own the auction.
func (s *AuctionService) Start(ctx context.Context, auctionID, actorID string) error {
	var events []pendingEvent
	err := s.auctionRepo.WithAuctionLock(ctx, auctionID, func(ctx context.Context, tx pgx.Tx, a *model.Auction) error {
		if actorID != "" && a.FarmerID != actorID {
			return ErrNotAuctionOwner
		}
		return s.startLocked(ctx, tx, a, time.Now(), &events)
	})
	if err != nil {
		return s.mapLockErr(err)
	}
	s.publish(events)
	return nil
}

func (s *AuctionService) startLocked(ctx context.Context, tx pgx.Tx, a *model.Auction, now time.Time, events *[]pendingEvent) error {
	if !a.CanStart(now) {
		return ErrInvalidTransition
	}
	a.Status = model.AuctionLive
	a.ActualStartTime = &now
	if err := s.auctionRepo.SaveTransitionTx(ctx, tx, a); err != nil {
		return err
	}

	ev := model.NewWSEvent(model.EventAuctionStarted, model.AuctionStartedEvent{
		AuctionID: a.ID,
		StartTime: now,
		EndTime:   a.EndTime,
	})
	if err := s.eventRepo.InsertTx(ctx, tx, a.ID, ev.Type, ev.Data); err != nil {
		return err
	}
	*events = append(*events, pendingEvent{AuctionChannel(a.ID), ev})
	log.Printf("AUCTION: %s is live", a.ID)
	return nil
}

// End closes a live (or paused) auction, decides the winner, and settles
// escrow holds. Empty actorID means an internal caller; otherwise the actor
// must own the auction.
func (s *AuctionService) End(ctx context.Context, auctionID, actorID string) error {
	var events []pendingEvent
	var settled *model.Auction
	err := s.auctionRepo.WithAuctionLock(ctx, auctionID, func(ctx context.Context, tx pgx.Tx, a *model.Auction) error {
		if actorID != "" && a.FarmerID != actorID {
			return ErrNotAuctionOwner
		}
		if err := s.endLocked(ctx, tx, a, time.Now(), &events); err != nil {
			return err
		}
		settled = a
		return nil
	})
	if err != nil {
		return s.mapLockErr(err)
	}
	s.publish(events)
	s.settleEscrow(ctx, settled)
	return nil
}

func (s *AuctionService) endLocked(ctx context.Context, tx pgx.Tx, a *model.Auction, now time.Time, events *[]pendingEvent) error {
	if a.Status != model.AuctionLive && a.Status != model.AuctionPaused {
		return ErrInvalidTransition
	}

	a.Status = model.AuctionEnded
	a.ActualEndTime = &now
	a.ReserveMet = s.reserveMet(a)

	var winning *model.WinningBidSummary
	if a.WinningBidID != nil && a.ReserveMet {
		if err := s.bidRepo.SetStatusTx(ctx, tx, *a.WinningBidID, model.BidWinning); err != nil {
			return err
		}
		winning = &model.WinningBidSummary{
			ID:       *a.WinningBidID,
			BidderID: *a.WinningBidderID,
			Amount:   a.WinningBidAmount.Decimal,
		}
	}

	if err := s.auctionRepo.SaveTransitionTx(ctx, tx, a); err != nil {
		return err
	}

	ev := model.NewWSEvent(model.EventAuctionEnded, model.AuctionEndedEvent{
		AuctionID:  a.ID,
		EndTime:    now,
		WinningBid: winning,
		ReserveMet: a.ReserveMet,
	})
	if err := s.eventRepo.InsertTx(ctx, tx, a.ID, ev.Type, ev.Data); err != nil {
		return err
	}
	*events = append(*events, pendingEvent{AuctionChannel(a.ID), ev})

	if winning != nil {
		log.Printf("AUCTION: %s ended, won by %s at %s", a.ID, winning.BidderID, winning.Amount.StringFixed(2))
	} else {
		log.Printf("AUCTION: %s ended with no sale (reserve met: %v)", a.ID, a.ReserveMet)
	}
	return nil
}

// reserveMet: no reserve means any bid wins; with a reserve the current bid
// must reach it.
func (s *AuctionService) reserveMet(a *model.Auction) bool {
	if !a.CurrentBid.Valid {
		return false
	}
	if !a.ReservePrice.Valid {
		return true
	}
	return a.CurrentBid.Decimal.GreaterThanOrEqual(a.ReservePrice.Decimal)
}

// settleEscrow refunds every non-winning HELD deposit on the listing. The
// winner's hold stays HELD as part payment; the listing is marked SOLD.
// Runs after the closing transaction commits; failures are logged, not
// propagated, and the next admin sweep can retry.
func (s *AuctionService) settleEscrow(ctx context.Context, a *model.Auction) {
	if a == nil {
		return
	}
	sold := a.ReserveMet && a.WinningBidderID != nil

	holds, err := s.escrowRepo.ListHeldByListing(ctx, a.ListingID)
	if err != nil {
		log.Printf("AUCTION: %s settle: list holds: %v", a.ID, err)
		return
	}
	for _, h := range holds {
		if sold && h.BuyerID == *a.WinningBidderID {
			// The winner's hold becomes part payment; linking it to the
			// auction lets its release complete the sale.
			if err := s.escrowRepo.SetAuctionID(ctx, h.ID, a.ID); err != nil {
				log.Printf("AUCTION: %s settle: link winner hold %s: %v", a.ID, h.ID, err)
			}
			continue
		}
		reason := "auction ended"
		if a.Status == model.AuctionCancelled {
			reason = "auction cancelled"
		}
		if _, err := s.escrowRepo.UpdateStatus(ctx, h.ID, model.EscrowRefunded, reason); err != nil {
			log.Printf("AUCTION: %s settle: refund hold %s: %v", a.ID, h.ID, err)
		}
	}

	if sold {
		if err := s.listingRepo.UpdateStatus(ctx, a.ListingID, model.ListingSold); err != nil {
			log.Printf("AUCTION: %s settle: mark listing sold: %v", a.ID, err)
		}
	}
}

// PlaceBid runs the whole bid protocol under the auction lock: admission,
// amount check, acceptance, anti-sniping extension, and the auto-bid cascade.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID, bidderID string, req *model.PlaceBidRequest) (*model.Bid, *model.Auction, error) {
	bidder, err := s.userRepo.GetByID(ctx, bidderID)
	if err != nil {
		return nil, nil, fmt.Errorf("load bidder: %w", err)
	}
	if !bidder.CanParticipateInAuctions() {
		return nil, nil, ErrBidderNotEligible
	}

	if req.IsAutoBid {
		if req.MaxAutoBidAmount == nil || req.MaxAutoBidAmount.LessThan(req.Amount) {
			return nil, nil, ErrInvalidAutoBidMax
		}
	}

	var (
		placed  *model.Bid
		updated *model.Auction
		events  []pendingEvent
	)
	err = s.auctionRepo.WithAuctionLock(ctx, auctionID, func(ctx context.Context, tx pgx.Tx, a *model.Auction) error {
		now := time.Now()
		if a.Type != model.AuctionEnglish {
			return ErrBiddingNotSupported
		}
		if !a.IsLive() || a.ShouldEnd(now) {
			return ErrAuctionNotLive
		}
		if a.FarmerID == bidderID {
			return ErrOwnAuctionBid
		}

		listing, err := s.listingRepo.GetByID(ctx, a.ListingID)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		minNext := a.NextMinBid()
		if req.Amount.LessThan(minNext) {
			return fmt.Errorf("%w: minimum is %s", ErrBidTooLow, minNext.StringFixed(2))
		}

		if !s.hasAdmission(ctx, tx, bidderID, listing, req.Amount) {
			return ErrInsufficientEscrow
		}

		bid := &model.Bid{
			AuctionID: a.ID,
			BidderID:  bidderID,
			Amount:    req.Amount,
			Status:    model.BidActive,
			IsAutoBid: req.IsAutoBid,
		}
		if req.IsAutoBid {
			bid.MaxAutoBidAmount.Decimal = *req.MaxAutoBidAmount
			bid.MaxAutoBidAmount.Valid = true
		}

		if err := s.acceptBid(ctx, tx, a, bid, &events); err != nil {
			return err
		}
		if err := s.maybeExtend(ctx, tx, a, now, &events); err != nil {
			return err
		}
		if err := s.resolveAutoBids(ctx, tx, a, listing, &events); err != nil {
			return err
		}

		placed = bid
		updated = a
		return nil
	})
	if err != nil {
		return nil, nil, s.mapLockErr(err)
	}

	s.publish(events)
	return placed, updated, nil
}

// hasAdmission checks the bidder's HELD escrow covers the deposit this bid
// amount requires, inside the caller's transaction.
func (s *AuctionService) hasAdmission(ctx context.Context, tx pgx.Tx, bidderID string, listing *model.Listing, bidAmount decimal.Decimal) bool {
	hold, err := s.escrowRepo.FindActiveHoldTx(ctx, tx, bidderID, listing.ID)
	if err != nil || hold == nil {
		return false
	}
	return hold.Amount.GreaterThanOrEqual(RequiredEscrow(listing, bidAmount))
}

// acceptBid inserts the bid, demotes the previous leader, and promotes the
// auction row. The in-memory auction reflects the accepted bid on return.
func (s *AuctionService) acceptBid(ctx context.Context, tx pgx.Tx, a *model.Auction, bid *model.Bid, events *[]pendingEvent) error {
	newBidder := true
	if prior, err := s.bidRepo.HasAcceptedBidTx(ctx, tx, a.ID, bid.BidderID); err != nil {
		return err
	} else if prior {
		newBidder = false
	}

	if a.WinningBidID != nil {
		if err := s.bidRepo.SetStatusTx(ctx, tx, *a.WinningBidID, model.BidOutbid); err != nil {
			return err
		}
	}

	if err := s.bidRepo.InsertTx(ctx, tx, bid); err != nil {
		return err
	}
	if err := s.auctionRepo.SetWinningBidTx(ctx, tx, a, bid, newBidder); err != nil {
		return err
	}

	ev := model.NewWSEvent(model.EventBidPlaced, model.BidPlacedEvent{
		AuctionID: a.ID,
		Bid: model.BidSummary{
			ID:        bid.ID,
			BidderID:  bid.BidderID,
			Amount:    bid.Amount,
			IsAutoBid: bid.IsAutoBid,
			CreatedAt: bid.CreatedAt,
		},
		CurrentBid: bid.Amount,
		NextMinBid: a.NextMinBid(),
	})
	if err := s.eventRepo.InsertTx(ctx, tx, a.ID, ev.Type, ev.Data); err != nil {
		return err
	}
	*events = append(*events, pendingEvent{AuctionChannel(a.ID), ev})
	return nil
}

// snipeExtension decides whether a live auction inside its closing window
// gets pushed out, and to when. The new end is always endTime + buffer, not
// now + buffer, so each extension adds exactly the buffer.
func snipeExtension(a *model.Auction, now time.Time, maxExtensions int) (time.Time, bool) {
	window := a.SnipeWindow()
	if window <= 0 {
		return time.Time{}, false
	}
	if a.TimeRemaining(now) > window {
		return time.Time{}, false
	}
	if maxExtensions > 0 && a.Extensions >= maxExtensions {
		return time.Time{}, false
	}
	return a.EndTime.Add(window), true
}

// maybeExtend pushes the end time out when the closing window has been
// entered, up to the configured extension cap.
func (s *AuctionService) maybeExtend(ctx context.Context, tx pgx.Tx, a *model.Auction, now time.Time, events *[]pendingEvent) error {
	newEnd, ok := snipeExtension(a, now, s.maxExtensions)
	if !ok {
		return nil
	}
	if err := s.auctionRepo.ExtendEndTimeTx(ctx, tx, a, newEnd); err != nil {
		return err
	}

	ev := model.NewWSEvent(model.EventAuctionExtended, model.AuctionExtendedEvent{
		AuctionID:  a.ID,
		NewEndTime: newEnd,
		Reason:     "anti_sniping",
	})
	if err := s.eventRepo.InsertTx(ctx, tx, a.ID, ev.Type, ev.Data); err != nil {
		return err
	}
	*events = append(*events, pendingEvent{AuctionChannel(a.ID), ev})
	log.Printf("AUCTION: %s extended to %s (extension %d)", a.ID, newEnd.Format(time.RFC3339), a.Extensions)
	return nil
}

// resolveAutoBids runs the proxy war inside the same locked transaction: as
// long as some proxy can beat the leader, the cheapest counter is placed on
// its behalf. Proxies whose owners fail escrow admission are blocked for the
// rest of the cascade.
func (s *AuctionService) resolveAutoBids(ctx context.Context, tx pgx.Tx, a *model.Auction, listing *model.Listing, events *[]pendingEvent) error {
	blocked := make(map[string]bool)

	for round := 0; round < maxAutoBidRounds; round++ {
		proxies, err := s.bidRepo.StandingAutoBidsTx(ctx, tx, a.ID)
		if err != nil {
			return err
		}

		cand := nextAutoBid(a, proxies, blocked)
		if cand == nil {
			return nil
		}

		if !s.hasAdmission(ctx, tx, cand.BidderID, listing, cand.Amount) {
			blocked[cand.BidderID] = true
			continue
		}

		counter := &model.Bid{
			AuctionID: a.ID,
			BidderID:  cand.BidderID,
			Amount:    cand.Amount,
			Status:    model.BidActive,
			IsAutoBid: true,
		}
		counter.MaxAutoBidAmount.Decimal = cand.Max
		counter.MaxAutoBidAmount.Valid = true

		if err := s.acceptBid(ctx, tx, a, counter, events); err != nil {
			return err
		}
		if err := s.maybeExtend(ctx, tx, a, time.Now(), events); err != nil {
			return err
		}
	}

	log.Printf("AUCTION: %s auto-bid cascade hit round cap", a.ID)
	return nil
}

// Pause suspends a live auction; Resume puts it back. Only the owning farmer
// or an admin may do either.
func (s *AuctionService) Pause(ctx context.Context, auctionID, actorID string, isAdmin bool) error {
	return s.transition(ctx, auctionID, actorID, isAdmin, model.AuctionLive, model.AuctionPaused)
}

func (s *AuctionService) Resume(ctx context.Context, auctionID, actorID string, isAdmin bool) error {
	return s.transition(ctx, auctionID, actorID, isAdmin, model.AuctionPaused, model.AuctionLive)
}

// Complete marks an ended sale fulfilled once the winner's deposit has been
// released to the farmer.
func (s *AuctionService) Complete(ctx context.Context, auctionID string) error {
	return s.transition(ctx, auctionID, "", true, model.AuctionEnded, model.AuctionCompleted)
}

func (s *AuctionService) transition(ctx context.Context, auctionID, actorID string, isAdmin bool, from, to string) error {
	err := s.auctionRepo.WithAuctionLock(ctx, auctionID, func(ctx context.Context, tx pgx.Tx, a *model.Auction) error {
		if !isAdmin && a.FarmerID != actorID {
			return ErrNotAuctionOwner
		}
		if a.Status != from {
			return ErrInvalidTransition
		}
		a.Status = to
		if err := s.auctionRepo.SaveTransitionTx(ctx, tx, a); err != nil {
			return err
		}
		log.Printf("AUCTION: %s %s -> %s", a.ID, from, to)
		return nil
	})
	return s.mapLockErr(err)
}

// Cancel withdraws an auction that has not ended. All held deposits are
// refunded.
func (s *AuctionService) Cancel(ctx context.Context, auctionID, actorID string, isAdmin bool) error {
	var cancelled *model.Auction
	err := s.auctionRepo.WithAuctionLock(ctx, auctionID, func(ctx context.Context, tx pgx.Tx, a *model.Auction) error {
		if !isAdmin && a.FarmerID != actorID {
			return ErrNotAuctionOwner
		}
		switch a.Status {
		case model.AuctionScheduled, model.AuctionLive, model.AuctionPaused:
		default:
			return ErrInvalidTransition
		}
		now := time.Now()
		a.Status = model.AuctionCancelled
		a.ActualEndTime = &now
		if err := s.auctionRepo.SaveTransitionTx(ctx, tx, a); err != nil {
			return err
		}
		cancelled = a
		log.Printf("AUCTION: %s cancelled by %s", a.ID, actorID)
		return nil
	})
	if err != nil {
		return s.mapLockErr(err)
	}
	s.settleEscrow(ctx, cancelled)
	return nil
}

// StartDueAuctions promotes every SCHEDULED auction whose start time has
// arrived. One auction failing never blocks the rest.
func (s *AuctionService) StartDueAuctions(ctx context.Context) {
	ids, err := s.auctionRepo.IDsByStatus(ctx, model.AuctionScheduled)
	if err != nil {
		log.Printf("SCHEDULER: list scheduled: %v", err)
		return
	}
	for _, id := range ids {
		if err := s.Start(ctx, id, ""); err != nil && !errors.Is(err, ErrInvalidTransition) {
			log.Printf("SCHEDULER: start %s: %v", id, err)
		}
	}
}

// ServiceLiveAuctions sweeps LIVE auctions: overdue ones are ended, the rest
// get an auto-bid resolver pass plus the closing-window check, so proxies act
// and extensions fire even without a fresh human bid.
func (s *AuctionService) ServiceLiveAuctions(ctx context.Context) {
	ids, err := s.auctionRepo.IDsByStatus(ctx, model.AuctionLive)
	if err != nil {
		log.Printf("SCHEDULER: list live: %v", err)
		return
	}
	for _, id := range ids {
		if err := s.serviceLiveAuction(ctx, id); err != nil {
			log.Printf("SCHEDULER: service %s: %v", id, err)
		}
	}
}

func (s *AuctionService) serviceLiveAuction(ctx context.Context, auctionID string) error {
	var events []pendingEvent
	var closed *model.Auction
	err := s.auctionRepo.WithAuctionLock(ctx, auctionID, func(ctx context.Context, tx pgx.Tx, a *model.Auction) error {
		now := time.Now()
		if !a.IsLive() {
			return nil
		}
		if a.ShouldEnd(now) {
			if err := s.endLocked(ctx, tx, a, now, &events); err != nil {
				return err
			}
			closed = a
			return nil
		}

		listing, err := s.listingRepo.GetByID(ctx, a.ListingID)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		if err := s.resolveAutoBids(ctx, tx, a, listing, &events); err != nil {
			return err
		}
		return s.maybeExtend(ctx, tx, a, now, &events)
	})
	if err != nil {
		return err
	}
	s.publish(events)
	s.settleEscrow(ctx, closed)
	return nil
}

// Get returns the auction with its bid history and client-facing derived
// fields.
func (s *AuctionService) Get(ctx context.Context, id string) (*model.AuctionView, error) {
	a, err := s.auctionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrAuctionNotFound
	}
	bids, err := s.bidRepo.ListByAuction(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Bids = bids
	return model.NewAuctionView(a, time.Now()), nil
}

func (s *AuctionService) List(ctx context.Context, status string, limit, offset int) ([]*model.AuctionView, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	auctions, total, err := s.auctionRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	views := make([]*model.AuctionView, 0, len(auctions))
	for i := range auctions {
		views = append(views, model.NewAuctionView(&auctions[i], now))
	}
	return views, total, nil
}

func (s *AuctionService) GetUserBids(ctx context.Context, bidderID string) ([]model.Bid, error) {
	return s.bidRepo.ListByBidder(ctx, bidderID)
}

func (s *AuctionService) GetFarmerAuctions(ctx context.Context, farmerID string) ([]model.Auction, error) {
	return s.auctionRepo.ListByFarmer(ctx, farmerID)
}

func (s *AuctionService) GetEvents(ctx context.Context, auctionID string, limit int) ([]model.AuctionEvent, error) {
	if _, err := s.auctionRepo.GetByID(ctx, auctionID); err != nil {
		return nil, ErrAuctionNotFound
	}
	return s.eventRepo.ListByAuction(ctx, auctionID, limit)
}

func (s *AuctionService) publish(events []pendingEvent) {
	if s.broadcaster == nil {
		return
	}
	for _, pe := range events {
		s.broadcaster.Publish(pe.channel, pe.event)
	}
}

// mapLockErr turns a lock-read miss into the not-found sentinel the handlers
// expect.
func (s *AuctionService) mapLockErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAuctionNotFound
	}
	return err
}
