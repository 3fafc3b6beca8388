package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"farmdirect-backend/internal/model"
	"farmdirect-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEscrowNotFound    = errors.New("escrow hold not found")
	ErrInvalidDeposit    = errors.New("deposit amount must be greater than zero")
	ErrDuplicateDeposit  = errors.New("active deposit already exists for this listing")
	ErrBuyerNotEligible  = errors.New("account must be active with verified KYC")
	ErrEscrowNotHeld     = errors.New("escrow hold is not in HELD state")
	ErrDepositOwnListing = errors.New("cannot deposit against your own listing")
)

// depositRate is the escrow fraction applied when checking bid admission.
var depositRate = decimal.NewFromFloat(0.10)

const holdDuration = 7 * 24 * time.Hour

type EscrowService struct {
	escrowRepo  *repository.EscrowRepository
	listingRepo *repository.ListingRepository
	userRepo    *repository.UserRepository
}

func NewEscrowService(escrowRepo *repository.EscrowRepository, listingRepo *repository.ListingRepository, userRepo *repository.UserRepository) *EscrowService {
	return &EscrowService{escrowRepo: escrowRepo, listingRepo: listingRepo, userRepo: userRepo}
}

// RequiredEscrow is the hold a bidder must have before a bid is accepted:
// 10% of the bid amount scaled by the listing's face value, rounded to
// cents.
func RequiredEscrow(l *model.Listing, bidAmount decimal.Decimal) decimal.Decimal {
	return bidAmount.Mul(l.Quantity).Mul(l.PricePerUnit).Mul(depositRate).Round(2)
}

// Deposit places a buyer's escrow hold for a listing. The gateway call is
// simulated: a payment intent ID is minted and the hold lands directly in
// HELD.
func (s *EscrowService) Deposit(ctx context.Context, buyerID string, req *model.DepositRequest) (*model.EscrowHold, error) {
	buyer, err := s.userRepo.GetByID(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("load buyer: %w", err)
	}
	if !buyer.CanParticipateInAuctions() {
		return nil, ErrBuyerNotEligible
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	if listing.Status != model.ListingActive {
		return nil, ErrListingNotActive
	}
	if listing.FarmerID == buyerID {
		return nil, ErrDepositOwnListing
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidDeposit
	}

	if existing, err := s.escrowRepo.FindActiveHold(ctx, buyerID, listing.ID); err == nil && existing != nil {
		return nil, ErrDuplicateDeposit
	}

	gateway := req.Gateway
	if gateway == "" {
		gateway = "stripe"
	}

	now := time.Now()
	hold := &model.EscrowHold{
		BuyerID:         buyerID,
		ListingID:       listing.ID,
		Type:            model.EscrowAuctionDeposit,
		Status:          model.EscrowHeld,
		Amount:          req.Amount,
		PaymentIntentID: "pi_" + uuid.NewString(),
		PaymentGateway:  gateway,
		ExpiryTime:      now.Add(holdDuration),
		HeldAt:          &now,
	}

	created, err := s.escrowRepo.Create(ctx, hold)
	if err != nil {
		return nil, fmt.Errorf("create escrow hold: %w", err)
	}

	log.Printf("ESCROW: hold %s placed for buyer %s on listing %s (%s)", created.ID, buyerID, listing.ID, created.Amount.StringFixed(2))
	return created, nil
}

// ReleaseHold moves a HELD deposit toward the seller, typically after the
// winner settles.
func (s *EscrowService) ReleaseHold(ctx context.Context, holdID, reason string) (*model.EscrowHold, error) {
	hold, err := s.escrowRepo.GetByID(ctx, holdID)
	if err != nil {
		return nil, ErrEscrowNotFound
	}
	if hold.Status != model.EscrowHeld {
		return nil, ErrEscrowNotHeld
	}
	return s.escrowRepo.UpdateStatus(ctx, holdID, model.EscrowReleased, reason)
}

// RefundHold returns a HELD deposit to the buyer.
func (s *EscrowService) RefundHold(ctx context.Context, holdID, reason string) (*model.EscrowHold, error) {
	hold, err := s.escrowRepo.GetByID(ctx, holdID)
	if err != nil {
		return nil, ErrEscrowNotFound
	}
	if hold.Status != model.EscrowHeld {
		return nil, ErrEscrowNotHeld
	}
	return s.escrowRepo.UpdateStatus(ctx, holdID, model.EscrowRefunded, reason)
}

func (s *EscrowService) GetUserHolds(ctx context.Context, buyerID string) ([]model.EscrowHold, error) {
	return s.escrowRepo.ListByBuyer(ctx, buyerID)
}

func (s *EscrowService) Get(ctx context.Context, id string) (*model.EscrowHold, error) {
	hold, err := s.escrowRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrEscrowNotFound
	}
	return hold, nil
}
