package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"farmdirect-backend/internal/model"
	"farmdirect-backend/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrInvalidListing    = errors.New("invalid listing")
	ErrNotListingOwner   = errors.New("not the listing owner")
	ErrListingNotActive  = errors.New("listing is not active")
	ErrFarmerNotVerified = errors.New("farmer account not verified for selling")
)

type ListingService struct {
	listingRepo *repository.ListingRepository
	userRepo    *repository.UserRepository
}

func NewListingService(listingRepo *repository.ListingRepository, userRepo *repository.UserRepository) *ListingService {
	return &ListingService{listingRepo: listingRepo, userRepo: userRepo}
}

func (s *ListingService) Create(ctx context.Context, farmerID string, req *model.CreateListingRequest) (*model.Listing, error) {
	farmer, err := s.userRepo.GetByID(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("load farmer: %w", err)
	}
	if !farmer.CanCreateAuctions() {
		return nil, ErrFarmerNotVerified
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || len(req.Title) > 200 {
		return nil, ErrInvalidListing
	}
	if req.Quantity.LessThanOrEqual(decimal.Zero) || req.PricePerUnit.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidListing
	}
	if strings.TrimSpace(req.Unit) == "" || strings.TrimSpace(req.Category) == "" {
		return nil, ErrInvalidListing
	}

	listing := &model.Listing{
		FarmerID:     farmerID,
		FarmerName:   farmer.Name,
		Title:        req.Title,
		Description:  strings.TrimSpace(req.Description),
		Category:     strings.TrimSpace(req.Category),
		Quantity:     req.Quantity,
		Unit:         strings.TrimSpace(req.Unit),
		PricePerUnit: req.PricePerUnit,
		Status:       model.ListingActive,
	}
	return s.listingRepo.Create(ctx, listing)
}

func (s *ListingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

func (s *ListingService) Search(ctx context.Context, req *model.SearchListingsRequest) ([]model.Listing, int, error) {
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return s.listingRepo.Search(ctx, req)
}

func (s *ListingService) GetByFarmer(ctx context.Context, farmerID string) ([]model.Listing, error) {
	return s.listingRepo.GetByFarmerID(ctx, farmerID)
}
