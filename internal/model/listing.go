package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ListingActive    = "ACTIVE"
	ListingSold      = "SOLD"
	ListingWithdrawn = "WITHDRAWN"
)

type Listing struct {
	ID           string          `json:"id"`
	FarmerID     string          `json:"farmer_id"`
	FarmerName   string          `json:"farmer_name"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type CreateListingRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

type SearchListingsRequest struct {
	Category   string `json:"category"`
	SearchText string `json:"search_text"`
	Status     string `json:"status"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}
