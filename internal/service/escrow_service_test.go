package service

import (
	"testing"

	"farmdirect-backend/internal/model"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func TestRequiredEscrow(t *testing.T) {
	// bid 110 on 50 kg at 2.00/kg -> 110 * 50 * 2.00 * 0.10 = 1100.00
	l := &model.Listing{
		Quantity:     decimal.NewFromInt(50),
		Unit:         "kg",
		PricePerUnit: decimal.RequireFromString("2.00"),
	}
	got := RequiredEscrow(l, decimal.NewFromInt(110))
	check.True(t, got.Equal(decimal.RequireFromString("1100.00")))
}

func TestRequiredEscrow_ScalesWithBid(t *testing.T) {
	l := &model.Listing{
		Quantity:     decimal.NewFromInt(10),
		Unit:         "crate",
		PricePerUnit: decimal.RequireFromString("3.00"),
	}

	low := RequiredEscrow(l, decimal.NewFromInt(100))
	high := RequiredEscrow(l, decimal.NewFromInt(200))

	check.True(t, low.Equal(decimal.RequireFromString("300.00")))
	check.True(t, high.Equal(decimal.RequireFromString("600.00")))
	check.True(t, high.GreaterThan(low))
}

func TestRequiredEscrow_RoundsToCents(t *testing.T) {
	// 101 * 3 * 1.99 * 0.10 = 60.297 -> 60.30
	l := &model.Listing{
		Quantity:     decimal.NewFromInt(3),
		Unit:         "tonne",
		PricePerUnit: decimal.RequireFromString("1.99"),
	}
	got := RequiredEscrow(l, decimal.NewFromInt(101))
	check.True(t, got.Equal(decimal.RequireFromString("60.30")))
}
