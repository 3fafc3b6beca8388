package handler

import (
	"net/http/httptest"
	"testing"

	"farmdirect-backend/internal/repository"
	"farmdirect-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/peterldowns/testy/check"
)

func TestAuctionErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not listing owner", service.ErrNotListingOwner, 403},
		{"not auction owner", service.ErrNotAuctionOwner, 403},
		{"insufficient escrow", service.ErrInsufficientEscrow, 400},
		{"invalid sniping buffer", service.ErrInvalidSnipingBuffer, 400},
		{"bid too low", service.ErrBidTooLow, 400},
		{"auction not found", service.ErrAuctionNotFound, 404},
		{"invalid transition", service.ErrInvalidTransition, 409},
		{"lock contention", repository.ErrLockContention, 503},
	}

	for _, tc := range cases {
		app := fiber.New()
		err := tc.err
		app.Get("/", func(c *fiber.Ctx) error {
			return auctionError(c, err)
		})

		resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil))
		check.Nil(t, testErr)
		if resp.StatusCode != tc.status {
			t.Errorf("%s: got %d, want %d", tc.name, resp.StatusCode, tc.status)
		}
	}
}
