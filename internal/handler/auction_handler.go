package handler

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"farmdirect-backend/internal/model"
	"farmdirect-backend/internal/repository"
	"farmdirect-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuctionHandler struct {
	auctionSvc *service.AuctionService
}

func NewAuctionHandler(auctionSvc *service.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionSvc: auctionSvc}
}

// POST /api/v1/auctions
func (h *AuctionHandler) Create(c *fiber.Ctx) error {
	farmerID := c.Locals("user_id").(string)

	var req model.CreateAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.ListingID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "listing_id is required"})
	}

	auction, err := h.auctionSvc.Create(c.Context(), farmerID, &req)
	if err != nil {
		return auctionError(c, err)
	}

	return c.Status(201).JSON(auction)
}

// GET /api/v1/auctions
func (h *AuctionHandler) List(c *fiber.Ctx) error {
	status := c.Query("status", "")

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			limit = v
		}
	}
	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil {
			offset = v
		}
	}

	auctions, total, err := h.auctionSvc.List(c.Context(), status, limit, offset)
	if err != nil {
		log.Printf("[AUCTION] list error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list auctions"})
	}

	return c.JSON(fiber.Map{
		"auctions": auctions,
		"total":    total,
	})
}

// GET /api/v1/auctions/:id
func (h *AuctionHandler) Get(c *fiber.Ctx) error {
	view, err := h.auctionSvc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(view)
}

// POST /api/v1/auctions/:id/bid
func (h *AuctionHandler) PlaceBid(c *fiber.Ctx) error {
	bidderID := c.Locals("user_id").(string)

	var req model.PlaceBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	bid, auction, err := h.auctionSvc.PlaceBid(c.Context(), c.Params("id"), bidderID, &req)
	if err != nil {
		return auctionError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"bid":     bid,
		"auction": model.NewAuctionView(auction, bid.CreatedAt),
	})
}

// GET /api/v1/auctions/:id/bids
func (h *AuctionHandler) GetBids(c *fiber.Ctx) error {
	view, err := h.auctionSvc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(fiber.Map{"bids": view.Bids})
}

// GET /api/v1/auctions/:id/events
func (h *AuctionHandler) GetEvents(c *fiber.Ctx) error {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			limit = v
		}
	}

	events, err := h.auctionSvc.GetEvents(c.Context(), c.Params("id"), limit)
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(fiber.Map{"events": events})
}

// PUT /api/v1/auctions/:id/start
func (h *AuctionHandler) Start(c *fiber.Ctx) error {
	actorID, isAdmin := actor(c)
	if isAdmin {
		actorID = ""
	}
	if err := h.auctionSvc.Start(c.Context(), c.Params("id"), actorID); err != nil {
		return auctionError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// PUT /api/v1/auctions/:id/end
func (h *AuctionHandler) End(c *fiber.Ctx) error {
	actorID, isAdmin := actor(c)
	if isAdmin {
		actorID = ""
	}
	if err := h.auctionSvc.End(c.Context(), c.Params("id"), actorID); err != nil {
		return auctionError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// PUT /api/v1/auctions/:id/pause
func (h *AuctionHandler) Pause(c *fiber.Ctx) error {
	actorID, isAdmin := actor(c)
	if err := h.auctionSvc.Pause(c.Context(), c.Params("id"), actorID, isAdmin); err != nil {
		return auctionError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// PUT /api/v1/auctions/:id/resume
func (h *AuctionHandler) Resume(c *fiber.Ctx) error {
	actorID, isAdmin := actor(c)
	if err := h.auctionSvc.Resume(c.Context(), c.Params("id"), actorID, isAdmin); err != nil {
		return auctionError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// PUT /api/v1/auctions/:id/cancel
func (h *AuctionHandler) Cancel(c *fiber.Ctx) error {
	actorID, isAdmin := actor(c)
	if err := h.auctionSvc.Cancel(c.Context(), c.Params("id"), actorID, isAdmin); err != nil {
		return auctionError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// GET /api/v1/auctions/user/bids
func (h *AuctionHandler) MyBids(c *fiber.Ctx) error {
	bidderID := c.Locals("user_id").(string)

	bids, err := h.auctionSvc.GetUserBids(c.Context(), bidderID)
	if err != nil {
		log.Printf("[AUCTION] my-bids error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get bids"})
	}
	return c.JSON(fiber.Map{"bids": bids})
}

// GET /api/v1/auctions/user/auctions
func (h *AuctionHandler) MyAuctions(c *fiber.Ctx) error {
	farmerID := c.Locals("user_id").(string)

	auctions, err := h.auctionSvc.GetFarmerAuctions(c.Context(), farmerID)
	if err != nil {
		log.Printf("[AUCTION] my-auctions error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get auctions"})
	}
	return c.JSON(fiber.Map{"auctions": auctions})
}

func actor(c *fiber.Ctx) (string, bool) {
	id, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	return id, role == model.RoleAdmin
}

func auctionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAuctionNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "auction not found"})
	case errors.Is(err, service.ErrListingNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
	case errors.Is(err, service.ErrAuctionNotLive):
		return c.Status(409).JSON(fiber.Map{"error": "auction is not live"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.Status(409).JSON(fiber.Map{"error": "invalid auction state transition"})
	case errors.Is(err, service.ErrDuplicateScheduled):
		return c.Status(409).JSON(fiber.Map{"error": "listing already has a scheduled auction"})
	case errors.Is(err, service.ErrBidTooLow):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidAutoBidMax),
		errors.Is(err, service.ErrInvalidAuctionWindow),
		errors.Is(err, service.ErrInvalidStartingBid),
		errors.Is(err, service.ErrInvalidReserve),
		errors.Is(err, service.ErrUnsupportedType),
		errors.Is(err, service.ErrBiddingNotSupported),
		errors.Is(err, service.ErrStartTimeInPast),
		errors.Is(err, service.ErrAuctionTooShort),
		errors.Is(err, service.ErrInvalidSnipingBuffer):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientEscrow):
		return c.Status(400).JSON(fiber.Map{"error": "insufficient escrow deposit"})
	case errors.Is(err, service.ErrOwnAuctionBid):
		return c.Status(403).JSON(fiber.Map{"error": "cannot bid on your own auction"})
	case errors.Is(err, service.ErrNotAuctionOwner):
		return c.Status(403).JSON(fiber.Map{"error": "not the auction owner"})
	case errors.Is(err, service.ErrNotListingOwner):
		return c.Status(403).JSON(fiber.Map{"error": "not the listing owner"})
	case errors.Is(err, service.ErrBidderNotEligible), errors.Is(err, service.ErrFarmerNotVerified):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrListingNotActive):
		return c.Status(409).JSON(fiber.Map{"error": "listing is no longer active"})
	case errors.Is(err, repository.ErrLockContention):
		return c.Status(503).JSON(fiber.Map{"error": "auction busy, retry"})
	default:
		if strings.Contains(err.Error(), "no rows") {
			return c.Status(404).JSON(fiber.Map{"error": "auction not found"})
		}
		log.Printf("[AUCTION ERROR] %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
