package handler

import (
	"errors"
	"log"
	"strconv"

	"farmdirect-backend/internal/model"
	"farmdirect-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	listingSvc *service.ListingService
}

func NewListingHandler(listingSvc *service.ListingService) *ListingHandler {
	return &ListingHandler{listingSvc: listingSvc}
}

// GET /api/v1/listings
func (h *ListingHandler) Search(c *fiber.Ctx) error {
	req := &model.SearchListingsRequest{
		Category:   c.Query("category", ""),
		SearchText: c.Query("search", ""),
		Status:     c.Query("status", model.ListingActive),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			req.Limit = v
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil {
			req.Offset = v
		}
	}

	listings, total, err := h.listingSvc.Search(c.Context(), req)
	if err != nil {
		log.Printf("[LISTING] search error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to search listings"})
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"total":    total,
	})
}

// POST /api/v1/listings
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	farmerID := c.Locals("user_id").(string)

	var req model.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	listing, err := h.listingSvc.Create(c.Context(), farmerID, &req)
	if err != nil {
		return listingError(c, err)
	}

	return c.Status(201).JSON(listing)
}

// GET /api/v1/listings/:id
func (h *ListingHandler) GetByID(c *fiber.Ctx) error {
	listing, err := h.listingSvc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return listingError(c, err)
	}
	return c.JSON(listing)
}

// GET /api/v1/listings/mine
func (h *ListingHandler) Mine(c *fiber.Ctx) error {
	farmerID := c.Locals("user_id").(string)

	listings, err := h.listingSvc.GetByFarmer(c.Context(), farmerID)
	if err != nil {
		log.Printf("[LISTING] mine error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get listings"})
	}

	return c.JSON(fiber.Map{"listings": listings})
}

func listingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
	case errors.Is(err, service.ErrListingNotActive):
		return c.Status(409).JSON(fiber.Map{"error": "listing is no longer active"})
	case errors.Is(err, service.ErrNotListingOwner):
		return c.Status(403).JSON(fiber.Map{"error": "not the listing owner"})
	case errors.Is(err, service.ErrFarmerNotVerified):
		return c.Status(403).JSON(fiber.Map{"error": "farmer account not verified for selling"})
	case errors.Is(err, service.ErrInvalidListing):
		return c.Status(400).JSON(fiber.Map{"error": "invalid listing"})
	default:
		log.Printf("[LISTING ERROR] %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
