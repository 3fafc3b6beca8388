package handler

import (
	"errors"
	"log"

	"farmdirect-backend/internal/model"
	"farmdirect-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	escrowSvc *service.EscrowService
}

func NewPaymentHandler(escrowSvc *service.EscrowService) *PaymentHandler {
	return &PaymentHandler{escrowSvc: escrowSvc}
}

// POST /api/v1/payments/escrow
func (h *PaymentHandler) Deposit(c *fiber.Ctx) error {
	buyerID := c.Locals("user_id").(string)

	var req model.DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.ListingID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "listing_id is required"})
	}

	hold, err := h.escrowSvc.Deposit(c.Context(), buyerID, &req)
	if err != nil {
		return escrowError(c, err)
	}

	return c.Status(201).JSON(hold)
}

// GET /api/v1/payments/escrow
func (h *PaymentHandler) MyHolds(c *fiber.Ctx) error {
	buyerID := c.Locals("user_id").(string)

	holds, err := h.escrowSvc.GetUserHolds(c.Context(), buyerID)
	if err != nil {
		log.Printf("[ESCROW] my-holds error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get escrow holds"})
	}

	return c.JSON(fiber.Map{"holds": holds})
}

// GET /api/v1/payments/escrow/:id
func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	buyerID := c.Locals("user_id").(string)

	hold, err := h.escrowSvc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return escrowError(c, err)
	}
	if hold.BuyerID != buyerID {
		return c.Status(404).JSON(fiber.Map{"error": "escrow hold not found"})
	}
	return c.JSON(hold)
}

func escrowError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEscrowNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "escrow hold not found"})
	case errors.Is(err, service.ErrListingNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
	case errors.Is(err, service.ErrListingNotActive):
		return c.Status(409).JSON(fiber.Map{"error": "listing is no longer active"})
	case errors.Is(err, service.ErrInvalidDeposit):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateDeposit):
		return c.Status(409).JSON(fiber.Map{"error": "active deposit already exists for this listing"})
	case errors.Is(err, service.ErrBuyerNotEligible):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrDepositOwnListing):
		return c.Status(403).JSON(fiber.Map{"error": "cannot deposit against your own listing"})
	case errors.Is(err, service.ErrEscrowNotHeld):
		return c.Status(409).JSON(fiber.Map{"error": "escrow hold is not in HELD state"})
	default:
		log.Printf("[ESCROW ERROR] %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
