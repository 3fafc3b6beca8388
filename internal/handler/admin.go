package handler

import (
	"errors"
	"log"

	"farmdirect-backend/internal/model"
	"farmdirect-backend/internal/repository"
	"farmdirect-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type AdminHandler struct {
	userRepo   *repository.UserRepository
	escrowSvc  *service.EscrowService
	auctionSvc *service.AuctionService
	wsHub      *service.WSHub
}

func NewAdminHandler(userRepo *repository.UserRepository, escrowSvc *service.EscrowService, auctionSvc *service.AuctionService, wsHub *service.WSHub) *AdminHandler {
	return &AdminHandler{userRepo: userRepo, escrowSvc: escrowSvc, auctionSvc: auctionSvc, wsHub: wsHub}
}

// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	totalUsers, _ := h.userRepo.CountTotal(c.Context())
	farmers, _ := h.userRepo.CountByRole(c.Context(), model.RoleFarmer)
	buyers, _ := h.userRepo.CountByRole(c.Context(), model.RoleBuyer)
	online := h.wsHub.OnlineCount()

	return c.JSON(fiber.Map{
		"users_total":  totalUsers,
		"farmers":      farmers,
		"buyers":       buyers,
		"users_online": online,
	})
}

// POST /api/v1/admin/users/:id/verify-kyc
func (h *AdminHandler) VerifyKYC(c *fiber.Ctx) error {
	user, err := h.userRepo.VerifyKYC(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		log.Printf("[ADMIN] verify-kyc error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(user)
}

// POST /api/v1/admin/escrow/:id/release
func (h *AdminHandler) ReleaseEscrow(c *fiber.Ctx) error {
	hold, err := h.escrowSvc.ReleaseHold(c.Context(), c.Params("id"), c.Query("reason", "manual release"))
	if err != nil {
		return escrowError(c, err)
	}
	// Releasing the winning deposit closes out the sale.
	if hold.AuctionID != nil {
		if err := h.auctionSvc.Complete(c.Context(), *hold.AuctionID); err != nil && !errors.Is(err, service.ErrInvalidTransition) {
			log.Printf("[ADMIN] complete auction %s: %v", *hold.AuctionID, err)
		}
	}
	return c.JSON(hold)
}

// POST /api/v1/admin/escrow/:id/refund
func (h *AdminHandler) RefundEscrow(c *fiber.Ctx) error {
	hold, err := h.escrowSvc.RefundHold(c.Context(), c.Params("id"), c.Query("reason", "manual refund"))
	if err != nil {
		return escrowError(c, err)
	}
	return c.JSON(hold)
}

// POST /api/v1/admin/auctions/:id/end
func (h *AdminHandler) EndAuction(c *fiber.Ctx) error {
	if err := h.auctionSvc.End(c.Context(), c.Params("id"), ""); err != nil {
		return auctionError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
