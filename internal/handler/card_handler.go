package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pdao-records/internal/middleware"
	"pdao-records/internal/service/card"
)

type CardHandler struct {
	cardService card.Service
	clock       func() time.Time
}

func NewCardHandler(cardService card.Service, clock func() time.Time) *CardHandler {
	return &CardHandler{cardService: cardService, clock: clock}
}

type claimCardRequest struct {
	ClaimDate string `json:"claim_date"`
}

func (h *CardHandler) GetStatus(c *fiber.Ctx) error {
	memberID, err := parseUUIDParam(c, "memberId", "member ID")
	if err != nil {
		return err
	}
	if !middleware.CanAccessMember(c, memberID) {
		return middleware.Forbidden("Cannot view another member's card")
	}

	view, err := h.cardService.GetStatus(c.Context(), memberID, h.clock())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *CardHandler) Issue(c *fiber.Ctx) error {
	memberID, err := parseUUIDParam(c, "memberId", "member ID")
	if err != nil {
		return err
	}

	issued, err := h.cardService.Issue(c.Context(), memberID, h.clock())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(issued)
}

func (h *CardHandler) Claim(c *fiber.Ctx) error {
	memberID, err := parseUUIDParam(c, "memberId", "member ID")
	if err != nil {
		return err
	}

	now := h.clock()
	claimDate := now
	var req claimCardRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return middleware.BadRequest("Invalid request body")
		}
	}
	if req.ClaimDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.ClaimDate, now.Location())
		if err != nil {
			return middleware.BadRequest("claim_date must be YYYY-MM-DD")
		}
		claimDate = parsed
	}

	claimed, err := h.cardService.Claim(c.Context(), memberID, claimDate)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(claimed)
}
