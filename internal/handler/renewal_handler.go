package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pdao-records/internal/domain"
	"pdao-records/internal/middleware"
	"pdao-records/internal/service/document"
	"pdao-records/internal/service/renewal"
)

const documentLinkTTL = 15 * time.Minute

type RenewalHandler struct {
	renewalService renewal.Service
	documents      document.Store
}

func NewRenewalHandler(renewalService renewal.Service, documents document.Store) *RenewalHandler {
	return &RenewalHandler{renewalService: renewalService, documents: documents}
}

func (h *RenewalHandler) Submit(c *fiber.Ctx) error {
	var input domain.SubmitRenewalInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	claims := middleware.GetClaims(c)
	if input.MemberID == uuid.Nil && claims != nil && claims.MemberID != nil {
		input.MemberID = *claims.MemberID
	}
	if !middleware.CanAccessMember(c, input.MemberID) {
		return middleware.Forbidden("Cannot submit a renewal for another member")
	}

	req, err := h.renewalService.Submit(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *RenewalHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	var status *domain.RenewalRequestStatus
	if s := c.Query("status"); s != "" {
		st := domain.RenewalRequestStatus(s)
		status = &st
	}

	result, err := h.renewalService.List(c.Context(), status, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *RenewalHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", "renewal request ID")
	if err != nil {
		return err
	}

	req, err := h.renewalService.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	if !middleware.CanAccessMember(c, req.MemberID) {
		return middleware.Forbidden("Cannot view another member's renewal request")
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RenewalHandler) Documents(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", "renewal request ID")
	if err != nil {
		return err
	}

	req, err := h.renewalService.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	oldCard, err := h.documents.PresignedURL(c.Context(), req.OldCardRef, documentLinkTTL)
	if err != nil {
		return err
	}
	medicalCert, err := h.documents.PresignedURL(c.Context(), req.MedicalCertRef, documentLinkTTL)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"old_card_url":            oldCard,
		"medical_certificate_url": medicalCert,
		"expires_in_seconds":      int(documentLinkTTL.Seconds()),
	})
}

func (h *RenewalHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, h.renewalService.Approve)
}

func (h *RenewalHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, h.renewalService.Reject)
}

type reviewFunc func(ctx context.Context, id, reviewerID uuid.UUID, notes *string) (*domain.RenewalRequest, error)

func (h *RenewalHandler) review(c *fiber.Ctx, decide reviewFunc) error {
	id, err := parseUUIDParam(c, "id", "renewal request ID")
	if err != nil {
		return err
	}

	reviewerID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var input domain.ReviewRenewalInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return middleware.BadRequest("Invalid request body")
		}
	}

	req, err := decide(c.Context(), id, reviewerID, input.Notes)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(req)
}
