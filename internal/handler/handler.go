package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pdao-records/internal/domain"
	"pdao-records/internal/middleware"
	"pdao-records/internal/service"
)

type Handlers struct {
	Card         *CardHandler
	Renewal      *RenewalHandler
	Notification *NotificationHandler
}

func NewHandlers(services *service.Services, clock func() time.Time) *Handlers {
	if clock == nil {
		clock = time.Now
	}
	return &Handlers{
		Card:         NewCardHandler(services.Card, clock),
		Renewal:      NewRenewalHandler(services.Renewal, services.Documents),
		Notification: NewNotificationHandler(services.Notification),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

func parseUUIDParam(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + label)
	}
	return id, nil
}
