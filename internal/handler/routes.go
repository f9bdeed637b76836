package handler

import (
	"github.com/gofiber/fiber/v2"

	"pdao-records/internal/domain"
	"pdao-records/internal/middleware"
)

func SetupRoutes(app *fiber.App, h *Handlers, jwtSecret string) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(jwtSecret))

	cards := protected.Group("/members/:memberId/card")
	cards.Get("/", h.Card.GetStatus)
	cards.Post("/issue", middleware.RequireRole(domain.RoleStaff), h.Card.Issue)
	cards.Post("/claim", middleware.RequireRole(domain.RoleStaff), h.Card.Claim)

	renewals := protected.Group("/renewals")
	renewals.Post("/", h.Renewal.Submit)
	renewals.Get("/", middleware.RequireRole(domain.RoleStaff), h.Renewal.List)
	renewals.Get("/:id", h.Renewal.Get)
	renewals.Get("/:id/documents", middleware.RequireRole(domain.RoleReviewer), h.Renewal.Documents)
	renewals.Post("/:id/approve", middleware.RequireRole(domain.RoleReviewer), h.Renewal.Approve)
	renewals.Post("/:id/reject", middleware.RequireRole(domain.RoleReviewer), h.Renewal.Reject)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
}
