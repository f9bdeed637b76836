package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"
	log "github.com/sirupsen/logrus"

	"pdao-records/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

type Service interface {
	SendRenewalDueEmail(ctx context.Context, toEmail, fullName, expirationDate string, daysRemaining int) error
	SendReadyToClaimEmail(ctx context.Context, toEmail, fullName, generatedID string) error
	SendRenewalDecisionEmail(ctx context.Context, toEmail, fullName, status, notes string) error
}

// Sender is the part of the resend client the service uses.
type Sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type service struct {
	sender  Sender
	from    string
	domain  string
	enabled bool
}

func NewService(cfg *config.Config) Service {
	client := resend.NewClient(cfg.ResendAPIKey)
	return NewServiceWithSender(client.Emails, cfg)
}

func NewServiceWithSender(sender Sender, cfg *config.Config) Service {
	return &service{
		sender:  sender,
		from:    cfg.FromEmail,
		domain:  cfg.Domain,
		enabled: cfg.EmailNotificationsEnabled && cfg.ResendAPIKey != "",
	}
}

func (s *service) sendEmail(ctx context.Context, toEmail, subject, templateName string, data interface{}) error {
	if !s.enabled {
		log.WithFields(log.Fields{"to": toEmail, "template": templateName}).Debug("email notifications disabled, skipping")
		return nil
	}

	body, err := render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("PDAO Records <%s>", s.from),
		To:      []string{toEmail},
		Html:    body,
		Subject: subject,
	}

	_, err = s.sender.SendWithContext(ctx, params)
	return err
}

func render(templateName string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		return "", fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func (s *service) SendRenewalDueEmail(ctx context.Context, toEmail, fullName, expirationDate string, daysRemaining int) error {
	data := struct {
		Title          string
		Name           string
		ExpirationDate string
		DaysRemaining  int
		Link           string
	}{
		Title:          "Your PWD ID is due for renewal",
		Name:           fullName,
		ExpirationDate: expirationDate,
		DaysRemaining:  daysRemaining,
		Link:           fmt.Sprintf("https://%s/renewals/new", s.domain),
	}
	return s.sendEmail(ctx, toEmail, "PWD ID Renewal Reminder", "renewal_due.html", data)
}

func (s *service) SendReadyToClaimEmail(ctx context.Context, toEmail, fullName, generatedID string) error {
	data := struct {
		Title       string
		Name        string
		GeneratedID string
	}{
		Title:       "Your PWD ID is ready to claim",
		Name:        fullName,
		GeneratedID: generatedID,
	}
	return s.sendEmail(ctx, toEmail, "PWD ID Ready to Claim", "ready_to_claim.html", data)
}

func (s *service) SendRenewalDecisionEmail(ctx context.Context, toEmail, fullName, status, notes string) error {
	color := "#10b981"
	if status == "rejected" {
		color = "#ef4444"
	}

	data := struct {
		Title  string
		Name   string
		Status string
		Notes  string
		Color  string
	}{
		Title:  fmt.Sprintf("Renewal request %s", status),
		Name:   fullName,
		Status: status,
		Notes:  notes,
		Color:  color,
	}
	return s.sendEmail(ctx, toEmail, fmt.Sprintf("PWD ID Renewal %s", status), "renewal_decision.html", data)
}
