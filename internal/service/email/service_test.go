package email

import (
	"context"
	"testing"

	"github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdao-records/internal/config"
)

type recordingSender struct {
	sent []*resend.SendEmailRequest
}

func (r *recordingSender) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	r.sent = append(r.sent, params)
	return &resend.SendEmailResponse{Id: "test"}, nil
}

func testConfig(enabled bool) *config.Config {
	return &config.Config{
		ResendAPIKey:              "re_test",
		FromEmail:                 "noreply@pdao.test",
		Domain:                    "pdao.test",
		EmailNotificationsEnabled: enabled,
	}
}

func TestSendRenewalDueEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewServiceWithSender(sender, testConfig(true))

	err := svc.SendRenewalDueEmail(context.Background(), "juan@example.com", "Juan Dela Cruz", "January 1, 2026", 17)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"juan@example.com"}, msg.To)
	assert.Equal(t, "PDAO Records <noreply@pdao.test>", msg.From)
	assert.Contains(t, msg.Html, "Juan Dela Cruz")
	assert.Contains(t, msg.Html, "January 1, 2026")
	assert.Contains(t, msg.Html, "17 day(s)")
	assert.Contains(t, msg.Html, "https://pdao.test/renewals/new")
}

func TestSendRenewalDecisionEmail_RejectedIncludesNotes(t *testing.T) {
	sender := &recordingSender{}
	svc := NewServiceWithSender(sender, testConfig(true))

	err := svc.SendRenewalDecisionEmail(context.Background(), "ana@example.com", "Ana", "rejected", "Medical certificate is unreadable")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Html, "Medical certificate is unreadable")
	assert.Contains(t, sender.sent[0].Html, "#ef4444")
}

func TestSendEmail_DisabledIsNoop(t *testing.T) {
	sender := &recordingSender{}
	svc := NewServiceWithSender(sender, testConfig(false))

	require.NoError(t, svc.SendReadyToClaimEmail(context.Background(), "ana@example.com", "Ana", "PWD-2025-000123"))
	assert.Empty(t, sender.sent)
}
