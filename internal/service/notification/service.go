package notification

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pdao-records/internal/domain"
	"pdao-records/internal/pkg/i18n"
	"pdao-records/internal/repository"
	"pdao-records/internal/service/email"
)

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	NotifyRenewalDue(ctx context.Context, member *domain.Member, card *domain.Card, now time.Time) (bool, error)
	NotifyReadyToClaim(ctx context.Context, member *domain.Member, card *domain.Card, now time.Time) (bool, error)
	NotifyRenewalDecision(ctx context.Context, member *domain.Member, req *domain.RenewalRequest, card *domain.Card) error

	// Wait blocks until every email queued so far has been sent or has failed.
	Wait()
}

type Options struct {
	Locale       string
	LookbackDays int
}

type service struct {
	notifRepo repository.NotificationRepository
	gate      *Gate
	emailSvc  email.Service
	opts      Options

	sends sync.WaitGroup
}

func NewService(notifRepo repository.NotificationRepository, gate *Gate, emailSvc email.Service, opts Options) Service {
	if opts.Locale == "" {
		opts.Locale = "en"
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = domain.DefaultNotificationLookbackDays
	}
	if gate == nil {
		gate = NewGate(notifRepo, nil)
	}
	return &service{
		notifRepo: notifRepo,
		gate:      gate,
		emailSvc:  emailSvc,
		opts:      opts,
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	return s.notifRepo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifRepo.MarkAsRead(ctx, id, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

// NotifyRenewalDue creates a card_renewal_due notification unless the gate
// suppresses it. Members without a user account are skipped.
func (s *service) NotifyRenewalDue(ctx context.Context, member *domain.Member, card *domain.Card, now time.Time) (bool, error) {
	if member.UserID == nil || card.ExpirationDate == nil {
		return false, nil
	}

	daysRemaining, _ := card.DaysUntilExpiry(now)
	expiration := formatDate(*card.ExpirationDate)

	data, err := json.Marshal(domain.RenewalDueData{
		MemberID:       member.ID,
		ExpirationDate: card.ExpirationDate.Format("2006-01-02"),
		DaysRemaining:  daysRemaining,
	})
	if err != nil {
		return false, err
	}

	vars := map[string]string{
		"expiration_date": expiration,
		"days_remaining":  strconv.Itoa(daysRemaining),
	}
	notif := s.build(*member.UserID, domain.NotifCardRenewalDue, vars, data)

	created, err := s.gate.CreateIfAbsent(ctx, notif, s.opts.LookbackDays, now)
	if err != nil || !created {
		return created, err
	}

	s.sendEmail(member, func(ctx context.Context, to string) error {
		return s.emailSvc.SendRenewalDueEmail(ctx, to, member.FullName, expiration, daysRemaining)
	})
	return true, nil
}

func (s *service) NotifyReadyToClaim(ctx context.Context, member *domain.Member, card *domain.Card, now time.Time) (bool, error) {
	if member.UserID == nil || card.GeneratedID == nil {
		return false, nil
	}

	data, err := json.Marshal(domain.ReadyToClaimData{
		MemberID:    member.ID,
		GeneratedID: *card.GeneratedID,
	})
	if err != nil {
		return false, err
	}

	vars := map[string]string{"generated_id": *card.GeneratedID}
	notif := s.build(*member.UserID, domain.NotifCardReadyToClaim, vars, data)

	created, err := s.gate.CreateIfAbsent(ctx, notif, s.opts.LookbackDays, now)
	if err != nil || !created {
		return created, err
	}

	generatedID := *card.GeneratedID
	s.sendEmail(member, func(ctx context.Context, to string) error {
		return s.emailSvc.SendReadyToClaimEmail(ctx, to, member.FullName, generatedID)
	})
	return true, nil
}

// NotifyRenewalDecision records the decision through Gate.Record without a
// window check; a request is reviewed at most once.
func (s *service) NotifyRenewalDecision(ctx context.Context, member *domain.Member, req *domain.RenewalRequest, card *domain.Card) error {
	if member.UserID == nil {
		return nil
	}

	notifType := domain.NotifCardRenewalApproved
	if req.Status == domain.RenewalRejected {
		notifType = domain.NotifCardRenewalRejected
	}

	vars := map[string]string{}
	if req.Notes != nil {
		vars["notes"] = *req.Notes
	}
	if card != nil && card.ExpirationDate != nil {
		vars["expiration_date"] = formatDate(*card.ExpirationDate)
	}

	data, err := json.Marshal(domain.RenewalDecisionData{
		RenewalRequestID: req.ID,
		MemberID:         member.ID,
		Status:           string(req.Status),
	})
	if err != nil {
		return err
	}

	notif := s.build(*member.UserID, notifType, vars, data)
	at := time.Now()
	if req.ReviewedAt != nil {
		at = *req.ReviewedAt
	}
	if err := s.gate.Record(ctx, notif, at); err != nil {
		return err
	}

	status, notes := string(req.Status), vars["notes"]
	s.sendEmail(member, func(ctx context.Context, to string) error {
		return s.emailSvc.SendRenewalDecisionEmail(ctx, to, member.FullName, status, notes)
	})
	return nil
}

func (s *service) build(userID uuid.UUID, notifType domain.NotificationType, vars map[string]string, data []byte) *domain.Notification {
	key := string(notifType)
	return &domain.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    notifType,
		Title:   i18n.Render(s.opts.Locale, key+".title", vars),
		Message: i18n.Render(s.opts.Locale, key+".message", vars),
		Data:    json.RawMessage(data),
	}
}

func (s *service) Wait() {
	s.sends.Wait()
}

// sendEmail delivers in the background. Failures are logged only.
func (s *service) sendEmail(member *domain.Member, send func(ctx context.Context, to string) error) {
	if s.emailSvc == nil || member.Email == nil || *member.Email == "" {
		return
	}
	to := *member.Email
	s.sends.Add(1)
	go func() {
		defer s.sends.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx, to); err != nil {
			log.WithError(err).WithField("member_id", member.ID).Warn("failed to send notification email")
		}
	}()
}
