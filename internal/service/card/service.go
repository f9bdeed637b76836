package card

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
)

type Service interface {
	GetStatus(ctx context.Context, memberID uuid.UUID, now time.Time) (*StatusView, error)
	Issue(ctx context.Context, memberID uuid.UUID, now time.Time) (*domain.Card, error)
	Claim(ctx context.Context, memberID uuid.UUID, claimDate time.Time) (*domain.Card, error)
	RegenerateQR(ctx context.Context, memberID uuid.UUID) error
}

// StatusView is a card together with its resolved status.
type StatusView struct {
	Card         *domain.Card      `json:"card,omitempty"`
	Status       domain.CardStatus `json:"status"`
	DaysToExpiry *int              `json:"days_to_expiry,omitempty"`
}

type Options struct {
	ValidityYears     int
	RenewalWindowDays int
}

type service struct {
	cardRepo   repository.CardRepository
	memberRepo repository.MemberRepository
	opts       Options
}

func NewService(cardRepo repository.CardRepository, memberRepo repository.MemberRepository, opts Options) Service {
	if opts.ValidityYears <= 0 {
		opts.ValidityYears = domain.DefaultValidityYears
	}
	if opts.RenewalWindowDays <= 0 {
		opts.RenewalWindowDays = domain.DefaultRenewalWindowDays
	}
	return &service{
		cardRepo:   cardRepo,
		memberRepo: memberRepo,
		opts:       opts,
	}
}

func (s *service) GetStatus(ctx context.Context, memberID uuid.UUID, now time.Time) (*StatusView, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	card, err := s.cardRepo.GetByMemberID(ctx, memberID)
	if errors.Is(err, domain.ErrNotFound) {
		return &StatusView{Status: domain.CardNotIssued}, nil
	}
	if err != nil {
		return nil, err
	}

	view := &StatusView{
		Card:   card,
		Status: domain.ResolveCardStatusWithin(card, now, s.opts.RenewalWindowDays),
	}
	if days, ok := card.DaysUntilExpiry(now); ok && card.Claimed {
		view.DaysToExpiry = &days
	}
	return view, nil
}

// Issue creates the member's card record if needed and assigns its printed
// id. Calling it again for an issued card returns the card unchanged.
func (s *service) Issue(ctx context.Context, memberID uuid.UUID, now time.Time) (*domain.Card, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if err := s.cardRepo.Create(ctx, &domain.Card{MemberID: memberID}); err != nil {
		return nil, err
	}

	card, err := s.cardRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if card.GeneratedID != nil {
		return card, nil
	}

	assigned, err := s.cardRepo.SetGenerated(ctx, memberID, newGeneratedID(now), now)
	if err != nil {
		return nil, err
	}

	card, err = s.cardRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if assigned {
		if err := s.writeQR(ctx, member, card); err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"member_id": memberID, "generated_id": *card.GeneratedID}).Info("card issued")
	}
	return card, nil
}

// Claim marks the card as handed over on claimDate. It always stamps a fresh
// issue and expiration date and lifts any archival.
func (s *service) Claim(ctx context.Context, memberID uuid.UUID, claimDate time.Time) (*domain.Card, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	card, err := s.cardRepo.GetByMemberID(ctx, memberID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: member %s has no issued card", domain.ErrInvalidState, memberID)
	}
	if err != nil {
		return nil, err
	}
	if card.GeneratedID == nil {
		return nil, fmt.Errorf("%w: member %s has no issued card", domain.ErrInvalidState, memberID)
	}

	payload, err := domain.NewQRPayload(member, card).Encode()
	if err != nil {
		return nil, err
	}

	issueDate := domain.Date(claimDate)
	expiration := domain.ExpirationFor(issueDate, s.opts.ValidityYears)
	if err := s.cardRepo.Claim(ctx, memberID, issueDate, expiration, payload); err != nil {
		return nil, err
	}

	return s.cardRepo.GetByMemberID(ctx, memberID)
}

func (s *service) RegenerateQR(ctx context.Context, memberID uuid.UUID) error {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	card, err := s.cardRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		return err
	}
	return s.writeQR(ctx, member, card)
}

func (s *service) writeQR(ctx context.Context, member *domain.Member, card *domain.Card) error {
	payload, err := domain.NewQRPayload(member, card).Encode()
	if err != nil {
		return err
	}
	if err := s.cardRepo.UpdateQRPayload(ctx, card.MemberID, payload); err != nil {
		return err
	}
	card.QRPayload = &payload
	return nil
}

// newGeneratedID returns a printed card number such as PWD-2025-3F9A0C12.
func newGeneratedID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PWD-%d-%s", now.Year(), suffix)
}
