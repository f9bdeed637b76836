package job

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
	"pdao-records/internal/service/notification"
)

const reminderJob = "renewal_reminder"

type ReminderResult struct {
	NotificationsCreated int `json:"notifications_created"`
	Failed               int `json:"failed"`
}

// Reminder notifies members whose card is inside the renewal window or is
// printed and waiting to be claimed. It never mutates card records.
type Reminder struct {
	cardRepo   repository.CardRepository
	memberRepo repository.MemberRepository
	notifSvc   notification.Service
	metrics    *Metrics
	opts       Options
}

func NewReminder(cardRepo repository.CardRepository, memberRepo repository.MemberRepository, notifSvc notification.Service, metrics *Metrics, opts Options) *Reminder {
	return &Reminder{
		cardRepo:   cardRepo,
		memberRepo: memberRepo,
		notifSvc:   notifSvc,
		metrics:    metrics,
		opts:       opts.withDefaults(),
	}
}

// Run processes both candidate sets for now. An error is returned only when a
// candidate query fails; the result then covers the records handled so far.
func (r *Reminder) Run(ctx context.Context, now time.Time) (res ReminderResult, err error) {
	started := time.Now()
	defer func() { r.metrics.observeRun(reminderJob, started, err) }()

	var created, failed atomic.Int64
	logger := log.WithField("job", reminderJob)

	dueFrom := now
	dueTo := now.AddDate(0, 0, r.opts.RenewalWindowDays)
	dueErr := forEachCard(ctx, r.opts,
		func(ctx context.Context, after uuid.UUID, limit int) ([]domain.Card, error) {
			return r.cardRepo.ListExpiringBetween(ctx, dueFrom, dueTo, after, limit)
		},
		func(ctx context.Context, card domain.Card) {
			if domain.ResolveCardStatusWithin(&card, now, r.opts.RenewalWindowDays) != domain.CardRenewalWindow {
				return
			}
			ok, err := r.notify(ctx, card, func(member *domain.Member) (bool, error) {
				return r.notifSvc.NotifyRenewalDue(ctx, member, &card, now)
			})
			r.tally(logger, card, domain.NotifCardRenewalDue, ok, err, &created, &failed)
		},
	)

	claimErr := forEachCard(ctx, r.opts, r.cardRepo.ListReadyToClaim,
		func(ctx context.Context, card domain.Card) {
			ok, err := r.notify(ctx, card, func(member *domain.Member) (bool, error) {
				return r.notifSvc.NotifyReadyToClaim(ctx, member, &card, now)
			})
			r.tally(logger, card, domain.NotifCardReadyToClaim, ok, err, &created, &failed)
		},
	)

	res = ReminderResult{NotificationsCreated: int(created.Load()), Failed: int(failed.Load())}
	err = errors.Join(dueErr, claimErr)
	logger.WithFields(log.Fields{
		"notifications_created": res.NotificationsCreated,
		"failed":                res.Failed,
	}).Info("renewal reminder run finished")
	return res, err
}

func (r *Reminder) notify(ctx context.Context, card domain.Card, send func(member *domain.Member) (bool, error)) (bool, error) {
	member, err := r.memberRepo.GetByID(ctx, card.MemberID)
	if err != nil {
		return false, err
	}
	if member.UserID == nil {
		log.WithFields(log.Fields{"job": reminderJob, "member_id": card.MemberID}).Debug("member has no user account, skipping")
		return false, nil
	}
	return send(member)
}

func (r *Reminder) tally(logger *log.Entry, card domain.Card, notifType domain.NotificationType, created bool, err error, createdCount, failedCount *atomic.Int64) {
	switch {
	case err != nil:
		failedCount.Add(1)
		r.metrics.recordFailed(reminderJob)
		logger.WithError(err).WithFields(log.Fields{
			"member_id": card.MemberID,
			"type":      notifType,
		}).Error("failed to process reminder candidate")
	case created:
		createdCount.Add(1)
		r.metrics.notificationCreated(string(notifType))
	}
}
