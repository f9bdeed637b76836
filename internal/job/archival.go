package job

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
)

const archivalJob = "archival"

type ArchivalResult struct {
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

// Archival stamps archived_at on claimed cards whose expiration date has
// passed. Archived cards drop out of every later candidate set, so a rerun
// only picks up newly expired cards.
type Archival struct {
	cardRepo repository.CardRepository
	metrics  *Metrics
	opts     Options
}

func NewArchival(cardRepo repository.CardRepository, metrics *Metrics, opts Options) *Archival {
	return &Archival{cardRepo: cardRepo, metrics: metrics, opts: opts.withDefaults()}
}

func (a *Archival) Run(ctx context.Context, now time.Time) (res ArchivalResult, err error) {
	started := time.Now()
	defer func() { a.metrics.observeRun(archivalJob, started, err) }()

	var archived, failed atomic.Int64
	logger := log.WithField("job", archivalJob)

	err = forEachCard(ctx, a.opts,
		func(ctx context.Context, after uuid.UUID, limit int) ([]domain.Card, error) {
			return a.cardRepo.ListExpiredBefore(ctx, now, after, limit)
		},
		func(ctx context.Context, card domain.Card) {
			ok, err := a.cardRepo.Archive(ctx, card.MemberID, now)
			if err != nil {
				failed.Add(1)
				a.metrics.recordFailed(archivalJob)
				logger.WithError(err).WithField("member_id", card.MemberID).Error("failed to archive card")
				return
			}
			if ok {
				archived.Add(1)
				a.metrics.cardArchived()
			}
		},
	)

	res = ArchivalResult{Archived: int(archived.Load()), Failed: int(failed.Load())}
	logger.WithFields(log.Fields{"archived": res.Archived, "failed": res.Failed}).Info("archival run finished")
	return res, err
}
