package job

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
	"pdao-records/internal/service/card"
)

const qrMigrationJob = "qr_migration"

type QRMode string

const (
	QRModeAll        QRMode = "all"
	QRModeLegacyOnly QRMode = "legacy_only"
)

type QRMigrationResult struct {
	Regenerated int `json:"regenerated"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
}

// QRMigration rewrites stored QR payloads in the current schema. In
// legacy-only mode a payload is rewritten only when it parses as the legacy
// schema; anything it cannot parse is left alone.
type QRMigration struct {
	cardRepo repository.CardRepository
	cardSvc  card.Service
	metrics  *Metrics
	opts     Options
}

func NewQRMigration(cardRepo repository.CardRepository, cardSvc card.Service, metrics *Metrics, opts Options) *QRMigration {
	return &QRMigration{cardRepo: cardRepo, cardSvc: cardSvc, metrics: metrics, opts: opts.withDefaults()}
}

func (q *QRMigration) Run(ctx context.Context, mode QRMode) (res QRMigrationResult, err error) {
	started := time.Now()
	defer func() { q.metrics.observeRun(qrMigrationJob, started, err) }()

	var regenerated, skipped, errs atomic.Int64
	logger := log.WithFields(log.Fields{"job": qrMigrationJob, "mode": mode})

	err = forEachCard(ctx, q.opts, q.cardRepo.ListAll, func(ctx context.Context, c domain.Card) {
		if mode != QRModeAll && !isLegacy(c.QRPayload) {
			skipped.Add(1)
			q.metrics.qrOutcome("skipped")
			return
		}

		if err := q.cardSvc.RegenerateQR(ctx, c.MemberID); err != nil {
			errs.Add(1)
			q.metrics.qrOutcome("error")
			q.metrics.recordFailed(qrMigrationJob)
			logger.WithError(err).WithField("member_id", c.MemberID).Error("failed to regenerate qr payload")
			return
		}
		regenerated.Add(1)
		q.metrics.qrOutcome("regenerated")
	})

	res = QRMigrationResult{
		Regenerated: int(regenerated.Load()),
		Skipped:     int(skipped.Load()),
		Errors:      int(errs.Load()),
	}
	logger.WithFields(log.Fields{
		"regenerated": res.Regenerated,
		"skipped":     res.Skipped,
		"errors":      res.Errors,
	}).Info("qr migration run finished")
	return res, err
}

func isLegacy(raw *string) bool {
	_, ok := domain.ParseQRPayload(raw).(domain.LegacyQRPayload)
	return ok
}

func ParseQRMode(all bool) QRMode {
	if all {
		return QRModeAll
	}
	return QRModeLegacyOnly
}
