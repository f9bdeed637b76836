// Package job holds the periodic batch procedures over card records: renewal
// reminders, archival of expired cards and QR payload migration.
package job

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pdao-records/internal/domain"
)

const (
	defaultWorkers   = 4
	defaultBatchSize = 200
)

type Options struct {
	Workers           int
	BatchSize         int
	RenewalWindowDays int
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.RenewalWindowDays <= 0 {
		o.RenewalWindowDays = domain.DefaultRenewalWindowDays
	}
	return o
}

type pageFunc func(ctx context.Context, after uuid.UUID, limit int) ([]domain.Card, error)

// forEachCard pages through fetch by member id and hands each card to handle
// on a bounded pool of workers. Each card is handled by exactly one worker.
// handle must not fail the batch; only a failed page fetch stops the walk.
func forEachCard(ctx context.Context, opts Options, fetch pageFunc, handle func(ctx context.Context, card domain.Card)) error {
	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cards, err := fetch(ctx, after, opts.BatchSize)
		if err != nil {
			return err
		}
		if len(cards) == 0 {
			return nil
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for _, card := range cards {
			g.Go(func() error {
				handle(gctx, card)
				return nil
			})
		}
		_ = g.Wait()

		if len(cards) < opts.BatchSize {
			return nil
		}
		after = cards[len(cards)-1].MemberID
	}
}
