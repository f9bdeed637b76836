package job

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler runs the reminder and archival jobs on a fixed interval. The two
// jobs run independently of each other; a job still running from the previous
// tick is not started again.
type Scheduler struct {
	reminder *Reminder
	archival *Archival
	interval time.Duration
	clock    func() time.Time

	reminderBusy atomic.Bool
	archivalBusy atomic.Bool
	wg           sync.WaitGroup
}

func NewScheduler(reminder *Reminder, archival *Archival, interval time.Duration, clock func() time.Time) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		reminder: reminder,
		archival: archival,
		interval: interval,
		clock:    clock,
	}
}

// Start blocks until ctx is cancelled and the jobs in flight have returned.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.WithField("interval", s.interval.String()).Info("job scheduler started")
	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			log.Info("job scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick launches one run of each job with the same now.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock()

	s.launch(&s.reminderBusy, reminderJob, func() error {
		_, err := s.reminder.Run(ctx, now)
		return err
	})
	s.launch(&s.archivalBusy, archivalJob, func() error {
		_, err := s.archival.Run(ctx, now)
		return err
	})
}

// Wait blocks until every launched run has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) launch(busy *atomic.Bool, name string, run func() error) {
	if !busy.CompareAndSwap(false, true) {
		log.WithField("job", name).Warn("previous run still in progress, skipping tick")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer busy.Store(false)
		if err := run(); err != nil {
			log.WithError(err).WithField("job", name).Error("scheduled job run failed")
		}
	}()
}
