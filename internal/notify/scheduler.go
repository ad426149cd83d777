package notify

import (
	"context"
	"time"

	"gantt-planner-api/internal/logging"
)

// NextRun returns the first moment at hour:00 strictly after now, in now's location.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Scheduler runs a Checker once a day at a fixed hour.
type Scheduler struct {
	checker *Checker
	hour    int
}

func NewScheduler(checker *Checker, hour int) *Scheduler {
	return &Scheduler{checker: checker, hour: hour}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := NextRun(s.checker.now(), s.hour)
		logging.Logger.WithField("next_run", next.Format(time.RFC3339)).Debug("deadline check scheduled")
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if _, err := s.checker.Run(ctx); err != nil {
			logging.Logger.WithError(err).Warn("deadline check failed")
		}
	}
}
