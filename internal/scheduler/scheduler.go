// Package scheduler runs the bot's two periodic jobs: the community post scan
// and the enforcement tick. Polling at a fixed interval is deliberate; wait
// steps are hours-granular, so a timer service would buy nothing.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Demigodrick/community-bot/internal/logger"
)

// Job is one periodic unit of work.
type Job func() error

// Scheduler owns the cron runner and remembers when each job last completed,
// which the health endpoint uses to detect a wedged bot.
type Scheduler struct {
	cron *cron.Cron

	mu              sync.RWMutex
	lastScanTick    time.Time
	lastEnforceTick time.Time
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Start schedules both jobs and begins running them. Each job also runs once
// immediately so a restart does not wait a full interval to catch up.
func (s *Scheduler) Start(scan Job, scanEvery time.Duration, enforce Job, enforceEvery time.Duration) error {
	if _, err := s.cron.AddFunc(every(scanEvery), s.wrap("scan", scan, &s.lastScanTick)); err != nil {
		return fmt.Errorf("schedule scan job: %w", err)
	}
	if _, err := s.cron.AddFunc(every(enforceEvery), s.wrap("enforce", enforce, &s.lastEnforceTick)); err != nil {
		return fmt.Errorf("schedule enforce job: %w", err)
	}

	go s.wrap("scan", scan, &s.lastScanTick)()
	go s.wrap("enforce", enforce, &s.lastEnforceTick)()

	s.cron.Start()
	logger.WithComponent("scheduler").
		WithField("scan_every", scanEvery).WithField("enforce_every", enforceEvery).
		Info("scheduler started")
	return nil
}

// Stop halts the cron runner. Jobs already running finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// LastEnforceTick returns when the enforcement job last completed.
func (s *Scheduler) LastEnforceTick() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastEnforceTick
}

func (s *Scheduler) wrap(name string, job Job, stamp *time.Time) func() {
	return func() {
		if err := job(); err != nil {
			logger.WithComponent("scheduler").WithField("job", name).
				WithError(err).Error("scheduled job failed")
		}
		s.mu.Lock()
		*stamp = time.Now().UTC()
		s.mu.Unlock()
	}
}

func every(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}
