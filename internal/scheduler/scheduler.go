// Package scheduler drives scheduled scan runs via cron.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler manages the cron-driven scan task.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// New creates a scheduler. Cron expressions include a seconds field.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}
}

// RegisterScan registers the scan task at the given cron expression,
// typically shortly after the market close.
func (s *Scheduler) RegisterScan(cronExpr string, task func()) error {
	if _, err := s.cron.AddFunc(cronExpr, task); err != nil {
		return fmt.Errorf("register scan task %q: %w", cronExpr, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}
