// SPDX-License-Identifier: AGPL-3.0-only

// Package scheduler runs the periodic conversation retention sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/logging"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// RetentionSweeper deletes conversations that have not been updated within
// the configured age, on a cron schedule.
type RetentionSweeper struct {
	cron    *cron.Cron
	store   model.ConversationStore
	maxAge  time.Duration
	logger  *logging.Logger
	entryID cron.EntryID
}

// NewRetentionSweeper creates a sweeper over the given store. maxAge is how
// long an untouched conversation is kept.
func NewRetentionSweeper(store model.ConversationStore, maxAge time.Duration, logger *logging.Logger) *RetentionSweeper {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(
			cron.Recover(cron.DefaultLogger),
		),
	)
	return &RetentionSweeper{
		cron:   c,
		store:  store,
		maxAge: maxAge,
		logger: logger,
	}
}

// Start registers the sweep on the given cron schedule and begins the
// scheduler. The sweeper stops when ctx is cancelled.
func (s *RetentionSweeper) Start(ctx context.Context, schedule string) error {
	entryID, err := s.cron.AddFunc(schedule, s.Sweep)
	if err != nil {
		return err
	}
	s.entryID = entryID
	s.cron.Start()
	s.logger.Infof("Retention sweeper started (schedule %q, max age %s)", schedule, s.maxAge)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the scheduler. A sweep already running completes.
func (s *RetentionSweeper) Stop() {
	s.cron.Stop()
}

// Sweep deletes conversations older than the retention age. It is invoked by
// cron but safe to call directly.
func (s *RetentionSweeper) Sweep() {
	cutoff := time.Now().UTC().Add(-s.maxAge)
	n, err := s.store.DeleteConversationsBefore(cutoff)
	if err != nil {
		s.logger.Errorf("Retention sweep failed: %v", err)
		return
	}
	if n > 0 {
		s.logger.Infof("Retention sweep deleted %d conversations older than %s", n, s.maxAge)
	} else {
		s.logger.Debugf("Retention sweep found nothing to delete")
	}
}
