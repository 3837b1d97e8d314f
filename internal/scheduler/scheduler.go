// Package scheduler owns every recurring trigger as a registry of cron
// entries keyed by job id.
package scheduler

import (
	"sort"
	"sync"

	"github.com/haierkeys/db-backup-sync-service/internal/metrics"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"
	"github.com/haierkeys/db-backup-sync-service/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps a single cron runner. The registry maps a job id to its
// active entry; re-scheduling an id replaces the prior trigger, so an id is
// never registered twice.
type Scheduler struct {
	cron    *cron.Cron
	parser  cron.Parser
	mu      sync.Mutex
	entries map[string]cron.EntryID
	logger  *zap.Logger
}

func New(lg *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		parser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		entries: map[string]cron.EntryID{},
		logger:  lg,
	}
}

// Validate checks a standard 5-field cron expression without installing it.
func (s *Scheduler) Validate(expr string) error {
	if _, err := s.parser.Parse(expr); err != nil {
		return code.ErrorCronInvalid.WithDetails(err.Error())
	}
	return nil
}

// Schedule validates expr and installs cmd under jobID, replacing any prior
// trigger for that id. An invalid expression is rejected and the prior
// schedule, if any, stays untouched.
func (s *Scheduler) Schedule(jobID string, expr string, cmd func()) error {
	if err := s.Validate(expr); err != nil {
		s.logger.Error("scheduler: invalid cron expression rejected",
			zap.String(logger.FieldJob, jobID),
			zap.String(logger.FieldCron, expr))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.entries[jobID]; ok {
		s.cron.Remove(prior)
		delete(s.entries, jobID)
	}

	id, err := s.cron.AddFunc(expr, cmd)
	if err != nil {
		return code.ErrorCronInvalid.WithDetails(err.Error())
	}
	s.entries[jobID] = id
	metrics.ScheduledJobs.Set(float64(len(s.entries)))

	s.logger.Info("scheduler: trigger installed",
		zap.String(logger.FieldJob, jobID),
		zap.String(logger.FieldCron, expr))
	return nil
}

// Remove stops and deletes the trigger for jobID. Removing an unknown id is
// a no-op.
func (s *Scheduler) Remove(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[jobID]; ok {
		s.cron.Remove(id)
		delete(s.entries, jobID)
		metrics.ScheduledJobs.Set(float64(len(s.entries)))
		s.logger.Info("scheduler: trigger removed", zap.String(logger.FieldJob, jobID))
	}
}

// IsScheduled reports whether a trigger for jobID is installed.
func (s *Scheduler) IsScheduled(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[jobID]
	return ok
}

// JobIDs returns the registered ids, sorted.
func (s *Scheduler) JobIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Start begins firing triggers.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the runner and waits for in-flight invocations.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
