/**
 * @description
 * Cron-driven background refresh of the user snapshot. The dashboard treats
 * the snapshot as stale after a few minutes; refetching on a schedule keeps
 * balances current without the frontend asking for it.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the periodic snapshot refresh job.
type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	schedule string
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(service *Service, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		service:  service,
		schedule: schedule,
	}
}

// Start registers the refresh job and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.refreshJob); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("level=info component=scheduler msg=\"scheduled snapshot refresh\" schedule=%q", s.schedule)
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) refreshJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := s.service.RefreshSnapshot(ctx); err != nil {
		log.Printf("level=warn component=scheduler msg=\"scheduled snapshot refresh failed\" err=%v", err)
	}
}
