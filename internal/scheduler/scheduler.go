package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"SpendQueue/internal/fund"
)

// ReportFunc receives every status produced by a tick.
type ReportFunc func(rep fund.StatusReport)

// Scheduler refreshes the selected queue's status on a cron schedule.
type Scheduler struct {
	Cron   *cron.Cron
	Fund   *fund.Manager
	Report ReportFunc
}

// NewScheduler creates a new Scheduler. A tick that overlaps a running one
// is skipped, so each refresh is a full load/accrue/store cycle on its own.
func NewScheduler(fm *fund.Manager, report ReportFunc) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Fund:   fm,
		Report: report,
	}
}

// Register adds the status refresh under spec, a standard cron expression
// or descriptor such as "@every 1m".
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.statusTask); err != nil {
		return fmt.Errorf("register status task: %w", err)
	}
	return nil
}

// Run refreshes once immediately, then on schedule until ctx is done. The
// first refresh finishes before the cron starts.
func (s *Scheduler) Run(ctx context.Context) {
	s.statusTask()
	s.Cron.Start()
	log.Debug().Msg("scheduler started")
	<-ctx.Done()
	<-s.Cron.Stop().Done()
	log.Debug().Msg("scheduler stopped")
}

// RunNow executes one refresh synchronously.
func (s *Scheduler) RunNow() {
	s.statusTask()
}

func (s *Scheduler) statusTask() {
	rep, err := s.Fund.Status()
	if err != nil {
		log.Error().Err(err).Msg("refresh status")
		return
	}
	s.Report(rep)
}
