package scheduler

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpendQueue/internal/fund"
	"SpendQueue/internal/model"
)

func TestRunNow_ReportsStatus(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	fm := fund.NewManager(filepath.Join(t.TempDir(), "state.json"), fund.WithClock(func() time.Time { return now }))

	var reports []fund.StatusReport
	s := NewScheduler(fm, func(rep fund.StatusReport) { reports = append(reports, rep) })
	s.RunNow()

	require.Len(t, reports, 1)
	assert.Equal(t, model.DefaultQueueName, reports[0].Queue)
}

func TestRegister_InvalidSpec(t *testing.T) {
	fm := fund.NewManager(filepath.Join(t.TempDir(), "state.json"))
	s := NewScheduler(fm, func(fund.StatusReport) {})
	assert.Error(t, s.Register("not a schedule"))
	assert.NoError(t, s.Register("@every 1h"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	fm := fund.NewManager(filepath.Join(t.TempDir(), "state.json"))
	reports := make(chan fund.StatusReport, 10)
	s := NewScheduler(fm, func(rep fund.StatusReport) { reports <- rep })
	require.NoError(t, s.Register("@every 1h"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-reports:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial report")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRegister_OverlappingTickIsSkipped(t *testing.T) {
	fm := fund.NewManager(filepath.Join(t.TempDir(), "state.json"))
	started := make(chan struct{})
	release := make(chan struct{})
	var reports int32
	s := NewScheduler(fm, func(fund.StatusReport) {
		if atomic.AddInt32(&reports, 1) == 1 {
			close(started)
			<-release
		}
	})
	require.NoError(t, s.Register("@every 1h"))
	entries := s.Cron.Entries()
	require.Len(t, entries, 1)
	job := entries[0].WrappedJob

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// The first tick is still reporting; this one must return without running.
	job.Run()
	close(release)
	<-done
	assert.Equal(t, int32(1), atomic.LoadInt32(&reports))
}
