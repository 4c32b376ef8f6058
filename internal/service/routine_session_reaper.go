package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const staleSessionReason = "run exceeded its timeout and was abandoned"

type staleSessionFailer interface {
	FailStale(ctx context.Context, before time.Time, reason string) (int64, error)
}

// RoutineSessionReaper periodically fails runs left RUNNING by a crashed or
// killed process so the academic year can be regenerated.
type RoutineSessionReaper struct {
	repo   staleSessionFailer
	spec   string
	maxAge time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewRoutineSessionReaper builds a reaper. Sessions older than maxAge are failed on every tick of spec.
func NewRoutineSessionReaper(repo staleSessionFailer, spec string, maxAge time.Duration, logger *zap.Logger) *RoutineSessionReaper {
	if spec == "" {
		spec = "@every 5m"
	}
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoutineSessionReaper{repo: repo, spec: spec, maxAge: maxAge, logger: logger, now: time.Now}
}

// Start schedules the sweep. It fails when the cron spec does not parse.
func (r *RoutineSessionReaper) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(r.logger.Named("cron")))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger), cron.Recover(cronLogger)))
	if _, err := c.AddFunc(r.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = r.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule session reaper %q: %w", r.spec, err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("routine session reaper started", zap.String("schedule", r.spec), zap.Duration("max_age", r.maxAge))
	return nil
}

// Stop halts scheduling and waits for a running sweep.
func (r *RoutineSessionReaper) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
}

// Sweep fails every RUNNING session started before now minus maxAge.
func (r *RoutineSessionReaper) Sweep(ctx context.Context) (int64, error) {
	cutoff := r.now().UTC().Add(-r.maxAge)
	n, err := r.repo.FailStale(ctx, cutoff, staleSessionReason)
	if err != nil {
		r.logger.Warn("routine session sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		r.logger.Warn("stale routine sessions failed", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}
