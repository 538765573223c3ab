// Package scheduler provides an optional, host-driven periodic merge loop
// for an Ignite instance. It lives outside the engine core: the core never
// spawns goroutines that outlive the call that started them, so a host
// application that wants compaction on a fixed interval wires one of these
// up itself.
package scheduler

import (
	"context"
	"sync"
	"time"

	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
	"go.uber.org/zap"
)

// Merger is the subset of *ignite.Instance the scheduler depends on. Kept
// as an interface so tests can drive the loop against a fake.
type Merger interface {
	Merge(ctx context.Context) error
}

// MergeScheduler calls Merge on a fixed interval until stopped, logging
// (rather than surfacing) the no-op outcomes Merge returns when there is
// nothing worth compacting yet.
type MergeScheduler struct {
	target   Merger
	interval time.Duration
	log      *zap.SugaredLogger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a scheduler that merges target every interval once Start is
// called. A nil logger falls back to zap's no-op logger.
func New(target Merger, interval time.Duration, log *zap.SugaredLogger) *MergeScheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MergeScheduler{target: target, interval: interval, log: log}
}

// Start launches the periodic merge loop in its own goroutine. Calling
// Start on an already-running scheduler is a no-op.
func (s *MergeScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(loopCtx)
}

// Stop cancels the loop and waits for it to exit. Safe to call more than
// once and safe to call on a scheduler that was never started.
func (s *MergeScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *MergeScheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mergeOnce(ctx)
		}
	}
}

func (s *MergeScheduler) mergeOnce(ctx context.Context) {
	err := s.target.Merge(ctx)
	if err == nil {
		s.log.Infow("scheduled merge completed")
		return
	}

	switch bkerrors.GetErrorCode(err) {
	case bkerrors.ErrorCodeMergeRatioUnreached:
		s.log.Infow("scheduled merge skipped, reclaim ratio not reached")
	case bkerrors.ErrorCodeMergeNoEnoughSpace:
		s.log.Warnw("scheduled merge skipped, not enough free disk space", "error", err)
	case bkerrors.ErrorCodeMergeInProgress:
		s.log.Infow("scheduled merge skipped, a merge is already running")
	default:
		s.log.Warnw("scheduled merge failed", "error", err)
	}
}
