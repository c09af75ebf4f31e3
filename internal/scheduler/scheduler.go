package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
)

// Job is a unit of periodic maintenance work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs at fixed intervals until stopped.
type Scheduler struct {
	quit chan struct{}
	wg   sync.WaitGroup
}

// New creates a new scheduler
func New() *Scheduler {
	return &Scheduler{
		quit: make(chan struct{}),
	}
}

// Schedule registers a job to run at a fixed interval. The first run
// happens after one full interval, not immediately.
func (s *Scheduler) Schedule(ctx context.Context, interval time.Duration, job Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.run(ctx, job)
			case <-ctx.Done():
				return
			case <-s.quit:
				return
			}
		}
	}()
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	log := logger.FromContext(ctx)
	if err := job.Run(ctx); err != nil {
		log.Error(LogMsgJobFailed, "job", job.Name(), "error", err)
		return
	}
	log.Debug(LogMsgJobCompleted, "job", job.Name())
}

// Stop stops all scheduled jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	close(s.quit)
	s.wg.Wait()
}
