package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Runner paces passes with a one-second gocron job in singleton mode: a
// pass starts only once the sleep chosen by the previous pass has elapsed.
type Runner struct {
	controller *Controller

	mu      sync.Mutex
	nextDue time.Time
}

func NewRunner(c *Controller) *Runner {
	return &Runner{controller: c}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	scheduler := gocron.NewScheduler(r.controller.loc)
	if _, err := scheduler.Every(1).Seconds().Do(r.tick, ctx); err != nil {
		return fmt.Errorf("schedule: register poll job: %w", err)
	}
	scheduler.SingletonMode()

	r.controller.AnnounceStart(ctx)
	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	return ctx.Err()
}

func (r *Runner) tick(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil || r.controller.clock.Now().Before(r.nextDue) {
		return
	}
	sleep, err := r.controller.RunOnce(ctx)
	if err != nil {
		return
	}
	r.nextDue = r.controller.clock.Now().Add(sleep)
	r.controller.logger.Info("schedule: next pass", "at", r.nextDue.In(r.controller.loc).Format(time.RFC850))
}
