package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Worker is one reconciliation stage. RunOnce processes a single batch;
// the runner owns the wake interval.
type Worker interface {
	Name() string
	RunOnce(ctx context.Context)
}

type scheduledWorker struct {
	worker   Worker
	interval time.Duration
}

// Runner hosts the reconciliation workers, each on its own ticker loop.
// Workers are uncoordinated; stage isolation comes from the conditional
// status writes in the stores.
type Runner struct {
	log     *logrus.Entry
	workers []scheduledWorker
}

func NewRunner(log *logrus.Entry) *Runner {
	return &Runner{log: log}
}

func (r *Runner) Add(w Worker, interval time.Duration) {
	r.workers = append(r.workers, scheduledWorker{worker: w, interval: interval})
}

// Start runs every registered worker until ctx is cancelled, then waits for
// in-flight batches to finish.
func (r *Runner) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, sw := range r.workers {
		wg.Add(1)
		go func(sw scheduledWorker) {
			defer wg.Done()
			r.loop(ctx, sw)
		}(sw)
	}
	wg.Wait()
}

func (r *Runner) loop(ctx context.Context, sw scheduledWorker) {
	log := r.log.WithField("worker", sw.worker.Name())
	log.WithField("interval", sw.interval.String()).Info("worker started")

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping")
			return
		case <-ticker.C:
			sw.worker.RunOnce(ctx)
		}
	}
}
