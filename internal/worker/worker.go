// Package worker runs thinning passes on a cron schedule, one at a time.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/thinning/internal/filelock"
	"github.com/raoulx24/thinning/internal/logging"
	"github.com/raoulx24/thinning/internal/mailbox"
	"github.com/raoulx24/thinning/internal/thinning"
)

// Settings is the part of the configuration a pass depends on.
type Settings struct {
	Roots    []string
	LockFile string
	Driver   *thinning.Driver
}

// Worker turns cron ticks into sequential thinning passes. Ticks that arrive
// while a pass is running collapse into a single follow-up pass.
type Worker struct {
	mu   sync.RWMutex
	set  Settings
	log  logging.Logger
	mb   *mailbox.Mailbox[Job]
	cron *cron.Cron
}

// New creates a worker using the given settings and mailbox.
func New(set Settings, log logging.Logger, mb *mailbox.Mailbox[Job]) *Worker {
	log.Debug("creating worker")
	cl := cronLogger{log}
	return &Worker{
		set:  set,
		log:  log,
		mb:   mb,
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
	}
}

// Schedule registers a standard cron spec that triggers a pass.
func (w *Worker) Schedule(spec string) error {
	if _, err := w.cron.AddFunc(spec, w.Trigger); err != nil {
		return fmt.Errorf("scheduling %q: %w", spec, err)
	}
	return nil
}

// Trigger requests a pass as soon as the worker is idle.
func (w *Worker) Trigger() {
	if w.mb.HasJob() {
		w.log.Debug("pass already pending, coalescing trigger")
	}
	w.mb.Put(Job{Trigger: time.Now()})
}

// Start runs the scheduler and the pass loop until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("starting worker")
	w.cron.Start()
	defer func() {
		<-w.cron.Stop().Done()
		w.log.Info("worker stopped")
	}()

	for {
		job, ok := w.mb.Take(ctx)
		if !ok {
			return
		}
		if _, err := w.Handle(job); err != nil {
			w.log.Error("pass triggered at %s failed: %v", job.Trigger.Format(time.RFC3339), err)
		}
	}
}

// Handle runs one pass and logs its summary.
func (w *Worker) Handle(job Job) (thinning.Counters, error) {
	w.mu.RLock()
	set := w.set
	w.mu.RUnlock()

	w.log.Debug("pass triggered at %s", job.Trigger.Format(time.RFC3339))

	var c thinning.Counters
	err := filelock.WithLock(set.LockFile, func() error {
		return set.Driver.Run(set.Roots, &c)
	})
	w.log.Info("%s", c)
	return c, err
}

// UpdateConfig hot-reloads the settings used by the next pass.
func (w *Worker) UpdateConfig(set Settings) {
	w.log.Debug("entering Worker.UpdateConfig()")
	w.mu.Lock()
	w.set = set
	w.mu.Unlock()
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	log logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Trace("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
