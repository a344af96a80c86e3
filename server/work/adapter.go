package work

import (
	"context"
	"sync"
	"time"

	"github.com/Daskott/contactspro/server/cron"
	"github.com/Daskott/contactspro/server/logger"
	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
)

const DEFAULT_JOB_TIMEOUT = 5 * time.Minute

var (
	ErrDuplicateHandler = errors.New("handler with provided name already mapped")
	ErrUnknownHandler   = errors.New("no handler mapped to provided name")

	logg = logger.NewLogger()
)

type Handler func(ctx context.Context) error

// WorkerPoolAdapter runs named background jobs, either now or on a cron
// schedule. A job is never run twice at the same time.
type WorkerPoolAdapter struct {
	cronScheduler *gocron.Scheduler
	timeout       time.Duration

	mu       sync.Mutex
	handlers map[string]Handler
	running  map[string]bool
	wg       sync.WaitGroup
}

func NewWorkerAdapter(timeZone string) *WorkerPoolAdapter {
	return &WorkerPoolAdapter{
		cronScheduler: cron.NewCronScheduler(timeZone),
		timeout:       DEFAULT_JOB_TIMEOUT,
		handlers:      map[string]Handler{},
		running:       map[string]bool{},
	}
}

// Start starts the cron scheduler
func (adapter *WorkerPoolAdapter) Start() {
	logg.Info("Starting cron scheduler")
	adapter.cronScheduler.StartAsync()
}

// Stop stops the cron scheduler & waits for running jobs to finish
func (adapter *WorkerPoolAdapter) Stop() {
	logg.Info("Stopping cron scheduler")
	adapter.cronScheduler.Stop()
	adapter.wg.Wait()
}

// Register binds a name to a handler.
func (adapter *WorkerPoolAdapter) Register(name string, handler Handler) error {
	adapter.mu.Lock()
	defer adapter.mu.Unlock()

	if _, ok := adapter.handlers[name]; ok {
		return ErrDuplicateHandler
	}
	adapter.handlers[name] = handler

	return nil
}

// Perform runs the named job in the background, unless it is already running
func (adapter *WorkerPoolAdapter) Perform(name string) error {
	adapter.mu.Lock()
	defer adapter.mu.Unlock()

	handler, ok := adapter.handlers[name]
	if !ok {
		return errors.Wrap(ErrUnknownHandler, name)
	}

	if adapter.running[name] {
		logg.Warnf("Job %v is still running, skipping", name)
		return nil
	}
	adapter.running[name] = true

	adapter.wg.Add(1)
	go func() {
		defer adapter.wg.Done()
		defer adapter.finish(name)

		ctx, cancel := context.WithTimeout(context.Background(), adapter.timeout)
		defer cancel()

		start := time.Now()
		if err := handler(ctx); err != nil {
			logg.Errorf("Job %v failed: %v", name, err)
			return
		}
		logg.Infof("Job %v done in %v", name, time.Since(start))
	}()

	return nil
}

// PeriodicallyPerform runs the named job on the 'cronExpression' schedule
func (adapter *WorkerPoolAdapter) PeriodicallyPerform(cronExpression string, name string) error {
	_, err := adapter.cronScheduler.Cron(cronExpression).Tag(name).Do(func() {
		if err := adapter.Perform(name); err != nil {
			logg.Error(err)
		}
	})

	return errors.Wrapf(err, "schedule %v", name)
}

func (adapter *WorkerPoolAdapter) RemovePeriodicJob(name string) error {
	return adapter.cronScheduler.RemoveByTag(name)
}

// ScheduledJobs returns how many periodic jobs are registered
func (adapter *WorkerPoolAdapter) ScheduledJobs() int {
	return adapter.cronScheduler.Len()
}

// Wait blocks until every job started so far has finished
func (adapter *WorkerPoolAdapter) Wait() {
	adapter.wg.Wait()
}

func (adapter *WorkerPoolAdapter) finish(name string) {
	adapter.mu.Lock()
	defer adapter.mu.Unlock()
	delete(adapter.running, name)
}
