package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/mpapenbr/motorsport-analytics/log"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var ErrJobNotFound = errors.New("job not found or expired")

type (
	// Op is the work of a job. It runs on a background context.
	Op func(ctx context.Context) (any, error)

	// Job is a snapshot of a submitted job.
	// Result is only set for completed jobs, Error only for failed ones.
	Job struct {
		ID        string
		Name      string
		Status    Status
		CreatedAt time.Time
		Result    any
		Error     string
	}

	Option  func(*Manager)
	Manager struct {
		mutex    sync.RWMutex
		jobs     map[string]*Job
		sem      *semaphore.Weighted
		workers  int64
		wg       sync.WaitGroup
		log      *log.Logger
		baseCtx  context.Context
		now      func() time.Time
		finished metric.Int64Counter
	}
)

// WithWorkers limits the number of jobs executed concurrently
func WithWorkers(n int) Option {
	return func(m *Manager) {
		m.workers = int64(n)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithContext sets the context jobs are executed with.
// Values are kept, cancellation is not propagated.
func WithContext(ctx context.Context) Option {
	return func(m *Manager) {
		m.baseCtx = ctx
	}
}

func New(opts ...Option) *Manager {
	ret := &Manager{
		jobs:    map[string]*Job{},
		workers: 4,
		log:     log.Default().Named("jobs"),
		baseCtx: context.Background(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.workers < 1 {
		ret.workers = 1
	}
	ret.sem = semaphore.NewWeighted(ret.workers)
	meter := otel.GetMeterProvider().Meter("msa.jobs")
	ret.finished, _ = meter.Int64Counter("jobs_finished",
		metric.WithDescription("finished jobs by terminal status"))
	return ret
}

// Submit registers a pending job and executes op in the background.
// The id of the new job is returned immediately.
func (m *Manager) Submit(name string, op Op) string {
	job := &Job{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    StatusPending,
		CreatedAt: m.now().UTC(),
	}
	m.mutex.Lock()
	m.jobs[job.ID] = job
	m.mutex.Unlock()

	m.log.Debug("job submitted", log.String("id", job.ID), log.String("name", name))
	m.wg.Add(1)
	go m.run(job.ID, name, op)
	return job.ID
}

// Poll returns a copy of the job with id or ErrJobNotFound
func (m *Manager) Poll(id string) (Job, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// Wait blocks until all submitted jobs are finished
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(id, name string, op Op) {
	defer m.wg.Done()
	ctx := context.WithoutCancel(m.baseCtx)
	//nolint:errcheck // Acquire only fails on a cancelled context
	m.sem.Acquire(ctx, 1)
	defer m.sem.Release(1)

	m.update(id, func(j *Job) { j.Status = StatusProcessing })
	start := time.Now()
	result, err := m.execute(ctx, op)
	if err != nil {
		m.log.Error("job failed",
			log.String("id", id), log.String("name", name), log.ErrorField(err))
		m.update(id, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
		})
		m.count(ctx, name, StatusFailed)
		return
	}
	m.log.Debug("job completed",
		log.String("id", id), log.String("name", name),
		log.Duration("duration", time.Since(start)))
	m.update(id, func(j *Job) {
		j.Status = StatusCompleted
		j.Result = result
	})
	m.count(ctx, name, StatusCompleted)
}

func (m *Manager) execute(ctx context.Context, op Op) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return op(ctx)
}

func (m *Manager) update(id string, f func(j *Job)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if job, ok := m.jobs[id]; ok {
		f(job)
	}
}

func (m *Manager) count(ctx context.Context, name string, status Status) {
	if m.finished == nil {
		return
	}
	m.finished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("name", name),
		attribute.String("status", string(status)),
	))
}
