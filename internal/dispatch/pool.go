package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/proofsheet/proofsheet-api/internal/domain"
	"github.com/proofsheet/proofsheet-api/internal/events"
	"github.com/proofsheet/proofsheet-api/internal/generation"
	"github.com/proofsheet/proofsheet-api/internal/prompt"
)

// Common errors returned by the pool
var (
	ErrPoolClosed = errors.New("dispatch pool is closed")
	ErrQueueFull  = errors.New("dispatch queue is full")
)

// Request is one unit of work: a prompt or a source image plus an
// instruction, bound to the work item it will update on completion.
type Request struct {
	ItemID  uuid.UUID
	Kind    domain.ItemKind
	Prompt  string
	Source  *domain.Image
	Options domain.ImageOptions
}

// Config holds configuration options for the dispatch pool.
type Config struct {
	// WorkerCount bounds concurrent backend calls. If zero or negative,
	// defaults to 3.
	WorkerCount int

	// QueueSize is the buffer for submissions waiting on a free worker
	// slot. Excess submissions queue here rather than in any custom
	// structure. If zero or negative, defaults to 256.
	QueueSize int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 3,
		QueueSize:   256,
	}
}

type job struct {
	req    Request
	handle *Handle
}

// Pool runs a fixed number of worker goroutines executing backend calls.
type Pool struct {
	generator generation.Generator
	jobs      chan *job
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	config    Config
	logger    *slog.Logger
	activity  *events.Buffer
}

// NewPool creates a dispatch pool. Call Start to spawn the workers.
func NewPool(config Config, generator generation.Generator, logger *slog.Logger, activity *events.Buffer) *Pool {
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 3)
		config.WorkerCount = 3
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		generator: generator,
		jobs:      make(chan *job, config.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
		config:    config,
		logger:    logger,
		activity:  activity,
	}
}

// Start spawns the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop shuts the pool down and waits for in-flight work to finish.
// Queued jobs that never ran are left pending; their handles are
// abandoned along with the session.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Submit enqueues a unit of work and returns its handle immediately.
// It never blocks the caller: a full buffer returns ErrQueueFull.
func (p *Pool) Submit(req Request) (*Handle, error) {
	if p.ctx.Err() != nil {
		return nil, ErrPoolClosed
	}

	handle := newHandle(req.ItemID)

	select {
	case p.jobs <- &job{req: req, handle: handle}:
		p.logger.Debug("task submitted",
			"item_id", req.ItemID,
			"kind", req.Kind,
			"queue_len", len(p.jobs),
			"queue_cap", cap(p.jobs))
		return handle, nil
	default:
		return nil, fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(p.jobs))
	}
}

// worker processes jobs until the pool is stopped.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			p.execute(j, id)
		}
	}
}

// execute runs a single backend call and stores the outcome on the
// handle. It writes nothing but the handle and the activity buffer.
func (p *Pool) execute(j *job, workerID int) {
	logger := p.logger.With(
		"item_id", j.req.ItemID,
		"kind", j.req.Kind,
		"worker_id", workerID,
	)

	if !j.handle.begin() {
		// Cancelled while waiting for a worker slot.
		logger.Debug("skipping cancelled task")
		return
	}

	logger.Info("processing task", "prompt", prompt.Truncate(j.req.Prompt, 60))

	var result *domain.Image
	var err error

	switch j.req.Kind {
	case domain.KindImageTransform:
		result, err = p.generator.Transform(p.ctx, j.req.Source, j.req.Prompt, j.req.Options)
	default:
		result, err = p.generator.Generate(p.ctx, j.req.Prompt, j.req.Options)
	}

	if err != nil {
		logger.Error("task execution failed", "error", err)
		p.activity.Error(j.req.ItemID,
			fmt.Sprintf("Failed: %s", prompt.Truncate(j.req.Prompt, 40)))
	} else {
		logger.Info("task completed successfully")
		p.activity.Info(j.req.ItemID,
			fmt.Sprintf("Completed: %s", prompt.Truncate(j.req.Prompt, 40)))
	}

	j.handle.complete(result, err)
}
