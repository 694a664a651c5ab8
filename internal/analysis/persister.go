package analysis

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/metrics"
	"github.com/scrypster/insight/pkg/types"
)

// Persister defaults.
const (
	DefaultQueueSize   = 64
	DefaultWorkers     = 2
	DefaultSaveTimeout = 30 * time.Second
)

// Saver writes one analysis to memory. It must not return an error; a nil
// entry means nothing was written.
type Saver interface {
	Save(ctx context.Context, text string, record types.AnalysisRecord) *types.MemoryEntry
}

// PersisterConfig controls the queue and worker pool. Zero values select
// the defaults.
type PersisterConfig struct {
	QueueSize   int
	Workers     int
	SaveTimeout time.Duration

	// OnSaved, if set, is called from a worker after each successful write.
	OnSaved func(types.MemoryEntry)

	Logger  *zap.Logger
	Metrics *metrics.Collector
}

type saveJob struct {
	text   string
	record types.AnalysisRecord
	queued time.Time
}

// Persister writes analyses to memory in the background so a slow or failing
// store never delays or fails an analysis response.
type Persister struct {
	saver   Saver
	cfg     PersisterConfig
	logger  *zap.Logger
	metrics *metrics.Collector

	mu     sync.RWMutex
	closed bool
	queue  chan saveJob

	// baseCtx is cancelled when Shutdown gives up waiting, aborting
	// in-flight saves.
	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

// NewPersister starts the worker pool.
func NewPersister(saver Saver, cfg PersisterConfig) *Persister {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	p := &Persister{
		saver:      saver,
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "persister")),
		metrics:    cfg.Metrics,
		queue:      make(chan saveJob, cfg.QueueSize),
		baseCtx:    baseCtx,
		baseCancel: cancel,
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker(i)
	}
	return p
}

// Submit queues a write and returns immediately. It reports false when the
// write was dropped because the queue is full or the persister is shut down.
func (p *Persister) Submit(text string, record types.AnalysisRecord) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.metrics.MemoryWrite(metrics.OutcomeDropped)
		p.logger.Warn("persister shut down, dropping memory write")
		return false
	}

	select {
	case p.queue <- saveJob{text: text, record: record, queued: time.Now()}:
		return true
	default:
		p.metrics.MemoryWrite(metrics.OutcomeDropped)
		p.logger.Warn("memory write queue full, dropping write", zap.Int("queue_size", p.cfg.QueueSize))
		return false
	}
}

// Pending returns the number of queued writes.
func (p *Persister) Pending() int {
	return len(p.queue)
}

func (p *Persister) worker(id int) {
	defer p.wg.Done()
	for job := range p.queue {
		p.process(id, job)
	}
}

func (p *Persister) process(id int, job saveJob) {
	ctx, cancel := context.WithTimeout(p.baseCtx, p.cfg.SaveTimeout)
	defer cancel()

	entry := p.saver.Save(ctx, job.text, job.record)
	if entry == nil {
		return
	}
	p.logger.Debug("analysis persisted",
		zap.Int("worker", id),
		zap.String("id", entry.ID),
		zap.Duration("queued_for", time.Since(job.queued)))
	if p.cfg.OnSaved != nil {
		p.cfg.OnSaved(*entry)
	}
}

// Shutdown stops accepting writes and waits for queued ones to finish. If
// ctx expires first, the contexts of in-flight and queued saves are
// cancelled and ctx.Err() is returned at once; workers exit in the
// background as their Saver returns. Shutdown is safe to call more than once.
func (p *Persister) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.baseCancel()
		p.logger.Info("persister drained")
		return nil
	case <-ctx.Done():
		p.baseCancel()
		p.logger.Warn("persister shutdown timed out, writes may be lost", zap.Int("pending", p.Pending()))
		return ctx.Err()
	}
}
