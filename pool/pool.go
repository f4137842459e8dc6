// Package pool provides a bounded registry of managed worker processes
// with admission control and guaranteed cleanup.
package pool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/victoralfred/goproc/observability"
	"github.com/victoralfred/goproc/process"
)

// Common errors. Admission-control and unknown-worker rejections are
// invalid-input class: no process was created and no cleanup is owed, so
// errors.Is matches both the specific sentinel and process.ErrInvalidInput.
var (
	ErrPoolFull       = fmt.Errorf("%w: worker pool is full", process.ErrInvalidInput)
	ErrPoolClosed     = errors.New("worker pool is closed")
	ErrWorkerNotFound = fmt.Errorf("%w: worker not found", process.ErrInvalidInput)
	ErrRateLimited    = errors.New("spawn rate limit exceeded")
)

// WorkerInfo describes one managed worker. Command is the full
// originating command line, arguments included.
type WorkerInfo struct {
	StartedAt time.Time
	ID        string
	Name      string
	Command   string
	PID       int
	Running   bool
}

// Config configures the worker pool.
type Config struct {
	// MaxWorkers bounds the number of concurrently tracked workers.
	MaxWorkers int

	// SpawnRate limits how fast new workers may be admitted. Zero
	// disables rate limiting.
	SpawnRate rate.Limit

	// SpawnBurst is the burst size for the spawn rate limiter.
	SpawnBurst int

	// ReapInterval enables a background sweep of exited workers. Zero
	// keeps eviction lazy: exited workers are swept when the registry
	// is next consulted.
	ReapInterval time.Duration

	// Telemetry receives lifecycle metrics. Nil means no-op.
	Telemetry observability.Telemetry

	// Audit receives lifecycle audit events. Nil means no-op.
	Audit observability.AuditLogger
}

// DefaultConfig returns default pool configuration.
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 32,
	}
}

// Stats contains pool statistics.
type Stats struct {
	ActiveWorkers   int
	Capacity        int
	TotalSpawned    int64
	TotalTerminated int64
	TotalRejected   int64
}

// Pool is a bounded registry of worker processes. Admission is checked
// before any process is created, and Close terminates everything that is
// still running. The registry lock is never held across a blocking wait
// or kill.
type Pool struct {
	config    Config
	telemetry observability.Telemetry
	audit     observability.AuditLogger
	limiter   *rate.Limiter

	mu       sync.Mutex
	workers  map[string]*process.Process
	reserved int
	closed   bool

	quit chan struct{}
	wg   sync.WaitGroup

	totalSpawned    int64
	totalTerminated int64
	totalRejected   int64
}

// New creates a worker pool.
func New(config Config) (*Pool, error) {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = DefaultConfig().MaxWorkers
	}
	if config.Telemetry == nil {
		config.Telemetry = observability.NoopTelemetry()
	}
	if config.Audit == nil {
		config.Audit = observability.NoopAuditLogger()
	}

	p := &Pool{
		config:    config,
		telemetry: config.Telemetry,
		audit:     config.Audit,
		workers:   make(map[string]*process.Process),
		quit:      make(chan struct{}),
	}

	if config.SpawnRate > 0 {
		burst := config.SpawnBurst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(config.SpawnRate, burst)
	}

	if config.ReapInterval > 0 {
		p.wg.Add(1)
		go p.reapLoop(config.ReapInterval)
	}

	return p, nil
}

// SpawnWorker admits and spawns a new worker from the builder. Admission
// (capacity and rate) is checked before the OS process is created; a
// rejected spawn has no side effects. The pool owns the returned worker's
// lifecycle and the caller interacts with it through the pool.
func (p *Pool) SpawnWorker(ctx context.Context, b *process.Builder) (WorkerInfo, error) {
	if p.limiter != nil && !p.limiter.Allow() {
		atomic.AddInt64(&p.totalRejected, 1)
		p.telemetry.RecordRejection(ctx, "rate_limited")
		return WorkerInfo{}, ErrRateLimited
	}

	// Reserve a slot so the spawn syscall can run outside the lock
	// while admission stays ahead of any OS side effect.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return WorkerInfo{}, ErrPoolClosed
	}
	evicted := p.evictLocked()
	if len(p.workers)+p.reserved >= p.config.MaxWorkers {
		p.mu.Unlock()
		p.recordEvicted(ctx, evicted)
		atomic.AddInt64(&p.totalRejected, 1)
		p.telemetry.RecordRejection(ctx, "pool_full")
		return WorkerInfo{}, ErrPoolFull
	}
	p.reserved++
	p.mu.Unlock()
	p.recordEvicted(ctx, evicted)

	proc, err := b.Spawn()
	if err != nil {
		p.mu.Lock()
		p.reserved--
		p.mu.Unlock()
		atomic.AddInt64(&p.totalRejected, 1)
		p.telemetry.RecordRejection(ctx, "spawn_failed")
		return WorkerInfo{}, err
	}

	p.mu.Lock()
	p.reserved--
	if p.closed {
		// Lost the race with Close; do not leak the worker.
		p.mu.Unlock()
		_ = proc.Close()
		return WorkerInfo{}, ErrPoolClosed
	}
	p.workers[proc.ID()] = proc
	p.mu.Unlock()

	atomic.AddInt64(&p.totalSpawned, 1)
	p.telemetry.RecordSpawn(ctx, proc.Name())
	p.telemetry.AddActive(ctx, 1)

	pid, _ := proc.PID()
	_ = p.audit.Log(ctx, &observability.AuditEvent{
		ID:   proc.ID(),
		Name: proc.Name(),
		Type: observability.AuditEventSpawn,
		PID:  pid,
	})

	return p.infoFor(proc), nil
}

// TerminateWorker terminates the identified worker, reaps it and removes
// it from the pool. Terminating an unknown or already-removed worker
// returns ErrWorkerNotFound.
func (p *Pool) TerminateWorker(ctx context.Context, id string) error {
	p.mu.Lock()
	proc, ok := p.workers[id]
	if ok {
		delete(p.workers, id)
	}
	p.mu.Unlock()

	if !ok {
		return ErrWorkerNotFound
	}

	p.finishWorker(ctx, proc, observability.AuditEventTerminated)
	return nil
}

// SignalWorker delivers a signal to a tracked worker without removing it.
func (p *Pool) SignalWorker(ctx context.Context, id string, sig os.Signal) error {
	p.mu.Lock()
	proc, ok := p.workers[id]
	p.mu.Unlock()

	if !ok {
		return ErrWorkerNotFound
	}

	if err := proc.Signal(sig); err != nil {
		return err
	}

	pid, _ := proc.PID()
	_ = p.audit.Log(ctx, &observability.AuditEvent{
		ID:     proc.ID(),
		Name:   proc.Name(),
		Type:   observability.AuditEventSignal,
		PID:    pid,
		Detail: sig.String(),
	})
	return nil
}

// TerminateAll terminates every tracked worker and empties the pool.
func (p *Pool) TerminateAll(ctx context.Context) {
	p.mu.Lock()
	snapshot := make([]*process.Process, 0, len(p.workers))
	for _, proc := range p.workers {
		snapshot = append(snapshot, proc)
	}
	p.workers = make(map[string]*process.Process)
	p.mu.Unlock()

	// Each Close may burn a full grace period, so run them in parallel.
	var wg sync.WaitGroup
	for _, proc := range snapshot {
		wg.Add(1)
		go func(proc *process.Process) {
			defer wg.Done()
			p.finishWorker(ctx, proc, observability.AuditEventTerminated)
		}(proc)
	}
	wg.Wait()
}

// ActiveWorkers returns the number of live workers after sweeping out any
// that have exited on their own.
func (p *Pool) ActiveWorkers() int {
	p.mu.Lock()
	evicted := p.evictLocked()
	n := len(p.workers)
	p.mu.Unlock()

	p.recordEvicted(context.Background(), evicted)
	return n
}

// Status returns current information for one worker.
func (p *Pool) Status(id string) (WorkerInfo, error) {
	p.mu.Lock()
	proc, ok := p.workers[id]
	p.mu.Unlock()

	if !ok {
		return WorkerInfo{}, ErrWorkerNotFound
	}
	return p.infoFor(proc), nil
}

// ListWorkers returns information for all tracked workers, oldest first.
func (p *Pool) ListWorkers() []WorkerInfo {
	p.mu.Lock()
	infos := make([]WorkerInfo, 0, len(p.workers))
	for _, proc := range p.workers {
		infos = append(infos, p.infoFor(proc))
	}
	p.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	return Stats{
		ActiveWorkers:   p.ActiveWorkers(),
		Capacity:        p.config.MaxWorkers,
		TotalSpawned:    atomic.LoadInt64(&p.totalSpawned),
		TotalTerminated: atomic.LoadInt64(&p.totalTerminated),
		TotalRejected:   atomic.LoadInt64(&p.totalRejected),
	}
}

// Close terminates all workers and stops the pool. It is idempotent;
// SpawnWorker fails with ErrPoolClosed afterwards.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.quit)
	p.wg.Wait()

	p.TerminateAll(context.Background())
	return nil
}

// finishWorker closes the guard outside the registry lock and records the
// outcome. Safe for workers that already exited: Close is a no-op then.
func (p *Pool) finishWorker(ctx context.Context, proc *process.Process, event observability.AuditEventType) {
	pid, wasRunning := proc.PID()
	_ = proc.Close()

	atomic.AddInt64(&p.totalTerminated, 1)
	reason := string(event)
	if !wasRunning {
		reason = string(observability.AuditEventExit)
		event = observability.AuditEventExit
	}
	p.telemetry.RecordTermination(ctx, proc.Name(), reason)
	p.telemetry.AddActive(ctx, -1)
	p.telemetry.RecordDuration(ctx, proc.Name(), time.Since(proc.StartedAt()).Seconds())

	_ = p.audit.Log(ctx, &observability.AuditEvent{
		ID:       proc.ID(),
		Name:     proc.Name(),
		Type:     event,
		PID:      pid,
		Duration: time.Since(proc.StartedAt()),
	})
}

// evictLocked removes workers whose processes have exited and returns
// them. Only the map mutation happens under the registry lock; callers
// must pass the result to recordEvicted after releasing it.
func (p *Pool) evictLocked() []*process.Process {
	var evicted []*process.Process
	for id, proc := range p.workers {
		if proc.IsRunning() {
			continue
		}
		delete(p.workers, id)
		evicted = append(evicted, proc)
	}
	return evicted
}

// recordEvicted closes evicted guards and emits their exit telemetry and
// audit events. Must be called without the registry lock, since the audit
// log does file IO.
func (p *Pool) recordEvicted(ctx context.Context, evicted []*process.Process) {
	for _, proc := range evicted {
		pid, _ := proc.PID()
		_ = proc.Close()
		p.telemetry.RecordTermination(ctx, proc.Name(), string(observability.AuditEventExit))
		p.telemetry.AddActive(ctx, -1)
		_ = p.audit.Log(ctx, &observability.AuditEvent{
			ID:       proc.ID(),
			Name:     proc.Name(),
			Type:     observability.AuditEventExit,
			PID:      pid,
			Duration: time.Since(proc.StartedAt()),
		})
	}
}

func (p *Pool) reapLoop(interval time.Duration) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			evicted := p.evictLocked()
			p.mu.Unlock()
			p.recordEvicted(context.Background(), evicted)
		case <-p.quit:
			return
		}
	}
}

func (p *Pool) infoFor(proc *process.Process) WorkerInfo {
	pid, running := proc.PID()
	return WorkerInfo{
		ID:        proc.ID(),
		Name:      proc.Name(),
		Command:   proc.Command(),
		PID:       pid,
		Running:   running,
		StartedAt: proc.StartedAt(),
	}
}
