package pool

import (
	"github.com/victoralfred/goproc/internal/procutil"
	"github.com/victoralfred/goproc/process"
)

// Niceness bounds accepted by SetWorkerPriority.
const (
	// MinNice is the highest scheduling priority.
	MinNice = -20

	// MaxNice is the lowest scheduling priority.
	MaxNice = 19
)

// SetWorkerPriority adjusts the OS scheduling priority (niceness) of a
// tracked worker. Raising priority above the current value generally
// requires privileges; the resulting permission error is classified as
// such for the caller.
func (p *Pool) SetWorkerPriority(id string, nice int) error {
	if nice < MinNice || nice > MaxNice {
		return process.NewInvalidInputError(id, "niceness out of range")
	}

	p.mu.Lock()
	proc, ok := p.workers[id]
	p.mu.Unlock()

	if !ok {
		return ErrWorkerNotFound
	}

	pid, running := proc.PID()
	if !running {
		return process.NewTerminatedError(proc.Name(), pid)
	}

	if err := procutil.SetPriority(pid, nice); err != nil {
		return process.NewPermissionError("setpriority", err)
	}
	return nil
}

// WorkerPriority returns the current niceness of a tracked worker.
func (p *Pool) WorkerPriority(id string) (int, error) {
	p.mu.Lock()
	proc, ok := p.workers[id]
	p.mu.Unlock()

	if !ok {
		return 0, ErrWorkerNotFound
	}

	pid, running := proc.PID()
	if !running {
		return 0, process.NewTerminatedError(proc.Name(), pid)
	}

	return procutil.Priority(pid)
}
