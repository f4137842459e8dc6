package process

import (
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Process is a guard over a running child. It owns the child for its whole
// lifetime: the child is reaped exactly once, either by Wait or by Close,
// and Close guarantees termination (graceful first, forceful after the
// grace period) for any child still running.
type Process struct {
	id      string
	name    string
	command string
	cmd     *exec.Cmd
	pid     int
	timeout time.Duration
	grace   time.Duration
	started time.Time

	// done is closed by the spawn goroutine after the OS wait returns.
	done chan struct{}

	mu     sync.Mutex
	reaped bool
}

// ID returns the unique identifier assigned to this guard.
func (p *Process) ID() string { return p.id }

// Name returns the base name of the command.
func (p *Process) Name() string { return p.name }

// Command returns the full originating command line, arguments included.
func (p *Process) Command() string { return p.command }

// StartedAt returns the time the child was spawned.
func (p *Process) StartedAt() time.Time { return p.started }

// PID returns the child's process ID and whether the child is still
// running. A PID for an exited child must not be reused for signalling.
func (p *Process) PID() (int, bool) {
	return p.pid, p.IsRunning()
}

// IsRunning reports whether the child is still alive. It never blocks.
func (p *Process) IsRunning() bool {
	p.mu.Lock()
	reaped := p.reaped
	p.mu.Unlock()
	if reaped {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Signal delivers sig to the child. Signalling an exited or already-reaped
// child returns a TerminatedError.
func (p *Process) Signal(sig os.Signal) error {
	if !p.IsRunning() {
		return NewTerminatedError(p.name, p.pid)
	}
	if err := p.cmd.Process.Signal(sig); err != nil {
		return NewSignalError(p.name, err)
	}
	return nil
}

// Wait blocks until the child exits and returns its outcome. If the spec
// carried a timeout and the child outlives it, the child is killed and a
// TimeoutError is returned. Wait consumes the guard: a second call returns
// a TerminatedError without touching the child.
func (p *Process) Wait() (*ExitOutcome, error) {
	p.mu.Lock()
	if p.reaped {
		p.mu.Unlock()
		return nil, NewTerminatedError(p.name, p.pid)
	}
	p.reaped = true
	p.mu.Unlock()

	if p.timeout <= 0 {
		<-p.done
		return p.outcome(), nil
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.outcome(), nil
	case <-timer.C:
		// Deadline passed: kill and reap before reporting, so the
		// timeout path never leaks a running child or a zombie.
		_ = p.cmd.Process.Kill()
		<-p.done
		return nil, NewTimeoutError(p.name, p.timeout)
	}
}

// Close terminates the child if it is still running and reaps it. It sends
// SIGTERM, waits up to the grace period for a voluntary exit, then SIGKILL.
// Close is idempotent and never returns an error for a child that already
// exited; it is safe (and intended) as `defer p.Close()` right after Spawn.
func (p *Process) Close() error {
	p.mu.Lock()
	if p.reaped {
		p.mu.Unlock()
		return nil
	}
	p.reaped = true
	p.mu.Unlock()

	select {
	case <-p.done:
		// Already exited; the spawn goroutine reaped it.
		return nil
	default:
	}

	// Signal errors are deliberately not propagated: the child may exit
	// between the liveness check and the signal, and shutdown must not
	// fail because the work finished on its own.
	_ = p.cmd.Process.Signal(syscall.SIGTERM)

	timer := time.NewTimer(p.grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
		_ = p.cmd.Process.Kill()
		<-p.done
		return nil
	}
}

// outcome translates the reaped process state. Callers must hold the reap
// token and have observed done closed.
func (p *Process) outcome() *ExitOutcome {
	state := p.cmd.ProcessState

	out := &ExitOutcome{
		Code:    state.ExitCode(),
		Success: state.Success(),
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		out.Signal = ws.Signal().String()
	}

	return out
}
