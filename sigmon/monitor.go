package sigmon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrMonitorClosed is returned by operations on a closed Monitor.
var ErrMonitorClosed = errors.New("signal monitor closed")

// Monitor subscribes to shutdown signals and records their arrival. The
// receiving goroutine only flips state; all process teardown stays with
// the callers that poll ShouldShutdown or block in WaitForSignal, so no
// blocking work ever runs in signal context.
type Monitor struct {
	kinds []Kind
	ch    chan os.Signal
	quit  chan struct{}

	mu      sync.Mutex
	fired   bool
	last    Kind
	firedCh chan struct{}
	closed  bool
}

// New creates a Monitor subscribed to the given signal kinds and starts
// watching. With no kinds it defaults to Interrupt and Terminate. Callers
// own the Monitor and must Close it to release the signal subscription.
func New(kinds ...Kind) (*Monitor, error) {
	if len(kinds) == 0 {
		kinds = []Kind{Interrupt, Terminate}
	}

	sigs := make([]os.Signal, 0, len(kinds))
	for _, k := range kinds {
		sig, err := k.Signal()
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}

	m := &Monitor{
		kinds:   kinds,
		ch:      make(chan os.Signal, 8),
		quit:    make(chan struct{}),
		firedCh: make(chan struct{}),
	}

	signal.Notify(m.ch, sigs...)
	go m.watch()

	return m, nil
}

// watch is the only reader of the signal channel.
func (m *Monitor) watch() {
	for {
		select {
		case sig := <-m.ch:
			if kind, ok := KindOf(sig); ok {
				m.record(kind)
			}
		case <-m.quit:
			return
		}
	}
}

func (m *Monitor) record(kind Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = kind
	if !m.fired {
		m.fired = true
		close(m.firedCh)
	}
}

// ShouldShutdown reports whether a subscribed signal has arrived since
// the monitor was created or last Reset.
func (m *Monitor) ShouldShutdown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fired
}

// Received returns the most recent signal and whether any has arrived.
func (m *Monitor) Received() (Kind, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.fired
}

// Reset clears the shutdown flag so the monitor can observe another
// signal. Intended for tests and for supervisors that survive reloads.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fired {
		m.fired = false
		m.firedCh = make(chan struct{})
	}
}

// WaitForSignal blocks until a subscribed signal arrives or the context
// is cancelled. It returns the signal kind, or the context error.
func (m *Monitor) WaitForSignal(ctx context.Context) (Kind, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, ErrMonitorClosed
	}
	if m.fired {
		last := m.last
		m.mu.Unlock()
		return last, nil
	}
	firedCh := m.firedCh
	m.mu.Unlock()

	select {
	case <-firedCh:
		m.mu.Lock()
		last := m.last
		m.mu.Unlock()
		return last, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-m.quit:
		return 0, ErrMonitorClosed
	}
}

// Close unsubscribes from the OS and stops the watching goroutine. It is
// idempotent.
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	signal.Stop(m.ch)
	close(m.quit)
	return nil
}

// Send delivers a signal to a single process.
func Send(pid int, kind Kind) error {
	sig, err := kind.Signal()
	if err != nil {
		return err
	}
	if err := syscall.Kill(pid, sig); err != nil {
		return fmt.Errorf("send %s to pid %d: %w", kind, pid, err)
	}
	return nil
}

// SendGroup delivers a signal to every member of a process group.
func SendGroup(pgid int, kind Kind) error {
	sig, err := kind.Signal()
	if err != nil {
		return err
	}
	if err := syscall.Kill(-pgid, sig); err != nil {
		return fmt.Errorf("send %s to group %d: %w", kind, pgid, err)
	}
	return nil
}
