package sigmon

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Interrupt, "interrupt"},
		{Terminate, "terminate"},
		{Hangup, "hangup"},
		{Kind(99), "kind(99)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKind_Signal(t *testing.T) {
	sig, err := Terminate.Signal()
	if err != nil {
		t.Fatalf("Terminate.Signal(): %v", err)
	}
	if sig != syscall.SIGTERM {
		t.Errorf("Terminate.Signal() = %v, want SIGTERM", sig)
	}

	if _, err := Kind(99).Signal(); err == nil {
		t.Error("Kind(99).Signal() = nil error, want unknown kind error")
	}
}

func TestMonitor_ShouldShutdown(t *testing.T) {
	// User1 keeps the test isolated from real Ctrl-C handling.
	m, err := New(User1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	if m.ShouldShutdown() {
		t.Fatal("ShouldShutdown = true before any signal")
	}

	if err := Send(syscall.Getpid(), User1); err != nil {
		t.Fatalf("Send: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !m.ShouldShutdown() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !m.ShouldShutdown() {
		t.Fatal("ShouldShutdown = false after signal delivery")
	}

	kind, ok := m.Received()
	if !ok || kind != User1 {
		t.Errorf("Received = (%v, %v), want (User1, true)", kind, ok)
	}
}

func TestMonitor_WaitForSignal(t *testing.T) {
	m, err := New(User2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = Send(syscall.Getpid(), User2)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	kind, err := m.WaitForSignal(ctx)
	if err != nil {
		t.Fatalf("WaitForSignal: %v", err)
	}
	if kind != User2 {
		t.Errorf("kind = %v, want User2", kind)
	}
}

func TestMonitor_WaitForSignal_ContextCancelled(t *testing.T) {
	m, err := New(User1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = m.WaitForSignal(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForSignal = %v, want DeadlineExceeded", err)
	}
}

func TestMonitor_Reset(t *testing.T) {
	m, err := New(User1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	if err := Send(syscall.Getpid(), User1); err != nil {
		t.Fatalf("Send: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !m.ShouldShutdown() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !m.ShouldShutdown() {
		t.Fatal("signal never observed")
	}

	m.Reset()
	if m.ShouldShutdown() {
		t.Error("ShouldShutdown = true after Reset")
	}

	// A fresh signal must be observable again after Reset.
	if err := Send(syscall.Getpid(), User1); err != nil {
		t.Fatalf("Send: %v", err)
	}
	deadline = time.Now().Add(2 * time.Second)
	for !m.ShouldShutdown() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !m.ShouldShutdown() {
		t.Error("ShouldShutdown = false after second signal")
	}
}

func TestMonitor_Close_Idempotent(t *testing.T) {
	m, err := New(User1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	ctx := context.Background()
	if _, err := m.WaitForSignal(ctx); !errors.Is(err, ErrMonitorClosed) {
		t.Errorf("WaitForSignal after Close = %v, want ErrMonitorClosed", err)
	}
}

func TestSend_UnknownKind(t *testing.T) {
	if err := Send(syscall.Getpid(), Kind(99)); err == nil {
		t.Error("Send with unknown kind = nil, want error")
	}
}
