package goproc

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	outcome, err := Run("true")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Success || outcome.Code != 0 {
		t.Errorf("outcome = %+v, want clean exit", outcome)
	}

	outcome, err = Run("false")
	if err != nil {
		t.Fatalf("Run(false): %v", err)
	}
	if outcome.Success || outcome.Code != 1 {
		t.Errorf("outcome = %+v, want exit code 1", outcome)
	}
}

func TestRun_RejectsInjection(t *testing.T) {
	_, err := Run("sh", "-c", "echo hi; rm -rf /tmp/x")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Run(injection) = %v, want ErrInvalidInput", err)
	}
}

func TestRunWithTimeout(t *testing.T) {
	start := time.Now()
	_, err := RunWithTimeout(100*time.Millisecond, "sleep", "5")
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if elapsed > time.Second {
		t.Errorf("RunWithTimeout took %v", elapsed)
	}
}

func TestOutput(t *testing.T) {
	out, err := Output("echo", "hello", "world")
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if got := strings.TrimSpace(out.StdoutString()); got != "hello world" {
		t.Errorf("stdout = %q", got)
	}
}

func TestOutputWithRetry(t *testing.T) {
	out, err := OutputWithRetry(context.Background(), "echo", "retried")
	if err != nil {
		t.Fatalf("OutputWithRetry: %v", err)
	}
	if !strings.Contains(out.StdoutString(), "retried") {
		t.Errorf("stdout = %q", out.StdoutString())
	}

	_, err = OutputWithRetry(context.Background(), "echo;rm")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("OutputWithRetry(injection) = %v, want ErrInvalidInput", err)
	}
}

func TestNewSignalMonitor(t *testing.T) {
	mon, err := NewSignalMonitor()
	if err != nil {
		t.Fatalf("NewSignalMonitor: %v", err)
	}
	defer mon.Close()

	if mon.ShouldShutdown() {
		t.Error("ShouldShutdown = true with no signal")
	}
}

func TestNewPool(t *testing.T) {
	p, err := NewPool(PoolConfig{MaxWorkers: 2})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Close()

	info, err := p.SpawnWorker(context.Background(), New("sleep").Arg("10"))
	if err != nil {
		t.Fatalf("SpawnWorker: %v", err)
	}
	if info.PID <= 0 {
		t.Errorf("info = %+v", info)
	}
}

func TestValidateHelpers(t *testing.T) {
	if err := ValidateInput("safe"); err != nil {
		t.Errorf("ValidateInput(safe) = %v", err)
	}
	if err := ValidateInput("a|b"); err == nil {
		t.Error("ValidateInput(a|b) = nil, want error")
	}
	if err := ValidateEnv("KEY", "value"); err != nil {
		t.Errorf("ValidateEnv = %v", err)
	}
	if err := ValidatePath("/definitely/not/here"); err == nil {
		t.Error("ValidatePath(missing) = nil, want error")
	}
}

func TestVersion(t *testing.T) {
	if Version() == "" {
		t.Error("Version is empty")
	}
}
