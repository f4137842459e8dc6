package goproc

import (
	"context"
	"time"

	"github.com/victoralfred/goproc/config"
	"github.com/victoralfred/goproc/pool"
	"github.com/victoralfred/goproc/process"
	"github.com/victoralfred/goproc/resilience"
	"github.com/victoralfred/goproc/sigmon"
	"github.com/victoralfred/goproc/validation"
)

// =============================================================================
// Core Types
// =============================================================================

// Builder accumulates a process specification with a fluent interface.
type Builder = process.Builder

// Process is a guard over a running child; it owns termination and reaping.
type Process = process.Process

// Spec is the validated description of what to run.
type Spec = process.Spec

// ExitOutcome describes how a child exited.
type ExitOutcome = process.ExitOutcome

// CapturedOutput bundles an exit outcome with captured streams.
type CapturedOutput = process.CapturedOutput

// ProcessError carries structured details for a failed operation.
type ProcessError = process.ProcessError

// =============================================================================
// Signal Types
// =============================================================================

// SignalMonitor watches OS signals and exposes a shutdown flag.
type SignalMonitor = sigmon.Monitor

// SignalKind identifies a signal in a platform-neutral way.
type SignalKind = sigmon.Kind

// Signal kind constants.
const (
	SignalInterrupt = sigmon.Interrupt
	SignalTerminate = sigmon.Terminate
	SignalHangup    = sigmon.Hangup
	SignalQuit      = sigmon.Quit
)

// =============================================================================
// Pool Types
// =============================================================================

// Pool is a bounded registry of worker processes.
type Pool = pool.Pool

// PoolConfig configures a worker pool.
type PoolConfig = pool.Config

// WorkerInfo describes one managed worker.
type WorkerInfo = pool.WorkerInfo

// =============================================================================
// Error Variables
// =============================================================================

// Common errors returned by the library.
var (
	// ErrInvalidInput indicates validation rejected the request before
	// any process was created.
	ErrInvalidInput = process.ErrInvalidInput

	// ErrSpawn indicates the OS refused to create the process.
	ErrSpawn = process.ErrSpawn

	// ErrTimeout indicates the process exceeded its allotted time.
	ErrTimeout = process.ErrTimeout

	// ErrProcessTerminated indicates use of an already-reaped guard.
	ErrProcessTerminated = process.ErrProcessTerminated

	// ErrPoolFull indicates the worker pool is at capacity.
	ErrPoolFull = pool.ErrPoolFull

	// ErrWorkerNotFound indicates an unknown worker id.
	ErrWorkerNotFound = pool.ErrWorkerNotFound
)

// =============================================================================
// Factory Functions
// =============================================================================

// New creates a Builder for the given command.
//
// Example:
//
//	p, err := goproc.New("sleep").Arg("30").Spawn()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
func New(command string) *Builder {
	return process.New(command)
}

// NewSignalMonitor creates a monitor for the default shutdown signals
// (SIGINT and SIGTERM).
func NewSignalMonitor(kinds ...SignalKind) (*SignalMonitor, error) {
	return sigmon.New(kinds...)
}

// NewPool creates a bounded worker pool.
func NewPool(cfg PoolConfig) (*Pool, error) {
	return pool.New(cfg)
}

// =============================================================================
// Configuration
// =============================================================================

// LoadConfig loads configuration from a YAML file confined to basePath.
//
// Example:
//
//	loader, err := goproc.LoadConfig("/etc/goproc", "goproc.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := loader.Load(ctx)
func LoadConfig(basePath, configFile string, opts ...config.LoaderOption) (*config.Loader, error) {
	return config.NewLoader(basePath, configFile, opts...)
}

// =============================================================================
// Validation
// =============================================================================

// ValidateInput screens a string for shell metacharacters, traversal
// sequences and substitution patterns.
func ValidateInput(input string) error {
	return validation.ValidateInput(input)
}

// ValidateEnv screens one environment variable.
func ValidateEnv(key, value string) error {
	return validation.ValidateEnv(key, value)
}

// ValidatePath screens a filesystem path and requires it to exist.
func ValidatePath(path string) error {
	return validation.ValidatePath(path)
}

// =============================================================================
// Convenience Functions
// =============================================================================

// Run spawns a command, waits for it and returns the outcome. The child
// is fully reaped before Run returns, on every path.
//
// Example:
//
//	outcome, err := goproc.Run("git", "fetch", "--all")
func Run(command string, args ...string) (*ExitOutcome, error) {
	p, err := New(command).Args(args...).Spawn()
	if err != nil {
		return nil, err
	}
	return p.Wait()
}

// RunWithTimeout runs a command with an execution deadline. On expiry
// the child is killed and reaped, and ErrTimeout is returned.
//
// Example:
//
//	outcome, err := goproc.RunWithTimeout(30*time.Second, "make", "test")
func RunWithTimeout(timeout time.Duration, command string, args ...string) (*ExitOutcome, error) {
	p, err := New(command).Args(args...).Timeout(timeout).Spawn()
	if err != nil {
		return nil, err
	}
	return p.Wait()
}

// Output runs a command and captures stdout and stderr.
//
// Example:
//
//	out, err := goproc.Output("uname", "-r")
//	fmt.Print(out.StdoutString())
func Output(command string, args ...string) (*CapturedOutput, error) {
	return New(command).Args(args...).Output()
}

// OutputWithRetry runs a command with capture, retrying transient spawn
// failures with exponential backoff. Validation rejections never retry.
func OutputWithRetry(ctx context.Context, command string, args ...string) (*CapturedOutput, error) {
	backoff := resilience.NewExponentialBackoff(resilience.DefaultBackoffConfig())
	return resilience.OutputWithRetry(ctx, backoff, func() *process.Builder {
		return New(command).Args(args...)
	})
}

// =============================================================================
// Version Information
// =============================================================================

// Version returns the library version.
func Version() string {
	return "1.0.0"
}
