// Package goproc provides validated process spawning with guaranteed
// cleanup, signal-aware shutdown, and a bounded worker pool.
//
// GoProc centralizes process lifecycle management behind a small API:
// every child is screened before the OS ever sees it, owned by a guard
// that reaps it exactly once, and terminated gracefully (SIGTERM, a
// grace period, then SIGKILL) when its owner lets go.
//
// # Key Features
//
//   - Shell-injection screening of commands, arguments and environment
//   - Builder API producing guarded processes with optional timeouts
//   - Guards that guarantee termination and reaping on every path
//   - Signal monitor exposing a race-free shutdown flag
//   - Bounded worker pool with admission control and rate limiting
//   - OpenTelemetry metrics and append-only audit logging
//
// # Basic Usage
//
//	p, err := goproc.New("sleep").Arg("30").Spawn()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	out, err := goproc.New("ls").Arg("-la").Output()
//
// # Shutdown Handling
//
//	mon, _ := goproc.NewSignalMonitor()
//	defer mon.Close()
//
//	for !mon.ShouldShutdown() {
//	    // spawn and supervise work
//	}
//
// # Worker Pools
//
//	pool, _ := goproc.NewPool(goproc.PoolConfig{MaxWorkers: 8})
//	defer pool.Close()
//
//	info, err := pool.SpawnWorker(ctx, goproc.New("worker").Arg("--job", id))
//
// # File I/O
//
// All file operations use github.com/victoralfred/gowritter/safepath
// for confined path handling.
//
// # Package Structure
//
//   - goproc: Main entry point and convenience functions
//   - process: Builder, guard and error taxonomy
//   - validation: Input, environment and path screening
//   - sigmon: Signal monitoring and delivery
//   - pool: Bounded worker registry
//   - resilience: Backoff and retry for transient spawn failures
//   - observability: OpenTelemetry metrics and audit logging
//   - config: YAML configuration loading
package goproc
