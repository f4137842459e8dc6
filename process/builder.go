// Package process provides validated process construction and a guard type
// that guarantees every spawned child is terminated and reaped exactly once.
package process

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/victoralfred/goproc/validation"
)

// DefaultGracePeriod is how long a guard waits between the graceful and
// forceful termination signals during shutdown.
const DefaultGracePeriod = 500 * time.Millisecond

// Spec is the validated, immutable description of what to run. It is
// produced by a Builder and consumed exactly once by spawn.
type Spec struct {
	// Command is the executable path or bare name.
	Command string

	// Args are the command arguments (excluding the command name).
	Args []string

	// Env is the set of environment overrides applied on top of the
	// parent environment.
	Env map[string]string

	// WorkingDir is the working directory for the command.
	WorkingDir string

	// Timeout is the maximum execution time. Zero means unbounded.
	Timeout time.Duration

	// Stdin provides input to the command.
	Stdin io.Reader

	// Stdout receives standard output. If nil, output is discarded.
	Stdout io.Writer

	// Stderr receives standard error. If nil, output is discarded.
	Stderr io.Writer

	// GracePeriod overrides DefaultGracePeriod when positive.
	GracePeriod time.Duration
}

// Builder accumulates a process specification with a fluent interface.
// Terminal operations are Spawn and Output.
type Builder struct {
	spec Spec
	err  error
}

// New creates a new Builder for the given command.
func New(command string) *Builder {
	return &Builder{
		spec: Spec{
			Command: command,
			Env:     make(map[string]string),
		},
	}
}

// Arg appends a single argument.
func (b *Builder) Arg(arg string) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.Args = append(b.spec.Args, arg)
	return b
}

// Args appends multiple arguments.
func (b *Builder) Args(args ...string) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.Args = append(b.spec.Args, args...)
	return b
}

// Env sets an environment override.
func (b *Builder) Env(key, value string) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.Env[key] = value
	return b
}

// CurrentDir sets the working directory.
func (b *Builder) CurrentDir(dir string) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.WorkingDir = dir
	return b
}

// Stdin sets the standard input reader.
func (b *Builder) Stdin(r io.Reader) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.Stdin = r
	return b
}

// Stdout sets the standard output writer.
func (b *Builder) Stdout(w io.Writer) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.Stdout = w
	return b
}

// Stderr sets the standard error writer.
func (b *Builder) Stderr(w io.Writer) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.Stderr = w
	return b
}

// Timeout sets the maximum execution time.
func (b *Builder) Timeout(d time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	if d <= 0 {
		b.err = NewInvalidInputError(b.spec.Command, "timeout must be positive")
		return b
	}
	b.spec.Timeout = d
	return b
}

// GracePeriod sets the graceful-to-forceful escalation window used during
// shutdown.
func (b *Builder) GracePeriod(d time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.GracePeriod = d
	return b
}

// validate screens the full specification. A single rejection aborts the
// build before any OS-level side effect.
func (b *Builder) validate() error {
	if b.err != nil {
		return b.err
	}

	if b.spec.Command == "" {
		return NewInvalidInputError("", "command cannot be empty")
	}

	if err := validation.ValidateCommandPath(b.spec.Command); err != nil {
		return NewInvalidInputError(b.spec.Command, err.Error())
	}

	if err := validation.ValidateArgs(b.spec.Args); err != nil {
		return NewInvalidInputError(b.spec.Command, err.Error())
	}

	for key, value := range b.spec.Env {
		if err := validation.ValidateEnv(key, value); err != nil {
			return NewInvalidInputError(b.spec.Command, err.Error())
		}
	}

	if b.spec.WorkingDir != "" {
		if err := validation.ValidatePath(b.spec.WorkingDir); err != nil {
			return NewInvalidInputError(b.spec.Command, err.Error())
		}
	}

	return nil
}

// buildCmd constructs the exec.Cmd for an already-validated spec.
func (b *Builder) buildCmd() *exec.Cmd {
	// #nosec G204 -- command and arguments are validated before this point;
	// separate argv spawning (no shell) prevents injection.
	cmd := exec.Command(b.spec.Command, b.spec.Args...)

	if len(b.spec.Env) > 0 {
		env := os.Environ()
		for k, v := range b.spec.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	if b.spec.WorkingDir != "" {
		cmd.Dir = b.spec.WorkingDir
	}

	cmd.Stdin = b.spec.Stdin
	cmd.Stdout = b.spec.Stdout
	cmd.Stderr = b.spec.Stderr

	// New process group so the guard's signals cannot strike the parent.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}

	return cmd
}

// Spawn validates the specification, performs the OS spawn and wraps the
// resulting handle in a Process guard. The guard owns the child: callers
// must arrange for Wait or Close to run (typically `defer p.Close()`).
func (b *Builder) Spawn() (*Process, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	cmd := b.buildCmd()
	if err := cmd.Start(); err != nil {
		return nil, NewSpawnError(b.spec.Command, err)
	}

	grace := b.spec.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	p := &Process{
		id:      uuid.New().String(),
		name:    filepath.Base(b.spec.Command),
		command: strings.Join(append([]string{b.spec.Command}, b.spec.Args...), " "),
		cmd:     cmd,
		pid:     cmd.Process.Pid,
		timeout: b.spec.Timeout,
		grace:   grace,
		started: time.Now(),
		done:    make(chan struct{}),
	}

	// The single blocking OS wait lives here. The child is reaped the
	// moment it exits, so no exit can leave a zombie behind. The wait
	// error is dropped: outcome() reads everything from ProcessState.
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

// Output validates the specification, spawns the process and waits for it
// to complete, capturing stdout and stderr. No long-lived guard escapes;
// the child is fully reaped before Output returns, on every path.
func (b *Builder) Output() (*CapturedOutput, error) {
	var stdout, stderr bytes.Buffer
	b.spec.Stdout = &stdout
	b.spec.Stderr = &stderr

	p, err := b.Spawn()
	if err != nil {
		return nil, err
	}

	outcome, err := p.Wait()
	if err != nil {
		return nil, err
	}

	return &CapturedOutput{
		Outcome: *outcome,
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
	}, nil
}
