package process

// ExitOutcome describes how a child exited.
type ExitOutcome struct {
	// Code is the exit code, or -1 when the child was killed by a signal.
	Code int

	// Success reports whether the child exited voluntarily with code zero.
	Success bool

	// Signal names the terminating signal, if any ("terminated",
	// "killed", ...). Empty for a voluntary exit.
	Signal string
}

// CapturedOutput bundles an exit outcome with the captured streams. It is
// returned by Builder.Output for completed, fully-reaped children only.
type CapturedOutput struct {
	Outcome ExitOutcome
	Stdout  []byte
	Stderr  []byte
}

// StdoutString returns captured standard output as a string.
func (o *CapturedOutput) StdoutString() string { return string(o.Stdout) }

// StderrString returns captured standard error as a string.
func (o *CapturedOutput) StderrString() string { return string(o.Stderr) }
