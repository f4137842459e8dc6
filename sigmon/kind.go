// Package sigmon watches operating-system signals and exposes a race-free
// shutdown flag, plus helpers for delivering signals to processes and
// process groups.
package sigmon

import (
	"fmt"
	"os"
	"syscall"
)

// Kind identifies a signal in a platform-neutral way.
type Kind int

const (
	// Interrupt is SIGINT, usually Ctrl-C at a terminal.
	Interrupt Kind = iota

	// Terminate is SIGTERM, the polite shutdown request.
	Terminate

	// Hangup is SIGHUP, conventionally a reload request.
	Hangup

	// Quit is SIGQUIT.
	Quit

	// User1 is SIGUSR1.
	User1

	// User2 is SIGUSR2.
	User2
)

var kindNames = map[Kind]string{
	Interrupt: "interrupt",
	Terminate: "terminate",
	Hangup:    "hangup",
	Quit:      "quit",
	User1:     "user1",
	User2:     "user2",
}

var kindSignals = map[Kind]syscall.Signal{
	Interrupt: syscall.SIGINT,
	Terminate: syscall.SIGTERM,
	Hangup:    syscall.SIGHUP,
	Quit:      syscall.SIGQUIT,
	User1:     syscall.SIGUSR1,
	User2:     syscall.SIGUSR2,
}

// String returns the lowercase conventional name of the signal.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Signal returns the OS signal for this kind.
func (k Kind) Signal() (syscall.Signal, error) {
	sig, ok := kindSignals[k]
	if !ok {
		return 0, fmt.Errorf("unknown signal kind %d", int(k))
	}
	return sig, nil
}

// KindOf maps an OS signal back to its Kind. The second result is false
// for signals the package does not model.
func KindOf(sig os.Signal) (Kind, bool) {
	for k, s := range kindSignals {
		if s == sig {
			return k, true
		}
	}
	return 0, false
}
