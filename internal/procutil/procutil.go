// Package procutil wraps the small set of Unix process syscalls the
// library needs: liveness probes, priority and resource accounting.
package procutil

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// PID returns the current process id.
func PID() int {
	return os.Getpid()
}

// PPID returns the parent process id.
func PPID() int {
	return os.Getppid()
}

// Alive reports whether a process with the given pid exists. It uses the
// null signal, so EPERM still means alive (the process exists but belongs
// to another user).
func Alive(pid int) bool {
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}

// SetPriority sets the scheduling priority (niceness) of a process.
// Raising priority usually needs privileges; the syscall error is
// returned wrapped for the caller to classify.
func SetPriority(pid, priority int) error {
	if err := syscall.Setpriority(syscall.PRIO_PROCESS, pid, priority); err != nil {
		return fmt.Errorf("setpriority(%d, %d): %w", pid, priority, err)
	}
	return nil
}

// Priority returns the scheduling priority (niceness) of a process. The
// kernel reports 20-nice to keep the return value positive; this undoes
// that encoding.
func Priority(pid int) (int, error) {
	prio, err := syscall.Getpriority(syscall.PRIO_PROCESS, pid)
	if err != nil {
		return 0, fmt.Errorf("getpriority(%d): %w", pid, err)
	}
	return 20 - prio, nil
}

// ResourceUsage is a snapshot of resource consumption for this process
// and its reaped children.
type ResourceUsage struct {
	// UserTime is CPU time spent in user mode.
	UserTime time.Duration

	// SystemTime is CPU time spent in kernel mode.
	SystemTime time.Duration

	// MaxRSSBytes is the peak resident set size in bytes.
	MaxRSSBytes int64
}

// SelfUsage returns resource usage for the calling process.
func SelfUsage() (*ResourceUsage, error) {
	return usage(syscall.RUSAGE_SELF)
}

// ChildrenUsage returns aggregate resource usage of reaped children.
func ChildrenUsage() (*ResourceUsage, error) {
	return usage(syscall.RUSAGE_CHILDREN)
}

func usage(who int) (*ResourceUsage, error) {
	var ru syscall.Rusage
	if err := syscall.Getrusage(who, &ru); err != nil {
		return nil, fmt.Errorf("getrusage: %w", err)
	}
	return &ResourceUsage{
		UserTime:   timevalDuration(ru.Utime),
		SystemTime: timevalDuration(ru.Stime),
		// Linux reports ru_maxrss in kilobytes.
		MaxRSSBytes: ru.Maxrss * 1024,
	}, nil
}

func timevalDuration(tv syscall.Timeval) time.Duration {
	return time.Duration(tv.Sec)*time.Second + time.Duration(tv.Usec)*time.Microsecond
}
