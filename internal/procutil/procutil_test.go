package procutil

import (
	"os"
	"os/exec"
	"testing"
	"time"
)

func TestAlive_Self(t *testing.T) {
	if !Alive(os.Getpid()) {
		t.Error("Alive(self) = false")
	}
}

func TestAlive_Init(t *testing.T) {
	// pid 1 exists but is not signallable by an unprivileged test; the
	// null-signal probe must still report it alive.
	if !Alive(1) {
		t.Error("Alive(1) = false, want true via EPERM")
	}
}

func TestAlive_Gone(t *testing.T) {
	cmd := exec.Command("true")
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Wait(); err != nil {
		t.Fatal(err)
	}

	if Alive(pid) {
		t.Errorf("Alive(%d) = true for a reaped child", pid)
	}
}

func TestPIDAndPPID(t *testing.T) {
	if PID() != os.Getpid() {
		t.Errorf("PID() = %d, want %d", PID(), os.Getpid())
	}
	if PPID() != os.Getppid() {
		t.Errorf("PPID() = %d, want %d", PPID(), os.Getppid())
	}
}

func TestPriority_RoundTrip(t *testing.T) {
	prio, err := Priority(os.Getpid())
	if err != nil {
		t.Fatalf("Priority: %v", err)
	}

	// Lowering priority is always permitted.
	if err := SetPriority(os.Getpid(), prio); err != nil {
		t.Errorf("SetPriority(same value): %v", err)
	}
}

func TestSelfUsage(t *testing.T) {
	u, err := SelfUsage()
	if err != nil {
		t.Fatalf("SelfUsage: %v", err)
	}
	if u.MaxRSSBytes <= 0 {
		t.Errorf("MaxRSSBytes = %d, want positive", u.MaxRSSBytes)
	}
	if u.UserTime < 0 || u.SystemTime < 0 {
		t.Errorf("negative CPU time: user=%v sys=%v", u.UserTime, u.SystemTime)
	}
	if u.UserTime+u.SystemTime > time.Hour {
		t.Errorf("implausible CPU time: user=%v sys=%v", u.UserTime, u.SystemTime)
	}
}

func TestChildrenUsage(t *testing.T) {
	if _, err := ChildrenUsage(); err != nil {
		t.Fatalf("ChildrenUsage: %v", err)
	}
}
