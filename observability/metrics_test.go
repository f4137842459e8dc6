package observability

import (
	"context"
	"testing"
	"time"
)

func TestMetrics_RecordAndSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordSpawn("sleep")
	m.RecordSpawn("sleep")
	m.RecordSpawn("echo")
	m.RecordRejection()

	m.RecordEnd("sleep", OutcomeExited, 100*time.Millisecond)
	m.RecordEnd("sleep", OutcomeTimeout, 300*time.Millisecond)
	m.RecordEnd("echo", OutcomeFailed, 200*time.Millisecond)

	snap := m.Snapshot()

	if snap.TotalSpawned != 3 {
		t.Errorf("TotalSpawned = %d, want 3", snap.TotalSpawned)
	}
	if snap.TotalExited != 1 || snap.TotalFailed != 1 || snap.TimedOut != 1 {
		t.Errorf("outcome counts = %d/%d/%d, want 1/1/1",
			snap.TotalExited, snap.TotalFailed, snap.TimedOut)
	}
	if snap.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", snap.Rejected)
	}
	if snap.MinLifetime != 100*time.Millisecond {
		t.Errorf("MinLifetime = %v, want 100ms", snap.MinLifetime)
	}
	if snap.MaxLifetime != 300*time.Millisecond {
		t.Errorf("MaxLifetime = %v, want 300ms", snap.MaxLifetime)
	}
	if snap.AvgLifetime != 200*time.Millisecond {
		t.Errorf("AvgLifetime = %v, want 200ms", snap.AvgLifetime)
	}

	sleepStats, ok := snap.NameStats["sleep"]
	if !ok {
		t.Fatal("no stats for sleep")
	}
	if sleepStats.TotalSpawned != 2 {
		t.Errorf("sleep TotalSpawned = %d, want 2", sleepStats.TotalSpawned)
	}
	if sleepStats.LastOutcome != string(OutcomeTimeout) {
		t.Errorf("sleep LastOutcome = %q, want timeout", sleepStats.LastOutcome)
	}
}

func TestMetricsSnapshot_SuccessRate(t *testing.T) {
	m := NewMetrics()

	if rate := m.Snapshot().SuccessRate(); rate != 0 {
		t.Errorf("SuccessRate with no data = %v, want 0", rate)
	}

	m.RecordEnd("a", OutcomeExited, time.Millisecond)
	m.RecordEnd("a", OutcomeExited, time.Millisecond)
	m.RecordEnd("a", OutcomeExited, time.Millisecond)
	m.RecordEnd("a", OutcomeTerminated, time.Millisecond)

	if rate := m.Snapshot().SuccessRate(); rate != 75 {
		t.Errorf("SuccessRate = %v, want 75", rate)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	m.RecordSpawn("x")
	m.RecordEnd("x", OutcomeExited, time.Second)

	m.Reset()

	snap := m.Snapshot()
	if snap.TotalSpawned != 0 || snap.TotalExited != 0 {
		t.Errorf("snapshot after Reset = %+v, want zeroes", snap)
	}
	if len(snap.NameStats) != 0 {
		t.Errorf("NameStats after Reset has %d entries", len(snap.NameStats))
	}
}

func TestNoopTelemetry(t *testing.T) {
	tel := NoopTelemetry()
	ctx := context.Background()

	spanCtx, end := tel.StartSpan(ctx, "noop")
	if spanCtx != ctx {
		t.Error("noop StartSpan must return the same context")
	}
	end()

	tel.RecordSpawn(ctx, "x")
	tel.RecordTermination(ctx, "x", "exit")
	tel.RecordRejection(ctx, "full")
	tel.RecordDuration(ctx, "x", 1.5)
	tel.AddActive(ctx, 1)
}
