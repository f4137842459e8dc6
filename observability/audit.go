package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/victoralfred/gowritter/safepath"
)

// AuditLogger provides append-only audit logging of lifecycle events.
type AuditLogger interface {
	// Log records an audit event.
	Log(ctx context.Context, event *AuditEvent) error

	// Query returns recorded events matching the filter.
	Query(ctx context.Context, filter *AuditFilter) ([]*AuditEvent, error)

	// Close closes the audit logger.
	Close() error
}

// AuditEventType represents the type of audit event.
type AuditEventType string

const (
	// AuditEventSpawn is a process spawn event.
	AuditEventSpawn AuditEventType = "spawn"

	// AuditEventExit is a voluntary process exit event.
	AuditEventExit AuditEventType = "exit"

	// AuditEventTerminated is a forced termination event.
	AuditEventTerminated AuditEventType = "terminated"

	// AuditEventTimeout is an execution timeout event.
	AuditEventTimeout AuditEventType = "timeout"

	// AuditEventSignal is a signal delivery event.
	AuditEventSignal AuditEventType = "signal"

	// AuditEventRejected is an admission rejection event.
	AuditEventRejected AuditEventType = "rejected"
)

// AuditEvent represents one audit log entry.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	Error     string            `json:"error,omitempty"`
	Type      AuditEventType    `json:"type"`
	PID       int               `json:"pid,omitempty"`
	ExitCode  int               `json:"exit_code,omitempty"`
	Duration  time.Duration     `json:"duration,omitempty"`
}

// AuditFilter filters audit events.
type AuditFilter struct {
	// StartTime is the start of the time range.
	StartTime time.Time

	// EndTime is the end of the time range.
	EndTime time.Time

	// Name filters by process name.
	Name string

	// Type filters by event type.
	Type AuditEventType

	// Limit is the maximum number of events to return.
	Limit int
}

// AuditConfig configures the audit logger.
type AuditConfig struct {
	BasePath string
	FilePath string
	Enabled  bool
}

// DefaultAuditConfig returns default audit configuration.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:  true,
		BasePath: "/var/log",
		FilePath: "goproc/audit.log",
	}
}

// fileAuditLogger implements AuditLogger using gowritter.
type fileAuditLogger struct {
	safePath *safepath.SafePath
	config   AuditConfig
	mu       sync.Mutex
}

// NewFileAuditLogger creates a file-based audit logger. Events are
// written as one JSON object per line under the configured base path.
func NewFileAuditLogger(config AuditConfig) (AuditLogger, error) {
	sp, err := safepath.New(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("creating safe path: %w", err)
	}

	return &fileAuditLogger{
		config:   config,
		safePath: sp,
	}, nil
}

// Log implements AuditLogger.Log.
func (l *fileAuditLogger) Log(ctx context.Context, event *AuditEvent) error {
	if !l.config.Enabled {
		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling audit event: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.safePath.AppendFile(l.config.FilePath, data, 0o644); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}

	return nil
}

// Query implements AuditLogger.Query.
func (l *fileAuditLogger) Query(ctx context.Context, filter *AuditFilter) ([]*AuditEvent, error) {
	l.mu.Lock()
	data, err := l.safePath.ReadFile(l.config.FilePath)
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	var events []*AuditEvent
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		event := &AuditEvent{}
		if err := json.Unmarshal(line, event); err != nil {
			// Skip torn or corrupt lines rather than failing the query.
			continue
		}
		if !matchesFilter(event, filter) {
			continue
		}
		events = append(events, event)
		if filter != nil && filter.Limit > 0 && len(events) >= filter.Limit {
			break
		}
	}

	return events, nil
}

// Close implements AuditLogger.Close.
func (l *fileAuditLogger) Close() error {
	return nil
}

func matchesFilter(event *AuditEvent, filter *AuditFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.Name != "" && event.Name != filter.Name {
		return false
	}
	if !filter.StartTime.IsZero() && event.Timestamp.Before(filter.StartTime) {
		return false
	}
	if !filter.EndTime.IsZero() && event.Timestamp.After(filter.EndTime) {
		return false
	}
	return true
}

// NoopAuditLogger returns a no-op audit logger.
func NoopAuditLogger() AuditLogger {
	return &noopAuditLogger{}
}

type noopAuditLogger struct{}

func (l *noopAuditLogger) Log(ctx context.Context, event *AuditEvent) error { return nil }
func (l *noopAuditLogger) Query(ctx context.Context, filter *AuditFilter) ([]*AuditEvent, error) {
	return nil, nil
}
func (l *noopAuditLogger) Close() error { return nil }
