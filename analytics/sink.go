package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/JamieOgun/PixelPanel/auth"
)

const createActivityEventsSQL = `CREATE TABLE IF NOT EXISTS activity_events (
	event_type   LowCardinality(String),
	actor_id     String,
	actor_type   LowCardinality(String),
	user_id      String,
	metadata     String,
	occurred_at  DateTime64(3)
) ENGINE = MergeTree()
ORDER BY (event_type, occurred_at)`

const insertActivityEventSQL = `INSERT INTO activity_events
	(event_type, actor_id, actor_type, user_id, metadata, occurred_at)
VALUES (?, ?, ?, ?, ?, ?)`

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ANALYTICS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ANALYTICS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ANALYTICS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// Sink records activity events in ClickHouse. Recording is best
// effort, a broken analytics store never fails the action that
// produced the event.
type Sink struct {
	conn   clickhouse.Conn
	logger Logger
}

var _ auth.ActivitySink = (*Sink)(nil)

// NewSink wraps an open ClickHouse connection.
func NewSink(conn clickhouse.Conn) *Sink {
	return &Sink{
		conn:   conn,
		logger: defLogger{},
	}
}

func (s *Sink) WithLogger(logger Logger) *Sink {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// EnsureSchema creates the activity table when missing.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	return s.conn.Exec(ctx, createActivityEventsSQL)
}

// Record implements auth.ActivitySink. Inserts are async and never
// surface errors to the caller.
func (s *Sink) Record(ctx context.Context, event auth.ActivityEvent) error {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	metadata := "{}"
	if len(event.Metadata) > 0 {
		if raw, err := json.Marshal(event.Metadata); err == nil {
			metadata = string(raw)
		}
	}

	err := s.conn.AsyncInsert(ctx, insertActivityEventSQL, false,
		string(event.EventType),
		event.Actor.ID,
		event.Actor.Type,
		event.UserID,
		metadata,
		occurredAt,
	)
	if err != nil {
		s.logger.Error("failed to record %s event: %v", event.EventType, err)
	}

	return nil
}
