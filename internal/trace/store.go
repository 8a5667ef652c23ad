// Package trace persists per-tick focus-engine internals to SQLite for
// offline analysis: comparing raw against smoothed positions, replaying
// display-state timelines, and sweeping tuning parameters.
package trace

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/glasshouse-ar/reticle/internal/focus"
)

// Store wraps the trace database.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the trace database at path. Schema management is
// separate: call MigrateUp before recording.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}
	return &Store{db}, nil
}

// BeginSession registers a new recording session and returns its identifier.
func (s *Store) BeginSession(label string) (string, error) {
	id := fmt.Sprintf("ses_%s", uuid.NewString())
	_, err := s.Exec(
		`INSERT INTO sessions (session_id, label, started_ns) VALUES (?, ?, ?)`,
		id, label, time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to begin trace session: %w", err)
	}
	return id, nil
}

// RecordTick appends one tick to a session.
func (s *Store) RecordTick(sessionID string, t focus.TickTrace) error {
	hasHit := 0
	if t.HasHit {
		hasHit = 1
	}
	_, err := s.Exec(
		`INSERT INTO ticks (
			session_id, tick, timestamp_ns, has_hit,
			hit_x, hit_y, hit_z,
			smoothed_x, smoothed_y, smoothed_z,
			scale, detection, plane_id, display
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, t.Tick, t.TimestampNs, hasHit,
		t.HitPosition.X, t.HitPosition.Y, t.HitPosition.Z,
		t.Smoothed.X, t.Smoothed.Y, t.Smoothed.Z,
		t.Scale, string(t.Detection), t.PlaneID, string(t.Display),
	)
	if err != nil {
		return fmt.Errorf("failed to record tick %d: %w", t.Tick, err)
	}
	return nil
}

// Ticks returns a session's ticks in tick order.
func (s *Store) Ticks(sessionID string) ([]focus.TickTrace, error) {
	rows, err := s.Query(
		`SELECT tick, timestamp_ns, has_hit,
			hit_x, hit_y, hit_z,
			smoothed_x, smoothed_y, smoothed_z,
			scale, detection, plane_id, display
		FROM ticks WHERE session_id = ? ORDER BY tick`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var out []focus.TickTrace
	for rows.Next() {
		var t focus.TickTrace
		var hasHit int
		var detection, display string
		if err := rows.Scan(
			&t.Tick, &t.TimestampNs, &hasHit,
			&t.HitPosition.X, &t.HitPosition.Y, &t.HitPosition.Z,
			&t.Smoothed.X, &t.Smoothed.Y, &t.Smoothed.Z,
			&t.Scale, &detection, &t.PlaneID, &display,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		t.HasHit = hasHit != 0
		t.Detection = focus.DetectionKind(detection)
		t.Display = focus.DisplayState(display)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Sessions returns all recorded session identifiers with labels, newest
// first.
func (s *Store) Sessions() ([]SessionInfo, error) {
	rows, err := s.Query(`SELECT session_id, label, started_ns FROM sessions ORDER BY started_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var si SessionInfo
		if err := rows.Scan(&si.ID, &si.Label, &si.StartedNs); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, si)
	}
	return out, rows.Err()
}

// SessionInfo is a recorded session's metadata.
type SessionInfo struct {
	ID        string
	Label     string
	StartedNs int64
}
