// Package provenance keeps a queryable per-cycle decision history in the
// store database, alongside the JSONL flow stream.
package provenance

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS cycle_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id      TEXT NOT NULL,
	input         TEXT NOT NULL,
	priority_path TEXT NOT NULL,
	decision      TEXT NOT NULL,
	tier          TEXT NOT NULL,
	score         REAL NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cycle_log_cycle ON cycle_log(cycle_id);
`

// #endregion schema

// #region entry

// Entry is one row of the cycle decision log.
type Entry struct {
	CycleID      string
	Input        string
	PriorityPath string
	Decision     string
	Tier         string
	Score        float64
	Reason       string
	CreatedAt    time.Time
}

// #endregion entry

// #region log

// Log manages the cycle_log table.
type Log struct {
	db *sql.DB
}

// NewLog creates the table if needed. db may be nil (degraded store):
// writes become no-ops.
func NewLog(db *sql.DB) (*Log, error) {
	if db == nil {
		return &Log{}, nil
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create cycle_log: %w", err)
	}
	return &Log{db: db}, nil
}

// Record appends one cycle entry.
func (l *Log) Record(entry Entry) error {
	if l.db == nil {
		return nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.Exec(
		`INSERT INTO cycle_log (cycle_id, input, priority_path, decision, tier, score, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.CycleID,
		entry.Input,
		entry.PriorityPath,
		entry.Decision,
		entry.Tier,
		entry.Score,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (l *Log) Recent(limit int) ([]Entry, error) {
	if l.db == nil {
		return nil, nil
	}
	rows, err := l.db.Query(
		`SELECT cycle_id, input, priority_path, decision, tier, score, reason, created_at
		 FROM cycle_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.CycleID, &e.Input, &e.PriorityPath, &e.Decision, &e.Tier, &e.Score, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}
		if reason.Valid {
			e.Reason = reason.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion log

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
