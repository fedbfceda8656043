package telemetry

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const maxStoredHistory = 5000

const schema = `
CREATE TABLE IF NOT EXISTS prompt_events (
	id            TEXT PRIMARY KEY,
	user_id       TEXT,
	provider      TEXT NOT NULL,
	model         TEXT,
	scenario      TEXT NOT NULL,
	tone          INTEGER NOT NULL,
	history       TEXT NOT NULL,
	user_context  TEXT,
	degraded      INTEGER NOT NULL DEFAULT 0,
	error_kind    TEXT,
	error_msg     TEXT,
	latency_ms    INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback_events (
	id              TEXT PRIMARY KEY,
	user_id         TEXT,
	scenario        TEXT NOT NULL,
	tone            INTEGER NOT NULL,
	response_type   TEXT NOT NULL,
	outcome         TEXT,
	rating          INTEGER NOT NULL DEFAULT 0,
	helpful         INTEGER NOT NULL,
	would_use_again INTEGER NOT NULL DEFAULT 0,
	notes           TEXT,
	created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prompt_events_user ON prompt_events(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_feedback_events_user ON feedback_events(user_id, created_at);
`

// SQLiteRecorder stores telemetry in a local SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens the database at dbPath and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

// Close closes the underlying database connection.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func (r *SQLiteRecorder) RecordPrompt(rec PromptRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	history := rec.History
	if len(history) > maxStoredHistory {
		history = history[:maxStoredHistory]
	}
	_, err := r.db.Exec(
		`INSERT INTO prompt_events (id, user_id, provider, model, scenario, tone, history, user_context, degraded, error_kind, error_msg, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullIfEmpty(rec.UserID), rec.Provider, nullIfEmpty(rec.Model), rec.Scenario, rec.Tone,
		history, nullIfEmpty(rec.UserContext), boolToInt(rec.Degraded),
		nullIfEmpty(rec.ErrorKind), nullIfEmpty(rec.ErrorMsg), rec.LatencyMS,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert prompt event: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordFeedback(rec FeedbackRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO feedback_events (id, user_id, scenario, tone, response_type, outcome, rating, helpful, would_use_again, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullIfEmpty(rec.UserID), rec.Scenario, rec.Tone, rec.ResponseType,
		nullIfEmpty(rec.Outcome), rec.Rating, boolToInt(rec.Helpful), boolToInt(rec.WouldUseAgain),
		nullIfEmpty(rec.Notes), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert feedback event: %w", err)
	}
	return nil
}

// UserStats summarizes one user's recorded activity.
type UserStats struct {
	Prompts       int
	Degraded      int
	Errors        int
	MeanLatencyMS float64
	Feedback      int
	HelpfulMarked int
}

// Stats aggregates event counts for a user. userID "" matches events recorded
// without a user.
func (r *SQLiteRecorder) Stats(userID string) (UserStats, error) {
	var stats UserStats
	err := r.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(degraded), 0),
		        COALESCE(SUM(CASE WHEN error_kind IS NOT NULL THEN 1 ELSE 0 END), 0),
		        COALESCE(AVG(latency_ms), 0)
		 FROM prompt_events WHERE user_id IS ? OR user_id = ?`,
		nullIfEmpty(userID), userID,
	).Scan(&stats.Prompts, &stats.Degraded, &stats.Errors, &stats.MeanLatencyMS)
	if err != nil {
		return UserStats{}, fmt.Errorf("query prompt stats: %w", err)
	}
	err = r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(helpful), 0) FROM feedback_events WHERE user_id IS ? OR user_id = ?`,
		nullIfEmpty(userID), userID,
	).Scan(&stats.Feedback, &stats.HelpfulMarked)
	if err != nil {
		return UserStats{}, fmt.Errorf("query feedback stats: %w", err)
	}
	return stats, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
