// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/devtype/internal/model"
	"github.com/verte-zerg/devtype/internal/tracker"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Submission gate, mirroring the leaderboard's anti-spam rules.
const (
	MinSubmissionAccuracy = 70
	MaxSubmissionWPM      = 300
)

var (
	// ErrLowAccuracy rejects a submission below the accuracy floor.
	ErrLowAccuracy = errors.New("score rejected: accuracy below minimum")
	// ErrUnrealisticWPM rejects a submission above the WPM ceiling.
	ErrUnrealisticWPM = errors.New("score rejected: wpm above maximum")
)

// Record keys for the device-local records table.
const (
	recordStreakDays = "streak_days"
	recordStreakDate = "streak_last_date"
	recordBestWPM    = "best_wpm"
)

// Store wraps SQLite access for results, records, and leaderboard scores.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			language TEXT NOT NULL,
			duration_s INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			keystrokes INTEGER NOT NULL,
			snippets INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS result_key_errors (
			result_id INTEGER NOT NULL,
			key TEXT NOT NULL,
			misses INTEGER NOT NULL,
			PRIMARY KEY (result_id, key)
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			name TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			language TEXT NOT NULL,
			duration_s INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_result_key_errors_key ON result_key_errors(key);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_language ON scores(language);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult stores a finalized session result and its key-error tally.
func (s *Store) InsertResult(ctx context.Context, result model.SessionResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO results (started_at, ended_at, mode, language, duration_s, wpm, accuracy, correct, incorrect, keystrokes, snippets)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.StartedAt.Format(time.RFC3339Nano),
		result.EndedAt.Format(time.RFC3339Nano),
		string(result.Mode),
		result.Language,
		result.DurationSeconds,
		result.WPM,
		result.Accuracy,
		result.Correct,
		result.Incorrect,
		result.Keystrokes,
		result.SnippetsCompleted,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(result.KeyErrors) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO result_key_errors (result_id, key, misses) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ke := range result.KeyErrors {
			if _, err := stmt.ExecContext(ctx, id, ke.Key, ke.Misses); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListResults returns stored result aggregates filtered by stats config,
// ordered oldest first.
func (s *Store) ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.ResultAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Language != "" {
		clauses = append(clauses, "language = ?")
		args = append(args, cfg.Language)
	}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, mode, language, wpm, accuracy, duration_s
		FROM results
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.ResultAggregate
	for rows.Next() {
		var agg model.ResultAggregate
		var endedAt, mode string
		if err := rows.Scan(&agg.ResultID, &endedAt, &mode, &agg.Language, &agg.WPM, &agg.Accuracy, &agg.DurationSeconds); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Mode = model.Mode(mode)
		results = append(results, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return results, nil
}

// ListKeyErrorAggregates aggregates missed keys across all stored results,
// most-missed first.
func (s *Store) ListKeyErrorAggregates(ctx context.Context) ([]model.KeyErrorAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, SUM(misses) AS misses
		 FROM result_key_errors
		 GROUP BY key
		 ORDER BY misses DESC, key ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KeyErrorAggregate
	for rows.Next() {
		var agg model.KeyErrorAggregate
		if err := rows.Scan(&agg.Key, &agg.Misses); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitScore validates and stores a leaderboard submission. Submissions
// under the accuracy floor or over the WPM ceiling are rejected with typed
// errors the caller can surface.
func (s *Store) SubmitScore(ctx context.Context, sub model.ScoreSubmission) (string, error) {
	if sub.Accuracy < MinSubmissionAccuracy {
		return "", ErrLowAccuracy
	}
	if sub.WPM > MaxSubmissionWPM {
		return "", ErrUnrealisticWPM
	}
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		name = "anonymous"
	}
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (id, created_at, name, wpm, accuracy, language, duration_s)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		time.Now().Format(time.RFC3339Nano),
		name,
		sub.WPM,
		sub.Accuracy,
		sub.Language,
		sub.DurationSeconds,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Leaderboard returns the top submissions ranked by wpm * accuracy / 100
// descending, ties broken by most recent submission.
func (s *Store) Leaderboard(ctx context.Context, language string, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	clauses := []string{"1=1"}
	args := []any{}
	if language != "" && language != model.LanguageAny {
		clauses = append(clauses, "language = ?")
		args = append(args, language)
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT name, wpm, accuracy, language, duration_s, created_at
		FROM scores
		WHERE %s
		ORDER BY (wpm * accuracy / 100.0) DESC, created_at DESC
		LIMIT ?`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var entry model.LeaderboardEntry
		var createdAt string
		if err := rows.Scan(&entry.Name, &entry.WPM, &entry.Accuracy, &entry.Language, &entry.DurationSeconds, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = parsed
		entry.WeightedScore = entry.WPM * entry.Accuracy / 100
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadRecords implements tracker.Repository. Missing keys default to zero
// values so a fresh database starts with an empty record set.
func (s *Store) LoadRecords() (tracker.Records, error) {
	rows, err := s.db.Query(`SELECT name, value FROM records`)
	if err != nil {
		return tracker.Records{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rec tracker.Records
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return tracker.Records{}, err
		}
		switch name {
		case recordStreakDays:
			days, err := strconv.Atoi(value)
			if err != nil {
				return tracker.Records{}, fmt.Errorf("failed to parse streak days: %w", err)
			}
			rec.ConsecutiveDays = days
		case recordStreakDate:
			rec.LastPracticeDate = value
		case recordBestWPM:
			best, err := strconv.Atoi(value)
			if err != nil {
				return tracker.Records{}, fmt.Errorf("failed to parse best wpm: %w", err)
			}
			rec.BestWPM = best
		}
	}
	if err := rows.Err(); err != nil {
		return tracker.Records{}, err
	}
	return rec, nil
}

// SaveRecords implements tracker.Repository.
func (s *Store) SaveRecords(rec tracker.Records) error {
	pairs := []struct {
		name  string
		value string
	}{
		{recordStreakDays, strconv.Itoa(rec.ConsecutiveDays)},
		{recordStreakDate, rec.LastPracticeDate},
		{recordBestWPM, strconv.Itoa(rec.BestWPM)},
	}
	for _, pair := range pairs {
		if _, err := s.db.Exec(
			`INSERT INTO records (name, value) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
			pair.name, pair.value,
		); err != nil {
			return err
		}
	}
	return nil
}
