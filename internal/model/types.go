// Package model defines shared data structures.
package model

import "time"

// Mode selects how a session ends.
type Mode string

const (
	// ModeTimed runs against a countdown and completes when it reaches zero.
	ModeTimed Mode = "timed"
	// ModePractice runs untimed and completes only on an explicit finish.
	ModePractice Mode = "practice"
)

// LanguageAny selects snippets across every language.
const LanguageAny = "any"

// Duration bounds for timed sessions, in seconds.
const (
	MinDurationSeconds     = 5
	MaxDurationSeconds     = 300
	DefaultDurationSeconds = 30
)

// Config defines the settings a session is started with. Immutable once a
// session is active.
type Config struct {
	DurationSeconds int
	Language        string
	Mode            Mode
}

// SessionResult captures a finalized session. Produced exactly once per
// completed (or practice-exited) session.
type SessionResult struct {
	WPM               int
	Accuracy          int
	Language          string
	DurationSeconds   int
	Mode              Mode
	SnippetsCompleted int
	Correct           int
	Incorrect         int
	Keystrokes        int
	IsNewPersonalBest bool
	KeyErrors         []KeyErrorStat
	StartedAt         time.Time
	EndedAt           time.Time
}

// KeyErrorStat records how often an expected key was missed in one session.
type KeyErrorStat struct {
	Key    string
	Misses int
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	Language string
	Mode     string
	Since    *time.Time
	Last     int
}

// ResultAggregate summarizes a stored result for reporting.
type ResultAggregate struct {
	ResultID        int64
	EndedAt         time.Time
	Mode            Mode
	Language        string
	WPM             int
	Accuracy        int
	DurationSeconds int
}

// KeyErrorAggregate aggregates missed keys across stored results.
type KeyErrorAggregate struct {
	Key    string
	Misses int
}

// ScoreSubmission is the payload sent to the leaderboard.
type ScoreSubmission struct {
	Name            string
	WPM             int
	Accuracy        int
	Language        string
	DurationSeconds int
}

// LeaderboardEntry is one ranked row of the leaderboard, ordered by
// wpm * accuracy / 100 descending.
type LeaderboardEntry struct {
	Rank            int
	Name            string
	WPM             int
	Accuracy        int
	WeightedScore   int
	Language        string
	DurationSeconds int
	CreatedAt       time.Time
}
