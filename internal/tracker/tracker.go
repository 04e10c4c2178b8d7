// Package tracker keeps the practice streak and personal-best records.
package tracker

import (
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/devtype/internal/model"
)

const dateLayout = "2006-01-02"

// Records are the persisted device-local records.
type Records struct {
	ConsecutiveDays  int
	LastPracticeDate string // dateLayout, empty when no session was recorded yet
	BestWPM          int
}

// Repository loads and saves the records under stable keys. The tracker is
// the sole mutator; callers never write records directly.
type Repository interface {
	LoadRecords() (Records, error)
	SaveRecords(Records) error
}

// Tracker owns the records for one device. Not safe for concurrent use; it is
// called synchronously from the session controller.
type Tracker struct {
	repo Repository
	rec  Records
	now  func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithNow overrides the wall clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// Open loads the records and resets a lapsed streak: a gap of more than one
// day since the last practice zeroes ConsecutiveDays, so the next completion
// restarts the streak at 1.
func Open(repo Repository, opts ...Option) (*Tracker, error) {
	t := &Tracker{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	rec, err := repo.LoadRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	t.rec = rec
	if t.rec.LastPracticeDate != "" {
		gap, err := t.daysSinceLastPractice()
		if err != nil {
			return nil, err
		}
		if gap > 1 && t.rec.ConsecutiveDays != 0 {
			t.rec.ConsecutiveDays = 0
			if err := repo.SaveRecords(t.rec); err != nil {
				return nil, fmt.Errorf("failed to save records: %w", err)
			}
		}
	}
	return t, nil
}

// Streak returns the current consecutive-day count.
func (t *Tracker) Streak() int {
	return t.rec.ConsecutiveDays
}

// BestWPM returns the highest recorded timed-mode WPM.
func (t *Tracker) BestWPM() int {
	return t.rec.BestWPM
}

// RecordCompletion registers a finalized session for today's streak. It runs
// for every finalized session regardless of mode, and is idempotent within a
// calendar day: only the first completion of a new day moves the streak.
func (t *Tracker) RecordCompletion() error {
	today := t.now().Format(dateLayout)
	if t.rec.LastPracticeDate == today {
		return nil
	}
	t.rec.ConsecutiveDays++
	t.rec.LastPracticeDate = today
	if err := t.repo.SaveRecords(t.rec); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

// RecordPersonalBest updates the best WPM and reports whether it did. Only a
// timed-mode result that strictly exceeds the current best counts; practice
// sessions never touch the record.
func (t *Tracker) RecordPersonalBest(wpm int, mode model.Mode) (bool, error) {
	if mode != model.ModeTimed || wpm <= t.rec.BestWPM {
		return false, nil
	}
	t.rec.BestWPM = wpm
	if err := t.repo.SaveRecords(t.rec); err != nil {
		return false, fmt.Errorf("failed to save records: %w", err)
	}
	return true, nil
}

// daysSinceLastPractice counts calendar days, not 24h spans: a DST
// transition makes a day 23h or 25h, so the midnight difference is rounded
// to the nearest whole day instead of truncated.
func (t *Tracker) daysSinceLastPractice() (int, error) {
	now := t.now()
	loc := now.Location()
	last, err := time.ParseInLocation(dateLayout, t.rec.LastPracticeDate, loc)
	if err != nil {
		return 0, fmt.Errorf("failed to parse last practice date: %w", err)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return int(math.Round(today.Sub(last).Hours() / 24)), nil
}

// MemoryRepository is an in-memory Repository for tests and ephemeral runs.
type MemoryRepository struct {
	rec Records
}

// NewMemoryRepository returns a repository pre-seeded with rec.
func NewMemoryRepository(rec Records) *MemoryRepository {
	return &MemoryRepository{rec: rec}
}

// LoadRecords implements Repository.
func (m *MemoryRepository) LoadRecords() (Records, error) {
	return m.rec, nil
}

// SaveRecords implements Repository.
func (m *MemoryRepository) SaveRecords(rec Records) error {
	m.rec = rec
	return nil
}
