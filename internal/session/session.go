// Package session implements the typing-session state machine: lifecycle
// transitions, keystroke reconciliation, and speed/accuracy metrics.
package session

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/devtype/internal/model"
	"github.com/verte-zerg/devtype/internal/snippet"
)

// SnippetSource supplies target texts. The returned code must be non-empty.
type SnippetSource interface {
	Next(selector string) (snippet.Snippet, error)
}

// RecordKeeper persists streak and personal-best records. Called exactly once
// per finalized session.
type RecordKeeper interface {
	RecordCompletion() error
	RecordPersonalBest(wpm int, mode model.Mode) (bool, error)
}

// Controller owns the session state and sequences every transition. All
// methods mutate the state as one atomic step; invalid transitions are
// defined no-ops so out-of-order UI events cannot corrupt a session.
type Controller struct {
	cfg    model.Config
	source SnippetSource
	keeper RecordKeeper
	now    func() time.Time

	state  State
	result *model.SessionResult
}

// Option configures a Controller.
type Option func(*Controller)

// WithNow overrides the wall clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New validates the configuration and loads the first snippet.
func New(cfg model.Config, source SnippetSource, keeper RecordKeeper, opts ...Option) (*Controller, error) {
	switch cfg.Mode {
	case model.ModeTimed:
		if cfg.DurationSeconds < model.MinDurationSeconds || cfg.DurationSeconds > model.MaxDurationSeconds {
			return nil, fmt.Errorf("duration must be between %d and %d seconds", model.MinDurationSeconds, model.MaxDurationSeconds)
		}
	case model.ModePractice:
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	c := &Controller{
		cfg:    cfg,
		source: source,
		keeper: keeper,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.resetIdle(); err != nil {
		return nil, err
	}
	return c, nil
}

// Config returns the immutable session configuration.
func (c *Controller) Config() model.Config {
	return c.cfg
}

// State returns an atomic snapshot of the session state.
func (c *Controller) State() State {
	return c.state.snapshot()
}

// Result returns the finalized result of the most recent session, or nil.
func (c *Controller) Result() *model.SessionResult {
	if c.result == nil {
		return nil
	}
	out := *c.result
	return &out
}

// Start begins a session explicitly. The first keystroke starts one
// implicitly through UpdateInput.
func (c *Controller) Start() error {
	if c.state.Phase != PhaseIdle {
		return nil
	}
	return c.begin()
}

func (c *Controller) begin() error {
	if len(c.state.Target) == 0 {
		return fmt.Errorf("cannot start session: target text is empty")
	}
	c.state.Phase = PhaseActive
	c.state.StartedAt = c.now()
	c.state.Input = nil
	c.state.Correct = 0
	c.state.Incorrect = 0
	c.state.Keystrokes = 0
	c.state.KeyErrors = map[rune]int{}
	c.state.SnippetsCompleted = 0
	c.state.LiveWPM = 0
	c.state.ElapsedSeconds = 0
	c.state.RemainingSeconds = 0
	if c.cfg.Mode == model.ModeTimed {
		c.state.RemainingSeconds = c.cfg.DurationSeconds
	}
	c.result = nil
	return nil
}

// UpdateInput applies one input event. While paused or complete it is a
// no-op, as is an update that would exceed the target length. Completing the
// current snippet loads the next one without ending the session.
func (c *Controller) UpdateInput(input []rune) error {
	switch c.state.Phase {
	case PhaseIdle:
		if len(input) == 0 {
			return nil
		}
		if err := c.begin(); err != nil {
			return err
		}
	case PhaseActive:
	default:
		return nil
	}
	if len(input) > len(c.state.Target) {
		return nil
	}

	delta := reconcile(c.state.Input, input, c.state.Target)
	c.state.Correct += delta.correct
	c.state.Incorrect += delta.incorrect
	c.state.Keystrokes += delta.keystrokes
	for key, n := range delta.misses {
		c.state.KeyErrors[key] += n
	}
	c.state.Input = append([]rune(nil), input...)
	c.state.LiveWPM = liveWPM(c.state.Correct, c.now().Sub(c.state.StartedAt))

	if len(c.state.Input) == len(c.state.Target) {
		return c.advanceSnippet()
	}
	return nil
}

func (c *Controller) advanceSnippet() error {
	next, err := c.source.Next(c.cfg.Language)
	if err != nil {
		return fmt.Errorf("failed to load next snippet: %w", err)
	}
	if next.Code == "" {
		return fmt.Errorf("snippet source returned empty text")
	}
	c.state.SnippetsCompleted++
	c.state.Target = []rune(next.Code)
	c.state.Language = next.Language
	c.state.Input = nil
	return nil
}

// Tick advances the clock by one interval. Only an active session ticks; a
// timed session completes when the countdown reaches zero.
func (c *Controller) Tick() error {
	if c.state.Phase != PhaseActive {
		return nil
	}
	if c.cfg.Mode == model.ModePractice {
		c.state.ElapsedSeconds++
		c.state.LiveWPM = liveWPM(c.state.Correct, c.now().Sub(c.state.StartedAt))
		return nil
	}
	c.state.RemainingSeconds--
	if c.state.RemainingSeconds > 0 {
		c.state.LiveWPM = liveWPM(c.state.Correct, c.now().Sub(c.state.StartedAt))
		return nil
	}
	c.state.RemainingSeconds = 0
	return c.finalize(PhaseComplete)
}

// Pause freezes the clock. No-op unless active.
func (c *Controller) Pause() {
	if c.state.Phase == PhaseActive {
		c.state.Phase = PhasePaused
	}
}

// Resume continues a paused session. No timestamp correction is applied: the
// countdown or elapsed counter simply continues from where it was frozen.
func (c *Controller) Resume() {
	if c.state.Phase == PhasePaused {
		c.state.Phase = PhaseActive
	}
}

// Finish completes a practice session explicitly. Timed sessions complete
// only through the countdown.
func (c *Controller) Finish() error {
	if c.cfg.Mode != model.ModePractice {
		return nil
	}
	if c.state.Phase != PhaseActive && c.state.Phase != PhasePaused {
		return nil
	}
	return c.finalize(PhaseComplete)
}

// Exit abandons the session from active or paused. A practice exit still
// yields a result; a timed exit discards the session.
func (c *Controller) Exit() (*model.SessionResult, error) {
	if c.state.Phase != PhaseActive && c.state.Phase != PhasePaused {
		return nil, nil
	}
	var result *model.SessionResult
	if c.cfg.Mode == model.ModePractice {
		if err := c.finalize(PhaseComplete); err != nil {
			return nil, err
		}
		result = c.Result()
	}
	if err := c.resetIdle(); err != nil {
		return result, err
	}
	return result, nil
}

// Restart returns a completed session to idle with a fresh snippet.
func (c *Controller) Restart() error {
	if c.state.Phase != PhaseComplete {
		return nil
	}
	return c.resetIdle()
}

func (c *Controller) resetIdle() error {
	first, err := c.source.Next(c.cfg.Language)
	if err != nil {
		return fmt.Errorf("failed to load snippet: %w", err)
	}
	if first.Code == "" {
		return fmt.Errorf("snippet source returned empty text")
	}
	c.state = State{
		Phase:     PhaseIdle,
		Target:    []rune(first.Code),
		Language:  first.Language,
		KeyErrors: map[rune]int{},
	}
	if c.cfg.Mode == model.ModeTimed {
		c.state.RemainingSeconds = c.cfg.DurationSeconds
	}
	return nil
}

// finalize computes the Session Result exactly once and records the
// completion with the tracker. The streak updates for both modes; the
// personal best only for timed sessions.
func (c *Controller) finalize(next Phase) error {
	endedAt := c.now()
	elapsedSeconds := 0
	if c.cfg.Mode == model.ModeTimed {
		elapsedSeconds = c.cfg.DurationSeconds - c.state.RemainingSeconds
	} else {
		elapsedSeconds = int(math.Round(endedAt.Sub(c.state.StartedAt).Seconds()))
	}

	result := model.SessionResult{
		WPM:               finalWPM(c.state.Correct, elapsedSeconds),
		Accuracy:          finalAccuracy(c.state.Correct, c.state.Keystrokes),
		Language:          c.cfg.Language,
		DurationSeconds:   elapsedSeconds,
		Mode:              c.cfg.Mode,
		SnippetsCompleted: c.state.SnippetsCompleted,
		Correct:           c.state.Correct,
		Incorrect:         c.state.Incorrect,
		Keystrokes:        c.state.Keystrokes,
		KeyErrors:         c.KeyErrorStats(),
		StartedAt:         c.state.StartedAt,
		EndedAt:           endedAt,
	}

	isBest, err := c.keeper.RecordPersonalBest(result.WPM, c.cfg.Mode)
	if err != nil {
		return fmt.Errorf("failed to record personal best: %w", err)
	}
	result.IsNewPersonalBest = isBest
	if err := c.keeper.RecordCompletion(); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	c.result = &result
	c.state.Phase = next
	return nil
}

// KeyErrorStats converts the current key-error tally into stable records,
// most-missed first with ties broken by key.
func (c *Controller) KeyErrorStats() []model.KeyErrorStat {
	out := make([]model.KeyErrorStat, 0, len(c.state.KeyErrors))
	for key, misses := range c.state.KeyErrors {
		out = append(out, model.KeyErrorStat{Key: string(key), Misses: misses})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Misses != out[j].Misses {
			return out[i].Misses > out[j].Misses
		}
		return out[i].Key < out[j].Key
	})
	return out
}
