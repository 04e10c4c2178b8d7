package session

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/devtype/internal/model"
	"github.com/verte-zerg/devtype/internal/snippet"
	"github.com/verte-zerg/devtype/internal/tracker"
)

type fakeSource struct {
	texts []string
	calls int
}

func (s *fakeSource) Next(selector string) (snippet.Snippet, error) {
	text := s.texts[s.calls%len(s.texts)]
	s.calls++
	return snippet.Snippet{ID: "fake", Language: selector, Code: text}, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestController(t *testing.T, cfg model.Config, texts []string, clk *fakeClock) (*Controller, *tracker.Tracker) {
	t.Helper()
	trk, err := tracker.Open(tracker.NewMemoryRepository(tracker.Records{}), tracker.WithNow(clk.now))
	if err != nil {
		t.Fatalf("open tracker: %v", err)
	}
	c, err := New(cfg, &fakeSource{texts: texts}, trk, WithNow(clk.now))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, trk
}

func timedConfig(duration int) model.Config {
	return model.Config{DurationSeconds: duration, Language: "go", Mode: model.ModeTimed}
}

func practiceConfig() model.Config {
	return model.Config{Language: "go", Mode: model.ModePractice}
}

func typeText(t *testing.T, c *Controller, text string) {
	t.Helper()
	input := append([]rune(nil), c.State().Input...)
	for _, r := range text {
		input = append(input, r)
		if err := c.UpdateInput(input); err != nil {
			t.Fatalf("update input: %v", err)
		}
		if len(c.State().Input) == 0 {
			// Snippet advanced; continue on the fresh target.
			input = input[:0]
		}
	}
}

func TestInvalidDuration(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	trk, err := tracker.Open(tracker.NewMemoryRepository(tracker.Records{}), tracker.WithNow(clk.now))
	if err != nil {
		t.Fatalf("open tracker: %v", err)
	}
	for _, duration := range []int{0, 4, 301} {
		if _, err := New(timedConfig(duration), &fakeSource{texts: []string{"abc"}}, trk); err == nil {
			t.Errorf("expected error for duration %d", duration)
		}
	}
}

func TestFirstKeystrokeStartsSession(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(30), []string{"abc"}, clk)

	if c.State().Phase != PhaseIdle {
		t.Fatalf("expected idle before input")
	}
	if err := c.UpdateInput([]rune("a")); err != nil {
		t.Fatalf("update input: %v", err)
	}
	st := c.State()
	if st.Phase != PhaseActive {
		t.Fatalf("expected active after first keystroke, got %s", st.Phase)
	}
	if st.RemainingSeconds != 30 {
		t.Fatalf("expected countdown initialized to 30, got %d", st.RemainingSeconds)
	}
	if st.Correct != 1 || st.Keystrokes != 1 {
		t.Fatalf("expected first keystroke scored, got %+v", st)
	}
}

func TestCountersMonotonicAndBalanced(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(30), []string{"hello world"}, clk)

	inputs := []string{"h", "he", "hex", "hexl", "hexlo", "hexlo "}
	prevKeystrokes := 0
	for _, in := range inputs {
		if err := c.UpdateInput([]rune(in)); err != nil {
			t.Fatalf("update input: %v", err)
		}
		st := c.State()
		if st.Correct+st.Incorrect != st.Keystrokes {
			t.Fatalf("counter identity broken after %q: %d+%d != %d", in, st.Correct, st.Incorrect, st.Keystrokes)
		}
		if st.Keystrokes < prevKeystrokes {
			t.Fatalf("keystrokes decreased after %q", in)
		}
		prevKeystrokes = st.Keystrokes
	}
}

func TestBackspaceNeutrality(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(30), []string{"abc"}, clk)

	if err := c.UpdateInput([]rune("ax")); err != nil {
		t.Fatalf("update input: %v", err)
	}
	before := c.State()
	if err := c.UpdateInput([]rune("a")); err != nil {
		t.Fatalf("backspace: %v", err)
	}
	after := c.State()
	if after.Correct != before.Correct || after.Incorrect != before.Incorrect || after.Keystrokes != before.Keystrokes {
		t.Fatalf("backspace changed counters: before %+v after %+v", before, after)
	}
	if after.KeyErrors['b'] != before.KeyErrors['b'] {
		t.Fatalf("backspace changed key error tally")
	}
	if string(after.Input) != "a" {
		t.Fatalf("expected input shrunk to \"a\", got %q", string(after.Input))
	}
}

func TestOverlengthInputRejected(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, practiceConfig(), []string{"ab", "cd"}, clk)

	if err := c.UpdateInput([]rune("abc")); err != nil {
		t.Fatalf("update input: %v", err)
	}
	st := c.State()
	if st.Keystrokes != 0 {
		t.Fatalf("overlength input must be ignored, got %d keystrokes", st.Keystrokes)
	}
	if len(st.Input) > len(st.Target) {
		t.Fatalf("bounded input invariant broken: %d > %d", len(st.Input), len(st.Target))
	}
}

func TestKeyErrorTallyRecordsExpectedKey(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(30), []string{"abc"}, clk)

	if err := c.UpdateInput([]rune("x")); err != nil {
		t.Fatalf("update input: %v", err)
	}
	if err := c.UpdateInput([]rune("xy")); err != nil {
		t.Fatalf("update input: %v", err)
	}
	st := c.State()
	if st.KeyErrors['a'] != 1 || st.KeyErrors['b'] != 1 {
		t.Fatalf("expected misses recorded against expected keys, got %v", st.KeyErrors)
	}
}

func TestSnippetBoundaryKeepsCounters(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(30), []string{"ab", "cd"}, clk)

	typeText(t, c, "ab")
	st := c.State()
	if st.Phase != PhaseActive {
		t.Fatalf("snippet completion must not end the session, got %s", st.Phase)
	}
	if st.SnippetsCompleted != 1 {
		t.Fatalf("expected 1 snippet completed, got %d", st.SnippetsCompleted)
	}
	if len(st.Input) != 0 {
		t.Fatalf("expected input reset at snippet boundary")
	}
	if string(st.Target) != "cd" {
		t.Fatalf("expected next snippet loaded, got %q", string(st.Target))
	}
	if st.Correct != 2 || st.Keystrokes != 2 {
		t.Fatalf("counters must persist across snippets, got %+v", st)
	}

	typeText(t, c, "c")
	if got := c.State().Correct; got != 3 {
		t.Fatalf("counters must keep accumulating, got %d", got)
	}
}

func TestPausedAndCompleteIgnoreInputAndTicks(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(5), []string{"abcdef"}, clk)

	if err := c.Tick(); err != nil {
		t.Fatalf("tick while idle must be a no-op: %v", err)
	}
	if c.State().RemainingSeconds != 5 {
		t.Fatalf("idle tick changed countdown")
	}

	typeText(t, c, "ab")
	c.Pause()
	if c.State().Phase != PhasePaused {
		t.Fatalf("expected paused")
	}
	if err := c.UpdateInput([]rune("abc")); err != nil {
		t.Fatalf("input while paused: %v", err)
	}
	if err := c.Tick(); err != nil {
		t.Fatalf("tick while paused: %v", err)
	}
	st := c.State()
	if st.Keystrokes != 2 || st.RemainingSeconds != 5 {
		t.Fatalf("paused session mutated: %+v", st)
	}

	c.Resume()
	for i := 0; i < 5; i++ {
		clk.advance(time.Second)
		if err := c.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	if c.State().Phase != PhaseComplete {
		t.Fatalf("expected complete at countdown zero, got %s", c.State().Phase)
	}
	if err := c.UpdateInput([]rune("abc")); err != nil {
		t.Fatalf("input while complete: %v", err)
	}
	if err := c.Tick(); err != nil {
		t.Fatalf("tick while complete: %v", err)
	}
	if c.State().Keystrokes != 2 {
		t.Fatalf("complete session mutated")
	}
}

func TestLiveWPMSuppressionAndBound(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(30), []string{strings.Repeat("a", 2000)}, clk)

	typeText(t, c, "aa")
	if got := c.State().LiveWPM; got != 0 {
		t.Fatalf("live WPM must be suppressed under 3s, got %d", got)
	}

	clk.advance(3 * time.Second)
	typeText(t, c, strings.Repeat("a", 1000))
	if got := c.State().LiveWPM; got != 300 {
		t.Fatalf("live WPM must be clamped to 300, got %d", got)
	}
}

func TestTimedSessionPerfectTyping(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, trk := newTestController(t, timedConfig(30), []string{"abc"}, clk)

	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Five snippets of "abc" typed perfectly across the first 6 seconds.
	for i := 0; i < 5; i++ {
		typeText(t, c, "abc")
	}
	for i := 0; i < 30; i++ {
		clk.advance(time.Second)
		if err := c.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}

	result := c.Result()
	if result == nil {
		t.Fatalf("expected result at countdown zero")
	}
	if result.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %d", result.Accuracy)
	}
	// 15 correct chars over 30s: round((15/5)/(30/60)) = 6.
	if result.WPM != 6 {
		t.Fatalf("expected wpm 6, got %d", result.WPM)
	}
	if result.DurationSeconds != 30 {
		t.Fatalf("expected duration 30, got %d", result.DurationSeconds)
	}
	if result.SnippetsCompleted != 5 {
		t.Fatalf("expected 5 snippets, got %d", result.SnippetsCompleted)
	}
	if !result.IsNewPersonalBest {
		t.Fatalf("first timed result should be a personal best")
	}
	if trk.BestWPM() != 6 || trk.Streak() != 1 {
		t.Fatalf("tracker not updated: best=%d streak=%d", trk.BestWPM(), trk.Streak())
	}
}

func TestLowAccuracyResult(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(30), []string{"abcdefghij"}, clk)

	// 10 keystrokes, 3 incorrect.
	typeText(t, c, "abxdxfgxij")
	for i := 0; i < 30; i++ {
		clk.advance(time.Second)
		if err := c.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	result := c.Result()
	if result == nil {
		t.Fatalf("expected result")
	}
	if result.Accuracy != 70 {
		t.Fatalf("expected accuracy 70, got %d", result.Accuracy)
	}
}

func TestPracticeExitYieldsResult(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, practiceConfig(), []string{strings.Repeat("a", 100)}, clk)

	typeText(t, c, strings.Repeat("a", 75))
	clk.advance(45 * time.Second)

	result, err := c.Exit()
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if result == nil {
		t.Fatalf("practice exit must yield a result")
	}
	// round((75/5)/(45/60)) = 20.
	if result.WPM != 20 {
		t.Fatalf("expected wpm 20, got %d", result.WPM)
	}
	if result.DurationSeconds != 45 {
		t.Fatalf("expected duration 45, got %d", result.DurationSeconds)
	}
	if c.State().Phase != PhaseIdle {
		t.Fatalf("expected idle after exit, got %s", c.State().Phase)
	}
}

func TestTimedExitDiscards(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, trk := newTestController(t, timedConfig(30), []string{"abc"}, clk)

	typeText(t, c, "ab")
	result, err := c.Exit()
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if result != nil {
		t.Fatalf("timed exit must not produce a result")
	}
	if c.State().Phase != PhaseIdle {
		t.Fatalf("expected idle after exit")
	}
	if trk.Streak() != 0 {
		t.Fatalf("discarded session must not touch the streak")
	}
}

func TestExitFromPaused(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, practiceConfig(), []string{"abcdef"}, clk)

	typeText(t, c, "abc")
	clk.advance(10 * time.Second)
	c.Pause()
	result, err := c.Exit()
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if result == nil {
		t.Fatalf("paused practice exit must yield a result")
	}
}

func TestPracticeFinish(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, practiceConfig(), []string{"abcdef"}, clk)

	typeText(t, c, "abc")
	clk.advance(30 * time.Second)
	if err := c.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if c.State().Phase != PhaseComplete {
		t.Fatalf("expected complete after finish")
	}
	result := c.Result()
	if result == nil || result.Mode != model.ModePractice {
		t.Fatalf("expected practice result, got %+v", result)
	}
}

func TestRestartResetsForNewSession(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(5), []string{"ab", "cd"}, clk)

	typeText(t, c, "ax")
	for i := 0; i < 5; i++ {
		clk.advance(time.Second)
		if err := c.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	if c.State().Phase != PhaseComplete {
		t.Fatalf("expected complete")
	}
	if err := c.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	st := c.State()
	if st.Phase != PhaseIdle {
		t.Fatalf("expected idle after restart")
	}
	if st.Keystrokes != 0 || st.Correct != 0 || st.Incorrect != 0 || len(st.KeyErrors) != 0 {
		t.Fatalf("restart must zero counters: %+v", st)
	}
	if st.RemainingSeconds != 5 {
		t.Fatalf("expected countdown reset, got %d", st.RemainingSeconds)
	}
}

func TestKeyErrorStatsOrderedByMisses(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(30), []string{"baab"}, clk)

	for _, input := range []string{"x", "xx", "xxx"} {
		if err := c.UpdateInput([]rune(input)); err != nil {
			t.Fatalf("update input: %v", err)
		}
	}
	stats := c.KeyErrorStats()
	if len(stats) != 2 {
		t.Fatalf("expected 2 key error records, got %+v", stats)
	}
	if stats[0].Key != "a" || stats[0].Misses != 2 {
		t.Fatalf("expected most-missed key first, got %+v", stats)
	}
	if stats[1].Key != "b" || stats[1].Misses != 1 {
		t.Fatalf("expected least-missed key last, got %+v", stats)
	}
}

func TestKeyErrorStatsTieBrokenByKey(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, timedConfig(30), []string{"cba"}, clk)

	for _, input := range []string{"x", "xx", "xxx"} {
		if err := c.UpdateInput([]rune(input)); err != nil {
			t.Fatalf("update input: %v", err)
		}
	}
	stats := c.KeyErrorStats()
	if len(stats) != 3 {
		t.Fatalf("expected 3 key error records, got %+v", stats)
	}
	if stats[0].Key != "a" || stats[1].Key != "b" || stats[2].Key != "c" {
		t.Fatalf("expected equal-miss keys in key order, got %+v", stats)
	}
}

func TestResultCarriesKeyErrors(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)}
	c, _ := newTestController(t, practiceConfig(), []string{"abc"}, clk)

	typeText(t, c, "xb")
	clk.advance(10 * time.Second)
	result, err := c.Exit()
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if len(result.KeyErrors) != 1 || result.KeyErrors[0].Key != "a" || result.KeyErrors[0].Misses != 1 {
		t.Fatalf("expected key error for 'a' in result, got %+v", result.KeyErrors)
	}
}
