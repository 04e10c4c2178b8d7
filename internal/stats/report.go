// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/devtype/internal/model"
	"github.com/verte-zerg/devtype/internal/store"
	"github.com/verte-zerg/devtype/internal/tracker"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Results   []model.ResultAggregate
	KeyErrors []model.KeyErrorAggregate
	Summary   Summary
	Streak    int
	BestWPM   int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, trk *tracker.Tracker, cfg model.StatsConfig) (Report, error) {
	results, err := st.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	keyErrors, err := st.ListKeyErrorAggregates(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Results:   results,
		KeyErrors: keyErrors,
		Summary:   Summarize(results),
		Streak:    trk.Streak(),
		BestWPM:   trk.BestWPM(),
	}, nil
}

// TerminalWidth returns the stdout terminal width, or fallback when stdout is
// not a terminal.
func TerminalWidth(fallback int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// RenderSummary prints the aggregate summary with streak and personal best.
func RenderSummary(w io.Writer, report Report) error {
	if report.Summary.Tests == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests completed: %d", report.Summary.Tests),
		fmt.Sprintf("Best WPM (timed): %d", report.BestWPM),
		fmt.Sprintf("Avg WPM: %.1f", report.Summary.AvgWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", report.Summary.AvgAccuracy),
		fmt.Sprintf("Daily streak: %d", report.Streak),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy learning curves as sparklines sized to
// the given total width.
func RenderCurves(w io.Writer, results []model.ResultAggregate, window, totalWidth int) error {
	if len(results) == 0 {
		return nil
	}
	wpms := make([]float64, len(results))
	accs := make([]float64, len(results))
	for i, r := range results {
		wpms[i] = float64(r.WPM)
		accs[i] = float64(r.Accuracy)
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)

	plotWidth := totalWidth - 16
	if plotWidth < 10 {
		plotWidth = 10
	}
	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	for _, series := range []struct {
		name   string
		values []float64
	}{
		{"WPM", wpms},
		{"Accuracy", accs},
	} {
		sampled := Resample(series.values, plotWidth)
		first := sampled[0]
		last := sampled[len(sampled)-1]
		if _, err := fmt.Fprintf(w, "%-8s %6.1f |%s| %.1f\n", series.name, first, Sparkline(sampled), last); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderKeyErrorTable prints missed keys, most-missed first.
func RenderKeyErrorTable(w io.Writer, aggs []model.KeyErrorAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No missed keys recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Missed Keys"); err != nil {
		return err
	}
	headers := []string{"Key", "Misses"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{keyLabel(agg.Key), fmt.Sprintf("%d", agg.Misses)})
	}
	rightAlign := map[int]bool{1: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderRecent prints the most recent results, newest first.
func RenderRecent(w io.Writer, results []model.ResultAggregate, n int) error {
	if len(results) == 0 {
		return nil
	}
	if n > 0 && len(results) > n {
		results = results[len(results)-n:]
	}
	if _, err := fmt.Fprintln(w, "Recent Tests"); err != nil {
		return err
	}
	headers := []string{"Date", "Mode", "Language", "WPM", "Accuracy", "Duration"}
	rows := make([][]string, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		rows = append(rows, []string{
			r.EndedAt.Format("2006-01-02 15:04"),
			string(r.Mode),
			r.Language,
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%ds", r.DurationSeconds),
		})
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderAchievements prints unlocked achievements for the report.
func RenderAchievements(w io.Writer, report Report) error {
	unlocked := Unlocked(AchievementStats{
		WPM:            report.Summary.BestWPM,
		Accuracy:       int(report.Summary.AvgAccuracy),
		TestsCompleted: report.Summary.Tests,
		DailyStreak:    report.Streak,
		PersonalBest:   report.BestWPM,
	})
	if len(unlocked) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Achievements"); err != nil {
		return err
	}
	for _, a := range unlocked {
		if _, err := fmt.Fprintf(w, "  %s · %s\n", a.Name, a.Description); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func keyLabel(key string) string {
	switch key {
	case " ":
		return "<space>"
	case "\n":
		return "<enter>"
	case "\t":
		return "<tab>"
	default:
		return key
	}
}
