// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/devtype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates stored results for display.
type Summary struct {
	Tests       int
	BestWPM     int
	AvgWPM      float64
	AvgAccuracy float64
}

// Summarize computes aggregate stats over stored results.
func Summarize(results []model.ResultAggregate) Summary {
	if len(results) == 0 {
		return Summary{}
	}
	var totalWPM, totalAcc float64
	best := 0
	for _, r := range results {
		totalWPM += float64(r.WPM)
		totalAcc += float64(r.Accuracy)
		if r.WPM > best {
			best = r.WPM
		}
	}
	count := float64(len(results))
	return Summary{
		Tests:       len(results),
		BestWPM:     best,
		AvgWPM:      totalWPM / count,
		AvgAccuracy: totalAcc / count,
	}
}

// WeightedScore is the leaderboard ranking value: wpm scaled by accuracy.
func WeightedScore(wpm, accuracy int) int {
	return wpm * accuracy / 100
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample squeezes or stretches values to the given width by bucket
// averaging, so a long history still fits one terminal line.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) == 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
