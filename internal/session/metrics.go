package session

import (
	"math"
	"time"
)

const charsPerWord = 5

// Live WPM is suppressed for very young sessions and capped to keep short
// bursts from producing absurd readings.
const (
	liveWPMSuppression = 3 * time.Second
	liveWPMCap         = 300
)

func liveWPM(correct int, elapsed time.Duration) int {
	if elapsed < liveWPMSuppression {
		return 0
	}
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return 0
	}
	wpm := int(math.Round(float64(correct) / charsPerWord / minutes))
	if wpm > liveWPMCap {
		return liveWPMCap
	}
	if wpm < 0 {
		return 0
	}
	return wpm
}

func finalWPM(correct, elapsedSeconds int) int {
	if elapsedSeconds <= 0 {
		return 0
	}
	minutes := float64(elapsedSeconds) / 60
	return int(math.Round(float64(correct) / charsPerWord / minutes))
}

// finalAccuracy reports 0 for a session with no keystrokes, not 100.
func finalAccuracy(correct, keystrokes int) int {
	if keystrokes == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(keystrokes) * 100))
}
