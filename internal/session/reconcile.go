package session

// inputDelta classifies the characters appended by one input update.
type inputDelta struct {
	correct    int
	incorrect  int
	keystrokes int
	misses     map[rune]int
}

// reconcile compares the previous and next input against the target and
// scores only the newly appended positions. A shrinking update (backspace)
// yields an empty delta: backspaces are never counted as keystrokes and never
// touch the miss tally. The delta depends only on (prev, next, target), so a
// single transition always produces the same counts.
func reconcile(prev, next, target []rune) inputDelta {
	var d inputDelta
	if len(next) <= len(prev) || len(next) > len(target) {
		return d
	}
	for i := len(prev); i < len(next); i++ {
		d.keystrokes++
		if next[i] == target[i] {
			d.correct++
			continue
		}
		d.incorrect++
		if d.misses == nil {
			d.misses = map[rune]int{}
		}
		d.misses[target[i]]++
	}
	return d
}
