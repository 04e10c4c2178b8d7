package stats

// AchievementStats holds the milestones an achievement condition is
// evaluated against. WPM and Accuracy are the best values recorded so far.
type AchievementStats struct {
	WPM            int
	Accuracy       int
	TestsCompleted int
	DailyStreak    int
	PersonalBest   int
}

// Achievement is a named milestone with a predicate over AchievementStats.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Condition   func(AchievementStats) bool
}

var achievements = []Achievement{
	{
		ID:          "first-test",
		Name:        "First Steps",
		Description: "Complete your first typing test",
		Condition:   func(s AchievementStats) bool { return s.TestsCompleted >= 1 },
	},
	{
		ID:          "speed-demon-50",
		Name:        "Getting Warmed Up",
		Description: "Reach 50 WPM",
		Condition:   func(s AchievementStats) bool { return s.WPM >= 50 },
	},
	{
		ID:          "speed-demon-75",
		Name:        "Speed Demon",
		Description: "Reach 75 WPM",
		Condition:   func(s AchievementStats) bool { return s.WPM >= 75 },
	},
	{
		ID:          "speed-demon-100",
		Name:        "100 WPM Club",
		Description: "Reach 100 WPM",
		Condition:   func(s AchievementStats) bool { return s.WPM >= 100 },
	},
	{
		ID:          "speed-demon-125",
		Name:        "Lightning Fingers",
		Description: "Reach 125 WPM",
		Condition:   func(s AchievementStats) bool { return s.WPM >= 125 },
	},
	{
		ID:          "speed-demon-150",
		Name:        "Keyboard Warrior",
		Description: "Reach 150 WPM",
		Condition:   func(s AchievementStats) bool { return s.WPM >= 150 },
	},
	{
		ID:          "accuracy-master-95",
		Name:        "Accuracy Ace",
		Description: "Achieve 95% accuracy",
		Condition:   func(s AchievementStats) bool { return s.Accuracy >= 95 },
	},
	{
		ID:          "accuracy-master-99",
		Name:        "Perfectionist",
		Description: "Achieve 99% accuracy",
		Condition:   func(s AchievementStats) bool { return s.Accuracy >= 99 },
	},
	{
		ID:          "accuracy-master-100",
		Name:        "Flawless",
		Description: "Achieve 100% accuracy",
		Condition:   func(s AchievementStats) bool { return s.Accuracy == 100 },
	},
	{
		ID:          "streak-3",
		Name:        "Getting Consistent",
		Description: "3 day streak",
		Condition:   func(s AchievementStats) bool { return s.DailyStreak >= 3 },
	},
	{
		ID:          "streak-7",
		Name:        "Week Warrior",
		Description: "7 day streak",
		Condition:   func(s AchievementStats) bool { return s.DailyStreak >= 7 },
	},
	{
		ID:          "streak-30",
		Name:        "Dedicated Typist",
		Description: "30 day streak",
		Condition:   func(s AchievementStats) bool { return s.DailyStreak >= 30 },
	},
	{
		ID:          "tests-10",
		Name:        "Practice Makes Perfect",
		Description: "Complete 10 tests",
		Condition:   func(s AchievementStats) bool { return s.TestsCompleted >= 10 },
	},
	{
		ID:          "tests-50",
		Name:        "Committed Coder",
		Description: "Complete 50 tests",
		Condition:   func(s AchievementStats) bool { return s.TestsCompleted >= 50 },
	},
	{
		ID:          "tests-100",
		Name:        "Century Club",
		Description: "Complete 100 tests",
		Condition:   func(s AchievementStats) bool { return s.TestsCompleted >= 100 },
	},
}

// Achievements returns the full catalog in display order.
func Achievements() []Achievement {
	out := make([]Achievement, len(achievements))
	copy(out, achievements)
	return out
}

// Unlocked returns the achievements whose conditions hold for the given stats.
func Unlocked(s AchievementStats) []Achievement {
	var out []Achievement
	for _, a := range achievements {
		if a.Condition(s) {
			out = append(out, a)
		}
	}
	return out
}
