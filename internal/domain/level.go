package domain

// Level tracks a user's gamification progression. One row per user.
type Level struct {
	UserID    string
	Level     int
	Exp       int
	ExpToNext int
}

// NewLevel returns the starting progression state for a user.
func NewLevel(userID string) Level {
	return Level{UserID: userID, Level: 1, Exp: 0, ExpToNext: baseLevelExp}
}

const (
	baseLevelExp   = 100
	levelExpGrowth = 50
)

// AddExperience accumulates exp and rolls the level forward while the
// threshold is reached. The threshold grows by 50 per level, so the loop
// terminates once the remainder drops below it. Returns how many levels
// were gained.
func (l *Level) AddExperience(exp int) int {
	if exp <= 0 {
		return 0
	}

	gained := 0
	l.Exp += exp
	for l.Exp >= l.ExpToNext {
		l.Exp -= l.ExpToNext
		l.Level++
		l.ExpToNext = baseLevelExp + (l.Level-1)*levelExpGrowth
		gained++
	}
	return gained
}
