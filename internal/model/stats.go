package model

// WordStats is the mutable study state attached to one WordProfile, created
// lazily on the first mastery-affecting action.
//
// Reviews counts every mastery-affecting action, so it is a superset of
// CorrectCount+IncorrectCount, not their sum: flashcard reviews increment it
// without touching the quiz counters.
type WordStats struct {
	Reviews        int   `json:"reviews"`
	CorrectCount   int   `json:"correctCount"`
	IncorrectCount int   `json:"incorrectCount"`
	MasteryScore   int   `json:"masteryScore"`
	LastReviewed   int64 `json:"lastReviewed"`
}

// StudyStats is the per-dataset singleton tracking the consecutive-day
// study streak. LastStudyDate is "YYYY-MM-DD", empty when never studied.
type StudyStats struct {
	StreakDays    int    `json:"streakDays"`
	LastStudyDate string `json:"lastStudyDate"`
}
