package study

import (
	"time"

	"github.com/grevocab/api/internal/model"
)

// Action is one mastery-affecting study event.
type Action string

const (
	// ActionReview is a flashcard review (card seen and flipped).
	ActionReview Action = "review"
	// ActionCorrect is a correct quiz answer.
	ActionCorrect Action = "correct"
	// ActionIncorrect is a wrong quiz answer.
	ActionIncorrect Action = "incorrect"
)

const (
	reviewGain    = 5
	correctGain   = 15
	incorrectLoss = 10

	// MaxMastery is the score ceiling; 0 is the floor.
	MaxMastery = 100
)

// ApplyAction returns the stats tuple after one study action. A nil input
// means the word was never reviewed and starts from the zero tuple. The
// function is total: every action increments Reviews by exactly one, sets
// LastReviewed to now and leaves MasteryScore clamped to [0,100].
func ApplyAction(stats *model.WordStats, action Action, now time.Time) model.WordStats {
	var next model.WordStats
	if stats != nil {
		next = *stats
	}

	next.Reviews++
	switch action {
	case ActionCorrect:
		next.CorrectCount++
		next.MasteryScore += correctGain
	case ActionIncorrect:
		next.IncorrectCount++
		next.MasteryScore -= incorrectLoss
	default:
		next.MasteryScore += reviewGain
	}

	if next.MasteryScore > MaxMastery {
		next.MasteryScore = MaxMastery
	}
	if next.MasteryScore < 0 {
		next.MasteryScore = 0
	}

	next.LastReviewed = now.UnixMilli()
	return next
}

// ParseAction maps a wire value to an Action.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionReview, ActionCorrect, ActionIncorrect:
		return Action(s), true
	}
	return "", false
}
