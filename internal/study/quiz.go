package study

import (
	"math/rand"
	"sort"

	"github.com/grevocab/api/internal/model"
)

// MinQuizPool is the smallest pool that can produce a four-option question.
const MinQuizPool = 4

const optionsPerQuestion = 4

// Question is one multiple-choice quiz item: pick the definition matching
// the word. Answer indexes into Options.
type Question struct {
	Word     string   `json:"word"`
	Phonetic string   `json:"phonetic,omitempty"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// QuizPool selects the question pool per the quiz source setting. A
// favorites source with an empty favorites list yields an empty pool; the
// caller reports that as an empty quiz, not an error.
func QuizPool(snap *model.Snapshot) []model.WordProfile {
	if snap.Settings.QuizSource == model.QuizSourceFavorites {
		return append([]model.WordProfile(nil), snap.Favorites...)
	}
	pool := make([]model.WordProfile, 0, len(snap.WordCache))
	for _, p := range snap.WordCache {
		pool = append(pool, p)
	}
	return pool
}

// BuildQuiz assembles quiz questions from the snapshot per its settings.
// Weakest mode orders the pool ascending by mastery before taking questions;
// random mode shuffles. Distractor definitions come from other pool words.
// Returns nil when the pool is too small for four distinct options.
func BuildQuiz(snap *model.Snapshot, rng *rand.Rand) []Question {
	pool := QuizPool(snap)
	if len(pool) < MinQuizPool {
		return nil
	}

	ordered := append([]model.WordProfile(nil), pool...)
	if snap.Settings.QuizMode == model.QuizModeWeakest {
		sort.SliceStable(ordered, func(i, j int) bool {
			return masteryOf(ordered[i]) < masteryOf(ordered[j])
		})
	} else {
		rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	count := snap.Settings.QuizQuestionCount
	if count <= 0 {
		count = 10
	}
	if count > len(ordered) {
		count = len(ordered)
	}

	questions := make([]Question, 0, count)
	for _, subject := range ordered[:count] {
		questions = append(questions, buildQuestion(subject, pool, rng))
	}
	return questions
}

func buildQuestion(subject model.WordProfile, pool []model.WordProfile, rng *rand.Rand) Question {
	options := []string{subject.Definition}

	// Draw distractors from the rest of the pool in random order.
	perm := rng.Perm(len(pool))
	for _, idx := range perm {
		if len(options) == optionsPerQuestion {
			break
		}
		other := pool[idx]
		if other.Word == subject.Word || other.Definition == subject.Definition {
			continue
		}
		options = append(options, other.Definition)
	}

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	answer := 0
	for i, opt := range options {
		if opt == subject.Definition {
			answer = i
			break
		}
	}

	return Question{
		Word:     subject.Word,
		Phonetic: subject.Phonetic,
		Options:  options,
		Answer:   answer,
	}
}
