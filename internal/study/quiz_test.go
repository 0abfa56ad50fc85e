package study

import (
	"math/rand"
	"testing"

	"github.com/grevocab/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizSnapshot(words int, source string) *model.Snapshot {
	snap := model.NewSnapshot()
	snap.Settings.QuizSource = source
	for i := 0; i < words; i++ {
		word := "word" + string(rune('a'+i))
		p := profileWithStats(word, i*10, 0)
		snap.WordCache[word] = p
		if i%2 == 0 {
			snap.Favorites = append(snap.Favorites, p.Clone())
		}
	}
	return snap
}

func TestBuildQuizPoolTooSmall(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	snap := quizSnapshot(3, model.QuizSourceAll)
	assert.Nil(t, BuildQuiz(snap, rng))

	// Favorites source with an empty favorites list is also too small,
	// even when the word cache is big enough.
	snap = quizSnapshot(8, model.QuizSourceFavorites)
	snap.Favorites = nil
	assert.Nil(t, BuildQuiz(snap, rng))
}

func TestBuildQuizQuestionShape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	snap := quizSnapshot(8, model.QuizSourceAll)
	snap.Settings.QuizQuestionCount = 5

	questions := BuildQuiz(snap, rng)

	require.Len(t, questions, 5)
	for _, q := range questions {
		require.Len(t, q.Options, 4)
		require.GreaterOrEqual(t, q.Answer, 0)
		require.Less(t, q.Answer, 4)

		subject, ok := snap.WordCache[q.Word]
		require.True(t, ok)
		assert.Equal(t, subject.Definition, q.Options[q.Answer])

		seen := map[string]bool{}
		for _, opt := range q.Options {
			assert.False(t, seen[opt], "duplicate option %q", opt)
			seen[opt] = true
		}
	}
}

func TestBuildQuizWeakestModeOrdersByMastery(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	snap := quizSnapshot(10, model.QuizSourceAll)
	snap.Settings.QuizMode = model.QuizModeWeakest
	snap.Settings.QuizQuestionCount = 3

	questions := BuildQuiz(snap, rng)

	require.Len(t, questions, 3)
	prev := -1
	for _, q := range questions {
		mastery := snap.WordCache[q.Word].Stats.MasteryScore
		assert.GreaterOrEqual(t, mastery, prev)
		prev = mastery
	}
}

func TestBuildQuizCountDefaultsAndCaps(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	snap := quizSnapshot(6, model.QuizSourceAll)
	snap.Settings.QuizQuestionCount = 0
	// Default of 10 capped to pool size.
	assert.Len(t, BuildQuiz(snap, rng), 6)

	snap.Settings.QuizQuestionCount = 100
	assert.Len(t, BuildQuiz(snap, rng), 6)
}

func TestQuizPoolFavoritesSource(t *testing.T) {
	snap := quizSnapshot(8, model.QuizSourceFavorites)

	pool := QuizPool(snap)

	assert.Len(t, pool, len(snap.Favorites))
}
