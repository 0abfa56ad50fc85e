package study

import (
	"testing"
	"time"

	"github.com/grevocab/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyActionFromNilStats(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	next := ApplyAction(nil, ActionReview, now)

	assert.Equal(t, 1, next.Reviews)
	assert.Equal(t, 5, next.MasteryScore)
	assert.Equal(t, 0, next.CorrectCount)
	assert.Equal(t, 0, next.IncorrectCount)
	assert.Equal(t, now.UnixMilli(), next.LastReviewed)
}

func TestApplyActionCorrect(t *testing.T) {
	now := time.Now()
	stats := &model.WordStats{Reviews: 3, CorrectCount: 1, MasteryScore: 40}

	next := ApplyAction(stats, ActionCorrect, now)

	assert.Equal(t, 4, next.Reviews)
	assert.Equal(t, 2, next.CorrectCount)
	assert.Equal(t, 55, next.MasteryScore)
	// Input is not mutated.
	assert.Equal(t, 40, stats.MasteryScore)
}

func TestApplyActionIncorrect(t *testing.T) {
	now := time.Now()
	stats := &model.WordStats{Reviews: 5, IncorrectCount: 2, MasteryScore: 30}

	next := ApplyAction(stats, ActionIncorrect, now)

	assert.Equal(t, 6, next.Reviews)
	assert.Equal(t, 3, next.IncorrectCount)
	assert.Equal(t, 20, next.MasteryScore)
}

func TestApplyActionClampsAtCeiling(t *testing.T) {
	stats := &model.WordStats{MasteryScore: 95}

	next := ApplyAction(stats, ActionCorrect, time.Now())
	assert.Equal(t, MaxMastery, next.MasteryScore)

	// Further correct answers stay pinned but still count reviews.
	again := ApplyAction(&next, ActionCorrect, time.Now())
	assert.Equal(t, MaxMastery, again.MasteryScore)
	assert.Equal(t, next.Reviews+1, again.Reviews)
}

func TestApplyActionClampsAtFloor(t *testing.T) {
	stats := &model.WordStats{MasteryScore: 5}

	next := ApplyAction(stats, ActionIncorrect, time.Now())
	assert.Equal(t, 0, next.MasteryScore)

	again := ApplyAction(&next, ActionIncorrect, time.Now())
	assert.Equal(t, 0, again.MasteryScore)
}

func TestParseAction(t *testing.T) {
	for _, valid := range []string{"review", "correct", "incorrect"} {
		action, ok := ParseAction(valid)
		require.True(t, ok, valid)
		assert.Equal(t, Action(valid), action)
	}

	_, ok := ParseAction("peek")
	assert.False(t, ok)
	_, ok = ParseAction("")
	assert.False(t, ok)
}
