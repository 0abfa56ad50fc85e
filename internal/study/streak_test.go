package study

import (
	"testing"

	"github.com/grevocab/api/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCheckStreakSameDayIsIdempotent(t *testing.T) {
	stats := model.StudyStats{StreakDays: 7, LastStudyDate: "2026-03-14"}

	next := CheckStreak(stats, "2026-03-14")

	assert.Equal(t, stats, next)
}

func TestCheckStreakYesterdayExtends(t *testing.T) {
	stats := model.StudyStats{StreakDays: 7, LastStudyDate: "2026-03-13"}

	next := CheckStreak(stats, "2026-03-14")

	assert.Equal(t, 8, next.StreakDays)
	assert.Equal(t, "2026-03-14", next.LastStudyDate)
}

func TestCheckStreakGapResets(t *testing.T) {
	stats := model.StudyStats{StreakDays: 7, LastStudyDate: "2026-03-10"}

	next := CheckStreak(stats, "2026-03-14")

	assert.Equal(t, 1, next.StreakDays)
	assert.Equal(t, "2026-03-14", next.LastStudyDate)
}

func TestCheckStreakFirstEver(t *testing.T) {
	next := CheckStreak(model.StudyStats{}, "2026-03-14")

	assert.Equal(t, 1, next.StreakDays)
	assert.Equal(t, "2026-03-14", next.LastStudyDate)
}

func TestCheckStreakFutureDateResets(t *testing.T) {
	// A stored date ahead of today (clock skew, corrupted import) is
	// neither today nor yesterday, so the streak restarts.
	stats := model.StudyStats{StreakDays: 7, LastStudyDate: "2026-03-20"}

	next := CheckStreak(stats, "2026-03-14")

	assert.Equal(t, 1, next.StreakDays)
	assert.Equal(t, "2026-03-14", next.LastStudyDate)
}

func TestCheckStreakMonthBoundary(t *testing.T) {
	stats := model.StudyStats{StreakDays: 2, LastStudyDate: "2026-02-28"}

	next := CheckStreak(stats, "2026-03-01")

	assert.Equal(t, 3, next.StreakDays)
}
