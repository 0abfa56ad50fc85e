package study

import (
	"time"

	"github.com/grevocab/api/internal/model"
)

// DateLayout is the calendar-day format used by StudyStats.LastStudyDate.
const DateLayout = "2006-01-02"

// Today formats now as a streak calendar day.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// CheckStreak rolls the consecutive-day streak forward for today. A same-day
// call returns the input unchanged, so it is safe to run on every session
// start and on every remote sync. A last-study-date of exactly yesterday
// extends the streak; anything else resets it to one. A corrupted future
// date is neither today nor yesterday and therefore also resets; that
// matches the stored behavior and is deliberately not "fixed" here.
func CheckStreak(stats model.StudyStats, today string) model.StudyStats {
	if stats.LastStudyDate == today {
		return stats
	}

	if t, err := time.Parse(DateLayout, today); err == nil {
		yesterday := t.AddDate(0, 0, -1).Format(DateLayout)
		if stats.LastStudyDate == yesterday {
			return model.StudyStats{
				StreakDays:    stats.StreakDays + 1,
				LastStudyDate: today,
			}
		}
	}

	return model.StudyStats{StreakDays: 1, LastStudyDate: today}
}
