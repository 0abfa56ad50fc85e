package syncer

import (
	"testing"

	"github.com/grevocab/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fav(word string, mastery int) model.WordProfile {
	return model.WordProfile{
		Word:       word,
		Definition: "definition of " + word,
		Stats:      &model.WordStats{MasteryScore: mastery},
	}
}

func TestMergeOnLoginRemoteWinsSharedFavorites(t *testing.T) {
	local := model.NewSnapshot()
	local.Favorites = []model.WordProfile{fav("ephemeral", 10), fav("laconic", 20)}

	remote := model.NewSnapshot()
	remote.Favorites = []model.WordProfile{fav("laconic", 75), fav("abstruse", 5)}

	merged := MergeOnLogin(local, remote, "2026-03-14")

	require.Len(t, merged.Favorites, 3)
	byWord := map[string]model.WordProfile{}
	for _, f := range merged.Favorites {
		byWord[f.Word] = f
	}
	// Shared word keeps the remote copy (last in concatenation order).
	assert.Equal(t, 75, byWord["laconic"].Stats.MasteryScore)
	assert.Equal(t, 10, byWord["ephemeral"].Stats.MasteryScore)
	assert.Equal(t, 5, byWord["abstruse"].Stats.MasteryScore)
}

func TestMergeOnLoginFavoritesOrderKeepsLastOccurrence(t *testing.T) {
	local := model.NewSnapshot()
	local.Favorites = []model.WordProfile{fav("a", 1), fav("b", 2)}
	remote := model.NewSnapshot()
	remote.Favorites = []model.WordProfile{fav("b", 3), fav("c", 4)}

	merged := MergeOnLogin(local, remote, "2026-03-14")

	words := make([]string, 0, len(merged.Favorites))
	for _, f := range merged.Favorites {
		words = append(words, f.Word)
	}
	// "b" surfaces at its remote position, not its local one.
	assert.Equal(t, []string{"a", "b", "c"}, words)
}

func TestMergeOnLoginHistoryUnionCapped(t *testing.T) {
	local := model.NewSnapshot()
	remote := model.NewSnapshot()
	for i := 0; i < 15; i++ {
		local.History = append(local.History, "local"+string(rune('a'+i)))
		remote.History = append(remote.History, "remote"+string(rune('a'+i)))
	}
	// Overlap: remote repeats one local term.
	remote.History[0] = local.History[0]

	merged := MergeOnLogin(local, remote, "2026-03-14")

	assert.Len(t, merged.History, HistoryLimit)
	// Local entries come first; the duplicate is not repeated.
	assert.Equal(t, local.History[0], merged.History[0])
	seen := map[string]bool{}
	for _, term := range merged.History {
		assert.False(t, seen[term])
		seen[term] = true
	}
}

func TestMergeOnLoginHistoryDedupeIsCaseInsensitive(t *testing.T) {
	local := model.NewSnapshot()
	local.History = []string{"Laconic", "abstruse"}
	remote := model.NewSnapshot()
	remote.History = []string{"laconic", "Abstruse", "ephemeral"}

	merged := MergeOnLogin(local, remote, "2026-03-14")

	// Same rule as a history push: case variants collapse, first casing
	// survives.
	assert.Equal(t, []string{"Laconic", "abstruse", "ephemeral"}, merged.History)
}

func TestMergeOnLoginWordCacheRemoteOverwrites(t *testing.T) {
	local := model.NewSnapshot()
	local.WordCache["laconic"] = fav("laconic", 20)
	local.WordCache["ephemeral"] = fav("ephemeral", 30)

	remote := model.NewSnapshot()
	remote.WordCache["laconic"] = fav("laconic", 90)

	merged := MergeOnLogin(local, remote, "2026-03-14")

	require.Len(t, merged.WordCache, 2)
	assert.Equal(t, 90, merged.WordCache["laconic"].Stats.MasteryScore)
	assert.Equal(t, 30, merged.WordCache["ephemeral"].Stats.MasteryScore)
}

func TestMergeOnLoginSettingsAndStatsReplaced(t *testing.T) {
	local := model.NewSnapshot()
	local.Settings.QuizQuestionCount = 5
	local.StudyStats = model.StudyStats{StreakDays: 3, LastStudyDate: "2026-03-14"}

	remote := model.NewSnapshot()
	remote.Settings.QuizQuestionCount = 15
	remote.StudyStats = model.StudyStats{StreakDays: 9, LastStudyDate: "2026-03-13"}

	merged := MergeOnLogin(local, remote, "2026-03-14")

	assert.Equal(t, 15, merged.Settings.QuizQuestionCount)
	// Remote stats replace local ones, then roll through the streak check:
	// remote last studied yesterday, so the streak extends.
	assert.Equal(t, 10, merged.StudyStats.StreakDays)
	assert.Equal(t, "2026-03-14", merged.StudyStats.LastStudyDate)
}

func TestMergeOnLoginNilRemote(t *testing.T) {
	local := model.NewSnapshot()
	local.Favorites = []model.WordProfile{fav("laconic", 20)}
	local.StudyStats = model.StudyStats{StreakDays: 2, LastStudyDate: "2026-03-13"}

	merged := MergeOnLogin(local, nil, "2026-03-14")

	require.Len(t, merged.Favorites, 1)
	assert.Equal(t, 3, merged.StudyStats.StreakDays)
}

func TestMergeOnLoginNilLocal(t *testing.T) {
	remote := model.NewSnapshot()
	remote.Favorites = []model.WordProfile{fav("abstruse", 40)}

	merged := MergeOnLogin(nil, remote, "2026-03-14")

	require.Len(t, merged.Favorites, 1)
	assert.Equal(t, "abstruse", merged.Favorites[0].Word)
}

func TestMergeOnLoginDeepCopies(t *testing.T) {
	local := model.NewSnapshot()
	local.Favorites = []model.WordProfile{fav("laconic", 20)}

	merged := MergeOnLogin(local, model.NewSnapshot(), "2026-03-14")

	merged.Favorites[0].Stats.MasteryScore = 99
	assert.Equal(t, 20, local.Favorites[0].Stats.MasteryScore)
}
