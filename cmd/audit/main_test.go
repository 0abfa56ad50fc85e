package main

import (
	"encoding/json"
	"testing"

	"github.com/grevocab/api/internal/model"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func snapshotRow(t *testing.T, userID int64, snap *model.Snapshot) model.UserSnapshot {
	t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	return model.UserSnapshot{
		UserID:  userID,
		Data:    datatypes.JSON(data),
		History: pq.StringArray(snap.History),
	}
}

func issueTypes(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Type)
	}
	return out
}

func TestAuditRowCleanSnapshot(t *testing.T) {
	snap := model.NewSnapshot()
	stats := model.WordStats{Reviews: 2, MasteryScore: 10}
	p := model.WordProfile{Word: "laconic", Definition: "terse", Stats: &stats}
	snap.WordCache["laconic"] = p
	snap.Favorites = []model.WordProfile{p.Clone()}
	snap.History = []string{"laconic"}

	issues, repaired := auditRow(snapshotRow(t, 1, snap))

	assert.Empty(t, issues)
	assert.Nil(t, repaired)
}

func TestAuditRowStatsDivergence(t *testing.T) {
	snap := model.NewSnapshot()
	snap.WordCache["laconic"] = model.WordProfile{
		Word: "laconic", Definition: "terse",
		Stats: &model.WordStats{Reviews: 5, MasteryScore: 40},
	}
	snap.Favorites = []model.WordProfile{{
		Word: "laconic", Definition: "terse",
		Stats: &model.WordStats{Reviews: 3, MasteryScore: 20},
	}}

	issues, repaired := auditRow(snapshotRow(t, 1, snap))

	assert.Contains(t, issueTypes(issues), "stats_divergence")
	require.NotNil(t, repaired)
	// The word store copy wins.
	assert.Equal(t, 40, repaired.Favorites[0].Stats.MasteryScore)
	assert.Equal(t, 5, repaired.Favorites[0].Stats.Reviews)
}

func TestAuditRowOrphanedFavorite(t *testing.T) {
	snap := model.NewSnapshot()
	snap.Favorites = []model.WordProfile{{
		Word: "abstruse", Definition: "hard to grasp",
		Stats: &model.WordStats{Reviews: 1, MasteryScore: 5},
	}}

	issues, repaired := auditRow(snapshotRow(t, 7, snap))

	assert.Contains(t, issueTypes(issues), "orphaned_favorite")
	require.NotNil(t, repaired)
	// The favorite seeds the missing store entry, stats included.
	entry, ok := repaired.WordCache["abstruse"]
	require.True(t, ok)
	require.NotNil(t, entry.Stats)
	assert.Equal(t, 5, entry.Stats.MasteryScore)
	// The favorite itself is kept.
	require.Len(t, repaired.Favorites, 1)
}

func TestAuditRowHistoryOverflowAndMirror(t *testing.T) {
	snap := model.NewSnapshot()
	for i := 0; i < 25; i++ {
		snap.History = append(snap.History, "word"+string(rune('a'+i)))
	}
	row := snapshotRow(t, 2, snap)
	// Mirror column drifted.
	row.History = pq.StringArray{"stale"}

	issues, repaired := auditRow(row)

	types := issueTypes(issues)
	assert.Contains(t, types, "history_overflow")
	assert.Contains(t, types, "history_mirror")
	require.NotNil(t, repaired)
	assert.Len(t, repaired.History, 20)
}

func TestAuditRowBadSettings(t *testing.T) {
	snap := model.NewSnapshot()
	snap.Settings.QuizSource = "everything"

	issues, repaired := auditRow(snapshotRow(t, 3, snap))

	assert.Contains(t, issueTypes(issues), "bad_settings")
	require.NotNil(t, repaired)
	assert.Equal(t, model.QuizSourceAll, repaired.Settings.QuizSource)
}

func TestAuditRowCorruptData(t *testing.T) {
	row := model.UserSnapshot{UserID: 4, Data: datatypes.JSON([]byte("{not json"))}

	issues, repaired := auditRow(row)

	require.Len(t, issues, 1)
	assert.Equal(t, "corrupt", issues[0].Type)
	assert.Nil(t, repaired)
}
