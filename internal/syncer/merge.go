package syncer

import (
	"strings"

	"github.com/grevocab/api/internal/model"
	"github.com/grevocab/api/internal/study"
)

// HistoryLimit caps the merged search-history list.
const HistoryLimit = 20

// MergeOnLogin combines the previously-anonymous local dataset with the
// remote copy fetched at login. This is the only point where merging
// happens: every later sync event replaces the local snapshot wholesale.
// Merging on every sync would re-duplicate favorites across repeated events,
// which is exactly the bug the replace-after-login design avoids.
//
// Conflict rules, all remote-wins:
//   - favorites: local then remote concatenated, deduplicated by word key
//     keeping the last occurrence, so remote's copy of a shared word (and
//     its stats) survives.
//   - wordCache: shallow merge, remote entries overwrite local ones.
//   - settings and studyStats: replaced by remote, no field-level merge;
//     studyStats is then rolled through the streak check for today.
//
// history is a union capped at HistoryLimit, most recent first.
func MergeOnLogin(local, remote *model.Snapshot, today string) *model.Snapshot {
	if local == nil {
		local = model.NewSnapshot()
	}
	if remote == nil {
		out := local.Clone()
		out.StudyStats = study.CheckStreak(out.StudyStats, today)
		return out
	}

	merged := &model.Snapshot{
		Favorites:  mergeFavorites(local.Favorites, remote.Favorites),
		History:    mergeHistory(local.History, remote.History),
		Settings:   remote.Settings,
		WordCache:  mergeWordCache(local.WordCache, remote.WordCache),
		StudyStats: study.CheckStreak(remote.StudyStats, today),
	}
	return merged
}

// mergeFavorites concatenates local then remote and keeps, for each word
// key, only the last occurrence in that order. Do not substitute a
// "smarter" tie-break (recency, higher mastery): last-in-concatenation-order
// is the observable contract.
func mergeFavorites(local, remote []model.WordProfile) []model.WordProfile {
	combined := make([]model.WordProfile, 0, len(local)+len(remote))
	combined = append(combined, local...)
	combined = append(combined, remote...)

	lastIndex := make(map[string]int, len(combined))
	for i, f := range combined {
		lastIndex[f.Word] = i
	}

	out := make([]model.WordProfile, 0, len(lastIndex))
	for i, f := range combined {
		if lastIndex[f.Word] == i {
			out = append(out, f.Clone())
		}
	}
	return out
}

// mergeHistory deduplicates case-insensitively, the same rule the history
// push path uses, keeping the first occurrence's casing.
func mergeHistory(local, remote []string) []string {
	seen := make(map[string]struct{}, len(local)+len(remote))
	out := make([]string, 0, HistoryLimit)
	for _, term := range append(append([]string(nil), local...), remote...) {
		folded := strings.ToLower(term)
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, term)
		if len(out) == HistoryLimit {
			break
		}
	}
	return out
}

func mergeWordCache(local, remote map[string]model.WordProfile) map[string]model.WordProfile {
	out := make(map[string]model.WordProfile, len(local)+len(remote))
	for k, v := range local {
		out[k] = v.Clone()
	}
	for k, v := range remote {
		out[k] = v.Clone()
	}
	return out
}
