package study

import (
	"math/rand"
	"sort"

	"github.com/grevocab/api/internal/model"
)

// ReviewWindowSize bounds the candidate window for "review while you wait"
// filler. Picking randomly inside the window instead of always returning the
// single weakest word keeps repeated cache-miss searches from surfacing the
// same card every time.
const ReviewWindowSize = 12

func masteryOf(p model.WordProfile) int {
	if p.Stats == nil {
		return 0
	}
	return p.Stats.MasteryScore
}

func lastReviewedOf(p model.WordProfile) int64 {
	if p.Stats == nil {
		return 0
	}
	return p.Stats.LastReviewed
}

// ReviewWindow returns the weakest min(ReviewWindowSize, pool) words, sorted
// ascending by mastery score with ties broken by least-recently-reviewed.
// The pool is the favorites list, falling back to the whole word cache when
// no favorites exist. Pure; the random pick lives in PickCandidate so tests
// can assert on the window contents directly.
func ReviewWindow(favorites []model.WordProfile, wordCache map[string]model.WordProfile) []model.WordProfile {
	var pool []model.WordProfile
	if len(favorites) > 0 {
		pool = append([]model.WordProfile(nil), favorites...)
	} else {
		pool = make([]model.WordProfile, 0, len(wordCache))
		for _, p := range wordCache {
			pool = append(pool, p)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		mi, mj := masteryOf(pool[i]), masteryOf(pool[j])
		if mi != mj {
			return mi < mj
		}
		return lastReviewedOf(pool[i]) < lastReviewedOf(pool[j])
	})

	if len(pool) > ReviewWindowSize {
		pool = pool[:ReviewWindowSize]
	}
	return pool
}

// PickCandidate returns one word chosen uniformly at random from the review
// window, or nil when both pools are empty. Viewing the candidate is filler
// only and does not count as a review.
func PickCandidate(favorites []model.WordProfile, wordCache map[string]model.WordProfile, rng *rand.Rand) *model.WordProfile {
	window := ReviewWindow(favorites, wordCache)
	if len(window) == 0 {
		return nil
	}
	pick := window[rng.Intn(len(window))]
	return &pick
}
