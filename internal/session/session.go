// Package session owns the in-memory user dataset and keeps its three
// dependent collections (word cache, favorites, study stats) consistent
// under mutation. All state lives in an explicit Session object with a
// load/flush lifecycle; nothing is module-global.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grevocab/api/internal/gateway"
	"github.com/grevocab/api/internal/model"
	"github.com/grevocab/api/internal/study"
	"github.com/grevocab/api/internal/syncer"
)

// MasteredThreshold is the mastery score from which a word counts as
// mastered in aggregate stats.
const MasteredThreshold = 80

var (
	ErrWordNotCached = errors.New("word not in cache")
	ErrImportFormat  = errors.New("invalid import document")
)

// Session is one execution context's view of a user dataset. Mutations are
// atomic under a single mutex, which is what upholds the dual-write
// invariant: no observer ever sees a word's stats updated in the store but
// not in favorites, or vice versa.
//
// Every mutation is written through to the local store immediately
// (fire-and-forget) and, once a user identity is attached, schedules a
// debounced remote save followed by a remote-update broadcast.
type Session struct {
	mu   sync.Mutex
	snap *model.Snapshot

	clientID string
	userID   int64
	originID string

	local  gateway.LocalStore
	remote gateway.RemoteStore
	bus    gateway.Bus

	saver *gateway.Debouncer
	rng   *rand.Rand
	now   func() time.Time

	// Generation token and term of the most recent lookup; completions
	// carrying a superseded token are discarded so a slow fetch can never
	// overwrite newer state.
	lookupToken string
	lookupWord  string
}

// New loads (or initializes) the dataset for clientID and runs the streak
// check for today, as required at every session start.
func New(clientID, originID string, local gateway.LocalStore, remote gateway.RemoteStore, bus gateway.Bus) (*Session, error) {
	snap, err := local.Load(clientID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = model.NewSnapshot()
	}

	s := &Session{
		snap:     snap,
		clientID: clientID,
		originID: originID,
		local:    local,
		remote:   remote,
		bus:      bus,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	s.saver = gateway.NewDebouncer(gateway.SaveDebounce, s.saveRemote)

	s.mu.Lock()
	s.snap.StudyStats = study.CheckStreak(s.snap.StudyStats, study.Today(s.now()))
	s.persistLocked()
	s.mu.Unlock()

	return s, nil
}

// UserID returns the attached identity, 0 while anonymous.
func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Snapshot returns a deep copy of the current dataset.
func (s *Session) Snapshot() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// persistLocked writes the snapshot through to the local store and, when an
// identity is attached, re-arms the debounced remote save. Callers hold s.mu.
func (s *Session) persistLocked() {
	if err := s.local.Save(s.clientID, s.snap); err != nil {
		log.Printf("[session] local save failed for %s: %v", s.clientID, err)
	}
	if s.userID != 0 {
		s.saver.Trigger()
	}
}

// saveRemote runs on the debouncer goroutine after the quiet period. Sync is
// best-effort: a failed save leaves local state authoritative and usable.
func (s *Session) saveRemote() {
	s.mu.Lock()
	userID := s.userID
	snap := s.snap.Clone()
	s.mu.Unlock()

	if userID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.remote.Save(ctx, userID, snap); err != nil {
		log.Printf("[session] remote save failed for user %d: %v", userID, err)
		return
	}

	if s.bus != nil {
		ev := gateway.Event{Type: gateway.EventRemoteUpdate, UserID: userID, OriginID: s.originID}
		if err := s.bus.Publish(ctx, ev); err != nil {
			log.Printf("[session] broadcast failed for user %d: %v", userID, err)
		}
	}
}

// Flush forces any pending debounced remote save, for shutdown.
func (s *Session) Flush() {
	s.saver.Flush()
}

// resolveKeyLocked finds the cache key for term: exact match first, then a
// case-insensitive scan (storage is case-sensitive, lookup is not).
func (s *Session) resolveKeyLocked(term string) (string, bool) {
	if _, ok := s.snap.WordCache[term]; ok {
		return term, true
	}
	for key := range s.snap.WordCache {
		if strings.EqualFold(key, term) {
			return key, true
		}
	}
	return "", false
}

// Lookup returns the cached profile for term, probing case-insensitively.
func (s *Session) Lookup(term string) (model.WordProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.resolveKeyLocked(strings.TrimSpace(term))
	if !ok {
		return model.WordProfile{}, false
	}
	return s.snap.WordCache[key].Clone(), true
}

// CacheProfile stores a fetched profile under its canonical word key,
// stamping the store-creation time once.
func (s *Session) CacheProfile(p model.WordProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheProfileLocked(p)
	s.persistLocked()
}

func (s *Session) cacheProfileLocked(p model.WordProfile) {
	if p.Timestamp == 0 {
		p.Timestamp = s.now().UnixMilli()
	}
	// A re-fetch of an already-cached word keeps the existing stats and
	// original timestamp.
	if key, ok := s.resolveKeyLocked(p.Word); ok {
		prev := s.snap.WordCache[key]
		p.Stats = prev.Stats
		p.Timestamp = prev.Timestamp
		delete(s.snap.WordCache, key)
	}
	s.snap.WordCache[p.Word] = p.Clone()
}

// BeginLookup marks term as the in-flight lookup and returns its generation
// token. Starting a new lookup supersedes any earlier one.
func (s *Session) BeginLookup(term string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookupToken = uuid.NewString()
	s.lookupWord = strings.TrimSpace(term)
	return s.lookupToken
}

// CompleteLookup caches the fetched profile unless the token was superseded
// by a newer lookup. Returns false for discarded stale results.
func (s *Session) CompleteLookup(token string, p model.WordProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.lookupToken {
		return false
	}
	s.lookupToken = ""
	s.lookupWord = ""
	s.cacheProfileLocked(p)
	s.persistLocked()
	return true
}

// ApplyStudyAction runs the mastery engine for one action on word and fans
// the updated stats out to both the store entry and any favorites entry
// sharing the word key, atomically. The study-stats streak rolls forward at
// most once per calendar day.
func (s *Session) ApplyStudyAction(word string, action study.Action) (model.WordStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.resolveKeyLocked(strings.TrimSpace(word))
	if !ok {
		return model.WordStats{}, fmt.Errorf("%w: %s", ErrWordNotCached, word)
	}

	entry := s.snap.WordCache[key]
	next := study.ApplyAction(entry.Stats, action, s.now())
	entry.Stats = &next
	s.snap.WordCache[key] = entry

	// Dual write: the favorites copy of the same word must never diverge.
	for i := range s.snap.Favorites {
		if s.snap.Favorites[i].Word == key {
			stats := next
			s.snap.Favorites[i].Stats = &stats
		}
	}

	s.snap.StudyStats = study.CheckStreak(s.snap.StudyStats, study.Today(s.now()))
	s.persistLocked()
	return next, nil
}

// AddFavorite snapshots the current store profile into the favorites list.
// Favoriting an already-favorited word is a no-op.
func (s *Session) AddFavorite(word string) (model.WordProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.resolveKeyLocked(strings.TrimSpace(word))
	if !ok {
		return model.WordProfile{}, fmt.Errorf("%w: %s", ErrWordNotCached, word)
	}

	for _, f := range s.snap.Favorites {
		if f.Word == key {
			return f.Clone(), nil
		}
	}

	fav := s.snap.WordCache[key].Clone()
	s.snap.Favorites = append(s.snap.Favorites, fav)
	s.persistLocked()
	return fav.Clone(), nil
}

// RemoveFavorite drops word from the favorites list. Returns false when the
// word was not favorited.
func (s *Session) RemoveFavorite(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.snap.Favorites {
		if strings.EqualFold(f.Word, strings.TrimSpace(word)) {
			s.snap.Favorites = append(s.snap.Favorites[:i], s.snap.Favorites[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// Favorites returns a copy of the favorites list in its stored order.
func (s *Session) Favorites() []model.WordProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.WordProfile, 0, len(s.snap.Favorites))
	for _, f := range s.snap.Favorites {
		out = append(out, f.Clone())
	}
	return out
}

// PushHistory records a search term most-recent-first, deduplicated,
// truncated to the history limit.
func (s *Session) PushHistory(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.snap.History)+1)
	out = append(out, term)
	for _, h := range s.snap.History {
		if strings.EqualFold(h, term) {
			continue
		}
		out = append(out, h)
	}
	if len(out) > syncer.HistoryLimit {
		out = out[:syncer.HistoryLimit]
	}
	s.snap.History = out
	s.persistLocked()
}

// History returns the search history, most recent first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.snap.History...)
}

// UpdateSettings replaces the settings object.
func (s *Session) UpdateSettings(settings model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Settings = settings
	s.persistLocked()
}

// ReviewCandidate picks the filler word to study while a lookup is in
// flight, or nil when the dataset is empty. Viewing it is not a review.
func (s *Session) ReviewCandidate() *model.WordProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	pick := study.PickCandidate(s.snap.Favorites, s.snap.WordCache, s.rng)
	if pick == nil {
		return nil
	}
	out := pick.Clone()
	return &out
}

// BuildQuiz assembles a quiz per the current settings. An empty result
// means the pool was too small, not an error.
func (s *Session) BuildQuiz() []study.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return study.BuildQuiz(s.snap, s.rng)
}

// Overview is the aggregate study dashboard.
type Overview struct {
	TotalWords    int    `json:"totalWords"`
	FavoriteCount int    `json:"favoriteCount"`
	MasteredWords int    `json:"masteredWords"`
	TotalReviews  int    `json:"totalReviews"`
	StreakDays    int    `json:"streakDays"`
	LastStudyDate string `json:"lastStudyDate"`
	LearningGoal  int    `json:"learningGoal"`
}

// Stats computes the aggregate overview from the live dataset.
func (s *Session) Stats() Overview {
	s.mu.Lock()
	defer s.mu.Unlock()

	ov := Overview{
		TotalWords:    len(s.snap.WordCache),
		FavoriteCount: len(s.snap.Favorites),
		StreakDays:    s.snap.StudyStats.StreakDays,
		LastStudyDate: s.snap.StudyStats.LastStudyDate,
		LearningGoal:  s.snap.Settings.LearningGoal,
	}
	for _, p := range s.snap.WordCache {
		if p.Stats == nil {
			continue
		}
		ov.TotalReviews += p.Stats.Reviews
		if p.Stats.MasteryScore >= MasteredThreshold {
			ov.MasteredWords++
		}
	}
	return ov
}

// Export returns the dataset as an import/export document.
func (s *Session) Export() *model.Snapshot {
	return s.Snapshot()
}

// Import applies the fields present in the patch, leaving absent fields
// unchanged. The whole document is validated before anything is applied, so
// a malformed import never leaves partially-updated state behind.
func (s *Session) Import(patch model.SnapshotPatch) error {
	if err := validatePatch(patch); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Favorites != nil {
		favs := make([]model.WordProfile, 0, len(*patch.Favorites))
		for _, f := range *patch.Favorites {
			favs = append(favs, f.Clone())
		}
		s.snap.Favorites = favs
	}
	if patch.History != nil {
		history := *patch.History
		if len(history) > syncer.HistoryLimit {
			history = history[:syncer.HistoryLimit]
		}
		s.snap.History = append([]string(nil), history...)
	}
	if patch.Settings != nil {
		s.snap.Settings = *patch.Settings
	}
	if patch.WordCache != nil {
		cache := make(map[string]model.WordProfile, len(*patch.WordCache))
		for k, v := range *patch.WordCache {
			cache[k] = v.Clone()
		}
		s.snap.WordCache = cache
	}
	if patch.StudyStats != nil {
		s.snap.StudyStats = study.CheckStreak(*patch.StudyStats, study.Today(s.now()))
	}

	s.persistLocked()
	return nil
}

func validatePatch(patch model.SnapshotPatch) error {
	if patch.Favorites != nil {
		for i, f := range *patch.Favorites {
			if f.Word == "" {
				return fmt.Errorf("%w: favorites[%d] missing word", ErrImportFormat, i)
			}
		}
	}
	if patch.WordCache != nil {
		for key, p := range *patch.WordCache {
			if key == "" || p.Word == "" {
				return fmt.Errorf("%w: wordCache entry with empty word key", ErrImportFormat)
			}
		}
	}
	if patch.Settings != nil {
		switch patch.Settings.QuizSource {
		case "", model.QuizSourceAll, model.QuizSourceFavorites:
		default:
			return fmt.Errorf("%w: unknown quizSource %q", ErrImportFormat, patch.Settings.QuizSource)
		}
		switch patch.Settings.QuizMode {
		case "", model.QuizModeRandom, model.QuizModeWeakest:
		default:
			return fmt.Errorf("%w: unknown quizMode %q", ErrImportFormat, patch.Settings.QuizMode)
		}
	}
	if patch.StudyStats != nil && patch.StudyStats.StreakDays < 0 {
		return fmt.Errorf("%w: negative streak", ErrImportFormat)
	}
	return nil
}

// Login attaches a cloud identity: the anonymous local dataset and the
// remote copy are merged (the one and only merge), both stores are written
// immediately, and a login event is broadcast so sibling contexts pull the
// merged state.
func (s *Session) Login(ctx context.Context, userID int64) (*model.Snapshot, error) {
	remoteSnap, err := s.remote.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	merged := syncer.MergeOnLogin(s.snap, remoteSnap, study.Today(s.now()))
	s.snap = merged
	s.userID = userID
	if err := s.local.Save(s.clientID, s.snap); err != nil {
		log.Printf("[session] local save failed for %s: %v", s.clientID, err)
	}
	snapCopy := s.snap.Clone()
	s.mu.Unlock()

	if err := s.remote.Save(ctx, userID, snapCopy); err != nil {
		// Best-effort: local state stays authoritative offline.
		log.Printf("[session] remote save on login failed for user %d: %v", userID, err)
	} else if s.bus != nil {
		ev := gateway.Event{Type: gateway.EventLogin, UserID: userID, OriginID: s.originID}
		if err := s.bus.Publish(ctx, ev); err != nil {
			log.Printf("[session] login broadcast failed: %v", err)
		}
	}

	return snapCopy, nil
}

// Logout detaches the identity. The dataset stays usable anonymously.
func (s *Session) Logout(ctx context.Context) {
	s.saver.Flush()

	s.mu.Lock()
	userID := s.userID
	s.userID = 0
	s.mu.Unlock()

	if userID != 0 && s.bus != nil {
		ev := gateway.Event{Type: gateway.EventLogout, UserID: userID, OriginID: s.originID}
		if err := s.bus.Publish(ctx, ev); err != nil {
			log.Printf("[session] logout broadcast failed: %v", err)
		}
	}
}

// Replace swaps in a remote snapshot wholesale. This is the sync path for
// every event after login: no merging, the remote copy wins. The streak is
// re-checked because the remote stats may carry a fresher study date.
func (s *Session) Replace(snap *model.Snapshot) {
	if snap == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = snap.Clone()
	if s.snap.WordCache == nil {
		s.snap.WordCache = map[string]model.WordProfile{}
	}
	s.snap.StudyStats = study.CheckStreak(s.snap.StudyStats, study.Today(s.now()))
	if err := s.local.Save(s.clientID, s.snap); err != nil {
		log.Printf("[session] local save failed for %s: %v", s.clientID, err)
	}
}

// HandleEvent reacts to a broadcast sync event. Events from this context's
// own origin are skipped; for a matching identity the remote snapshot is
// fetched and replaces local state. Duplicate deliveries are harmless
// because Replace is idempotent.
func (s *Session) HandleEvent(ctx context.Context, ev gateway.Event) {
	if ev.OriginID == s.originID {
		return
	}

	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()

	if userID == 0 || ev.UserID != userID {
		return
	}

	switch ev.Type {
	case gateway.EventLogin, gateway.EventRemoteUpdate:
		remoteSnap, err := s.remote.Load(ctx, userID)
		if err != nil {
			log.Printf("[session] sync fetch failed for user %d: %v", userID, err)
			return
		}
		s.Replace(remoteSnap)
	case gateway.EventLogout:
		// Another context logged out; nothing to pull.
	}
}
