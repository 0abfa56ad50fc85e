package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/grevocab/api/internal/gateway"
	"github.com/grevocab/api/internal/model"
	"github.com/grevocab/api/internal/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLocal struct {
	mu    sync.Mutex
	snaps map[string]*model.Snapshot
	saves int
}

func newMemLocal() *memLocal {
	return &memLocal{snaps: map[string]*model.Snapshot{}}
}

func (m *memLocal) Load(clientID string) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.snaps[clientID]; ok {
		return snap.Clone(), nil
	}
	return nil, nil
}

func (m *memLocal) Save(clientID string, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[clientID] = snap.Clone()
	m.saves++
	return nil
}

type memRemote struct {
	mu    sync.Mutex
	snaps map[int64]*model.Snapshot
	saves int
}

func newMemRemote() *memRemote {
	return &memRemote{snaps: map[int64]*model.Snapshot{}}
}

func (m *memRemote) Load(_ context.Context, userID int64) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.snaps[userID]; ok {
		return snap.Clone(), nil
	}
	return nil, nil
}

func (m *memRemote) Save(_ context.Context, userID int64, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[userID] = snap.Clone()
	m.saves++
	return nil
}

type memBus struct {
	mu     sync.Mutex
	events []gateway.Event
}

func (b *memBus) Publish(_ context.Context, ev gateway.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *memBus) Subscribe(_ context.Context, _ func(gateway.Event)) (func(), error) {
	return func() {}, nil
}

func (b *memBus) published() []gateway.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]gateway.Event(nil), b.events...)
}

func newTestSession(t *testing.T) (*Session, *memLocal, *memRemote, *memBus) {
	t.Helper()
	local := newMemLocal()
	remote := newMemRemote()
	bus := &memBus{}
	s, err := New("client-1", "origin-1", local, remote, bus)
	require.NoError(t, err)
	return s, local, remote, bus
}

func profile(word string) model.WordProfile {
	return model.WordProfile{
		Word:       word,
		Definition: "definition of " + word,
	}
}

func TestNewSessionRunsStreakCheck(t *testing.T) {
	local := newMemLocal()
	yesterday := time.Now().AddDate(0, 0, -1).Format(study.DateLayout)
	local.snaps["client-1"] = &model.Snapshot{
		WordCache:  map[string]model.WordProfile{},
		StudyStats: model.StudyStats{StreakDays: 4, LastStudyDate: yesterday},
	}

	s, err := New("client-1", "origin-1", local, newMemRemote(), nil)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, 5, snap.StudyStats.StreakDays)
	assert.Equal(t, study.Today(time.Now()), snap.StudyStats.LastStudyDate)
}

func TestCacheProfileStampsTimestampOnce(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	s.CacheProfile(profile("laconic"))
	first, ok := s.Lookup("laconic")
	require.True(t, ok)
	require.NotZero(t, first.Timestamp)

	// A later re-fetch keeps the original creation time and stats.
	_, err := s.ApplyStudyAction("laconic", study.ActionCorrect)
	require.NoError(t, err)

	refetched := profile("laconic")
	refetched.Phonetic = "/ləˈkɒnɪk/"
	s.CacheProfile(refetched)

	after, ok := s.Lookup("laconic")
	require.True(t, ok)
	assert.Equal(t, first.Timestamp, after.Timestamp)
	assert.Equal(t, "/ləˈkɒnɪk/", after.Phonetic)
	require.NotNil(t, after.Stats)
	assert.Equal(t, 1, after.Stats.Reviews)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.CacheProfile(profile("Laconic"))

	got, ok := s.Lookup("laconic")
	require.True(t, ok)
	assert.Equal(t, "Laconic", got.Word)

	_, ok = s.Lookup("abstruse")
	assert.False(t, ok)
}

func TestApplyStudyActionDualWrite(t *testing.T) {
	s, local, _, _ := newTestSession(t)
	s.CacheProfile(profile("laconic"))
	_, err := s.AddFavorite("laconic")
	require.NoError(t, err)

	stats, err := s.ApplyStudyAction("laconic", study.ActionCorrect)
	require.NoError(t, err)
	assert.Equal(t, 15, stats.MasteryScore)

	snap := s.Snapshot()
	cached := snap.WordCache["laconic"]
	require.NotNil(t, cached.Stats)
	require.Len(t, snap.Favorites, 1)
	require.NotNil(t, snap.Favorites[0].Stats)
	assert.Equal(t, *cached.Stats, *snap.Favorites[0].Stats)

	// The persisted copy upholds the same invariant.
	persisted, err := local.Load("client-1")
	require.NoError(t, err)
	assert.Equal(t, *persisted.WordCache["laconic"].Stats, *persisted.Favorites[0].Stats)
}

func TestApplyStudyActionRollsStreak(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.CacheProfile(profile("laconic"))

	before := s.Snapshot().StudyStats
	_, err := s.ApplyStudyAction("laconic", study.ActionReview)
	require.NoError(t, err)
	after := s.Snapshot().StudyStats

	// Session start already rolled the streak today; the action is
	// same-day and must not double-count.
	assert.Equal(t, before, after)
}

func TestApplyStudyActionUnknownWord(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	_, err := s.ApplyStudyAction("nonesuch", study.ActionReview)
	assert.ErrorIs(t, err, ErrWordNotCached)
}

func TestAddFavoriteIdempotentAndIsolated(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.CacheProfile(profile("laconic"))

	first, err := s.AddFavorite("laconic")
	require.NoError(t, err)
	second, err := s.AddFavorite("laconic")
	require.NoError(t, err)
	assert.Equal(t, first.Word, second.Word)
	assert.Len(t, s.Favorites(), 1)

	// Mutating the returned copy never leaks into session state.
	favs := s.Favorites()
	favs[0].Definition = "tampered"
	assert.Equal(t, "definition of laconic", s.Favorites()[0].Definition)
}

func TestRemoveFavorite(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.CacheProfile(profile("laconic"))
	_, err := s.AddFavorite("laconic")
	require.NoError(t, err)

	assert.True(t, s.RemoveFavorite("LACONIC"))
	assert.Empty(t, s.Favorites())
	assert.False(t, s.RemoveFavorite("laconic"))
}

func TestStaleLookupDiscarded(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	first := s.BeginLookup("laconic")
	second := s.BeginLookup("abstruse")

	// The slow first fetch completes after being superseded.
	assert.False(t, s.CompleteLookup(first, profile("laconic")))
	_, ok := s.Lookup("laconic")
	assert.False(t, ok)

	assert.True(t, s.CompleteLookup(second, profile("abstruse")))
	_, ok = s.Lookup("abstruse")
	assert.True(t, ok)
}

func TestPushHistoryDedupeAndCap(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	for i := 0; i < 25; i++ {
		s.PushHistory("word" + string(rune('a'+i)))
	}
	history := s.History()
	assert.Len(t, history, 20)
	assert.Equal(t, "wordy", history[0])

	// Re-searching an old term moves it to the front without duplication.
	s.PushHistory("WORDY")
	history = s.History()
	assert.Equal(t, "WORDY", history[0])
	assert.Len(t, history, 20)
}

func TestImportValidatesBeforeApplying(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.CacheProfile(profile("laconic"))

	badFavs := []model.WordProfile{{Definition: "missing word key"}}
	err := s.Import(model.SnapshotPatch{Favorites: &badFavs})
	assert.ErrorIs(t, err, ErrImportFormat)

	// Nothing was applied.
	assert.Empty(t, s.Favorites())
	_, ok := s.Lookup("laconic")
	assert.True(t, ok)
}

func TestImportAppliesOnlyPresentFields(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.CacheProfile(profile("laconic"))
	s.PushHistory("laconic")

	history := []string{"abstruse"}
	err := s.Import(model.SnapshotPatch{History: &history})
	require.NoError(t, err)

	assert.Equal(t, []string{"abstruse"}, s.History())
	// Word cache untouched by a history-only import.
	_, ok := s.Lookup("laconic")
	assert.True(t, ok)
}

func TestExportImportRoundTrip(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.CacheProfile(profile("laconic"))
	_, err := s.AddFavorite("laconic")
	require.NoError(t, err)
	s.PushHistory("laconic")

	doc := s.Export()

	other, _, _, _ := newTestSession(t)
	patch := model.SnapshotPatch{
		Favorites:  &doc.Favorites,
		History:    &doc.History,
		Settings:   &doc.Settings,
		WordCache:  &doc.WordCache,
		StudyStats: &doc.StudyStats,
	}
	require.NoError(t, other.Import(patch))

	restored := other.Export()
	assert.Equal(t, doc.History, restored.History)
	assert.Len(t, restored.Favorites, 1)
	assert.Contains(t, restored.WordCache, "laconic")
}

func TestLoginMergesOnceAndBroadcasts(t *testing.T) {
	s, local, remote, bus := newTestSession(t)
	s.CacheProfile(profile("laconic"))
	_, err := s.AddFavorite("laconic")
	require.NoError(t, err)

	cloud := model.NewSnapshot()
	cloud.Favorites = []model.WordProfile{profile("abstruse")}
	cloud.WordCache["abstruse"] = profile("abstruse")
	remote.snaps[42] = cloud

	merged, err := s.Login(context.Background(), 42)
	require.NoError(t, err)

	assert.Len(t, merged.Favorites, 2)
	assert.Equal(t, int64(42), s.UserID())

	// Both stores were written immediately, and a login event went out.
	persisted, err := local.Load("client-1")
	require.NoError(t, err)
	assert.Len(t, persisted.Favorites, 2)
	assert.Len(t, remote.snaps[42].Favorites, 2)

	events := bus.published()
	require.Len(t, events, 1)
	assert.Equal(t, gateway.EventLogin, events[0].Type)
	assert.Equal(t, "origin-1", events[0].OriginID)
}

func TestReplaceIsWholesaleNotMerge(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.CacheProfile(profile("laconic"))
	_, err := s.AddFavorite("laconic")
	require.NoError(t, err)

	incoming := model.NewSnapshot()
	incoming.Favorites = []model.WordProfile{profile("abstruse")}
	incoming.WordCache["abstruse"] = profile("abstruse")

	s.Replace(incoming)

	snap := s.Snapshot()
	// No merging: the local-only favorite is gone.
	require.Len(t, snap.Favorites, 1)
	assert.Equal(t, "abstruse", snap.Favorites[0].Word)
	_, ok := s.Lookup("laconic")
	assert.False(t, ok)
}

func TestHandleEventSkipsOwnOrigin(t *testing.T) {
	s, _, remote, _ := newTestSession(t)
	_, err := s.Login(context.Background(), 42)
	require.NoError(t, err)

	s.CacheProfile(profile("laconic"))

	cloud := model.NewSnapshot()
	cloud.WordCache["abstruse"] = profile("abstruse")
	remote.snaps[42] = cloud

	// Own origin: ignored, local state stays.
	s.HandleEvent(context.Background(), gateway.Event{
		Type: gateway.EventRemoteUpdate, UserID: 42, OriginID: "origin-1",
	})
	_, ok := s.Lookup("laconic")
	assert.True(t, ok)

	// Sibling origin: remote snapshot replaces local state.
	s.HandleEvent(context.Background(), gateway.Event{
		Type: gateway.EventRemoteUpdate, UserID: 42, OriginID: "origin-2",
	})
	_, ok = s.Lookup("laconic")
	assert.False(t, ok)
	_, ok = s.Lookup("abstruse")
	assert.True(t, ok)
}

func TestHandleEventIgnoresOtherUsers(t *testing.T) {
	s, _, remote, _ := newTestSession(t)
	_, err := s.Login(context.Background(), 42)
	require.NoError(t, err)
	s.CacheProfile(profile("laconic"))

	remote.snaps[99] = model.NewSnapshot()
	s.HandleEvent(context.Background(), gateway.Event{
		Type: gateway.EventRemoteUpdate, UserID: 99, OriginID: "origin-2",
	})

	_, ok := s.Lookup("laconic")
	assert.True(t, ok)
}

func TestLogoutDetachesIdentity(t *testing.T) {
	s, _, remote, bus := newTestSession(t)
	_, err := s.Login(context.Background(), 42)
	require.NoError(t, err)
	saves := remote.saves

	s.Logout(context.Background())
	assert.Equal(t, int64(0), s.UserID())

	// Mutations after logout stay local only.
	s.CacheProfile(profile("laconic"))
	s.Flush()
	assert.Equal(t, saves, remote.saves)

	events := bus.published()
	assert.Equal(t, gateway.EventLogout, events[len(events)-1].Type)
}

func TestDebouncedRemoteSaveAfterLogin(t *testing.T) {
	s, _, remote, _ := newTestSession(t)
	_, err := s.Login(context.Background(), 42)
	require.NoError(t, err)
	saves := remote.saves

	s.CacheProfile(profile("laconic"))
	// The remote write is debounced; flushing forces it now.
	s.Flush()

	assert.Equal(t, saves+1, remote.saves)
	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Contains(t, remote.snaps[42].WordCache, "laconic")
}
