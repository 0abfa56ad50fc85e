package model

// Quiz settings values read by the core. Stored lowercase in snapshots.
const (
	QuizSourceAll       = "all"
	QuizSourceFavorites = "favorites"

	QuizModeRandom  = "random"
	QuizModeWeakest = "weakest"
)

// Settings is the user configuration object. The core reads the quiz fields
// and the learning goal; display fields ride along untouched.
type Settings struct {
	QuizSource        string `json:"quizSource"`
	QuizMode          string `json:"quizMode"`
	QuizQuestionCount int    `json:"quizQuestionCount"`
	LearningGoal      int    `json:"learningGoal"`

	Theme        string `json:"theme,omitempty"`
	AutoPlayTTS  bool   `json:"autoPlayTts,omitempty"`
	ShowPhonetic bool   `json:"showPhonetic,omitempty"`
}

// DefaultSettings returns the configuration a fresh dataset starts with.
func DefaultSettings() Settings {
	return Settings{
		QuizSource:        QuizSourceAll,
		QuizMode:          QuizModeRandom,
		QuizQuestionCount: 10,
		LearningGoal:      20,
		Theme:             "light",
		ShowPhonetic:      true,
	}
}

// Snapshot is the complete serializable user dataset: word cache, favorites,
// search history, settings and study stats. It is the unit of local and
// remote persistence, of import/export, and of cross-context sync.
type Snapshot struct {
	Favorites  []WordProfile          `json:"favorites"`
	History    []string               `json:"history"`
	Settings   Settings               `json:"settings"`
	WordCache  map[string]WordProfile `json:"wordCache"`
	StudyStats StudyStats             `json:"studyStats"`
}

// NewSnapshot returns an empty dataset with defaults applied.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Favorites: []WordProfile{},
		History:   []string{},
		Settings:  DefaultSettings(),
		WordCache: map[string]WordProfile{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Favorites:  make([]WordProfile, 0, len(s.Favorites)),
		History:    append([]string(nil), s.History...),
		Settings:   s.Settings,
		WordCache:  make(map[string]WordProfile, len(s.WordCache)),
		StudyStats: s.StudyStats,
	}
	for _, f := range s.Favorites {
		out.Favorites = append(out.Favorites, f.Clone())
	}
	for k, v := range s.WordCache {
		out.WordCache[k] = v.Clone()
	}
	if out.History == nil {
		out.History = []string{}
	}
	return out
}

// SnapshotPatch is the import payload. Each field is optional; only the
// fields present in the document are applied, the rest stay unchanged.
type SnapshotPatch struct {
	Favorites  *[]WordProfile          `json:"favorites"`
	History    *[]string               `json:"history"`
	Settings   *Settings               `json:"settings"`
	WordCache  *map[string]WordProfile `json:"wordCache"`
	StudyStats *StudyStats             `json:"studyStats"`
}
