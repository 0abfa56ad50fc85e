package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grevocab/api/internal/cache"
	"github.com/grevocab/api/internal/client"
	"github.com/grevocab/api/internal/config"
	"github.com/grevocab/api/internal/filter"
	"github.com/grevocab/api/internal/middleware"
	"github.com/grevocab/api/internal/model"
	"github.com/grevocab/api/internal/session"
	"github.com/grevocab/api/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WordHandler struct {
	db            *gorm.DB
	cache         *cache.RedisCache
	llmClient     *client.LLMClient
	wordValidator *validator.WordValidator
	sessions      *session.Manager
}

func NewWordHandler(db *gorm.DB, redisCache *cache.RedisCache, cfg *config.Config, wordValidator *validator.WordValidator, sessions *session.Manager) *WordHandler {
	return &WordHandler{
		db:            db,
		cache:         redisCache,
		llmClient:     client.NewLLMClient(cfg.LLMProxyURL),
		wordValidator: wordValidator,
		sessions:      sessions,
	}
}

type SearchRequest struct {
	Word string `json:"word" binding:"required"`
}

// Search resolves a word profile through the tiers: the caller's session
// store, then Redis, then Postgres, then the LLM proxy. A slow LLM fetch
// that loses the race to a newer search still returns its profile, but the
// session discards it (superseded=true).
func (h *WordHandler) Search(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word is required"})
		return
	}

	term := strings.TrimSpace(req.Word)
	if term == "" || term == "-" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search term", "code": "INVALID_SEARCH_TERM"})
		return
	}

	// Tier 0: the session's own word store.
	if profile, hit := sess.Lookup(term); hit {
		sess.PushHistory(profile.Word)
		middleware.RecordWordSearch(true)
		c.JSON(http.StatusOK, gin.H{"profile": profile, "source": "session", "superseded": false})
		return
	}

	token := sess.BeginLookup(term)

	profile, source, err := h.fetchProfile(c.Request.Context(), term)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "word not found", "code": "WORD_NOT_FOUND", "word": term})
			return
		}
		if errors.Is(err, errInvalidWord) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid word", "code": "INVALID_WORD", "word": term})
			return
		}
		log.Printf("[word] lookup failed for %q: %v", term, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "lookup failed", "code": "LOOKUP_FAILED"})
		return
	}

	stored := sess.CompleteLookup(token, *profile)
	if stored {
		sess.PushHistory(profile.Word)
	}
	middleware.RecordWordSearch(source != "llm")

	c.JSON(http.StatusOK, gin.H{"profile": profile, "source": source, "superseded": !stored})
}

var errInvalidWord = errors.New("not a recognized English word")

// fetchProfile walks the shared tiers: Redis, Postgres, LLM. Profiles
// fetched from the LLM are written back to both shared tiers.
func (h *WordHandler) fetchProfile(ctx context.Context, term string) (*model.WordProfile, string, error) {
	key := cache.ProfileKey(term)

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, key); err == nil {
			var profile model.WordProfile
			if err := json.Unmarshal(cached, &profile); err == nil {
				return &profile, "redis", nil
			}
		}
	}

	var row model.Word
	err := h.db.WithContext(ctx).
		Where("LOWER(word) = LOWER(?)", term).
		First(&row).Error
	if err == nil {
		var profile model.WordProfile
		if jsonErr := json.Unmarshal(row.Profile, &profile); jsonErr == nil {
			h.cacheSet(ctx, key, &profile)
			return &profile, "postgres", nil
		}
		log.Printf("[word] corrupt profile row for %q, refetching", row.Word)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	if h.wordValidator != nil {
		valid, err := h.wordValidator.IsValidWord(term)
		if err != nil {
			log.Printf("[word] validation error for %q: %v", term, err)
		}
		if !valid {
			return nil, "", errInvalidWord
		}
	}

	start := time.Now()
	profile, err := h.llmClient.FetchWordProfile(ctx, term)
	middleware.RecordLLMProxyCall(err == nil, time.Since(start))
	if err != nil {
		return nil, "", err
	}

	profile.Cognates = filter.FilterCognates(profile.Word, profile.Cognates)

	if err := h.saveProfile(ctx, profile); err != nil {
		// The caller still gets the profile; only the shared store missed it.
		log.Printf("[word] failed to persist %q: %v", profile.Word, err)
	}

	h.cacheSet(ctx, cache.ProfileKey(profile.Word), profile)
	if profile.WasCorrected {
		// Repeat misspellings should hit Redis under the misspelled key too.
		h.cacheSet(ctx, key, profile)
	}

	return profile, "llm", nil
}

func (h *WordHandler) cacheSet(ctx context.Context, key string, profile *model.WordProfile) {
	if h.cache == nil {
		return
	}
	if data, err := json.Marshal(profile); err == nil {
		if err := h.cache.Set(ctx, key, data); err != nil {
			log.Printf("[word] redis set failed for %s: %v", key, err)
		}
	}
}

func (h *WordHandler) saveProfile(ctx context.Context, profile *model.WordProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	row := model.Word{
		Word:    strings.ToLower(profile.Word),
		Profile: datatypes.JSON(data),
	}
	return h.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "word"}},
		DoUpdates: clause.AssignmentColumns([]string{"profile", "updated_at"}),
	}).Create(&row).Error
}

type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

const maxAnalyzeLength = 5000

// Analyze extracts GRE-level vocabulary from a passage.
func (h *WordHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	if len(text) > maxAnalyzeLength {
		text = text[:maxAnalyzeLength]
	}

	start := time.Now()
	words, err := h.llmClient.AnalyzeText(c.Request.Context(), text)
	middleware.RecordLLMProxyCall(err == nil, time.Since(start))
	if err != nil {
		log.Printf("[word] analyze failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed", "code": "ANALYZE_FAILED"})
		return
	}

	if words == nil {
		words = []client.AnalyzedWord{}
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

// Suggest asks the LLM for a random GRE word the caller has not met yet.
// The exclude list is the caller's cached words, capped to keep the prompt
// small.
func (h *WordHandler) Suggest(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	const maxExclude = 100
	exclude := make([]string, 0, maxExclude)
	for word := range sess.Snapshot().WordCache {
		exclude = append(exclude, strings.ToLower(word))
		if len(exclude) == maxExclude {
			break
		}
	}

	start := time.Now()
	word, err := h.llmClient.SuggestWord(c.Request.Context(), exclude)
	middleware.RecordLLMProxyCall(err == nil, time.Since(start))
	if err != nil {
		log.Printf("[word] suggest failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "suggestion failed", "code": "SUGGEST_FAILED"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"word": word})
}

// Exists checks the word against the local dictionary without calling the
// LLM, for cheap client-side validation.
func (h *WordHandler) Exists(c *gin.Context) {
	word := strings.ToLower(strings.TrimSpace(c.Param("word")))
	if word == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": h.wordValidator.IsInLocalDict(word)})
}
