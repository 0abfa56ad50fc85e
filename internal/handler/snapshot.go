package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grevocab/api/internal/middleware"
	"github.com/grevocab/api/internal/model"
	"github.com/grevocab/api/internal/session"
)

type SnapshotHandler struct {
	sessions *session.Manager
}

func NewSnapshotHandler(sessions *session.Manager) *SnapshotHandler {
	return &SnapshotHandler{sessions: sessions}
}

// Get returns the full dataset as an export document.
func (h *SnapshotHandler) Get(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sess.Export())
}

// Import applies an import document. The document is validated as a whole
// before anything changes; a bad document leaves the dataset untouched.
func (h *SnapshotHandler) Import(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	var patch model.SnapshotPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import document", "code": "INVALID_IMPORT"})
		return
	}

	if err := sess.Import(patch); err != nil {
		if errors.Is(err, session.ErrImportFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_IMPORT"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "import applied"})
}

// GetSettings returns the current settings object.
func (h *SnapshotHandler) GetSettings(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sess.Snapshot().Settings)
}

// UpdateSettings replaces the settings object.
func (h *SnapshotHandler) UpdateSettings(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	var settings model.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings"})
		return
	}

	switch settings.QuizSource {
	case "", model.QuizSourceAll, model.QuizSourceFavorites:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown quizSource"})
		return
	}
	switch settings.QuizMode {
	case "", model.QuizModeRandom, model.QuizModeWeakest:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown quizMode"})
		return
	}

	sess.UpdateSettings(settings)
	c.JSON(http.StatusOK, settings)
}

// GetHistory returns the search history, most recent first.
func (h *SnapshotHandler) GetHistory(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": sess.History()})
}

// SyncLogin merges the anonymous local dataset with the authenticated user's
// cloud copy. This is the one and only merge; every later sync replaces
// state wholesale.
func (h *SnapshotHandler) SyncLogin(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	merged, err := sess.Login(c.Request.Context(), userID.(int64))
	if err != nil {
		middleware.RecordSnapshotSync("login", false)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load cloud data"})
		return
	}

	middleware.RecordSnapshotSync("login", true)
	c.JSON(http.StatusOK, merged)
}

// SyncLogout detaches the cloud identity. Local data stays usable.
func (h *SnapshotHandler) SyncLogout(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	sess.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
