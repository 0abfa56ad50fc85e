package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grevocab/api/internal/middleware"
	"github.com/grevocab/api/internal/session"
	"github.com/grevocab/api/internal/study"
)

type StudyHandler struct {
	sessions *session.Manager
}

func NewStudyHandler(sessions *session.Manager) *StudyHandler {
	return &StudyHandler{sessions: sessions}
}

type StudyActionRequest struct {
	Word   string `json:"word" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// Action applies one mastery-affecting action (review, correct, incorrect)
// to a word and returns its updated stats.
func (h *StudyHandler) Action(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	var req StudyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word and action are required"})
		return
	}

	action, ok := study.ParseAction(req.Action)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action", "code": "INVALID_ACTION"})
		return
	}

	stats, err := sess.ApplyStudyAction(req.Word, action)
	if err != nil {
		if errors.Is(err, session.ErrWordNotCached) {
			c.JSON(http.StatusNotFound, gin.H{"error": "word not in dataset", "code": "WORD_NOT_CACHED"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply action"})
		return
	}

	middleware.RecordStudyAction(string(action))
	c.JSON(http.StatusOK, gin.H{"word": req.Word, "stats": stats})
}

// Candidate returns the review pick shown while a lookup is in flight.
// Viewing a candidate is not a review; no stats change here.
func (h *StudyHandler) Candidate(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	pick := sess.ReviewCandidate()
	c.JSON(http.StatusOK, gin.H{"candidate": pick})
}

// Quiz builds a quiz from the current settings. An empty question list means
// the source pool was too small, which the client renders as a hint, not an
// error.
func (h *StudyHandler) Quiz(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	questions := sess.BuildQuiz()
	if questions == nil {
		questions = []study.Question{}
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// Stats returns the aggregate study overview.
func (h *StudyHandler) Stats(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sess.Stats())
}
