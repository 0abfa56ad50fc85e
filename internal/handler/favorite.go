package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grevocab/api/internal/session"
)

type FavoriteHandler struct {
	sessions *session.Manager
}

func NewFavoriteHandler(sessions *session.Manager) *FavoriteHandler {
	return &FavoriteHandler{sessions: sessions}
}

// List returns the favorites in stored order.
func (h *FavoriteHandler) List(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": sess.Favorites()})
}

type AddFavoriteRequest struct {
	Word string `json:"word" binding:"required"`
}

// Add snapshots the word's current profile into favorites. Idempotent.
func (h *FavoriteHandler) Add(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word is required"})
		return
	}

	fav, err := sess.AddFavorite(req.Word)
	if err != nil {
		if errors.Is(err, session.ErrWordNotCached) {
			c.JSON(http.StatusNotFound, gin.H{"error": "word not in dataset", "code": "WORD_NOT_CACHED"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorite": fav})
}

// Remove drops a word from favorites.
func (h *FavoriteHandler) Remove(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	word := c.Param("word")
	if !sess.RemoveFavorite(word) {
		c.JSON(http.StatusNotFound, gin.H{"error": "word not favorited"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": word})
}
