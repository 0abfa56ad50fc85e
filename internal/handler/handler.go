package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grevocab/api/internal/session"
)

const clientIDHeader = "X-Client-ID"

// clientSession resolves the caller's session from the client ID header.
// Each browser/device context carries its own stable ID; requests without
// one share the "default" dataset.
func clientSession(c *gin.Context, m *session.Manager) (*session.Session, bool) {
	clientID := c.GetHeader(clientIDHeader)
	if clientID == "" {
		clientID = c.Query("clientId")
	}
	if clientID == "" {
		clientID = "default"
	}

	s, err := m.Session(clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return nil, false
	}
	return s, true
}
