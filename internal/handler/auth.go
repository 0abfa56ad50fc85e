package handler

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grevocab/api/internal/auth"
	"github.com/grevocab/api/internal/model"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db           *gorm.DB
	jwtSecret    string
	googleConfig *oauth2.Config
	frontendURL  string
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, googleConfig *oauth2.Config, frontendURL string) *AuthHandler {
	return &AuthHandler{
		db:           db,
		jwtSecret:    jwtSecret,
		googleConfig: googleConfig,
		frontendURL:  frontendURL,
	}
}

// GoogleAuth redirects to the Google OAuth authorization URL.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	state := generateState()
	// Store state in cookie for CSRF protection
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)

	url := h.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback completes the OAuth exchange and hands the tokens to the
// frontend. Authentication alone does not touch study data; the client is
// expected to follow up with POST /api/sync/login, which is where the
// local/cloud dataset merge happens.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	savedState, err := c.Cookie("oauth_state")
	if err != nil || state != savedState {
		c.Redirect(http.StatusTemporaryRedirect, errorRedirectURL(h.frontendURL, "invalid_state"))
		return
	}
	c.SetCookie("oauth_state", "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, errorRedirectURL(h.frontendURL, "no_code"))
		return
	}

	token, err := h.googleConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Printf("[auth] code exchange failed: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, errorRedirectURL(h.frontendURL, "exchange_failed"))
		return
	}

	userInfo, err := auth.GetGoogleUserInfo(c.Request.Context(), token)
	if err != nil {
		log.Printf("[auth] userinfo fetch failed: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, errorRedirectURL(h.frontendURL, "user_info_failed"))
		return
	}

	user, err := h.findOrCreateUser(userInfo)
	if err != nil {
		log.Printf("[auth] user upsert failed: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, errorRedirectURL(h.frontendURL, "db_error"))
		return
	}

	accessToken, refreshToken, err := h.issueTokens(user)
	if err != nil {
		log.Printf("[auth] token issue failed: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, errorRedirectURL(h.frontendURL, "token_failed"))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, callbackRedirectURL(h.frontendURL, accessToken, refreshToken))
}

// findOrCreateUser upserts the Google account into the users table.
func (h *AuthHandler) findOrCreateUser(info *auth.GoogleUserInfo) (*model.User, error) {
	var user model.User
	result := h.db.Where("provider = ? AND provider_id = ?", "google", info.ID).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		user = model.User{
			Provider:   "google",
			ProviderID: info.ID,
			Email:      info.Email,
			Name:       info.Name,
			AvatarURL:  info.Picture,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := h.db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	// Refresh the profile fields Google may have changed.
	h.db.Model(&user).Updates(map[string]interface{}{
		"email":      info.Email,
		"name":       info.Name,
		"avatar_url": info.Picture,
		"updated_at": time.Now(),
	})
	return &user, nil
}

// issueTokens mints an access token and stores a fresh refresh token.
func (h *AuthHandler) issueTokens(user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = auth.GenerateAccessToken(user, h.jwtSecret)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = auth.GenerateRefreshToken()
	if err != nil {
		return "", "", err
	}

	row := model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(auth.RefreshTokenExpiry),
		CreatedAt: time.Now(),
	}
	if err := h.db.Create(&row).Error; err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// callbackRedirectURL carries the tokens to the frontend in the URL
// fragment, so they never appear in access logs or Referer headers, and
// tells it the next step is the sync-login merge.
func callbackRedirectURL(frontendURL, accessToken, refreshToken string) string {
	fragment := url.Values{}
	fragment.Set("accessToken", accessToken)
	fragment.Set("refreshToken", refreshToken)
	fragment.Set("next", "sync-login")
	return frontendURL + "/auth/callback#" + fragment.Encode()
}

func errorRedirectURL(frontendURL, code string) string {
	return frontendURL + "/auth/callback?error=" + url.QueryEscape(code)
}

// RefreshToken exchanges a refresh token for a new access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	var refreshToken model.RefreshToken
	result := h.db.Where("token = ? AND revoked = false AND expires_at > ?", req.RefreshToken, time.Now()).First(&refreshToken)
	if result.Error != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}

	var user model.User
	if err := h.db.First(&user, refreshToken.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	accessToken, err := auth.GenerateAccessToken(&user, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"expiresIn":   int(auth.AccessTokenExpiry.Seconds()),
	})
}

// Logout revokes the refresh token. Detaching the study session from the
// identity is separate (POST /api/sync/logout).
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	h.db.Model(&model.RefreshToken{}).Where("token = ?", req.RefreshToken).Update("revoked", true)

	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
