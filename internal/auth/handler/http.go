// Package handler exposes the auth flows as an HTTP JSON API under /auth.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-forge/backend/internal/audit"
	"task-forge/backend/internal/auth/service"
	userdomain "task-forge/backend/internal/user/domain"
)

// Cookie names for the two token classes.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Handler serves POST /auth/register, POST /auth/login, and GET /auth/refresh.
type Handler struct {
	auth       *service.AuthService
	auditor    audit.AuditLogger
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewHandler returns a Handler backed by the given auth service.
// auditor may be nil; then no audit events are recorded.
func NewHandler(auth *service.AuthService, auditor audit.AuditLogger, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{auth: auth, auditor: auditor, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Register mounts the auth routes on the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.GET("/refresh", h.refresh)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Bio      string `json:"bio"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userResponse is the user summary returned by register and login.
// The password hash is never serialized.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *userdomain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user format"})
		return
	}
	res, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Bio)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUserInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
		default:
			h.serverError(c, err)
		}
		return
	}
	h.audit(c, res.User.ID, audit.ActionRegisterSuccess, "")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   res.AccessToken,
		"user":    toUserResponse(res.User),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.audit(c, "", audit.ActionLoginFailure, fmt.Sprintf(`{"email":%q}`, req.Email))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.serverError(c, err)
		return
	}
	h.setTokenCookie(c, AccessTokenCookie, res.AccessToken, h.accessTTL)
	h.setTokenCookie(c, RefreshTokenCookie, res.RefreshToken, h.refreshTTL)
	h.audit(c, res.User.ID, audit.ActionLoginSuccess, "")
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"accessToken": res.AccessToken,
		"user":        toUserResponse(res.User),
	})
}

func (h *Handler) refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no refresh token"})
		return
	}
	res, err := h.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoRefreshToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no refresh token"})
		case errors.Is(err, service.ErrInvalidTokenType):
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid token type"})
		case errors.Is(err, service.ErrInvalidRefreshToken):
			c.JSON(http.StatusForbidden, gin.H{"error": "token is either expired or invalid"})
		default:
			h.serverError(c, err)
		}
		return
	}
	// Only the access cookie is refreshed; the refresh cookie and the session
	// row stay as issued at login.
	h.setTokenCookie(c, AccessTokenCookie, res.AccessToken, h.accessTTL)
	h.audit(c, "", audit.ActionTokenRefresh, "")
	c.JSON(http.StatusOK, gin.H{"message": "access token refreshed"})
}

// setTokenCookie sets a token cookie with the hardened flags every token
// cookie carries: HttpOnly, Secure, SameSite=Strict, path "/".
func (h *Handler) setTokenCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", true, true)
}

func (h *Handler) serverError(c *gin.Context, err error) {
	// Internal details stay in the server log; the client gets the generic envelope.
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
}

func (h *Handler) audit(c *gin.Context, userID, action, metadata string) {
	if h.auditor == nil {
		return
	}
	h.auditor.LogEvent(c.Request.Context(), userID, action, c.ClientIP(), metadata)
}
