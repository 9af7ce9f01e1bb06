package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/runcoach/backend/internal/model"
	"github.com/runcoach/backend/internal/service"
)

var (
	emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	codeRx  = regexp.MustCompile(`^\d{6}$`)
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RequestCode godoc
// @Summary Request a login code
// @Description Emails a 6-digit one-time code to the address.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RequestCodeRequest true "Email address"
// @Success 202 {object} model.RequestCodeResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/request-code [post]
func (h *AuthHandler) RequestCode(c *gin.Context) {
	var req model.RequestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	_, expiresAt, err := h.svc.RequestLoginCode(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send login code"})
		return
	}

	c.JSON(http.StatusAccepted, model.RequestCodeResponse{Status: "sent", ExpiresAt: expiresAt})
}

// Verify godoc
// @Summary Verify a login code
// @Description Exchanges the emailed code for a session cookie. The response
// @Description is the same for unknown emails, wrong codes and expired codes.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.VerifyCodeRequest true "Email and code"
// @Success 200 {object} model.AuthMeResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req model.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	code := strings.TrimSpace(req.Code)
	if !codeRx.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code format"})
		return
	}

	user, err := h.svc.VerifyLoginCode(c.Request.Context(), email, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if user == nil {
		// One message for all failure causes, so valid emails cannot be
		// enumerated from the response.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong or expired code"})
		return
	}

	token, _, err := h.svc.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, model.AuthMeResponse{UserID: user.ID, Email: user.Email})
}

// Logout godoc
// @Summary Sign out
// @Description Deletes the session (if any) and clears the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} model.StatusResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.svc.CookieConfig().Name)
	_ = h.svc.Logout(c.Request.Context(), token)
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, model.StatusResponse{Status: "logged_out"})
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} model.AuthMeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, model.AuthMeResponse{UserID: user.ID, Email: user.Email})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	cfg := h.svc.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, token, cfg.MaxAge, cfg.Path, cfg.Domain, cfg.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	cfg := h.svc.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, "", -1, cfg.Path, cfg.Domain, cfg.Secure, true)
}

func normalizeEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRx.MatchString(email) {
		return "", false
	}
	return email, true
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrMisconfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feature not configured"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
