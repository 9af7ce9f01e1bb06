package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runcoach/backend/internal/model"
)

const webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type telegramService interface {
	CreateLinkToken(userID string) (string, time.Time, error)
	VerifyWebhookSecret(header string) bool
	HandleUpdate(ctx context.Context, update model.TelegramUpdate)
}

type TelegramHandler struct {
	svc telegramService
}

func NewTelegramHandler(svc telegramService) *TelegramHandler {
	return &TelegramHandler{svc: svc}
}

// CreateLink godoc
// @Summary Get a Telegram deep link for this account
// @Description The link opens the bot with a short-lived token; sending it
// @Description binds the chat to the current user.
// @Tags telegram
// @Produce json
// @Success 200 {object} model.TelegramLinkResponse
// @Failure 401,503 {object} model.ErrorResponse
// @Router /api/v1/telegram/link [post]
func (h *TelegramHandler) CreateLink(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	deepLink, expiresAt, err := h.svc.CreateLinkToken(user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TelegramLinkResponse{DeepLink: deepLink, ExpiresAt: expiresAt})
}

// Webhook godoc
// @Summary Telegram webhook endpoint
// @Description Validated via the X-Telegram-Bot-Api-Secret-Token header.
// @Description Always answers 200 for valid callers so Telegram does not
// @Description retry updates that failed downstream.
// @Tags telegram
// @Accept json
// @Produce json
// @Success 200 {object} model.StatusResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/telegram/webhook [post]
func (h *TelegramHandler) Webhook(c *gin.Context) {
	if !h.svc.VerifyWebhookSecret(c.GetHeader(webhookSecretHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var update model.TelegramUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		// Unparseable updates are acknowledged too; retrying cannot fix them.
		c.JSON(http.StatusOK, model.StatusResponse{Status: "ignored"})
		return
	}

	h.svc.HandleUpdate(c.Request.Context(), update)
	c.JSON(http.StatusOK, model.StatusResponse{Status: "ok"})
}
