package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/runcoach/backend/internal/config"
	"github.com/runcoach/backend/internal/model"
	"github.com/runcoach/backend/internal/template"
)

const linkTokenTTL = 15 * time.Minute

type LinkStore interface {
	UpsertTelegramLink(ctx context.Context, chatID int64, userID string) error
	GetTelegramLink(ctx context.Context, chatID int64) (*model.TelegramLink, error)
}

type BotClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type VisionClient interface {
	ParseWorkoutImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

type TelegramService struct {
	links         LinkStore
	bot           BotClient
	vision        VisionClient
	workouts      *WorkoutService
	linkSecret    []byte
	botUsername   string
	webhookSecret string
}

func NewTelegramService(links LinkStore, bot BotClient, vision VisionClient, workouts *WorkoutService, cfg config.TelegramConfig, linkSecret string) *TelegramService {
	return &TelegramService{
		links:         links,
		bot:           bot,
		vision:        vision,
		workouts:      workouts,
		linkSecret:    []byte(linkSecret),
		botUsername:   cfg.BotUsername,
		webhookSecret: cfg.WebhookSecret,
	}
}

// CreateLinkToken issues a short-lived signed token binding the web account
// to whichever chat sends it back via /start, wrapped in a t.me deep link.
func (s *TelegramService) CreateLinkToken(userID string) (string, time.Time, error) {
	if len(s.linkSecret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: LINK_TOKEN_SECRET is not set", ErrMisconfigured)
	}
	if s.botUsername == "" {
		return "", time.Time{}, fmt.Errorf("%w: TELEGRAM_BOT_USERNAME is not set", ErrMisconfigured)
	}

	now := time.Now()
	expiresAt := now.Add(linkTokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.linkSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, token), expiresAt, nil
}

func (s *TelegramService) parseLinkToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.linkSecret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid link token")
	}
	return claims.Subject, nil
}

// VerifyWebhookSecret checks the X-Telegram-Bot-Api-Secret-Token header.
func (s *TelegramService) VerifyWebhookSecret(header string) bool {
	if s.webhookSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(s.webhookSecret)) == 1
}

// HandleUpdate dispatches one webhook update. Replies are best-effort; any
// error is logged and swallowed so Telegram never retries the update.
func (s *TelegramService) HandleUpdate(ctx context.Context, update model.TelegramUpdate) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	switch {
	case strings.HasPrefix(msg.Text, "/start"):
		s.handleStart(ctx, chatID, msg.Text)
	case len(msg.Photo) > 0:
		s.handlePhoto(ctx, chatID, msg.Photo)
	default:
		s.reply(ctx, chatID, "Send me a screenshot of a finished run and I'll add it to your calendar. Use the link from the web app to connect your account.")
	}
}

func (s *TelegramService) handleStart(ctx context.Context, chatID int64, text string) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		s.reply(ctx, chatID, "Open the web app and use \"Connect Telegram\" to get a link for this chat.")
		return
	}

	userID, err := s.parseLinkToken(fields[1])
	if err != nil {
		s.reply(ctx, chatID, "That link is invalid or has expired. Get a fresh one from the web app.")
		return
	}

	if err := s.links.UpsertTelegramLink(ctx, chatID, userID); err != nil {
		log.Printf("telegram: linking chat %d failed: %v", chatID, err)
		s.reply(ctx, chatID, "Something went wrong, please try again.")
		return
	}

	s.reply(ctx, chatID, "Account connected. Send me workout screenshots and I'll log them for you.")
}

func (s *TelegramService) handlePhoto(ctx context.Context, chatID int64, photos []model.TelegramPhotoSize) {
	// The vision client is absent when no AI key is configured; reply instead
	// of touching it.
	if s.vision == nil {
		s.reply(ctx, chatID, "I couldn't read a workout from that screenshot.")
		return
	}

	link, err := s.links.GetTelegramLink(ctx, chatID)
	if err != nil {
		log.Printf("telegram: link lookup for chat %d failed: %v", chatID, err)
		return
	}
	if link == nil {
		s.reply(ctx, chatID, "This chat is not connected yet. Use the link from the web app first.")
		return
	}

	// Telegram orders photo sizes ascending; the last one is the original.
	fileID := photos[len(photos)-1].FileID
	image, err := s.bot.DownloadFile(ctx, fileID)
	if err != nil {
		log.Printf("telegram: downloading photo for chat %d failed: %v", chatID, err)
		s.reply(ctx, chatID, "I couldn't download that photo, please try again.")
		return
	}

	raw, err := s.vision.ParseWorkoutImage(ctx, image, "image/jpeg", template.WorkoutParsePrompt())
	if err != nil {
		log.Printf("telegram: parsing photo for chat %d failed: %v", chatID, err)
		s.reply(ctx, chatID, "I couldn't read a workout from that screenshot.")
		return
	}

	var parsed model.ParsedWorkout
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed.Kind == "" {
		s.reply(ctx, chatID, "I couldn't read a workout from that screenshot.")
		return
	}

	w, err := s.workouts.RecordCompleted(ctx, link.UserID, model.WorkoutSourceTelegram, parsed)
	if err != nil {
		log.Printf("telegram: recording workout for chat %d failed: %v", chatID, err)
		s.reply(ctx, chatID, "Something went wrong saving that workout.")
		return
	}

	s.reply(ctx, chatID, fmt.Sprintf("Logged: %s on %s. Nice run!", w.Title, w.ScheduledOn.Format("Jan 2")))
}

func (s *TelegramService) reply(ctx context.Context, chatID int64, text string) {
	if err := s.bot.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("telegram: reply to chat %d failed: %v", chatID, err)
	}
}
