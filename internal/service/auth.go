package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/runcoach/backend/internal/config"
	"github.com/runcoach/backend/internal/model"
)

const sessionCookieName = "runcoach_session"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrMisconfigured   = errors.New("config invalid")
)

type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

// AuthStore is the persistence surface of the login flow. All lifecycle
// transitions of codes, users and sessions go through it; the service keeps
// no in-process state.
type AuthStore interface {
	ReplaceLoginCode(ctx context.Context, lc model.LoginCode) error
	ConsumeLoginCode(ctx context.Context, email, code string) (bool, error)
	GetOrCreateUserByEmail(ctx context.Context, id, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	InsertSession(ctx context.Context, s model.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
}

// Notifier delivers a freshly issued login code out-of-band.
type Notifier interface {
	SendLoginCode(email, code string, ttl time.Duration) error
}

type AuthService struct {
	store      AuthStore
	notifier   Notifier
	codeTTL    time.Duration
	sessionTTL time.Duration
	cookieCfg  CookieConfig
}

func NewAuthService(store AuthStore, notifier Notifier, cfg config.AuthConfig) (*AuthService, error) {
	codeTTL, err := time.ParseDuration(cfg.CodeTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid LOGIN_CODE_TTL", ErrMisconfigured)
	}

	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SESSION_TTL", ErrMisconfigured)
	}

	cookieSecure, err := parseBool(cfg.CookieSecure, true)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}

	cookieSameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}

	if cookieSameSite == http.SameSiteNoneMode && !cookieSecure {
		return nil, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	cookiePath := cfg.CookiePath
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	return &AuthService{
		store:      store,
		notifier:   notifier,
		codeTTL:    codeTTL,
		sessionTTL: sessionTTL,
		cookieCfg: CookieConfig{
			Name:     sessionCookieName,
			Path:     cookiePath,
			Domain:   cfg.CookieDomain,
			Secure:   cookieSecure,
			SameSite: cookieSameSite,
			MaxAge:   int(sessionTTL.Seconds()),
		},
	}, nil
}

func (s *AuthService) CookieConfig() CookieConfig {
	return s.cookieCfg
}

// RequestLoginCode issues a fresh 6-digit code for the email, replacing any
// pending one, and hands it to the notifier. The email is assumed normalized
// and format-checked by the caller. A delivery failure propagates: the user
// has to know the code may never arrive.
func (s *AuthService) RequestLoginCode(ctx context.Context, email string) (string, time.Time, error) {
	code, err := newLoginCode()
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(s.codeTTL)
	if err := s.store.ReplaceLoginCode(ctx, model.LoginCode{
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}); err != nil {
		return "", time.Time{}, err
	}

	if err := s.notifier.SendLoginCode(email, code, s.codeTTL); err != nil {
		return "", time.Time{}, fmt.Errorf("send login code: %w", err)
	}

	return code, expiresAt, nil
}

// VerifyLoginCode consumes the pending code for the email. It returns
// (nil, nil) when there is no pending code, the code does not match, or it
// has expired; the caller shows one generic failure message for all three.
// On success the user is created lazily on first sight and the code row is
// gone, so the same code can never authenticate twice.
func (s *AuthService) VerifyLoginCode(ctx context.Context, email, code string) (*model.User, error) {
	ok, err := s.store.ConsumeLoginCode(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return s.store.GetOrCreateUserByEmail(ctx, newUserID(), email)
}

// CreateSession issues an opaque bearer token for the user. Only the sha256
// hash of the token is stored.
func (s *AuthService) CreateSession(ctx context.Context, userID string) (string, time.Time, error) {
	token, tokenHash, err := newSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(s.sessionTTL)
	if err := s.store.InsertSession(ctx, model.Session{
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// UserFromSession resolves a session token to its user. It returns (nil, nil)
// for a missing, expired or orphaned session; validation never extends the
// session's lifetime.
func (s *AuthService) UserFromSession(ctx context.Context, token string) (*model.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	sess, err := s.store.GetSessionByTokenHash(ctx, hashSessionToken(token))
	if err != nil {
		return nil, err
	}
	if sess == nil || time.Now().After(sess.ExpiresAt) {
		return nil, nil
	}

	// A session pointing at a deleted user counts as an invalid session,
	// not a server error.
	return s.store.GetUserByID(ctx, sess.UserID)
}

// RequireUser is the hard gate: where UserFromSession reports "none" as a nil
// result, RequireUser turns it into ErrUnauthenticated.
func (s *AuthService) RequireUser(ctx context.Context, token string) (*model.User, error) {
	user, err := s.UserFromSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.store.DeleteSessionByTokenHash(ctx, hashSessionToken(token))
}

// newLoginCode draws a uniform 6-digit code from 100000-999999.
func newLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func newUserID() string {
	return "usr_" + uuid.NewString()
}

func newSessionToken() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	return token, hashSessionToken(token), nil
}

func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseSameSite(value string) (http.SameSite, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return http.SameSiteLaxMode, nil
	}
	switch value {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, ErrInvalidInput
	}
}
