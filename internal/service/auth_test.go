package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/runcoach/backend/internal/config"
	"github.com/runcoach/backend/internal/model"
)

type fakeAuthStore struct {
	mu           sync.Mutex
	codes        map[string]model.LoginCode
	usersByEmail map[string]model.User
	sessions     map[string]model.Session
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{
		codes:        make(map[string]model.LoginCode),
		usersByEmail: make(map[string]model.User),
		sessions:     make(map[string]model.Session),
	}
}

func (f *fakeAuthStore) ReplaceLoginCode(ctx context.Context, lc model.LoginCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[lc.Email] = lc
	return nil
}

func (f *fakeAuthStore) ConsumeLoginCode(ctx context.Context, email, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lc, ok := f.codes[email]
	if !ok || lc.Code != code || !lc.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	delete(f.codes, email)
	return true, nil
}

func (f *fakeAuthStore) GetOrCreateUserByEmail(ctx context.Context, id, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.usersByEmail[email]; ok {
		return &u, nil
	}
	u := model.User{ID: id, Email: email, CreatedAt: time.Now()}
	f.usersByEmail[email] = u
	return &u, nil
}

func (f *fakeAuthStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.usersByEmail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeAuthStore) InsertSession(ctx context.Context, s model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.TokenHash] = s
	return nil
}

func (f *fakeAuthStore) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[tokenHash]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeAuthStore) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, tokenHash)
	return nil
}

type fakeNotifier struct {
	sent []string
	fail bool
}

func (f *fakeNotifier) SendLoginCode(email, code string, ttl time.Duration) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, code)
	return nil
}

func newTestAuthService(t *testing.T, store *fakeAuthStore, notifier *fakeNotifier) *AuthService {
	t.Helper()
	svc, err := NewAuthService(store, notifier, config.AuthConfig{
		CodeTTL:      "10m",
		SessionTTL:   "336h",
		CookieSecure: "false",
	})
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func TestRequestLoginCodeFormat(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})

	code, expiresAt, err := svc.RequestLoginCode(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RequestLoginCode: %v", err)
	}
	if len(code) != 6 || code[0] == '0' {
		t.Fatalf("expected 6-digit code in 100000-999999, got %q", code)
	}
	ttl := time.Until(expiresAt)
	if ttl < 9*time.Minute || ttl > 10*time.Minute {
		t.Fatalf("expected ~10m expiry, got %v", ttl)
	}
}

func TestRequestLoginCodeSupersedesPrevious(t *testing.T) {
	store := newFakeAuthStore()
	notifier := &fakeNotifier{}
	svc := newTestAuthService(t, store, notifier)
	ctx := context.Background()

	first, _, err := svc.RequestLoginCode(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, _, err := svc.RequestLoginCode(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}

	if len(store.codes) != 1 {
		t.Fatalf("expected exactly one pending code, got %d", len(store.codes))
	}
	if store.codes["alice@example.com"].Code != second {
		t.Fatalf("pending code should match the second request")
	}

	if first != second {
		if user, _ := svc.VerifyLoginCode(ctx, "alice@example.com", first); user != nil {
			t.Fatalf("superseded code must not authenticate")
		}
	}
	user, err := svc.VerifyLoginCode(ctx, "alice@example.com", second)
	if err != nil || user == nil {
		t.Fatalf("latest code should authenticate, got user=%v err=%v", user, err)
	}
}

func TestVerifyLoginCodeSingleUse(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})
	ctx := context.Background()

	code, _, err := svc.RequestLoginCode(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("RequestLoginCode: %v", err)
	}

	user, err := svc.VerifyLoginCode(ctx, "alice@example.com", code)
	if err != nil || user == nil {
		t.Fatalf("first verify should succeed, got user=%v err=%v", user, err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("unexpected user email %q", user.Email)
	}

	again, err := svc.VerifyLoginCode(ctx, "alice@example.com", code)
	if err != nil {
		t.Fatalf("second verify errored: %v", err)
	}
	if again != nil {
		t.Fatalf("consumed code must not authenticate again")
	}
}

func TestVerifyLoginCodeWrongCodePreservesPending(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})
	ctx := context.Background()

	code, _, err := svc.RequestLoginCode(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("RequestLoginCode: %v", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	user, err := svc.VerifyLoginCode(ctx, "alice@example.com", wrong)
	if err != nil || user != nil {
		t.Fatalf("wrong code should return none, got user=%v err=%v", user, err)
	}

	user, err = svc.VerifyLoginCode(ctx, "alice@example.com", code)
	if err != nil || user == nil {
		t.Fatalf("correct code should still work after a wrong attempt")
	}
}

func TestVerifyLoginCodeExpired(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})
	ctx := context.Background()

	store.codes["alice@example.com"] = model.LoginCode{
		Email:     "alice@example.com",
		Code:      "482913",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	user, err := svc.VerifyLoginCode(ctx, "alice@example.com", "482913")
	if err != nil {
		t.Fatalf("VerifyLoginCode: %v", err)
	}
	if user != nil {
		t.Fatalf("expired code must not authenticate even when correct")
	}
}

func TestVerifyLoginCodeStableUserIdentity(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})
	ctx := context.Background()

	code, _, _ := svc.RequestLoginCode(ctx, "alice@example.com")
	first, _ := svc.VerifyLoginCode(ctx, "alice@example.com", code)

	code, _, _ = svc.RequestLoginCode(ctx, "alice@example.com")
	second, _ := svc.VerifyLoginCode(ctx, "alice@example.com", code)

	if first == nil || second == nil || first.ID != second.ID {
		t.Fatalf("repeat logins must resolve to the same user, got %v and %v", first, second)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})
	ctx := context.Background()

	code, _, _ := svc.RequestLoginCode(ctx, "alice@example.com")
	user, _ := svc.VerifyLoginCode(ctx, "alice@example.com", code)

	token, expiresAt, err := svc.CreateSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if time.Until(expiresAt) < 13*24*time.Hour {
		t.Fatalf("expected ~14d session, got %v", time.Until(expiresAt))
	}
	if _, ok := store.sessions[token]; ok {
		t.Fatalf("raw token must not be stored")
	}

	got, err := svc.UserFromSession(ctx, token)
	if err != nil || got == nil || got.ID != user.ID {
		t.Fatalf("expected session to resolve to %s, got %v err=%v", user.ID, got, err)
	}
}

func TestUserFromSessionExpired(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})
	ctx := context.Background()

	code, _, _ := svc.RequestLoginCode(ctx, "alice@example.com")
	user, _ := svc.VerifyLoginCode(ctx, "alice@example.com", code)
	token, _, _ := svc.CreateSession(ctx, user.ID)

	for hash, s := range store.sessions {
		s.ExpiresAt = time.Now().Add(-time.Hour)
		store.sessions[hash] = s
	}

	got, err := svc.UserFromSession(ctx, token)
	if err != nil {
		t.Fatalf("UserFromSession: %v", err)
	}
	if got != nil {
		t.Fatalf("expired session must resolve to none")
	}
}

func TestRequireUserUnauthenticated(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})

	_, err := svc.RequireUser(context.Background(), "no-such-token")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.RequireUser(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty token, got %v", err)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})
	ctx := context.Background()

	code, _, _ := svc.RequestLoginCode(ctx, "alice@example.com")
	user, _ := svc.VerifyLoginCode(ctx, "alice@example.com", code)
	token, _, _ := svc.CreateSession(ctx, user.ID)

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got, _ := svc.UserFromSession(ctx, token); got != nil {
		t.Fatalf("session must be invalid after logout")
	}
}

func TestConcurrentVerifySingleWinner(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{})
	ctx := context.Background()

	code, _, _ := svc.RequestLoginCode(ctx, "alice@example.com")

	const attempts = 8
	results := make(chan *model.User, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := svc.VerifyLoginCode(ctx, "alice@example.com", code)
			if err != nil {
				t.Errorf("VerifyLoginCode: %v", err)
			}
			results <- user
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for user := range results {
		if user != nil {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one successful verify, got %d", winners)
	}
}

func TestRequestLoginCodeDeliveryFailurePropagates(t *testing.T) {
	store := newFakeAuthStore()
	svc := newTestAuthService(t, store, &fakeNotifier{fail: true})

	_, _, err := svc.RequestLoginCode(context.Background(), "alice@example.com")
	if err == nil {
		t.Fatalf("expected delivery failure to propagate")
	}
}
