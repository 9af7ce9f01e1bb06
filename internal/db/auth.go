package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/runcoach/backend/internal/model"
)

func (db *Postgres) EnsureAuthSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS login_codes (
			email TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS sessions (
			token_hash TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS sessions_user_id_idx ON sessions(user_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceLoginCode deletes any pending code for the email and inserts the new
// one in a single transaction, so exactly one live code remains afterwards.
func (db *Postgres) ReplaceLoginCode(ctx context.Context, lc model.LoginCode) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM login_codes WHERE email = $1`, lc.Email); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO login_codes (email, code, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`, lc.Email, lc.Code, lc.ExpiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ConsumeLoginCode atomically deletes the pending code for the email if it
// matches and has not expired. The single DELETE ... RETURNING statement is
// what guarantees at most one concurrent verify wins; a wrong or expired code
// matches no row and leaves the pending code in place.
func (db *Postgres) ConsumeLoginCode(ctx context.Context, email, code string) (bool, error) {
	var consumed string
	err := db.Pool.QueryRow(ctx, `
		DELETE FROM login_codes
		WHERE email = $1 AND code = $2 AND expires_at > NOW()
		RETURNING code
	`, email, code).Scan(&consumed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetOrCreateUserByEmail returns the user for the email, creating one with
// the supplied id on first sight. The insert-then-select pair tolerates a
// concurrent create for the same email.
func (db *Postgres) GetOrCreateUserByEmail(ctx context.Context, id, email string) (*model.User, error) {
	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO users (id, email, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO NOTHING
	`, id, email); err != nil {
		return nil, err
	}

	var user model.User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, created_at FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, created_at FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) InsertSession(ctx context.Context, s model.Session) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO sessions (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`, s.TokenHash, s.UserID, s.ExpiresAt)
	return err
}

func (db *Postgres) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	var s model.Session
	err := db.Pool.QueryRow(ctx, `
		SELECT token_hash, user_id, expires_at, created_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash).Scan(&s.TokenHash, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (db *Postgres) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}
