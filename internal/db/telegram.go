package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/runcoach/backend/internal/model"
)

func (db *Postgres) EnsureTelegramSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS telegram_links (
			chat_id BIGINT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// UpsertTelegramLink binds a chat to a user, replacing any previous binding
// for that chat (re-linking from a new account wins).
func (db *Postgres) UpsertTelegramLink(ctx context.Context, chatID int64, userID string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO telegram_links (chat_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chat_id) DO UPDATE SET user_id = EXCLUDED.user_id, created_at = NOW()
	`, chatID, userID)
	return err
}

func (db *Postgres) GetTelegramLink(ctx context.Context, chatID int64) (*model.TelegramLink, error) {
	var link model.TelegramLink
	err := db.Pool.QueryRow(ctx, `
		SELECT chat_id, user_id, created_at FROM telegram_links WHERE chat_id = $1
	`, chatID).Scan(&link.ChatID, &link.UserID, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}
