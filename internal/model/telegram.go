package model

import "time"

// Telegram Bot API update payload, limited to the fields the bot reads.
type TelegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *TelegramMessage `json:"message"`
}

type TelegramMessage struct {
	MessageID int64               `json:"message_id"`
	Chat      TelegramChat        `json:"chat"`
	Text      string              `json:"text"`
	Photo     []TelegramPhotoSize `json:"photo"`
	Caption   string              `json:"caption"`
}

type TelegramChat struct {
	ID int64 `json:"id"`
}

type TelegramPhotoSize struct {
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type TelegramLink struct {
	ChatID    int64
	UserID    string
	CreatedAt time.Time
}

type TelegramLinkResponse struct {
	DeepLink  string    `json:"deepLink"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ParsedWorkout is the JSON document the vision model extracts from a
// workout screenshot. Date is optional; empty means "today".
type ParsedWorkout struct {
	Kind        string  `json:"kind"`
	Date        string  `json:"date"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
	Notes       string  `json:"notes"`
}
