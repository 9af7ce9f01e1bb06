// Telegram Bot API client.
//
// Only the three calls the bot needs are wrapped: sendMessage for replies,
// getFile to resolve a photo's file path, and the file download endpoint.
// Bot Token is carried in the URL path, which is how the Bot API works.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/runcoach/backend/internal/config"
)

const defaultTelegramAPI = "https://api.telegram.org"

// 20 MB is the Bot API's own download limit; anything bigger is refused
// before buffering it into memory.
const maxFileDownloadBytes = 20 << 20

type TelegramClient struct {
	botToken   string
	baseURL    string
	httpClient *http.Client
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type telegramFile struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

func NewTelegramClient(cfg config.TelegramConfig) *TelegramClient {
	return &TelegramClient{
		botToken: cfg.BotToken,
		baseURL:  defaultTelegramAPI,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *TelegramClient) Configured() bool {
	return t.botToken != ""
}

func (t *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = t.do(req)
	return err
}

// DownloadFile resolves the file path for fileID and downloads its bytes.
func (t *TelegramClient) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", t.baseURL, t.botToken, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	result, err := t.do(req)
	if err != nil {
		return nil, err
	}

	var file telegramFile
	if err := json.Unmarshal(result, &file); err != nil {
		return nil, fmt.Errorf("telegram getFile: %w", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("telegram getFile: empty file_path")
	}
	if file.FileSize > maxFileDownloadBytes {
		return nil, fmt.Errorf("telegram file too large: %d bytes", file.FileSize)
	}

	dlURL := fmt.Sprintf("%s/file/bot%s/%s", t.baseURL, t.botToken, file.FilePath)
	dlReq, err := http.NewRequestWithContext(ctx, http.MethodGet, dlURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := t.httpClient.Do(dlReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram file download: status %d", res.StatusCode)
	}

	return io.ReadAll(io.LimitReader(res.Body, maxFileDownloadBytes))
}

func (t *TelegramClient) do(req *http.Request) (json.RawMessage, error) {
	res, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var tgRes telegramResponse
	if err := json.Unmarshal(body, &tgRes); err != nil {
		return nil, fmt.Errorf("telegram API: unexpected response: %w", err)
	}
	if !tgRes.OK {
		return nil, fmt.Errorf("telegram API error: %s", tgRes.Description)
	}
	return tgRes.Result, nil
}
