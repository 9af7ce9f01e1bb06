package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/runcoach/backend/internal/config"
)

func newTestTelegramClient(server *httptest.Server) *TelegramClient {
	c := NewTelegramClient(config.TelegramConfig{BotToken: "123:abc"})
	c.baseURL = server.URL
	return c
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	c := newTestTelegramClient(server)
	if err := c.SendMessage(context.Background(), 42, "Nice run!"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["chat_id"] != float64(42) || gotBody["text"] != "Nice run!" {
		t.Fatalf("unexpected payload %v", gotBody)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	c := newTestTelegramClient(server)
	err := c.SendMessage(context.Background(), 42, "hello")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestDownloadFile(t *testing.T) {
	image := []byte("jpeg-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/bot123:abc/getFile"):
			if r.URL.Query().Get("file_id") != "photo-1" {
				t.Errorf("unexpected file_id %q", r.URL.Query().Get("file_id"))
			}
			w.Write([]byte(`{"ok":true,"result":{"file_id":"photo-1","file_path":"photos/file_1.jpg","file_size":10}}`))
		case r.URL.Path == "/file/bot123:abc/photos/file_1.jpg":
			w.Write(image)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestTelegramClient(server)
	got, err := c.DownloadFile(context.Background(), "photo-1")
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if !bytes.Equal(got, image) {
		t.Fatalf("unexpected bytes %q", got)
	}
}

func TestDownloadFileTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":{"file_id":"photo-1","file_path":"photos/big.jpg","file_size":999999999}}`))
	}))
	defer server.Close()

	c := newTestTelegramClient(server)
	if _, err := c.DownloadFile(context.Background(), "photo-1"); err == nil {
		t.Fatalf("expected an error for oversized file")
	}
}
