package imgur

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"diffusedbrush/internal/httpretry"
	"diffusedbrush/internal/services"
)

func TestUploadReturnsLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/image" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Client-ID cid" {
			t.Fatalf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		data, err := base64.StdEncoding.DecodeString(r.PostForm.Get("image"))
		if err != nil || string(data) != "png-bytes" {
			t.Fatalf("unexpected image payload %q (%v)", data, err)
		}
		if r.PostForm.Get("title") != "a fox, oil painting" {
			t.Fatalf("unexpected title %q", r.PostForm.Get("title"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":    map[string]any{"id": "abc", "link": "https://i.imgur.com/abc.png"},
			"success": true,
			"status":  200,
		})
	}))
	defer server.Close()

	link, err := NewClient(Config{ClientID: "cid", BaseURL: server.URL}).Upload(context.Background(), []byte("png-bytes"), "a fox, oil painting")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if link != "https://i.imgur.com/abc.png" {
		t.Fatalf("unexpected link %q", link)
	}
}

func TestUploadRetriesRateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":    map[string]any{"link": "https://i.imgur.com/x.png"},
			"success": true,
			"status":  200,
		})
	}))
	defer server.Close()

	client := NewClient(Config{ClientID: "cid", BaseURL: server.URL}, WithRetryPolicy(httpretry.DefaultPolicy().NoDelay()))
	if _, err := client.Upload(context.Background(), []byte("x"), ""); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestUploadUnsuccessfulIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":    map[string]any{"error": "capacity"},
			"success": false,
			"status":  200,
		})
	}))
	defer server.Close()

	_, err := NewClient(Config{ClientID: "cid", BaseURL: server.URL}).Upload(context.Background(), []byte("x"), "")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestUploadRequiresClientID(t *testing.T) {
	_, err := NewClient(Config{}).Upload(context.Background(), []byte("x"), "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
