package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPublished(context.Background(), "fox", "https://redd.it/abc"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, got *captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		got.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "accepted",
			send: func(s notifications.Service) error {
				return s.NotifyAccepted(context.Background(), []string{"a red fox", "a lighthouse"})
			},
			expectTitle:   "diffusedbrush - Subjects Accepted",
			expectMessage: "📥 2 new subject(s) queued:\n• a red fox\n• a lighthouse",
			expectTags:    "diffusedbrush,queue,accepted",
		},
		{
			name: "published",
			send: func(s notifications.Service) error {
				return s.NotifyPublished(context.Background(), "a red fox", "https://redd.it/abc")
			},
			expectTitle:    "diffusedbrush - Image Posted",
			expectMessage:  "🎨 Published: a red fox\nhttps://redd.it/abc",
			expectTags:     "diffusedbrush,publish,completed",
			expectPriority: "high",
		},
		{
			name: "removed",
			send: func(s notifications.Service) error {
				return s.NotifyRemoved(context.Background(), []string{"1", "2", "3", "4", "5", "6", "7"})
			},
			expectTitle:   "diffusedbrush - Posts Removed",
			expectMessage: "🗑️ 7 post(s) no longer exist:\n• 1\n• 2\n• 3\n• 4\n• 5\n… and 2 more",
			expectTags:    "diffusedbrush,reconcile,removed",
		},
		{
			name: "error",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), errors.New("imgur down"), "publish")
			},
			expectTitle:    "diffusedbrush - Error",
			expectMessage:  "❌ Error during publish: imgur down",
			expectTags:     "diffusedbrush,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			send:           func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			expectTitle:    "diffusedbrush - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "diffusedbrush,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got captured
			server := newCaptureServer(t, &got)

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			if err := tc.send(notifications.NewService(&cfg)); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}
			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled event: %s", r.Header.Get("Title"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Accepted = false
	cfg.Notifications.Published = false
	cfg.Notifications.Removed = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyAccepted(ctx, []string{"x"}); err != nil {
		t.Fatalf("NotifyAccepted: %v", err)
	}
	if err := svc.NotifyPublished(ctx, "x", ""); err != nil {
		t.Fatalf("NotifyPublished: %v", err)
	}
	if err := svc.NotifyRemoved(ctx, []string{"x"}); err != nil {
		t.Fatalf("NotifyRemoved: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("x"), ""); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic reserved", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	if err := notifications.NewService(&cfg).TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
