package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"diffusedbrush/internal/config"
)

const userAgent = "diffusedbrush/0.2"

// Service defines the notification surface exposed to the runner.
type Service interface {
	NotifyAccepted(ctx context.Context, subjects []string) error
	NotifyPublished(ctx context.Context, subject, postLink string) error
	NotifyRemoved(ctx context.Context, subjects []string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		toggles:  cfg.Notifications,
	}
}

// NewNoop returns a Service that discards every notification.
func NewNoop() Service {
	return noopService{}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	toggles  config.Notifications
}

func (n *ntfyService) NotifyAccepted(ctx context.Context, subjects []string) error {
	if !n.toggles.Accepted || len(subjects) == 0 {
		return nil
	}
	data := payload{
		title:   "diffusedbrush - Subjects Accepted",
		message: fmt.Sprintf("📥 %d new subject(s) queued:\n%s", len(subjects), bulletList(subjects)),
		tags:    []string{"diffusedbrush", "queue", "accepted"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublished(ctx context.Context, subject, postLink string) error {
	if !n.toggles.Published {
		return nil
	}
	subject = strings.TrimSpace(subject)
	message := fmt.Sprintf("🎨 Published: %s", subject)
	if postLink = strings.TrimSpace(postLink); postLink != "" {
		message = fmt.Sprintf("%s\n%s", message, postLink)
	}
	data := payload{
		title:    "diffusedbrush - Image Posted",
		message:  message,
		tags:     []string{"diffusedbrush", "publish", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRemoved(ctx context.Context, subjects []string) error {
	if !n.toggles.Removed || len(subjects) == 0 {
		return nil
	}
	data := payload{
		title:   "diffusedbrush - Posts Removed",
		message: fmt.Sprintf("🗑️ %d post(s) no longer exist:\n%s", len(subjects), bulletList(subjects)),
		tags:    []string{"diffusedbrush", "reconcile", "removed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.toggles.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "diffusedbrush - Error",
		message:  builder.String(),
		tags:     []string{"diffusedbrush", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "diffusedbrush - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"diffusedbrush", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// bulletList renders at most five items, summarizing the rest.
func bulletList(items []string) string {
	const limit = 5
	lines := make([]string, 0, limit+1)
	for i, item := range items {
		if i == limit {
			lines = append(lines, fmt.Sprintf("… and %d more", len(items)-limit))
			break
		}
		lines = append(lines, "• "+strings.TrimSpace(item))
	}
	return strings.Join(lines, "\n")
}

type noopService struct{}

func (noopService) NotifyAccepted(context.Context, []string) error        { return nil }
func (noopService) NotifyPublished(context.Context, string, string) error { return nil }
func (noopService) NotifyRemoved(context.Context, []string) error         { return nil }
func (noopService) NotifyError(context.Context, error, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                { return nil }
