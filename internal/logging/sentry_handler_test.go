package logging_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"

	"diffusedbrush/internal/logging"
)

func TestSentryHandlerCapturesErrors(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		SampleRate: 1.0,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("sentry client: %v", err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())

	logger := logging.Mirror(logging.NewNop(), logging.NewSentryHandler(hub))
	logger = logging.NewComponentLogger(logger, "publisher")
	logger.Info("queue head selected")
	logger.Error("publish failed", logging.Error(errors.New("imgur upload: 503")))

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected 1 captured event, got %d", len(events))
	}
	event := events[0]
	if len(event.Exception) == 0 || event.Exception[len(event.Exception)-1].Value != "imgur upload: 503" {
		t.Fatalf("unexpected exception payload: %#v", event.Exception)
	}
	if event.Tags["component"] != "publisher" {
		t.Fatalf("expected component tag, got %#v", event.Tags)
	}
	if len(event.Breadcrumbs) != 1 || event.Breadcrumbs[0].Message != "queue head selected" {
		t.Fatalf("expected info record as breadcrumb, got %#v", event.Breadcrumbs)
	}
}

func TestNewSentryHandlerNilHub(t *testing.T) {
	if logging.NewSentryHandler(nil) != nil {
		t.Fatal("expected nil handler for nil hub")
	}
}
