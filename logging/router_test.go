package logging_test

import (
	"context"
	"testing"
	"time"

	"github.com/pekkahe/the-lone-cabin-samples/logging"
	"github.com/pekkahe/the-lone-cabin-samples/logging/sinks"
)

func newMemoryRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.MemorySink) {
	t.Helper()
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		router.Close(ctx)
	})
	return router, memory
}

func waitForEvents(t *testing.T, memory *sinks.MemorySink, want int) []logging.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		events := memory.Events()
		if len(events) >= want {
			return events
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d events, want %d", len(events), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRouterForwardsEventsToSinks(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.DefaultConfig())

	router.Publish(context.Background(), logging.Event{
		Type:     "behaviour.changed",
		Actor:    logging.EntityRef{ID: "agent-1", Kind: logging.EntityKindAgent},
		Severity: logging.SeverityInfo,
	})

	events := waitForEvents(t, memory, 1)
	if events[0].Type != "behaviour.changed" {
		t.Fatalf("event type = %s, want behaviour.changed", events[0].Type)
	}
	if events[0].Time.IsZero() {
		t.Fatal("router must stamp event time")
	}
	if got := router.Stats().EventsTotal; got != 1 {
		t.Fatalf("events total = %d, want 1", got)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "navigation.search_started", Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Type: "navigation.search_failed", Severity: logging.SeverityWarn})

	events := waitForEvents(t, memory, 1)
	for _, event := range events {
		if event.Severity < logging.SeverityWarn {
			t.Fatalf("sub-threshold event reached the sink: %+v", event)
		}
	}
}

func TestWithFieldsAnnotatesEvents(t *testing.T) {
	memory := sinks.NewMemorySink()
	pub := logging.WithFields(logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		memory.Write(event)
	}), map[string]any{"level": "cabin"})

	pub.Publish(context.Background(), logging.Event{Type: "behaviour.changed"})
	pub.Publish(context.Background(), logging.Event{
		Type:  "behaviour.woken",
		Extra: map[string]any{"level": "override"},
	})

	events := memory.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Extra["level"] != "cabin" {
		t.Fatalf("extra = %v, want injected field", events[0].Extra)
	}
	if events[1].Extra["level"] != "override" {
		t.Fatal("explicit extra must win over injected fields")
	}
}
