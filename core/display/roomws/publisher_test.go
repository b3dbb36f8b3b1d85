package roomws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dia-agents/presenter-core/core/display"
	"github.com/gorilla/websocket"
)

func newTestRoom(t *testing.T) (string, <-chan attributeFrame) {
	t.Helper()

	frames := make(chan attributeFrame, 8)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		for {
			var frame attributeFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			frames <- frame
		}
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http"), frames
}

func TestPublisherWritesAttributeFrames(t *testing.T) {
	roomURL, frames := newTestRoom(t)

	publisher, err := NewPublisher(context.Background(), roomURL, nil)
	if err != nil {
		t.Fatalf("failed to connect publisher: %v", err)
	}
	defer publisher.Close()

	update := display.Update{
		DisplayRef: "https://cdn.example/3.png",
		Ordinal:    3,
		Total:      10,
	}
	if err := publisher.Publish(context.Background(), update); err != nil {
		t.Fatalf("expected publish to succeed, got %v", err)
	}

	select {
	case frame := <-frames:
		if frame.CurrentSlideURL != "https://cdn.example/3.png" {
			t.Fatalf("unexpected slide url: %q", frame.CurrentSlideURL)
		}
		if frame.CurrentSlideNumber != "3" || frame.TotalSlides != "10" {
			t.Fatalf("unexpected slide counters: %q of %q", frame.CurrentSlideNumber, frame.TotalSlides)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the attribute frame")
	}
}

func TestPublisherRejectsPublishAfterClose(t *testing.T) {
	roomURL, _ := newTestRoom(t)

	publisher, err := NewPublisher(context.Background(), roomURL, nil)
	if err != nil {
		t.Fatalf("failed to connect publisher: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("expected close to succeed, got %v", err)
	}

	if err := publisher.Publish(context.Background(), display.Update{Ordinal: 1, Total: 1}); err == nil {
		t.Fatalf("expected publish on a closed publisher to error")
	}
}

func TestPublisherCloseIsIdempotent(t *testing.T) {
	roomURL, _ := newTestRoom(t)

	publisher, err := NewPublisher(context.Background(), roomURL, nil)
	if err != nil {
		t.Fatalf("failed to connect publisher: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("expected first close to succeed, got %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("expected repeated close to be a no-op, got %v", err)
	}
}

func TestPublisherFailsOnUnreachableRoom(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := NewPublisher(ctx, "ws://127.0.0.1:1/room", nil); err == nil {
		t.Fatalf("expected connection to an unreachable room to fail")
	}
}
