package roomws

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/dia-agents/presenter-core/core/display"
	"github.com/gorilla/websocket"
)

// Publisher pushes slide attribute frames to a room endpoint over a
// websocket, mirroring the participant-attribute updates the frontend
// listens for.
type Publisher struct {
	ws *websocket.Conn
	mu sync.Mutex

	closed bool
}

type attributeFrame struct {
	CurrentSlideURL    string `json:"current_slide_url"`
	CurrentSlideNumber string `json:"current_slide_number"`
	TotalSlides        string `json:"total_slides"`
}

func NewPublisher(ctx context.Context, roomURL string, header http.Header) (*Publisher, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, roomURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to room: %w", err)
	}

	return &Publisher{ws: conn}, nil
}

// Publish writes one attribute frame for the given slide update.
func (p *Publisher) Publish(ctx context.Context, update display.Update) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("websocket connection closed")
	} else if p.ws == nil {
		return fmt.Errorf("websocket connection closed")
	}

	frame := attributeFrame{
		CurrentSlideURL:    update.DisplayRef,
		CurrentSlideNumber: strconv.Itoa(update.Ordinal),
		TotalSlides:        strconv.Itoa(update.Total),
	}
	if err := p.ws.WriteJSON(frame); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	); err != nil {
		if aggressiveCloseErr := p.ws.Close(); aggressiveCloseErr != nil {
			return fmt.Errorf("failed to close websocket: %w", aggressiveCloseErr)
		}
		return nil
	}
	return p.ws.Close()
}

var _ display.Publisher = (*Publisher)(nil)
