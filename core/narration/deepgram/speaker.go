package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/gorilla/websocket"
)

type deepgramVoice string

const (
	VoiceAsteriaEN deepgramVoice = "aura-2-asteria-en"
	VoiceThaliaEN  deepgramVoice = "aura-2-thalia-en"
	VoiceOrionEN   deepgramVoice = "aura-2-orion-en"
)

const defaultVoice = VoiceAsteriaEN

// Speaker voices narration text through Deepgram's streaming TTS socket.
//
// Say blocks until Deepgram confirms the flushed text was synthesized,
// which is the closest signal the protocol offers for "spoken". Audio
// frames are handed to the configured audio callback for the room
// transport to play out.
type Speaker struct {
	ws *websocket.Conn
	mu sync.Mutex

	voice   deepgramVoice
	options SpeakerOptions

	flushWaiters   []chan error
	flushWaitersMu sync.Mutex

	closed bool
}

type SpeakerOptions struct {
	// AudioCallback receives synthesized audio chunks as they arrive.
	AudioCallback func(audio []byte)
	// Encoding and SampleRate describe the audio format requested from
	// Deepgram.
	Encoding   string
	SampleRate int
}

type SpeakerOption func(*SpeakerOptions)

func WithAudioCallback(callback func(audio []byte)) SpeakerOption {
	return func(o *SpeakerOptions) { o.AudioCallback = callback }
}

func WithEncoding(encoding string, sampleRate int) SpeakerOption {
	return func(o *SpeakerOptions) {
		if encoding == "" || sampleRate == 0 {
			return
		}
		o.Encoding = encoding
		o.SampleRate = sampleRate
	}
}

func NewSpeaker(ctx context.Context, voice deepgramVoice, opts ...SpeakerOption) (*Speaker, error) {
	speaker := &Speaker{
		voice: defaultVoice,
		options: SpeakerOptions{
			AudioCallback: func([]byte) {},
			Encoding:      "linear16",
			SampleRate:    24000,
		},
	}
	if voice != "" {
		speaker.voice = voice
	}
	for _, opt := range opts {
		opt(&speaker.options)
	}

	var err error
	if speaker.ws, err = connectWebsocket(speaker.voice, speaker.options); err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}

	go speaker.processIncomingMessages(ctx)

	return speaker, nil
}

func connectWebsocket(voice deepgramVoice, options SpeakerOptions) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	urlValues := url.Values{}
	urlValues.Set("encoding", options.Encoding)
	urlValues.Set("sample_rate", fmt.Sprintf("%d", options.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.Dial(
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (s *Speaker) processIncomingMessages(ctx context.Context) {
	for {
		msgType, msg, err := s.ws.ReadMessage()
		if err != nil {
			if err.Error() != "websocket: close 1000 (normal)" {
				log.Printf("Websocket read error: %v", err)
			}
			s.releaseAllWaiters(fmt.Errorf("synthesis stream closed: %w", err))
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) > 0 {
				s.options.AudioCallback(msg)
			}
		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				s.releaseNextWaiter()
			}
		}
	}
}

// Say sends text and waits for the synthesis confirmation or ctx
// cancellation. A stream that dies before confirming is reported as an
// error so the act can be retried on a fresh attempt. On cancellation the
// pending audio is cleared so nothing already buffered keeps playing.
func (s *Speaker) Say(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	waiter := make(chan error, 1)
	s.flushWaitersMu.Lock()
	s.flushWaiters = append(s.flushWaiters, waiter)
	s.flushWaitersMu.Unlock()

	if err := s.sendWebsocketMessage(sendTextMsg(text)); err != nil {
		return fmt.Errorf("failed to send websocket send text message: %w", err)
	}
	if err := s.sendWebsocketMessage(flushMsg); err != nil {
		return fmt.Errorf("failed to send websocket flush message: %w", err)
	}

	select {
	case err := <-waiter:
		if err != nil {
			return fmt.Errorf("failed to confirm synthesis: %w", err)
		}
		return nil
	case <-ctx.Done():
		_ = s.Clear() // Best effort, the act is over either way
		return ctx.Err()
	}
}

// Clear drops any buffered, not-yet-played synthesis.
func (s *Speaker) Clear() error {
	if err := s.sendWebsocketMessage(clearMsg); err != nil {
		return fmt.Errorf("failed to send websocket clear message: %w", err)
	}
	return nil
}

// Close asks Deepgram to close the stream, falling back to tearing down
// the socket directly if the close message cannot be written.
func (s *Speaker) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.sendCloseMessage(); err != nil {
		if aggressiveCloseErr := s.ws.Close(); aggressiveCloseErr != nil {
			return fmt.Errorf("failed to close websocket: %w", aggressiveCloseErr)
		}
	}
	return nil
}

func (s *Speaker) releaseNextWaiter() {
	s.flushWaitersMu.Lock()
	defer s.flushWaitersMu.Unlock()

	if len(s.flushWaiters) > 0 {
		s.flushWaiters[0] <- nil
		s.flushWaiters = s.flushWaiters[1:]
	}
}

func (s *Speaker) releaseAllWaiters(err error) {
	s.flushWaitersMu.Lock()
	defer s.flushWaitersMu.Unlock()

	for _, waiter := range s.flushWaiters {
		waiter <- err
	}
	s.flushWaiters = nil
}

type websocketMessage struct {
	Type string `json:"type"`
}

var (
	sendTextMsg = func(text string) struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} {
		return struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "Speak", Text: text}
	}
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func (s *Speaker) sendWebsocketMessage(msg any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("websocket connection closed")
	} else if s.ws == nil {
		return fmt.Errorf("websocket connection closed")
	}

	if err := s.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}

func (s *Speaker) sendCloseMessage() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return fmt.Errorf("websocket connection closed")
	}
	if err := s.ws.WriteJSON(closeMsg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}
