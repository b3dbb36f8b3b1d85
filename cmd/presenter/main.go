package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	presentation "github.com/dia-agents/presenter-core/core"
	"github.com/dia-agents/presenter-core/core/decks/supabase"
	"github.com/dia-agents/presenter-core/core/display/roomws"
	"github.com/dia-agents/presenter-core/core/narration/deepgram"
	openainarration "github.com/dia-agents/presenter-core/core/narration/openai"
	"github.com/joho/godotenv"
)

type config struct {
	supabaseURL        string
	supabaseServiceKey string
	openaiAPIKey       string
	roomURL            string
	roomToken          string
	presentationID     string

	voiceEnabled bool
}

func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := config{
		supabaseURL:        os.Getenv("SUPABASE_URL"),
		supabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		openaiAPIKey:       os.Getenv("OPENAI_API_KEY"),
		roomURL:            os.Getenv("PRESENTER_ROOM_URL"),
		roomToken:          os.Getenv("PRESENTER_ROOM_TOKEN"),
		presentationID:     os.Getenv("PRESENTATION_ID"),
		voiceEnabled:       os.Getenv("DEEPGRAM_API_KEY") != "",
	}

	var missing []string
	for _, required := range []struct {
		name  string
		value string
	}{
		{"SUPABASE_URL", cfg.supabaseURL},
		{"SUPABASE_SERVICE_KEY", cfg.supabaseServiceKey},
		{"OPENAI_API_KEY", cfg.openaiAPIKey},
		{"PRESENTER_ROOM_URL", cfg.roomURL},
		{"PRESENTATION_ID", cfg.presentationID},
	} {
		if required.value == "" {
			missing = append(missing, required.name)
		}
	}
	if len(missing) > 0 {
		return config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := supabase.NewStore(cfg.supabaseURL, cfg.supabaseServiceKey)
	if err != nil {
		log.Fatalf("Failed to create deck store: %v", err)
	}

	var header http.Header
	if cfg.roomToken != "" {
		header = http.Header{"Authorization": {"Bearer " + cfg.roomToken}}
	}
	publisher, err := roomws.NewPublisher(ctx, cfg.roomURL, header)
	if err != nil {
		log.Fatalf("Failed to connect to room: %v", err)
	}

	channelOpts := []openainarration.ChannelOption{}
	if cfg.voiceEnabled {
		speaker, err := deepgram.NewSpeaker(ctx, deepgram.VoiceAsteriaEN)
		if err != nil {
			log.Fatalf("Failed to create speaker: %v", err)
		}
		channelOpts = append(channelOpts, openainarration.WithVoice(speaker))
	}
	channel := openainarration.NewChannel(cfg.openaiAPIKey, channelOpts...)

	session := presentation.NewSession(
		presentation.WithDeckStore(store),
		presentation.WithNarrationChannel(channel),
		presentation.WithDisplayPublisher(publisher),
	)
	defer session.Close()

	if err := session.Present(ctx, cfg.presentationID,
		presentation.WithPhaseChangedCallback(func(phase presentation.Phase) {
			log.Printf("Session phase: %s", phase)
		}),
	); err != nil {
		log.Fatalf("Presentation failed: %v", err)
	}
}
