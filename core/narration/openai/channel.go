package openai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dia-agents/presenter-core/core/narration"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultModel = openai.GPT4oMini

// Voice plays narration text out loud. Say blocks until the text has been
// voiced or ctx is cancelled; Clear drops anything still buffered.
type Voice interface {
	Say(ctx context.Context, text string) error
	Clear() error
}

// Channel turns slide instructions into spoken narration: a chat
// completion writes the script, the configured voice speaks it.
//
// Interrupt cancels whichever act is in flight and marks its result
// interrupted, which is how listener barge-in reaches the orchestration
// layer without being modelled as an error.
type Channel struct {
	client       *openai.Client
	model        string
	instructions string
	voice        Voice

	activeMu     sync.Mutex
	activeID     string
	activeCancel context.CancelFunc
	interrupted  bool
}

type ChannelOption func(*Channel)

func WithModel(model string) ChannelOption {
	return func(c *Channel) {
		if model != "" {
			c.model = model
		}
	}
}

// WithVoice attaches a synthesizer; without one the channel produces the
// script and reports completion without audio, which is useful in tests
// and text-only rooms.
func WithVoice(voice Voice) ChannelOption {
	return func(c *Channel) { c.voice = voice }
}

// WithPersona overrides the system instructions sent with every act.
func WithPersona(instructions string) ChannelOption {
	return func(c *Channel) {
		if instructions != "" {
			c.instructions = instructions
		}
	}
}

func NewChannel(apiKey string, opts ...ChannelOption) *Channel {
	channel := &Channel{
		client:       openai.NewClient(apiKey),
		model:        defaultModel,
		instructions: DefaultPersona,
	}
	for _, opt := range opts {
		opt(channel)
	}
	return channel
}

// Speak performs one narration act. It blocks until the script has been
// generated and voiced, the listener interrupts, or ctx is cancelled.
func (c *Channel) Speak(ctx context.Context, instruction string, opts ...narration.SpeakOption) (narration.Result, error) {
	options := narration.SpeakOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, span := tracer.Start(ctx, "narration act")
	defer span.End()

	actCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	actID := uuid.NewString()
	span.SetAttributes(attribute.String("narration.act_id", actID))
	if err := c.registerAct(actID, cancel); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return narration.Result{Outcome: narration.OutcomeFailed}, err
	}
	defer c.unregisterAct(actID)

	resp, err := c.client.CreateChatCompletion(actCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.instructions},
			{Role: openai.ChatMessageRoleUser, Content: instruction},
		},
	})
	if err != nil {
		if c.actInterrupted(actID) && errors.Is(err, context.Canceled) {
			if options.InterruptedCallback != nil {
				options.InterruptedCallback()
			}
			span.SetAttributes(attribute.String("narration.outcome", string(narration.OutcomeInterrupted)))
			return narration.Result{Outcome: narration.OutcomeInterrupted}, nil
		}
		err = fmt.Errorf("failed to generate narration script: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return narration.Result{Outcome: narration.OutcomeFailed}, err
	}
	if len(resp.Choices) == 0 {
		err := fmt.Errorf("narration script response had no choices")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return narration.Result{Outcome: narration.OutcomeFailed}, err
	}

	script := resp.Choices[0].Message.Content
	if options.TextCallback != nil {
		options.TextCallback(script)
	}

	if c.voice != nil {
		if err := c.voice.Say(actCtx, script); err != nil {
			if c.actInterrupted(actID) && errors.Is(err, context.Canceled) {
				if options.InterruptedCallback != nil {
					options.InterruptedCallback()
				}
				span.SetAttributes(attribute.String("narration.outcome", string(narration.OutcomeInterrupted)))
				return narration.Result{Outcome: narration.OutcomeInterrupted, SpokenText: script}, nil
			}
			err = fmt.Errorf("failed to voice narration script: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return narration.Result{Outcome: narration.OutcomeFailed, SpokenText: script}, err
		}
	}

	span.SetAttributes(attribute.String("narration.outcome", string(narration.OutcomeCompleted)))
	return narration.Result{Outcome: narration.OutcomeCompleted, SpokenText: script}, nil
}

// Interrupt halts the in-flight act, if any. The act's Speak call returns
// an interrupted result rather than an error.
func (c *Channel) Interrupt() {
	c.activeMu.Lock()
	cancel := c.activeCancel
	if cancel != nil {
		c.interrupted = true
	}
	c.activeMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if c.voice != nil {
		if err := c.voice.Clear(); err != nil {
			logger.Warn("failed to clear voice buffer on interrupt", "error", err)
		}
	}
}

// Close abandons any in-flight act and closes the voice if it supports it.
func (c *Channel) Close() error {
	c.activeMu.Lock()
	cancel := c.activeCancel
	c.activeMu.Unlock()
	if cancel != nil {
		cancel()
	}

	if closer, ok := c.voice.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close voice: %w", err)
		}
	}
	return nil
}

func (c *Channel) registerAct(id string, cancel context.CancelFunc) error {
	c.activeMu.Lock()
	defer c.activeMu.Unlock()

	if c.activeCancel != nil {
		return fmt.Errorf("narration act already in flight")
	}
	c.activeID = id
	c.activeCancel = cancel
	c.interrupted = false
	return nil
}

func (c *Channel) unregisterAct(id string) {
	c.activeMu.Lock()
	defer c.activeMu.Unlock()

	if c.activeID == id {
		c.activeID = ""
		c.activeCancel = nil
	}
}

func (c *Channel) actInterrupted(id string) bool {
	c.activeMu.Lock()
	defer c.activeMu.Unlock()
	return c.activeID == id && c.interrupted
}
