package supabase

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"context"

	"github.com/dia-agents/presenter-core/core/decks"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const slidesTable = "slides"

// Store fetches slide decks from a Supabase project's PostgREST endpoint.
//
// The service key is sent as both the apikey and bearer token, which lets
// the worker bypass row level security the same way the backend does.
type Store struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

type StoreOption func(*Store)

// WithHTTPClient overrides the HTTP client used for PostgREST requests.
func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *Store) {
		if client != nil {
			s.client = client
		}
	}
}

func NewStore(baseURL, serviceKey string, opts ...StoreOption) (*Store, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("supabase url is required")
	}
	if serviceKey == "" {
		return nil, fmt.Errorf("supabase service key is required")
	}

	store := &Store{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

type slideRow struct {
	SlideNumber   int    `json:"slide_number"`
	ImageURL      string `json:"image_url"`
	ExtractedText string `json:"extracted_text"`
}

// FetchOrderedDeck loads all slides for a presentation ordered by slide
// number. It returns [decks.ErrNotFound] when no rows exist.
func (s *Store) FetchOrderedDeck(ctx context.Context, presentationID string) (*decks.Deck, error) {
	ctx, span := tracer.Start(ctx, "fetch ordered deck")
	defer span.End()
	span.SetAttributes(attribute.String("deck.presentation_id", presentationID))

	queryParams := url.Values{}
	queryParams.Set("select", "slide_number,image_url,extracted_text")
	queryParams.Set("presentation_id", "eq."+presentationID)
	queryParams.Set("order", "slide_number.asc")

	requestURL := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, slidesTable, queryParams.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var rows []slideRow
	if err := json.Unmarshal(respBodyBytes, &rows); err != nil {
		err = fmt.Errorf("error unmarshalling slides: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(rows) == 0 {
		return nil, decks.ErrNotFound
	}

	deck := &decks.Deck{PresentationID: presentationID}
	for i, row := range rows {
		ordinal := row.SlideNumber
		if ordinal == 0 {
			ordinal = i + 1
		}
		deck.Slides = append(deck.Slides, decks.Slide{
			Ordinal:       ordinal,
			DisplayRef:    row.ImageURL,
			NarrationText: row.ExtractedText,
		})
	}
	span.SetAttributes(attribute.Int("deck.slides", len(deck.Slides)))

	return deck, nil
}
