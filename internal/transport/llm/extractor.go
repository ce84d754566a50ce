package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lokamap/placesearch/internal/domain"
	"github.com/lokamap/placesearch/internal/domain/intent"
	"github.com/lokamap/placesearch/internal/metrics"
)

// intentPrompt instructs the model to emit a bare JSON object with the
// intent schema keys. Malformed output is tolerated downstream, not here.
const intentPrompt = "You are an assistant that extracts a structured intent for places search.\n" +
	"Return strictly valid JSON matching this schema keys: \n" +
	"{query, place_type, location_text, radius_m, open_now, route_from, needs_clarification, missing_fields}.\n" +
	"Rules: \n" +
	"- If location is missing, set needs_clarification=true and missing_fields=['location_text'].\n" +
	"- If radius not given, default radius_m=3000.\n" +
	"- open_now true only if user clearly asks open now.\n" +
	"- place_type is a short category like 'restaurant', 'cafe', 'tourist_attraction' when derivable; else null.\n" +
	"Respond JSON only, no prose."

// Extractor is an intent-extraction provider using the OpenAI-compatible
// chat API (e.g. Ollama's /v1 endpoint).
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the extraction provider settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Logger         *zap.Logger
}

// NewExtractor creates an OpenAI-compatible intent extractor.
func NewExtractor(cfg *Config) *Extractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Extract asks the model for the structured intent behind a user prompt.
// An unreachable or erroring provider is a failure; a reachable provider
// that replies with invalid JSON degrades to a minimal fallback intent
// built from the prompt itself.
func (e *Extractor) Extract(ctx context.Context, prompt string) (intent.Raw, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: intentPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.IntentExtractionsTotal.WithLabelValues("error").Inc()
		return nil, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.IntentExtractionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrProviderFailure)
	}

	text := resp.Choices[0].Message.Content

	var fields intent.Raw
	if jsonErr := json.Unmarshal([]byte(text), &fields); jsonErr != nil || fields == nil {
		e.logger.Warn("model reply is not valid intent JSON, using fallback",
			zap.String("model", e.model),
			zap.Duration("duration", duration),
		)
		metrics.IntentExtractionsTotal.WithLabelValues("fallback").Inc()
		return intent.Raw{
			"query":    prompt,
			"radius_m": float64(intent.DefaultRadiusMeters),
			"open_now": false,
		}, nil
	}

	metrics.IntentExtractionsTotal.WithLabelValues("parsed").Inc()
	return fields, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrProviderFailure for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrProviderFailure

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("intent API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("intent API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("intent request failed: %v: %w", err, wrap)
}
