package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel   = openai.GPT4o
	requestTimeout = 60 * time.Second
	retryAttempts  = 3
)

// OpenAIAnalyzer implements Analyzer against an OpenAI-compatible chat
// completion API with JSON-object response mode.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

// NewOpenAIAnalyzer creates an analyzer with its own HTTP timeout. An
// empty model selects the default.
func NewOpenAIAnalyzer(apiKey, model string) *OpenAIAnalyzer {
	if model == "" {
		model = defaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	return &OpenAIAnalyzer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Analyze sends one chunk to the model and parses the structured verdict.
// Transient request failures are retried a few times; persistent failure
// is returned to the caller, which records the chunk as empty.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, input ChunkInput) (ChunkAnalysis, error) {
	if len(input.Posts) == 0 {
		return ChunkAnalysis{}, nil
	}

	messages := buildChatMessages(input)

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		resp, err = a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       a.model,
			Temperature: 0.1,
			Messages:    messages,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return ChunkAnalysis{}, ctx.Err()
		}
		slog.Warn("extraction request failed, retrying",
			"attempt", attempt, "error", err)
	}
	if err != nil {
		return ChunkAnalysis{}, fmt.Errorf("chat completion after %d attempts: %w", retryAttempts, err)
	}
	if len(resp.Choices) == 0 {
		return ChunkAnalysis{}, fmt.Errorf("chat completion returned no choices")
	}

	cleaned, err := ExtractJSONObject(resp.Choices[0].Message.Content)
	if err != nil {
		return ChunkAnalysis{}, fmt.Errorf("cleaning extraction response: %w", err)
	}

	var analysis ChunkAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		slog.Warn("failed to unmarshal extraction response",
			"error", err, "response", cleaned)
		return ChunkAnalysis{}, fmt.Errorf("unmarshal extraction response: %w", err)
	}
	return analysis, nil
}
