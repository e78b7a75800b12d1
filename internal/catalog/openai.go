package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/reviewlens/reviewlens/internal/extraction"
)

const (
	lookupModel   = openai.GPT4o
	lookupTimeout = 45 * time.Second
)

const lookupSystemPrompt = `You are a product specialist. Return factual product details as valid JSON.

The JSON response MUST:
1. Be valid JSON without any markdown formatting
2. Follow this exact structure:
{
    "Product Name": {
        "brand": "Brand Name",
        "model": "Model Number/Name",
        "category": "Product Category",
        "release_year": YYYY or "unverified",
        "tier": "flagship"|"mid-range"|"budget",
        "price_range": "Price Range in USD",
        "key_features": ["Feature 1", "Feature 2"],
        "confidence_score": "high"|"medium"|"low"
    }
}

Rules:
1. Release year must be a plausible year or "unverified"
2. All fields are required
3. Return ONLY the JSON object, no additional text
4. Price range should be specific (e.g., "$800-$1000")
5. Mark any uncertain information as "unverified"`

// OpenAILookup implements AttributeClient against an OpenAI-compatible
// chat completion API.
type OpenAILookup struct {
	client *openai.Client
	model  string
}

// NewOpenAILookup creates a lookup client. An empty model selects the
// default.
func NewOpenAILookup(apiKey, model string) *OpenAILookup {
	if model == "" {
		model = lookupModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: lookupTimeout}
	return &OpenAILookup{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// wireAttributes tolerates the model emitting release_year as either a
// bare number or a string.
type wireAttributes struct {
	Brand           string          `json:"brand"`
	Model           string          `json:"model"`
	Category        string          `json:"category"`
	Tier            string          `json:"tier"`
	ReleaseYear     json.RawMessage `json:"release_year"`
	PriceRange      string          `json:"price_range"`
	KeyFeatures     []string        `json:"key_features"`
	ConfidenceScore string          `json:"confidence_score"`
}

// Lookup asks the model for canonical attributes. The response is an
// object with a single key, the canonical product name.
func (l *OpenAILookup) Lookup(ctx context.Context, name string) (string, Attributes, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: lookupSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Provide detailed and verified information about %s. "+
					"Focus on official sources and reliable reviews.", name),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", Attributes{}, fmt.Errorf("attribute lookup: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", Attributes{}, fmt.Errorf("attribute lookup returned no choices")
	}

	cleaned, err := extraction.ExtractJSONObject(resp.Choices[0].Message.Content)
	if err != nil {
		return "", Attributes{}, fmt.Errorf("cleaning lookup response: %w", err)
	}

	var payload map[string]wireAttributes
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		slog.Warn("failed to unmarshal lookup response",
			"product", name, "error", err)
		return "", Attributes{}, fmt.Errorf("unmarshal lookup response: %w", err)
	}
	for canonical, wire := range payload {
		return canonical, Attributes{
			Brand:           wire.Brand,
			Model:           wire.Model,
			Category:        wire.Category,
			Tier:            wire.Tier,
			ReleaseYear:     releaseYear(wire.ReleaseYear),
			PriceRange:      wire.PriceRange,
			KeyFeatures:     wire.KeyFeatures,
			ConfidenceScore: wire.ConfidenceScore,
		}, nil
	}
	return "", Attributes{}, fmt.Errorf("lookup response carried no product entry")
}

func releaseYear(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var year int
	if err := json.Unmarshal(raw, &year); err == nil {
		return strconv.Itoa(year)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
