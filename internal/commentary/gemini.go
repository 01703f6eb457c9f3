package commentary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// GeminiClient implements Generator with the Google Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	log         zerolog.Logger
}

// ClientOption configures the client
type ClientOption func(*GeminiClient)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *GeminiClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *GeminiClient) {
		c.log = log.With().Str("client", "gemini").Logger()
	}
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, apiKey string, opts ...ClientOption) (*GeminiClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &GeminiClient{
		client:      genaiClient,
		model:       DefaultModel,
		temperature: 0.1,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate answers prompt under the given system instruction.
func (c *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	c.log.Debug().Str("model", c.model).Int("prompt_len", len(prompt)).Msg("generating content")

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return extractText(result)
}

// extractText joins the text parts of the first candidate.
func extractText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content generated")
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
