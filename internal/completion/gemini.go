package completion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/jonathan/resume-optimizer/internal/logger"
	"github.com/jonathan/resume-optimizer/internal/repair"
)

// GeminiClient is the buffered backend: one blocking request, the
// complete response parsed in one shot. The provider is forced into
// object-only output mode via the JSON response MIME type.
type GeminiClient struct {
	client *genai.Client
	config *Config
	log    *zap.Logger
}

// NewGeminiClient creates the buffered Gemini backend.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, log *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, config: config, log: log}, nil
}

// Complete issues one blocking request and repairs/parses the full
// response text.
func (c *GeminiClient) Complete(ctx context.Context, prompt, description string) (json.RawMessage, error) {
	c.log.Info("calling provider", zap.String("step", description), zap.String("model", c.config.Model),
		zap.String("prompt", logger.Truncate(prompt, promptLogLimit)))

	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(c.config.Temperature)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &ProviderError{
			Description: description,
			Message:     "failed to generate content",
			Cause:       err,
		}
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, &ProviderError{
			Description: description,
			Message:     "empty response",
			Cause:       err,
		}
	}

	return repair.Repair(text)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
