package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/jonathan/resume-optimizer/internal/logger"
	"github.com/jonathan/resume-optimizer/internal/repair"
)

// StreamProgress reports accumulated bytes and the byte rate of an
// in-flight streamed completion. It is an observability side channel
// only and never affects control flow or results.
type StreamProgress func(description string, bytes int, bytesPerSecond float64)

// StreamingClient is the streaming backend: it consumes incremental
// chunks, accumulates them, reports byte-rate progress, and repairs the
// accumulated text once the stream completes.
type StreamingClient struct {
	client     *genai.Client
	config     *Config
	log        *zap.Logger
	onProgress StreamProgress
}

// NewStreamingClient creates the streaming Gemini backend. onProgress may
// be nil, in which case progress is logged at debug level.
func NewStreamingClient(ctx context.Context, config *Config, apiKey string, log *zap.Logger, onProgress StreamProgress) (*StreamingClient, error) {
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

	c := &StreamingClient{client: client, config: config, log: log, onProgress: onProgress}
	if c.onProgress == nil {
		c.onProgress = func(description string, bytes int, rate float64) {
			log.Debug("stream progress",
				zap.String("step", description),
				zap.Int("bytes", bytes),
				zap.Float64("bytes_per_second", rate))
		}
	}
	return c, nil
}

// Complete consumes the response stream to completion, then repairs and
// parses the accumulated text.
func (c *StreamingClient) Complete(ctx context.Context, prompt, description string) (json.RawMessage, error) {
	c.log.Info("calling provider (streaming)", zap.String("step", description), zap.String("model", c.config.Model),
		zap.String("prompt", logger.Truncate(prompt, promptLogLimit)))

	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(c.config.Temperature)

	iter := model.GenerateContentStream(ctx, genai.Text(prompt))

	var sb strings.Builder
	started := time.Now()
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &ProviderError{
				Description: description,
				Message:     "stream failed",
				Cause:       err,
			}
		}

		chunk, err := extractText(resp)
		if err != nil {
			// Chunks without text parts (e.g. safety metadata) are skipped.
			continue
		}
		sb.WriteString(chunk)
		c.onProgress(description, sb.Len(), byteRate(sb.Len(), time.Since(started)))
	}

	if sb.Len() == 0 {
		return nil, &ProviderError{
			Description: description,
			Message:     "stream produced no text",
		}
	}

	return repair.Repair(sb.String())
}

// Close releases resources held by the client.
func (c *StreamingClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// byteRate returns bytes per second, guarding the zero-elapsed case at
// stream start.
func byteRate(bytes int, elapsed time.Duration) float64 {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(bytes) / seconds
}
