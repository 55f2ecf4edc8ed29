// Package completion provides the abstract capability "given a prompt,
// return a structured JSON document", with interchangeable buffered and
// streaming Gemini backends.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// Completer is the single contract the pipeline stages depend on. The
// description identifies the conceptual step for logging and progress
// output; it never affects the result.
type Completer interface {
	// Complete sends the prompt to the provider and returns a strictly
	// parsed JSON document.
	Complete(ctx context.Context, prompt, description string) (json.RawMessage, error)
	// Close releases any resources held by the backend.
	Close() error
}

// ProviderError represents a transport or auth failure calling the
// external completion service. It is fatal to the current stage and is
// never retried internally.
type ProviderError struct {
	Description string
	Message     string
	Cause       error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider call failed [%s]: %s: %v", e.Description, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider call failed [%s]: %s", e.Description, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// promptLogLimit caps prompt text in provider-call logs.
const promptLogLimit = 160

// Config holds model settings shared by both backends.
type Config struct {
	Model       string
	Temperature float32
}

// DefaultConfig returns the default model configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: "gemini-2.5-flash",
		// Low temperature for consistent structured output
		Temperature: 0.1,
	}
}

// extractText joins the text parts of a Gemini response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
