package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mycv-backend/internal/shared/telemetry"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	claudeMaxTokens  = 8192
)

// Claude talks to the Anthropic Messages API.
type Claude struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClaude validates credentials and builds the client.
func NewClaude(apiKey, model string) (*Claude, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrConfig)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: CLAUDE_MODEL is not set", ErrConfig)
	}
	return &Claude{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicAPIURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Claude) Analyze(ctx context.Context, jobText string, profile any, language string) (*Result, error) {
	userPrompt, err := buildUserPrompt(jobText, profile, language)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		System:    systemPrompt,
		Messages:  []claudeMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Error("claude.request_failed", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var parsed claudeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unreadable response (status %d)", ErrFault, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		if parsed.Error != nil {
			message = parsed.Error.Message
		}
		telemetry.Error("claude.api_error", map[string]any{
			"status":  resp.StatusCode,
			"message": message,
		})
		return nil, mapStatusError(resp.StatusCode, message, "ANTHROPIC_API_KEY", c.model)
	}

	if len(parsed.Content) == 0 || strings.TrimSpace(parsed.Content[0].Text) == "" {
		return nil, fmt.Errorf("%w: empty response content", ErrFault)
	}
	return parseResult(parsed.Content[0].Text)
}

// mapStatusError folds provider HTTP statuses onto the shared taxonomy.
// Auth and model-not-found failures are operator errors; rate limits and
// overload are retryable; the rest surface as provider faults.
func mapStatusError(status int, message, keyName, model string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: invalid %s", ErrConfig, keyName)
	case http.StatusNotFound:
		return fmt.Errorf("%w: model not found: %s", ErrConfig, model)
	case http.StatusTooManyRequests, 529:
		return ErrOverloaded
	default:
		return &ProviderError{Status: status, Message: message}
	}
}

var _ Provider = (*Claude)(nil)
