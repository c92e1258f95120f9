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

const geminiAPIURL = "https://generativelanguage.googleapis.com"

// Gemini talks to the Google Generative Language REST API.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGemini validates credentials and builds the client.
func NewGemini(apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrConfig)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: GEMINI_MODEL is not set", ErrConfig)
	}
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiAPIURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *Gemini) Analyze(ctx context.Context, jobText string, profile any, language string) (*Result, error) {
	userPrompt, err := buildUserPrompt(jobText, profile, language)
	if err != nil {
		return nil, err
	}

	// Gemini has no separate system slot on this endpoint; the system
	// prompt is prepended to the user prompt.
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: systemPrompt + "\n\n" + userPrompt}},
		}},
		GenerationConfig: geminiGenerationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		telemetry.Error("gemini.request_failed", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unreadable response (status %d)", ErrFault, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		if parsed.Error != nil {
			message = parsed.Error.Message
		}
		telemetry.Error("gemini.api_error", map[string]any{
			"status":  resp.StatusCode,
			"message": message,
		})
		return nil, mapStatusError(resp.StatusCode, message, "GEMINI_API_KEY", g.model)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response content", ErrFault)
	}
	return parseResult(parsed.Candidates[0].Content.Parts[0].Text)
}

var _ Provider = (*Gemini)(nil)
