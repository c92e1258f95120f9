package llm

import (
	"fmt"
	"strings"
)

// Config selects and credentials a provider. Values come straight from
// the environment-backed application config.
type Config struct {
	Provider        string
	AnthropicAPIKey string
	ClaudeModel     string
	GeminiAPIKey    string
	GeminiModel     string
}

// New builds the configured provider. An unknown provider name or a
// missing API key is reported here, at startup, not on first use.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "claude":
		return NewClaude(cfg.AnthropicAPIKey, cfg.ClaudeModel)
	case "gemini":
		return NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("%w: invalid LLM_PROVIDER %q (valid options: claude, gemini)", ErrConfig, cfg.Provider)
	}
}
