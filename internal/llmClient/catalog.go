package llmclient

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

var defaultModels = map[string]string{
	"openai": "gpt-4.1",
	"groq":   "llama-3.3-70b-versatile",
	"gemini": "gemini-2.5-flash",
	"fake":   "fake",
}

var apiKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"groq":   "GROQ_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

// Providers lists the supported provider names.
func Providers() []string { return []string{"openai", "groq", "gemini", "fake"} }

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string { return defaultModels[normalize(provider)] }

// APIKeyFromEnv reads the provider's conventional credential variable.
func APIKeyFromEnv(provider string) string {
	if name, ok := apiKeyEnv[normalize(provider)]; ok {
		return strings.TrimSpace(os.Getenv(name))
	}
	return ""
}

// New builds the client for opts.Provider. The credential is taken only from
// opts; callers resolve it from configuration beforehand.
func New(ctx context.Context, opts Options) (LLMClient, error) {
	provider := normalize(opts.Provider)
	model := opts.Model
	if model == "" {
		model = DefaultModel(provider)
	}
	switch provider {
	case "openai", "groq":
		if opts.APIKey == "" && opts.BaseURL == "" {
			return nil, fmt.Errorf("llmclient: %s requires an API key (%s)", provider, apiKeyEnv[provider])
		}
		return NewOpenAIClient(provider, opts.APIKey, model, opts.BaseURL, opts.Timeout), nil
	case "gemini":
		return NewGeminiClient(ctx, opts.APIKey, model)
	case "fake":
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("llmclient: unknown provider %q (want one of %s)", opts.Provider, strings.Join(Providers(), ", "))
	}
}

func normalize(provider string) string {
	p := strings.ToLower(strings.TrimSpace(provider))
	if p == "" {
		return "openai"
	}
	return p
}
