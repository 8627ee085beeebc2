package llmclient

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// New builds a client for the given provider and model. API keys come from
// the conventional environment variables (GEMINI_API_KEY, ANTHROPIC_API_KEY).
func New(ctx context.Context, provider, model string) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "gemini":
		return NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"), model)
	case "anthropic":
		return NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), model), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}
