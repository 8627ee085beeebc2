package llmclient

import "context"

// LLMClient defines the interface for LLM providers. Implementations only
// perform the API call itself; cross-cutting concerns (rate limiting,
// logging, JSON repair) are applied via middleware in the llm package.
type LLMClient interface {
	Name() string
	Close() error
	// GenerateJSON asks the provider for application/json output and returns
	// the raw response text. The text is NOT guaranteed to parse: callers own
	// fence stripping, parsing, and the repair retry.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}
