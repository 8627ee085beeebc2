package llm

import (
	"context"

	"github.com/rs/zerolog"

	llmclient "thematica/internal/llm/client"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, logging, etc.).
type Middleware func(llmclient.LLMClient) llmclient.LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.LLMClient, mws ...Middleware) llmclient.LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

type ctxKeyStage struct{}

// WithStage attaches a pipeline stage name ("analyst", "critic",
// "adjudicator") to the context for log attribution.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxKeyStage{}, stage)
}

// StageFrom returns the stage stored in the context.
func StageFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyStage{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// WithLogging logs request size, latency class and errors.
func WithLogging(log zerolog.Logger) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &logging{next: next, log: log}
	}
}

type logging struct {
	next llmclient.LLMClient
	log  zerolog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	l.log.Debug().
		Str("stage", StageFrom(ctx)).
		Str("client", l.next.Name()).
		Int("prompt_bytes", len(prompt)).
		Msg("llm request")
	raw, err := l.next.GenerateJSON(ctx, prompt)
	if err != nil {
		l.log.Error().
			Str("stage", StageFrom(ctx)).
			Str("client", l.next.Name()).
			Err(err).
			Msg("llm error")
	}
	return raw, err
}
