package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	llmclient "thematica/internal/llm/client"
	"thematica/internal/util/jsonutil"
)

// RepairPolicy controls how the gateway reacts to a response that is not
// valid JSON. Provider errors are never retried here; only parse failures.
type RepairPolicy struct {
	// MaxAttempts is the total number of parse attempts. 2 means one
	// repair re-prompt after the initial call.
	MaxAttempts int
	// AppendParseError appends the decoder's error text to the re-prompt so
	// the model can fix its own syntax.
	AppendParseError bool
}

// DefaultRepairPolicy allows exactly one repair attempt carrying the
// parse error.
func DefaultRepairPolicy() RepairPolicy {
	return RepairPolicy{MaxAttempts: 2, AppendParseError: true}
}

// Gateway turns an LLMClient's raw text into decoded JSON values. It strips
// Markdown code fences, decodes into the caller's value, and on a parse
// failure re-prompts per its RepairPolicy. A second malformed payload
// propagates as an error; it is never silently swallowed.
type Gateway struct {
	client llmclient.LLMClient
	policy RepairPolicy
	log    zerolog.Logger
}

func NewGateway(client llmclient.LLMClient, policy RepairPolicy, log zerolog.Logger) *Gateway {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Gateway{client: client, policy: policy, log: log}
}

// Client returns the underlying (possibly middleware-wrapped) client.
func (g *Gateway) Client() llmclient.LLMClient { return g.client }

// GenerateJSON sends the prompt and decodes the response into out.
func (g *Gateway) GenerateJSON(ctx context.Context, prompt string, out any) error {
	p := prompt
	var lastErr error
	for attempt := 1; attempt <= g.policy.MaxAttempts; attempt++ {
		raw, err := g.client.GenerateJSON(ctx, p)
		if err != nil {
			return err
		}
		if err := jsonutil.Unmarshal(raw, out); err == nil {
			return nil
		} else {
			lastErr = err
		}
		g.log.Warn().
			Str("stage", StageFrom(ctx)).
			Int("attempt", attempt).
			Err(lastErr).
			Msg("llm returned malformed JSON")
		if attempt < g.policy.MaxAttempts && g.policy.AppendParseError {
			p = prompt + fmt.Sprintf(
				"\n\nERROR: The previous response was invalid JSON. Error: %s.\nFix the JSON syntax and return ONLY the valid JSON.",
				lastErr.Error(),
			)
		}
	}
	return fmt.Errorf("llm: response did not parse after %d attempts: %w", g.policy.MaxAttempts, lastErr)
}
