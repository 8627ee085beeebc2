package analysis

import (
	"context"

	"github.com/rs/zerolog"

	"thematica/internal/llm"
	"thematica/internal/types"
)

// DefaultBatchSize is the number of units per analyst call.
const DefaultBatchSize = 10

// Analyst runs the primary bulk-coding pass: fixed-size batches, one
// gateway call each. A failing batch is logged and dropped; coverage gaps
// are preferable to failing the whole job.
type Analyst struct {
	Gateway   *llm.Gateway
	BatchSize int
	Log       zerolog.Logger
}

// Code returns the raw per-unit records accumulated across all batches.
// The records are untrusted model output; run them through a Resolver
// before use.
func (a *Analyst) Code(ctx context.Context, units []types.DataUnit, themes []types.Theme, fewShot string) []RawAssignment {
	size := a.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	ctx = llm.WithStage(ctx, "analyst")

	var out []RawAssignment
	for start := 0; start < len(units); start += size {
		end := start + size
		if end > len(units) {
			end = len(units)
		}
		batch := units[start:end]

		var raw []RawAssignment
		if err := a.Gateway.GenerateJSON(ctx, AnalystPrompt(themes, batch, fewShot), &raw); err != nil {
			a.Log.Warn().
				Err(err).
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Msg("analyst batch dropped")
			continue
		}
		out = append(out, raw...)
	}
	return out
}
