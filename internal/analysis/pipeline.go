package analysis

import (
	"context"

	"github.com/rs/zerolog"

	"thematica/internal/llm"
	"thematica/internal/types"
)

// Request is one bulk-analysis job's input.
type Request struct {
	Units             []types.DataUnit
	Themes            []types.Theme
	Corrections       []types.SampleCorrection
	GoldStandardUnits []types.GoldStandardUnit
}

// Pipeline chains the bulk-coding passes: analyst → resolution → critic →
// consensus split → adjudication (conflicts only) → merge. Stages run
// strictly in order; each consumes the previous stage's output.
//
// Jobs cannot be canceled once started; the only terminal states are a full
// result or a failure.
type Pipeline struct {
	flash     *llm.Gateway // analyst + critic
	pro       *llm.Gateway // adjudication
	batchSize int
	log       zerolog.Logger
}

func NewPipeline(flash, pro *llm.Gateway, batchSize int, log zerolog.Logger) *Pipeline {
	return &Pipeline{flash: flash, pro: pro, batchSize: batchSize, log: log}
}

// Run executes the full chain for one job. Analyst batches degrade
// gracefully; critic and adjudication failures fail the job (all-or-nothing
// at the job level, best-effort at the batch level).
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	themes := types.NormalizeTaxonomy(req.Themes)
	unitsByID := make(map[string]types.DataUnit, len(req.Units))
	for _, u := range req.Units {
		unitsByID[u.ID] = u
	}

	p.log.Info().
		Int("units", len(req.Units)).
		Int("themes", len(themes)).
		Int("gold_standard", len(req.GoldStandardUnits)).
		Msg("bulk analysis started")

	fewShot := FewShotBlock(req.GoldStandardUnits, req.Corrections)

	analyst := &Analyst{Gateway: p.flash, BatchSize: p.batchSize, Log: p.log}
	raw := analyst.Code(ctx, req.Units, themes, fewShot)
	if len(raw) < len(req.Units) {
		p.log.Warn().
			Int("coded", len(raw)).
			Int("units", len(req.Units)).
			Msg("analyst coverage incomplete")
	}

	resolver := NewResolver(themes)
	assignments := make([]Assignment, len(raw))
	for i, r := range raw {
		assignments[i] = resolver.Resolve(r)
	}

	critic := &Critic{Gateway: p.flash}
	verdicts, err := critic.Audit(ctx, assignments, unitsByID, themes)
	if err != nil {
		return Result{}, err
	}

	consensus, conflicts := SplitConsensus(assignments, verdicts, unitsByID)

	var adjudicated []ConsensusUnit
	if len(conflicts) > 0 {
		p.log.Info().Int("conflicts", len(conflicts)).Msg("adjudicating conflicts")
		judge := &Adjudicator{Gateway: p.pro, Resolver: resolver}
		adjudicated, err = judge.Decide(ctx, themes, conflicts)
		if err != nil {
			return Result{}, err
		}
	}

	result := Merge(consensus, adjudicated, unitsByID)
	p.log.Info().
		Int("coded_units", len(result.CodedUnits)).
		Int("consensus", len(consensus)).
		Int("adjudicated", len(adjudicated)).
		Int("id_fallbacks", resolver.FallbackCount()).
		Msg("bulk analysis finished")
	return result, nil
}
