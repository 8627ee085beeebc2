package analysis

import (
	"context"

	"thematica/internal/llm"
	"thematica/internal/types"
	"thematica/internal/util/jsonutil"
)

// confidenceAdjudicated is used when a ruling omits a usable confidence.
const confidenceAdjudicated = 0.75

// Ruling is the chief editor's decision for one conflicting unit, decoded
// tolerantly: some models echo themeId/subThemeId instead of the final* keys.
type Ruling struct {
	UnitID          jsonutil.FlexString `json:"unitId"`
	FinalThemeID    jsonutil.FlexString `json:"finalThemeId"`
	FinalSubThemeID jsonutil.FlexString `json:"finalSubThemeId"`
	ThemeID         jsonutil.FlexString `json:"themeId"`
	SubThemeID      jsonutil.FlexString `json:"subThemeId"`
	Confidence      jsonutil.FlexFloat  `json:"confidence"`
	Ruling          string              `json:"ruling"`
}

// Adjudicator resolves conflicts with a single call to the more capable
// model. It is only invoked when conflicts exist; an empty conflict set
// must never cost an adjudication call.
type Adjudicator struct {
	Gateway  *llm.Gateway
	Resolver *Resolver
}

// Decide returns one adjudicated coding per conflict the editor ruled on.
// ID fallback order: the ruling's final IDs, then the ruling's echoed IDs,
// then the analyst's original coding, then the taxonomy default, so a ruling
// can never introduce an ID the taxonomy does not contain.
func (a *Adjudicator) Decide(ctx context.Context, themes []types.Theme, conflicts []Conflict) ([]ConsensusUnit, error) {
	if len(conflicts) == 0 {
		return nil, nil
	}

	ctx = llm.WithStage(ctx, "adjudicator")
	var rulings []Ruling
	if err := a.Gateway.GenerateJSON(ctx, JudgePrompt(themes, conflicts), &rulings); err != nil {
		return nil, err
	}

	analystByUnit := make(map[string]ConflictOption, len(conflicts))
	for _, c := range conflicts {
		analystByUnit[c.UnitID] = c.OptionA
	}

	out := make([]ConsensusUnit, 0, len(rulings))
	for _, r := range rulings {
		unitID := r.UnitID.String()
		themeID := firstUsable(r.FinalThemeID.String(), r.ThemeID.String())
		subID := firstUsable(r.FinalSubThemeID.String(), r.SubThemeID.String())
		if opt, ok := analystByUnit[unitID]; ok {
			themeID = firstUsable(themeID, opt.ThemeID)
			subID = firstUsable(subID, opt.SubThemeID)
		}
		// Route through the resolver so an unknown ID still lands on a real
		// taxonomy entry instead of leaking into the final dataset.
		resolved := a.Resolver.Resolve(RawAssignment{
			UnitID:    jsonutil.FlexString(unitID),
			ThemeID:   jsonutil.FlexString(themeID),
			SubID:     jsonutil.FlexString(subID),
			Reasoning: r.Ruling,
		})
		resolved.StrictFit = false

		confidence := float64(r.Confidence)
		if confidence <= 0 || confidence > 1 {
			confidence = confidenceAdjudicated
		}
		out = append(out, ConsensusUnit{
			Assignment:    resolved,
			Confidence:    confidence,
			PeerValidated: false,
		})
	}
	return out, nil
}

func firstUsable(candidates ...string) string {
	for _, c := range candidates {
		if c != "" && c != "null" {
			return c
		}
	}
	return ""
}
