package analysis

import "thematica/internal/types"

// LostContextText marks a coded unit whose unitId matched nothing in the
// original dataset. It is a detectable failure marker, not normal output.
const LostContextText = "Observation context lost"

// Result is the pipeline's output: the uniformly shaped coded dataset plus
// the theme/sub-theme frequency counts the dashboard renders.
type Result struct {
	CodedUnits     []types.CodedUnit `json:"codedUnits"`
	ThemeCounts    map[string]int    `json:"themeCounts"`
	SubThemeCounts map[string]int    `json:"subThemeCounts"`
}

// Merge concatenates consensus then adjudicated units into the final
// dataset. Original verbatim text is re-attached by unitId lookup; text the
// model may have echoed back is never trusted. Ordering beyond "consensus
// first" is not guaranteed; consumers index by unitId.
func Merge(consensus, adjudicated []ConsensusUnit, units map[string]types.DataUnit) Result {
	coded := make([]types.CodedUnit, 0, len(consensus)+len(adjudicated))
	attach := func(u ConsensusUnit) types.CodedUnit {
		text := LostContextText
		if orig, ok := units[u.UnitID]; ok {
			text = orig.Text
		}
		return types.CodedUnit{
			UnitID:        u.UnitID,
			Text:          text,
			ThemeID:       u.ThemeID,
			SubThemeID:    u.SubThemeID,
			Confidence:    u.Confidence,
			Reasoning:     u.Reasoning,
			PeerValidated: u.PeerValidated,
			StrictFit:     u.StrictFit,
		}
	}
	for _, u := range consensus {
		coded = append(coded, attach(u))
	}
	for _, u := range adjudicated {
		coded = append(coded, attach(u))
	}

	themeCounts := make(map[string]int)
	subThemeCounts := make(map[string]int)
	for _, u := range coded {
		themeCounts[u.ThemeID]++
		subThemeCounts[u.SubThemeID]++
	}
	return Result{CodedUnits: coded, ThemeCounts: themeCounts, SubThemeCounts: subThemeCounts}
}
