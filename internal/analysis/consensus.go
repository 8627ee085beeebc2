package analysis

import (
	"strings"

	"thematica/internal/types"
)

// Provisional confidence scores assigned by the splitter. "Unreviewed" is
// deliberately distinguishable from "reviewed and agreed".
const (
	confidenceAgreed     = 0.95
	confidenceUnreviewed = 0.85
)

// ConsensusUnit is a coding that needs no adjudication.
type ConsensusUnit struct {
	Assignment
	Confidence    float64
	PeerValidated bool
}

// ConflictOption is one side of a disputed coding.
type ConflictOption struct {
	ThemeID    string `json:"themeId"`
	SubThemeID string `json:"subThemeId"`
	Reasoning  string `json:"reasoning"`
}

// Conflict pairs the analyst's coding (OptionA) with the critic's suggested
// correction (OptionB) for one unit. It lives only for the adjudication call.
type Conflict struct {
	UnitID  string         `json:"unitId"`
	Text    string         `json:"text"`
	OptionA ConflictOption `json:"optionA"`
	OptionB ConflictOption `json:"optionB"`
}

// SplitConsensus partitions audited assignments. Critic AGREE → consensus at
// 0.95, peer validated. Anything else the critic examined → conflict. Units
// the critic never mentioned → consensus at 0.85, not peer validated
// (tolerance for partial critic responses).
func SplitConsensus(assignments []Assignment, verdicts []AuditVerdict, units map[string]types.DataUnit) (consensus []ConsensusUnit, conflicts []Conflict) {
	byUnit := make(map[string]Assignment, len(assignments))
	for _, a := range assignments {
		byUnit[a.UnitID] = a
	}

	seen := make(map[string]bool, len(verdicts))
	for _, v := range verdicts {
		unitID := v.UnitID.String()
		original, ok := byUnit[unitID]
		if !ok {
			// The critic invented a unit; nothing to reconcile.
			continue
		}
		seen[unitID] = true
		if strings.EqualFold(strings.TrimSpace(v.Status), "AGREE") {
			consensus = append(consensus, ConsensusUnit{
				Assignment:    original,
				Confidence:    confidenceAgreed,
				PeerValidated: true,
			})
			continue
		}
		var optB ConflictOption
		if v.Correction != nil {
			optB.ThemeID = v.Correction.ThemeID.String()
			optB.SubThemeID = v.Correction.SubThemeID.String()
		}
		optB.Reasoning = v.Critique
		text := ""
		if u, ok := units[unitID]; ok {
			text = u.Text
		}
		conflicts = append(conflicts, Conflict{
			UnitID: unitID,
			Text:   text,
			OptionA: ConflictOption{
				ThemeID:    original.ThemeID,
				SubThemeID: original.SubThemeID,
				Reasoning:  original.Reasoning,
			},
			OptionB: optB,
		})
	}

	for _, a := range assignments {
		if seen[a.UnitID] {
			continue
		}
		consensus = append(consensus, ConsensusUnit{
			Assignment:    a,
			Confidence:    confidenceUnreviewed,
			PeerValidated: false,
		})
	}
	return consensus, conflicts
}
