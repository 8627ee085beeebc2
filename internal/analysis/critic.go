package analysis

import (
	"context"

	"thematica/internal/llm"
	"thematica/internal/types"
	"thematica/internal/util/jsonutil"
)

// missingTextPlaceholder is sent to the critic when a unitId from the
// analyst does not match any known unit.
const missingTextPlaceholder = "Error: Text missing"

// AuditItem is one row of the critic's review payload: the draft coding
// joined back with the verbatim unit text.
type AuditItem struct {
	UnitID           string `json:"unitId"`
	Text             string `json:"text"`
	AssignedTheme    string `json:"assignedTheme"`
	AssignedSubTheme string `json:"assignedSubTheme"`
	AnalystReasoning string `json:"analystReasoning"`
}

// Correction is the critic's suggested replacement coding.
type Correction struct {
	ThemeID    jsonutil.FlexString `json:"themeId"`
	SubThemeID jsonutil.FlexString `json:"subThemeId"`
}

// AuditVerdict is one critic ruling: AGREE, or DISAGREE with an optional
// correction and critique.
type AuditVerdict struct {
	UnitID     jsonutil.FlexString `json:"unitId"`
	Status     string              `json:"status"`
	Correction *Correction         `json:"correction"`
	Critique   string              `json:"critique"`
}

// Critic audits all resolved assignments in one call. Unlike the analyst's
// per-batch tolerance, a critic failure fails the job: without the audit
// there is no consensus/conflict partition to act on.
type Critic struct {
	Gateway *llm.Gateway
}

// Audit submits the full draft for review and returns the verdicts.
func (c *Critic) Audit(ctx context.Context, assignments []Assignment, units map[string]types.DataUnit, themes []types.Theme) ([]AuditVerdict, error) {
	payload := make([]AuditItem, len(assignments))
	for i, a := range assignments {
		text := missingTextPlaceholder
		if u, ok := units[a.UnitID]; ok {
			text = u.Text
		}
		payload[i] = AuditItem{
			UnitID:           a.UnitID,
			Text:             text,
			AssignedTheme:    a.ThemeID,
			AssignedSubTheme: a.SubThemeID,
			AnalystReasoning: a.Reasoning,
		}
	}

	ctx = llm.WithStage(ctx, "critic")
	var verdicts []AuditVerdict
	if err := c.Gateway.GenerateJSON(ctx, CriticPrompt(themes, payload), &verdicts); err != nil {
		return nil, err
	}
	return verdicts, nil
}
