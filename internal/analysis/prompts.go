package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"thematica/internal/types"
)

// Prompt builders are pure functions of their inputs: no state, no I/O.
// Wherever the answer set is enumerable the taxonomy is serialized with
// explicit indices and the model is told to respond with indices, which is
// the main defense against ID hallucination.

const noGoldStandardLine = "None - apply the Taxonomy operational definitions only."

// indexedTheme is the taxonomy shape embedded in the analyst prompt.
type indexedTheme struct {
	Index     int               `json:"index"`
	Name      string            `json:"name"`
	SubThemes []indexedSubTheme `json:"subThemes"`
}

type indexedSubTheme struct {
	SubIndex    int    `json:"subIndex"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func indexedTaxonomy(themes []types.Theme) []indexedTheme {
	out := make([]indexedTheme, len(themes))
	for i, t := range themes {
		subs := make([]indexedSubTheme, len(t.SubThemes))
		for j, s := range t.SubThemes {
			subs[j] = indexedSubTheme{SubIndex: j, Name: s.Name, Description: s.Description}
		}
		out[i] = indexedTheme{Index: i, Name: t.Name, SubThemes: subs}
	}
	return out
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

// FewShotBlock renders gold-standard units and calibration corrections as
// the worked-examples section of the analyst prompt. Unit text is truncated
// to 300 characters per example.
func FewShotBlock(gold []types.GoldStandardUnit, corrections []types.SampleCorrection) string {
	if len(gold) == 0 && len(corrections) == 0 {
		return noGoldStandardLine
	}
	var lines []string
	for _, g := range gold {
		text := g.Text
		if len(text) > 300 {
			text = text[:300] + "..."
		}
		lines = append(lines, fmt.Sprintf("Unit %s: %q → Theme: %s, Sub-theme: %s", g.UnitID, text, g.ThemeID, g.SubThemeID))
	}
	for _, c := range corrections {
		lines = append(lines, fmt.Sprintf(
			"Unit %s: the draft coding %s/%s was corrected by the researcher to %s/%s. Apply the corrected logic to similar units.",
			c.UnitID, c.OriginalThemeID, c.OriginalSubThemeID, c.CorrectedThemeID, c.CorrectedSubThemeID))
	}
	return strings.Join(lines, "\n       ")
}

// AnalystPrompt instructs the bulk analyst to code one batch of units
// against the taxonomy, answering with array indices.
func AnalystPrompt(themes []types.Theme, units []types.DataUnit, fewShot string) string {
	var b strings.Builder
	b.WriteString("### Role\n")
	b.WriteString("You are a Production Qualitative Analyst. You are scaling a thematic analysis across a large dataset.\n\n")
	b.WriteString("### Inputs\n")
	b.WriteString("1. **The Taxonomy (Codebook):**\n")
	b.WriteString(mustJSON(indexedTaxonomy(themes)))
	b.WriteString("\n\n2. **Gold Standard Examples (USER VALIDATED - FOLLOW THESE STRICTLY):**\n       ")
	b.WriteString(fewShot)
	b.WriteString("\n\n3. **Data to Analyze:** ")
	b.WriteString(mustJSON(units))
	b.WriteString("\n\n### Task\n")
	b.WriteString("Code the \"Data to Analyze\" using the Taxonomy. Assign a theme and sub-theme to *every* unit (no nulls).\n\n")
	b.WriteString("**CRITICAL: Use Array Indices for IDs.**\n")
	b.WriteString("- Instead of \"themeId\", return \"themeIndex\" (integer).\n")
	b.WriteString("- Instead of \"subThemeId\", return \"subThemeIndex\" (integer).\n\n")
	b.WriteString("### Alignment Strategy\n")
	b.WriteString("1. **Pattern Matching:** Compare new units against the \"Gold Standard Examples.\" If a new unit resembles a Gold Standard example, apply the same coding logic.\n")
	b.WriteString("2. **Operational Definitions:** For units that do not resemble the examples, choose the *best available* theme/sub-theme from the \"description\" fields.\n")
	b.WriteString("3. **Ambiguity:** If a unit is ambiguous, assign your *best guess* and set **strictFit: false** so it is flagged for review. Never return null.\n\n")
	b.WriteString("### Output\n")
	b.WriteString("Return ONLY a JSON array.\nStructure:\n")
	b.WriteString(`[
  {
    "unitId": "u105",
    "themeIndex": 0,
    "subThemeIndex": 2,
    "strictFit": true,
    "reasoning": "Similar to Gold Standard example regarding 'server latency'."
  }
]
`)
	b.WriteString("(strictFit: true when clear match; strictFit: false when best guess only. Indices must correspond to the provided Codebook arrays.)\n")
	return b.String()
}

// CriticPrompt instructs the auditor to review every draft assignment,
// deferring to defensible codings so that only clear errors reach the
// expensive adjudication call.
func CriticPrompt(themes []types.Theme, audit []AuditItem) string {
	var b strings.Builder
	b.WriteString("### Role\n")
	b.WriteString("You are a QA Specialist. You are auditing a qualitative coding dataset.\n\n")
	b.WriteString("### Inputs\n")
	b.WriteString("1. **Codebook:** ")
	b.WriteString(mustJSON(themes))
	b.WriteString("\n2. **Coding Draft:** ")
	b.WriteString(mustJSON(audit))
	b.WriteString("\n\n### Task\n")
	b.WriteString("Review each item. Determine if the \"assignedTheme\" and \"assignedSubTheme\" are accurate based on the \"text\" and the Codebook definitions.\n\n")
	b.WriteString("### Rules\n")
	b.WriteString("1. **Deference:** If the assignment is reasonable/defensible, mark it as \"AGREE\". Do not nitpick.\n")
	b.WriteString("2. **Correction:** If the assignment is clearly wrong (hallucination, missed obvious keyword, wrong sentiment), mark as \"DISAGREE\" and provide the *correct* themeId and subThemeId (valid IDs from the codebook).\n")
	b.WriteString("3. **Nuance:** If the text is too short/ambiguous, suggest the *best available* theme/sub-theme (do not suggest null). Mark as \"DISAGREE\" with your suggested correction so it is flagged for review.\n\n")
	b.WriteString("### Output\n")
	b.WriteString("Return ONLY a JSON array.\nFormat:\n")
	b.WriteString(`[
  {
    "unitId": "u0",
    "status": "AGREE",
    "correction": null,
    "critique": "Correctly identified financial constraint."
  },
  {
    "unitId": "u1",
    "status": "DISAGREE",
    "correction": { "themeId": "t2", "subThemeId": "s2-1" },
    "critique": "Text discusses 'time', not 'money'. Should be t2."
  }
]
`)
	return b.String()
}

// JudgePrompt presents each conflict's two competing codings to the chief
// editor for a final ruling.
func JudgePrompt(themes []types.Theme, conflicts []Conflict) string {
	var b strings.Builder
	b.WriteString("### Role\n")
	b.WriteString("You are the Chief Editor. Two analysts (Agent A and Agent B) disagree on the coding of the following text segments.\n\n")
	b.WriteString("### Context\nCodebook: ")
	b.WriteString(mustJSON(themes))
	b.WriteString("\n\n### Task\n")
	b.WriteString("Review the \"Disputed Items\" below. Decide which Agent is correct, or if both are wrong, provide your own coding.\n\n")
	b.WriteString("### Disputed Items\n")
	b.WriteString(mustJSON(conflicts))
	b.WriteString("\n\n### Decision Rules\n")
	b.WriteString("1. **Compare:** Look at Option A (Analyst) and Option B (Critic).\n")
	b.WriteString("2. **Decide:** Which one matches the Codebook definition better?\n")
	b.WriteString("3. **Override:** If both are wrong, provide a \"New Ruling\".\n\n")
	b.WriteString("### Output\n")
	b.WriteString("Return ONLY a JSON array of final decisions.\nFormat:\n")
	b.WriteString(`[
  {
    "unitId": "u5",
    "finalThemeId": "t1",
    "finalSubThemeId": "s1-2",
    "confidence": 0.75,
    "ruling": "Agent B is correct. The text explicitly mentions 'deadlines', fitting 'Time Pressure'."
  }
]
`)
	return b.String()
}
