package analysis

import (
	"thematica/internal/types"
	"thematica/internal/util/jsonutil"
)

// RawAssignment is one analyst record exactly as the model shaped it.
// Every field is untrusted: the model may answer with indices, camelCase or
// snake_case IDs, numbers where strings belong, or the literal "null".
type RawAssignment struct {
	UnitID    jsonutil.FlexString `json:"unitId"`
	AltID     jsonutil.FlexString `json:"id"`
	UID       jsonutil.FlexString `json:"uId"`
	ThemeIdx  jsonutil.FlexInt    `json:"themeIndex"`
	SubIdx    jsonutil.FlexInt    `json:"subThemeIndex"`
	ThemeID   jsonutil.FlexString `json:"themeId"`
	ThemeID2  jsonutil.FlexString `json:"theme_id"`
	SubID     jsonutil.FlexString `json:"subThemeId"`
	SubID2    jsonutil.FlexString `json:"sub_theme_id"`
	StrictFit *bool               `json:"strictFit"`
	Reasoning string              `json:"reasoning"`
}

// Unit returns the first non-empty unit reference.
func (r RawAssignment) Unit() string {
	for _, v := range []jsonutil.FlexString{r.UnitID, r.AltID, r.UID} {
		if s := v.String(); s != "" && s != "null" {
			return s
		}
	}
	return ""
}

// Assignment is a resolved, trusted coding: both IDs refer to existing
// taxonomy entries.
type Assignment struct {
	UnitID     string `json:"unitId"`
	ThemeID    string `json:"themeId"`
	SubThemeID string `json:"subThemeId"`
	Reasoning  string `json:"reasoning"`
	StrictFit  bool   `json:"strictFit"`
}

// Resolver normalizes raw analyst records into valid assignments.
// Preference order: in-range indices, then string IDs verified against the
// taxonomy, then the deterministic first-theme/first-sub-theme default.
// Fallbacks are never errors, but they are counted and surface as
// StrictFit=false so reviewers can find masked model mistakes.
type Resolver struct {
	themes         []types.Theme
	fallbackTheme  string
	fallbackSub    string
	fallbackEvents int
}

func NewResolver(themes []types.Theme) *Resolver {
	t0, s0 := types.FirstFallback(themes)
	return &Resolver{themes: themes, fallbackTheme: t0, fallbackSub: s0}
}

// FallbackCount reports how many theme or sub-theme references required a
// default substitution since the resolver was created.
func (r *Resolver) FallbackCount() int { return r.fallbackEvents }

// Resolve maps one raw record to a valid assignment. Resolving an
// already-valid record is a fixed point: the IDs come back unchanged.
func (r *Resolver) Resolve(raw RawAssignment) Assignment {
	theme, themeFellBack := r.resolveTheme(raw)
	var subID string
	var subFellBack bool
	if themeFellBack {
		// Sub-theme references were relative to whatever theme the model
		// hallucinated; once the theme defaults, the sub-theme defaults too.
		subID, subFellBack = r.fallbackSub, true
	} else {
		subID, subFellBack = r.resolveSubTheme(raw, theme)
	}
	fellBack := themeFellBack || subFellBack
	if fellBack {
		r.fallbackEvents++
	}
	return Assignment{
		UnitID:     raw.Unit(),
		ThemeID:    theme.ID,
		SubThemeID: subID,
		Reasoning:  raw.Reasoning,
		StrictFit:  raw.StrictFit == nil || *raw.StrictFit,
	}.withStrictFit(fellBack)
}

func (a Assignment) withStrictFit(fellBack bool) Assignment {
	if fellBack {
		a.StrictFit = false
	}
	return a
}

func (r *Resolver) resolveTheme(raw RawAssignment) (types.Theme, bool) {
	if raw.ThemeIdx.OK && raw.ThemeIdx.Val >= 0 && raw.ThemeIdx.Val < len(r.themes) {
		return r.themes[raw.ThemeIdx.Val], false
	}
	for _, v := range []jsonutil.FlexString{raw.ThemeID, raw.ThemeID2} {
		id := v.String()
		if id == "" || id == "null" {
			continue
		}
		if t, ok := types.ThemeByID(r.themes, id); ok {
			return t, false
		}
	}
	t, _ := types.ThemeByID(r.themes, r.fallbackTheme)
	return t, true
}

func (r *Resolver) resolveSubTheme(raw RawAssignment, theme types.Theme) (string, bool) {
	if len(theme.SubThemes) == 0 {
		return r.fallbackSub, true
	}
	if raw.SubIdx.OK && raw.SubIdx.Val >= 0 && raw.SubIdx.Val < len(theme.SubThemes) {
		return theme.SubThemes[raw.SubIdx.Val].ID, false
	}
	for _, v := range []jsonutil.FlexString{raw.SubID, raw.SubID2} {
		id := v.String()
		if id == "" || id == "null" {
			continue
		}
		for _, s := range theme.SubThemes {
			if s.ID == id {
				return s.ID, false
			}
		}
	}
	return theme.SubThemes[0].ID, true
}
