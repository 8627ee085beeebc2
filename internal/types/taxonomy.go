package types

import (
	"fmt"
	"strings"
)

// FirstFallback returns the taxonomy's first theme and sub-theme IDs, the
// deterministic substitute for unresolvable model references. Empty strings
// are returned only for an empty taxonomy.
func FirstFallback(themes []Theme) (themeID, subThemeID string) {
	if len(themes) == 0 {
		return "", ""
	}
	themeID = themes[0].ID
	if len(themes[0].SubThemes) > 0 {
		subThemeID = themes[0].SubThemes[0].ID
	}
	return themeID, subThemeID
}

// ThemeByID returns the theme with the given id.
func ThemeByID(themes []Theme, id string) (Theme, bool) {
	for _, t := range themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// NormalizeTaxonomy assigns synthetic IDs and names to themes and sub-themes
// that arrive without them. Upstream stages are supposed to deliver
// well-formed taxonomies; this is boundary defense, not repair of user data.
func NormalizeTaxonomy(themes []Theme) []Theme {
	out := make([]Theme, len(themes))
	for i, t := range themes {
		if strings.TrimSpace(t.ID) == "" {
			t.ID = fmt.Sprintf("t%d", i+1)
		}
		if strings.TrimSpace(t.Name) == "" {
			t.Name = fmt.Sprintf("Theme %d", i+1)
		}
		subs := make([]SubTheme, len(t.SubThemes))
		for j, s := range t.SubThemes {
			if strings.TrimSpace(s.ID) == "" {
				s.ID = fmt.Sprintf("%s-s%d", t.ID, j+1)
			}
			if strings.TrimSpace(s.Name) == "" {
				s.Name = fmt.Sprintf("Sub-theme %d", j+1)
			}
			subs[j] = s
		}
		t.SubThemes = subs
		out[i] = t
	}
	return out
}
