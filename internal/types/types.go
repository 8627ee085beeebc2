package types

// DataUnit is an atomic codable observation produced by segmentation.
// Text is verbatim and never mutated after creation.
type DataUnit struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	SourceID  string `json:"sourceId,omitempty"`
	Speaker   string `json:"speaker,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SubTheme is a leaf of the coding taxonomy. Description is the operational
// definition used as coding instructions.
type SubTheme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Theme is a top-level taxonomy node with an ordered list of sub-themes.
type Theme struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	SubThemes []SubTheme `json:"subThemes"`
}

// SampleCorrection records a human override made during calibration.
type SampleCorrection struct {
	UnitID              string `json:"unitId"`
	OriginalThemeID     string `json:"originalThemeId"`
	OriginalSubThemeID  string `json:"originalSubThemeId"`
	CorrectedThemeID    string `json:"correctedThemeId"`
	CorrectedSubThemeID string `json:"correctedSubThemeId"`
}

// GoldStandardUnit is a human-validated coding used as a worked example.
type GoldStandardUnit struct {
	UnitID     string `json:"unitId"`
	Text       string `json:"text"`
	ThemeID    string `json:"themeId"`
	SubThemeID string `json:"subThemeId"`
}

// CodedUnit is the pipeline's output record. ThemeID and SubThemeID always
// refer to existing taxonomy entries; when the model failed to supply a
// usable reference the first theme/sub-theme is substituted and StrictFit
// is false so a reviewer can find the unit.
type CodedUnit struct {
	UnitID        string  `json:"unitId"`
	Text          string  `json:"text"`
	ThemeID       string  `json:"themeId"`
	SubThemeID    string  `json:"subThemeId"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning,omitempty"`
	PeerValidated bool    `json:"peerValidated"`
	StrictFit     bool    `json:"strictFit"`
}
