package models

import "fmt"

// CategoryCount holds the reported figures for one match category within
// one analyzed file. Words is the only field costing depends on; the rest
// are informational.
type CategoryCount struct {
	Segments   int     `json:"segments"`
	Words      int     `json:"words"`
	Placeables int     `json:"placeables"`
	Characters int     `json:"characters,omitempty"`
	Percent    float64 `json:"percent,omitempty"`
}

// Match100Breakdown splits the 100% category's words by origin: TM
// (translation memory), MT (machine translation) and NT (100% matches
// with no memory hit at all).
type Match100Breakdown struct {
	TM int `json:"tm"`
	MT int `json:"mt"`
	NT int `json:"nt"`
}

// Sum returns the total words covered by the breakdown.
func (b Match100Breakdown) Sum() int {
	return b.TM + b.MT + b.NT
}

// FileAnalysis is the canonical, format-independent representation of one
// analyzed file's word/match counts. Every parser produces it; the cost
// calculator consumes it. Instances are immutable once produced.
type FileAnalysis struct {
	Filename    string `json:"filename"`
	CATTool     string `json:"cat_tool,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`

	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`

	// Categories holds per-category counts. Iterate via StandardCategories
	// for deterministic order; an absent category means zero occurrences,
	// not unknown.
	Categories map[MatchCategory]CategoryCount `json:"categories"`

	// Match100 is set only when the source format reported a TM/MT/NT
	// split for the 100% category. When nil the calculator derives the
	// split from the project's MT percentage.
	Match100 *Match100Breakdown `json:"match100_breakdown,omitempty"`

	// DeclaredTotalWords carries the source's own total when it declares
	// one (e.g. the Total row of a Trados CSV). Validated, not recomputed.
	DeclaredTotalWords *int `json:"declared_total_words,omitempty"`
}

// Category returns the counts for a category, zero-valued when absent.
func (f *FileAnalysis) Category(cat MatchCategory) CategoryCount {
	return f.Categories[cat]
}

// TotalWords sums word counts across all categories.
func (f *FileAnalysis) TotalWords() int {
	total := 0
	for _, count := range f.Categories {
		total += count.Words
	}
	return total
}

// TotalSegments sums segment counts across all categories.
func (f *FileAnalysis) TotalSegments() int {
	total := 0
	for _, count := range f.Categories {
		total += count.Segments
	}
	return total
}

// LanguagePairCode returns the pair in "src>tgt" form.
func (f *FileAnalysis) LanguagePairCode() string {
	return f.SourceLanguage + ">" + f.TargetLanguage
}

// Validate checks structural invariants and returns the warnings that
// should accompany the analysis. A declared-total mismatch is a warning,
// not an error; negative counts and a broken language pair are errors.
func (f *FileAnalysis) Validate() ([]Warning, error) {
	if f.SourceLanguage == "" || f.TargetLanguage == "" {
		return nil, fmt.Errorf("%w: file %q has an incomplete language pair (%q>%q)",
			ErrMalformedInput, f.Filename, f.SourceLanguage, f.TargetLanguage)
	}
	if f.SourceLanguage == f.TargetLanguage {
		return nil, fmt.Errorf("%w: file %q has identical source and target language %q",
			ErrMalformedInput, f.Filename, f.SourceLanguage)
	}
	for cat, count := range f.Categories {
		if count.Words < 0 || count.Segments < 0 || count.Placeables < 0 || count.Characters < 0 {
			return nil, fmt.Errorf("%w: file %q category %q has a negative count",
				ErrMalformedInput, f.Filename, cat)
		}
	}
	if f.Match100 != nil {
		if f.Match100.TM < 0 || f.Match100.MT < 0 || f.Match100.NT < 0 {
			return nil, fmt.Errorf("%w: file %q has a negative 100%% breakdown value",
				ErrMalformedInput, f.Filename)
		}
	}

	var warnings []Warning
	if f.DeclaredTotalWords != nil && *f.DeclaredTotalWords != f.TotalWords() {
		warnings = append(warnings, Warning{
			Code:     WarnValidationMismatch,
			File:     f.Filename,
			Message:  "declared total word count disagrees with the sum of category word counts",
			Expected: *f.DeclaredTotalWords,
			Found:    f.TotalWords(),
		})
	}
	return warnings, nil
}
