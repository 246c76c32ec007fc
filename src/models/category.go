package models

// MatchCategory identifies a translation-memory/MT match-quality bucket.
// The value is the display name shared with the rate-management UI; the
// two sides agree on categories by name, never by position.
type MatchCategory string

const (
	CategoryContextMatch MatchCategory = "Context Match"
	CategoryRepetitions  MatchCategory = "Repetitions"
	CategoryMatch100     MatchCategory = "100%"
	CategoryMatch95      MatchCategory = "95% - 99%"
	CategoryMatch85      MatchCategory = "85% - 94%"
	CategoryMatch75      MatchCategory = "75% - 84%"
	CategoryMatch50      MatchCategory = "50% - 74%"
	CategoryNoMatch      MatchCategory = "No Match"
	CategoryMTMatch      MatchCategory = "MT Match"
)

// AllCategories is the fixed display order, including the MT line.
var AllCategories = []MatchCategory{
	CategoryContextMatch,
	CategoryRepetitions,
	CategoryMatch100,
	CategoryMatch95,
	CategoryMatch85,
	CategoryMatch75,
	CategoryMatch50,
	CategoryNoMatch,
	CategoryMTMatch,
}

// StandardCategories are the buckets a CAT analysis reports directly.
// MT Match never appears in an analysis; it only exists as a rate line.
var StandardCategories = []MatchCategory{
	CategoryContextMatch,
	CategoryRepetitions,
	CategoryMatch100,
	CategoryMatch95,
	CategoryMatch85,
	CategoryMatch75,
	CategoryMatch50,
	CategoryNoMatch,
}

// phraseKeyToCategory maps Phrase JSON category keys to categories.
var phraseKeyToCategory = map[string]MatchCategory{
	"contextMatch": CategoryContextMatch,
	"repetitions":  CategoryRepetitions,
	"match100":     CategoryMatch100,
	"match95":      CategoryMatch95,
	"match85":      CategoryMatch85,
	"match75":      CategoryMatch75,
	"match50":      CategoryMatch50,
	"match0":       CategoryNoMatch,
}

// tradosHeaderToCategory maps Trados CSV block labels to categories.
var tradosHeaderToCategory = map[string]MatchCategory{
	"Context Match": CategoryContextMatch,
	"Repetitions":   CategoryRepetitions,
	"100%":          CategoryMatch100,
	"95% - 99%":     CategoryMatch95,
	"85% - 94%":     CategoryMatch85,
	"75% - 84%":     CategoryMatch75,
	"50% - 74%":     CategoryMatch50,
	"No Match":      CategoryNoMatch,
}

// CategoryFromPhraseKey maps a Phrase JSON key to its category.
func CategoryFromPhraseKey(key string) (MatchCategory, bool) {
	cat, ok := phraseKeyToCategory[key]
	return cat, ok
}

// CategoryFromTradosHeader maps a Trados block label to its category.
func CategoryFromTradosHeader(header string) (MatchCategory, bool) {
	cat, ok := tradosHeaderToCategory[header]
	return cat, ok
}

// CategoryFromDisplayName looks a category up by its display name.
func CategoryFromDisplayName(name string) (MatchCategory, bool) {
	for _, cat := range AllCategories {
		if string(cat) == name {
			return cat, true
		}
	}
	return "", false
}

// SupportsMTBreakdown reports whether the category's words may be split
// between TM and MT origin. Only 100% matches carry that distinction.
func (c MatchCategory) SupportsMTBreakdown() bool {
	return c == CategoryMatch100
}

func (c MatchCategory) String() string {
	return string(c)
}
