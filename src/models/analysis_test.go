package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAnalysisTotals(t *testing.T) {
	analysis := FileAnalysis{
		Filename:       "handbook.docx",
		SourceLanguage: "en",
		TargetLanguage: "de",
		Categories: map[MatchCategory]CategoryCount{
			CategoryRepetitions: {Segments: 10, Words: 120},
			CategoryMatch100:    {Segments: 5, Words: 80},
			CategoryNoMatch:     {Segments: 30, Words: 600},
		},
	}

	assert.Equal(t, 800, analysis.TotalWords())
	assert.Equal(t, 45, analysis.TotalSegments())
	assert.Equal(t, "en>de", analysis.LanguagePairCode())
	assert.Equal(t, 80, analysis.Category(CategoryMatch100).Words)
	assert.Zero(t, analysis.Category(CategoryContextMatch).Words, "absent category reads as zero")
}

func TestFileAnalysisValidate(t *testing.T) {
	valid := FileAnalysis{
		Filename:       "a.docx",
		SourceLanguage: "en",
		TargetLanguage: "de",
		Categories:     map[MatchCategory]CategoryCount{CategoryNoMatch: {Words: 10}},
	}
	warnings, err := valid.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	missingLang := valid
	missingLang.TargetLanguage = ""
	_, err = missingLang.Validate()
	assert.ErrorIs(t, err, ErrMalformedInput)

	samePair := valid
	samePair.TargetLanguage = "en"
	_, err = samePair.Validate()
	assert.ErrorIs(t, err, ErrMalformedInput)

	negative := valid
	negative.Categories = map[MatchCategory]CategoryCount{CategoryNoMatch: {Words: -1}}
	_, err = negative.Validate()
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestFileAnalysisValidateDeclaredTotalMismatch(t *testing.T) {
	declared := 99
	analysis := FileAnalysis{
		Filename:           "b.docx",
		SourceLanguage:     "en",
		TargetLanguage:     "fr",
		Categories:         map[MatchCategory]CategoryCount{CategoryNoMatch: {Words: 100}},
		DeclaredTotalWords: &declared,
	}

	warnings, err := analysis.Validate()
	require.NoError(t, err, "a declared-total mismatch is a warning, never an error")
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnValidationMismatch, warnings[0].Code)
	assert.Equal(t, 99, warnings[0].Expected)
	assert.Equal(t, 100, warnings[0].Found)
}

func TestMatch100BreakdownSum(t *testing.T) {
	b := Match100Breakdown{TM: 50, MT: 40, NT: 10}
	assert.Equal(t, 100, b.Sum())
}

func TestCategoryLookups(t *testing.T) {
	cat, ok := CategoryFromPhraseKey("match95")
	require.True(t, ok)
	assert.Equal(t, CategoryMatch95, cat)

	cat, ok = CategoryFromTradosHeader("Context Match")
	require.True(t, ok)
	assert.Equal(t, CategoryContextMatch, cat)

	cat, ok = CategoryFromDisplayName("MT Match")
	require.True(t, ok)
	assert.Equal(t, CategoryMTMatch, cat)

	_, ok = CategoryFromPhraseKey("somethingElse")
	assert.False(t, ok)

	assert.True(t, CategoryMatch100.SupportsMTBreakdown())
	assert.False(t, CategoryMatch95.SupportsMTBreakdown())
	assert.Len(t, StandardCategories, 8)
	assert.Len(t, AllCategories, 9)
}
