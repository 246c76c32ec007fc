package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/parsers"
)

const tradosSample = `File;Tagging Errors;Chars/Word;Context Match;;;;Repetitions;;;;100%;;;;95% - 99%;;;;85% - 94%;;;;75% - 84%;;;;50% - 74%;;;;No Match;;;;Total;;;
;;;Segments;Words;Placeables;Percent;Segments;Words;Placeables;Percent;Segments;Words;Placeables;Percent;Segments;Words;Placeables;Percent;Segments;Words;Placeables;Percent;Segments;Words;Placeables;Percent;Segments;Words;Placeables;Percent;Segments;Words;Placeables;Percent;Segments;Words;Placeables
guide.docx | en>de;0;4.5;2;30;0;3.00;10;120;0;12.00;5;80;0;8.00;0;0;0;0.00;0;0;0;0.00;0;0;0;0.00;4;70;0;7.00;30;700;0;70.00;51;1000;0`

func TestProcessUploadParsesWithoutProject(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	outcome, err := svc.ProcessUpload([]byte(tradosSample), "analysis.csv", "")
	require.NoError(t, err)
	assert.Equal(t, parsers.FormatTradosCSV, outcome.Format)
	assert.Nil(t, outcome.MappingRequest)
	require.NotNil(t, outcome.Result)
	require.Len(t, outcome.Result.Files, 1)
	assert.Equal(t, 1000, outcome.Result.Files[0].TotalWords())
}

func TestProcessUploadUnrecognizedFormat(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	_, err := svc.ProcessUpload([]byte("just some text"), "notes.txt", "")
	assert.ErrorIs(t, err, models.ErrUnrecognizedFormat)
}

func TestProcessUploadUnknownProject(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	_, err := svc.ProcessUpload([]byte(tradosSample), "analysis.csv", "no-such-project")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestCreateProjectDefaultsMTPercentage(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	project, err := svc.CreateProject("Website", 1, nil, -1)
	require.NoError(t, err)
	assert.Equal(t, 70, project.MTPercentage)
	assert.NotEmpty(t, project.ID)

	project, err = svc.CreateProject("Docs", 1, nil, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, project.MTPercentage)

	_, err = svc.CreateProject("", 1, nil, 70)
	assert.Error(t, err)
}

func TestQuoteProjectWithDefaultRates(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	project, err := svc.CreateProject("Website", 1, nil, 70)
	require.NoError(t, err)

	_, err = svc.ProcessUpload([]byte(tradosSample), "analysis.csv", project.ID)
	require.NoError(t, err)

	breakdown, err := svc.QuoteProject(project.ID)
	require.NoError(t, err)

	// 100% words split 24 TM / 56 MT at 70%; all categories priced from
	// the default table since no rates are configured.
	assert.Equal(t, "99.22", breakdown.FinalTotal.StringFixed(2))
	assert.Equal(t, 1000, breakdown.TotalWords)
	assert.Equal(t, "EUR", breakdown.Currency)

	require.NotEmpty(t, breakdown.Warnings)
	for _, w := range breakdown.Warnings {
		assert.Equal(t, models.WarnDefaultRateUsed, w.Code)
	}
}

func TestQuoteProjectDuplicateUploadIsIdempotent(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	project, err := svc.CreateProject("Website", 1, nil, 70)
	require.NoError(t, err)

	_, err = svc.ProcessUpload([]byte(tradosSample), "analysis.csv", project.ID)
	require.NoError(t, err)
	_, err = svc.ProcessUpload([]byte(tradosSample), "analysis.csv", project.ID)
	require.NoError(t, err)

	breakdown, err := svc.QuoteProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, breakdown.TotalWords, "re-uploading the same report adds nothing")
}

func TestQuoteProjectConfiguredRatesBeatDefaults(t *testing.T) {
	setupTestDB(t)
	rateService := NewRateService()
	svc := NewQuoteService(rateService)

	pair, err := rateService.GetOrCreateLanguagePair("en", "de")
	require.NoError(t, err)
	for _, cat := range models.AllCategories {
		_, err = rateService.SaveRate(models.Rate{
			TranslatorID:   1,
			LanguagePairID: pair.ID,
			Category:       cat,
			RatePerWord:    decimal.RequireFromString("0.10"),
			Currency:       "USD",
		})
		require.NoError(t, err)
	}

	project, err := svc.CreateProject("Website", 1, nil, 70)
	require.NoError(t, err)
	_, err = svc.ProcessUpload([]byte(tradosSample), "analysis.csv", project.ID)
	require.NoError(t, err)

	breakdown, err := svc.QuoteProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", breakdown.FinalTotal.StringFixed(2), "flat 0.10 across 1000 words")
	assert.Equal(t, "USD", breakdown.Currency)
	assert.Empty(t, breakdown.Warnings)
}

func TestQuoteProjectRecordsHistory(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	project, err := svc.CreateProject("Website", 1, nil, 70)
	require.NoError(t, err)
	_, err = svc.ProcessUpload([]byte(tradosSample), "analysis.csv", project.ID)
	require.NoError(t, err)

	quotes, err := svc.ListProjectQuotes(project.ID)
	require.NoError(t, err)
	assert.Empty(t, quotes, "no history before the first quote")

	_, err = svc.QuoteProject(project.ID)
	require.NoError(t, err)
	_, err = svc.QuoteProject(project.ID)
	require.NoError(t, err)

	quotes, err = svc.ListProjectQuotes(project.ID)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	for _, q := range quotes {
		assert.Equal(t, project.ID, q.ProjectID)
		var stored models.CostBreakdown
		require.NoError(t, json.Unmarshal([]byte(q.Breakdown), &stored))
		assert.Equal(t, 1000, stored.TotalWords)
	}
}

func TestListProjectQuotesUnknownProject(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	_, err := svc.ListProjectQuotes("no-such-project")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestQuoteProjectWithoutFiles(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	project, err := svc.CreateProject("Empty", 1, nil, 70)
	require.NoError(t, err)
	_, err = svc.QuoteProject(project.ID)
	assert.Error(t, err)
}

func TestQuoteAnalysesRejectsMixedPairs(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	a := models.FileAnalysis{
		Filename: "a.docx", SourceLanguage: "en", TargetLanguage: "de",
		Categories: map[models.MatchCategory]models.CategoryCount{models.CategoryNoMatch: {Words: 10}},
	}
	b := models.FileAnalysis{
		Filename: "b.docx", SourceLanguage: "en", TargetLanguage: "fr",
		Categories: map[models.MatchCategory]models.CategoryCount{models.CategoryNoMatch: {Words: 10}},
	}
	_, err := svc.QuoteAnalyses([]models.FileAnalysis{a, b}, 1, nil, 70)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "language pairs")
}

func TestRatePreviewFallsBackToDefaults(t *testing.T) {
	setupTestDB(t)
	rateService := NewRateService()
	svc := NewQuoteService(rateService)

	preview, err := svc.RatePreview(1, nil, "en", "de")
	require.NoError(t, err)
	require.Len(t, preview, len(models.AllCategories))
	assert.Equal(t, "0.12", preview[string(models.CategoryNoMatch)].RatePerWord.StringFixed(2))
	assert.Equal(t, "0.02", preview[string(models.CategoryMTMatch)].RatePerWord.StringFixed(2))

	pair, err := rateService.GetOrCreateLanguagePair("en", "de")
	require.NoError(t, err)
	_, err = rateService.SaveRate(models.Rate{
		TranslatorID:   1,
		LanguagePairID: pair.ID,
		Category:       models.CategoryNoMatch,
		RatePerWord:    decimal.RequireFromString("0.20"),
		Currency:       "EUR",
	})
	require.NoError(t, err)

	preview, err = svc.RatePreview(1, nil, "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "0.20", preview[string(models.CategoryNoMatch)].RatePerWord.StringFixed(2))
}

func TestProcessUploadHashesAreStable(t *testing.T) {
	setupTestDB(t)
	svc := NewQuoteService(NewRateService())

	first, err := svc.ProcessUpload([]byte(tradosSample), "analysis.csv", "")
	require.NoError(t, err)
	second, err := svc.ProcessUpload([]byte(strings.Clone(tradosSample)), "analysis.csv", "")
	require.NoError(t, err)
	assert.Equal(t, first.Result.Files[0].ContentHash, second.Result.Files[0].ContentHash)
}
