package services

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/catcost/backend/src/config"
	"github.com/username/catcost/backend/src/database"
	"github.com/username/catcost/backend/src/logger"
	"github.com/username/catcost/backend/src/models"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{
		DefaultMTPercentage: 70,
		DefaultRatesEnabled: true,
		DefaultCurrency:     "EUR",
	}
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })
}

func testRate(pairID int64) models.Rate {
	return models.Rate{
		TranslatorID:   1,
		LanguagePairID: pairID,
		Category:       models.CategoryNoMatch,
		RatePerWord:    decimal.RequireFromString("0.12"),
		MinimumFee:     decimal.RequireFromString("25.00"),
		Currency:       "EUR",
	}
}

func TestSaveAndListRates(t *testing.T) {
	setupTestDB(t)
	svc := NewRateService()

	pair, err := svc.GetOrCreateLanguagePair("EN", "de")
	require.NoError(t, err)
	require.Positive(t, pair.ID)
	assert.Equal(t, "en", pair.SourceLanguage)

	saved, err := svc.SaveRate(testRate(pair.ID))
	require.NoError(t, err)
	assert.Positive(t, saved.ID)

	rates, err := svc.ListRates(1)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	got := rates[0]
	assert.Nil(t, got.ClientID, "general rates come back with no client")
	assert.Equal(t, models.CategoryNoMatch, got.Category)
	assert.Equal(t, "0.12", got.RatePerWord.StringFixed(2))
	assert.Equal(t, "25.00", got.MinimumFee.StringFixed(2))
}

func TestSaveRateUpserts(t *testing.T) {
	setupTestDB(t)
	svc := NewRateService()
	pair, err := svc.GetOrCreateLanguagePair("en", "de")
	require.NoError(t, err)

	_, err = svc.SaveRate(testRate(pair.ID))
	require.NoError(t, err)

	updated := testRate(pair.ID)
	updated.RatePerWord = decimal.RequireFromString("0.15")
	_, err = svc.SaveRate(updated)
	require.NoError(t, err)

	rates, err := svc.ListRates(1)
	require.NoError(t, err)
	require.Len(t, rates, 1, "same key updates in place")
	assert.Equal(t, "0.15", rates[0].RatePerWord.StringFixed(2))
}

func TestSaveRateClientSpecificCoexistsWithGeneral(t *testing.T) {
	setupTestDB(t)
	svc := NewRateService()
	pair, err := svc.GetOrCreateLanguagePair("en", "de")
	require.NoError(t, err)

	_, err = svc.SaveRate(testRate(pair.ID))
	require.NoError(t, err)

	clientID := int64(7)
	specific := testRate(pair.ID)
	specific.ClientID = &clientID
	specific.RatePerWord = decimal.RequireFromString("0.10")
	_, err = svc.SaveRate(specific)
	require.NoError(t, err)

	rates, err := svc.ListRates(1)
	require.NoError(t, err)
	require.Len(t, rates, 2)
}

func TestSaveRateValidation(t *testing.T) {
	setupTestDB(t)
	svc := NewRateService()
	pair, err := svc.GetOrCreateLanguagePair("en", "de")
	require.NoError(t, err)

	bad := testRate(pair.ID)
	bad.Category = "Fuzzy-ish"
	_, err = svc.SaveRate(bad)
	assert.Error(t, err)

	bad = testRate(pair.ID)
	bad.RatePerWord = decimal.RequireFromString("-0.01")
	_, err = svc.SaveRate(bad)
	assert.Error(t, err)

	bad = testRate(pair.ID)
	bad.Currency = ""
	_, err = svc.SaveRate(bad)
	assert.Error(t, err)
}

func TestGetOrCreateLanguagePairIdempotent(t *testing.T) {
	setupTestDB(t)
	svc := NewRateService()

	first, err := svc.GetOrCreateLanguagePair("en", "DE")
	require.NoError(t, err)
	second, err := svc.GetOrCreateLanguagePair(" EN ", "de")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.GetOrCreateLanguagePair("en", "en")
	assert.Error(t, err)
	_, err = svc.GetOrCreateLanguagePair("", "de")
	assert.Error(t, err)
}

func TestSnapshotReflectsMutations(t *testing.T) {
	setupTestDB(t)
	svc := NewRateService()
	pair, err := svc.GetOrCreateLanguagePair("en", "de")
	require.NoError(t, err)

	snap, err := svc.Snapshot(1)
	require.NoError(t, err)
	assert.Zero(t, snap.Len())

	saved, err := svc.SaveRate(testRate(pair.ID))
	require.NoError(t, err)

	snap, err = svc.Snapshot(1)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	rate, ok := snap.Lookup(1, nil, pair.ID, models.CategoryNoMatch)
	require.True(t, ok)
	assert.Equal(t, "0.12", rate.RatePerWord.StringFixed(2))

	require.NoError(t, svc.DeleteRate(saved.ID))
	snap, err = svc.Snapshot(1)
	require.NoError(t, err)
	assert.Zero(t, snap.Len(), "deletion invalidates the cached snapshot")
}

func TestDeleteRateNotFound(t *testing.T) {
	setupTestDB(t)
	svc := NewRateService()
	assert.Error(t, svc.DeleteRate(12345))
}
