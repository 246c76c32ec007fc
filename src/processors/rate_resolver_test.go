package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/catcost/backend/src/models"
)

func TestResolveClientSpecificWinsOverGeneral(t *testing.T) {
	clientID := int64(7)
	general := models.Rate{
		TranslatorID:   1,
		LanguagePairID: 3,
		Category:       models.CategoryNoMatch,
		RatePerWord:    decimal.RequireFromString("0.12"),
		Currency:       "EUR",
	}
	clientSpecific := general
	clientSpecific.ClientID = &clientID
	clientSpecific.RatePerWord = decimal.RequireFromString("0.10")

	resolver := NewRateResolver(models.NewRateSnapshot([]models.Rate{general, clientSpecific}))

	rate, err := resolver.Resolve(1, &clientID, 3, models.CategoryNoMatch)
	require.NoError(t, err)
	assert.Equal(t, "0.10", rate.RatePerWord.StringFixed(2))

	rate, err = resolver.Resolve(1, nil, 3, models.CategoryNoMatch)
	require.NoError(t, err)
	assert.Equal(t, "0.12", rate.RatePerWord.StringFixed(2))
}

func TestResolveFallsBackToGeneral(t *testing.T) {
	general := models.Rate{
		TranslatorID:   1,
		LanguagePairID: 3,
		Category:       models.CategoryNoMatch,
		RatePerWord:    decimal.RequireFromString("0.12"),
		Currency:       "EUR",
	}
	resolver := NewRateResolver(models.NewRateSnapshot([]models.Rate{general}))

	otherClient := int64(99)
	rate, err := resolver.Resolve(1, &otherClient, 3, models.CategoryNoMatch)
	require.NoError(t, err)
	assert.Equal(t, "0.12", rate.RatePerWord.StringFixed(2))
	assert.False(t, rate.IsClientSpecific())
}

func TestResolveNotFoundNamesTheKey(t *testing.T) {
	resolver := NewRateResolver(models.NewRateSnapshot(nil))

	clientID := int64(7)
	_, err := resolver.Resolve(1, &clientID, 3, models.CategoryMatch95)
	require.Error(t, err)

	var notFound *models.RateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(1), notFound.TranslatorID)
	require.NotNil(t, notFound.ClientID)
	assert.Equal(t, int64(7), *notFound.ClientID)
	assert.Equal(t, int64(3), notFound.LanguagePairID)
	assert.Equal(t, models.CategoryMatch95, notFound.Category)
	assert.ErrorIs(t, err, models.ErrRateNotFound)
}

func TestResolveIsRepeatable(t *testing.T) {
	general := models.Rate{
		TranslatorID:   1,
		LanguagePairID: 3,
		Category:       models.CategoryRepetitions,
		RatePerWord:    decimal.RequireFromString("0.03"),
		Currency:       "EUR",
	}
	resolver := NewRateResolver(models.NewRateSnapshot([]models.Rate{general}))

	first, err := resolver.Resolve(1, nil, 3, models.CategoryRepetitions)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := resolver.Resolve(1, nil, 3, models.CategoryRepetitions)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
