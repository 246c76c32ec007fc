package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en", NormalizeLanguage(" EN "))
	assert.Equal(t, "pt-br", NormalizeLanguage("pt-BR"))
	assert.Equal(t, "", NormalizeLanguage("   "))
}

func TestLanguagePairValid(t *testing.T) {
	assert.True(t, LanguagePair{SourceLanguage: "en", TargetLanguage: "de"}.Valid())
	assert.False(t, LanguagePair{SourceLanguage: "en", TargetLanguage: "en"}.Valid())
	assert.False(t, LanguagePair{SourceLanguage: "en"}.Valid())
	assert.Equal(t, "en>de", LanguagePair{SourceLanguage: "en", TargetLanguage: "de"}.PairCode())
}

func TestRateSnapshotLookup(t *testing.T) {
	clientID := int64(7)
	general := Rate{
		TranslatorID:   1,
		LanguagePairID: 3,
		Category:       CategoryNoMatch,
		RatePerWord:    decimal.RequireFromString("0.12"),
		Currency:       "EUR",
	}
	clientSpecific := general
	clientSpecific.ClientID = &clientID
	clientSpecific.RatePerWord = decimal.RequireFromString("0.10")

	snapshot := NewRateSnapshot([]Rate{general, clientSpecific})
	require.Equal(t, 2, snapshot.Len())

	got, ok := snapshot.Lookup(1, &clientID, 3, CategoryNoMatch)
	require.True(t, ok)
	assert.True(t, got.RatePerWord.Equal(clientSpecific.RatePerWord))
	assert.True(t, got.IsClientSpecific())

	got, ok = snapshot.Lookup(1, nil, 3, CategoryNoMatch)
	require.True(t, ok)
	assert.True(t, got.RatePerWord.Equal(general.RatePerWord))
	assert.False(t, got.IsClientSpecific())

	_, ok = snapshot.Lookup(1, nil, 3, CategoryMatch95)
	assert.False(t, ok)

	otherClient := int64(8)
	_, ok = snapshot.Lookup(1, &otherClient, 3, CategoryNoMatch)
	assert.False(t, ok, "a client-specific lookup never falls through inside the snapshot")
}
