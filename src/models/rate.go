package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RatePrecision and MoneyPrecision are the fixed decimal scales used by
// all rate and money arithmetic: four places for per-word rates, two for
// amounts in fractional currency units.
const (
	RatePrecision  = 4
	MoneyPrecision = 2
)

// LanguagePair is a normalized source/target language combination.
type LanguagePair struct {
	ID             int64  `json:"id"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// NormalizeLanguage trims and lowercases a language code.
func NormalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// PairCode returns the pair in "src>tgt" form.
func (p LanguagePair) PairCode() string {
	return p.SourceLanguage + ">" + p.TargetLanguage
}

// Valid reports whether the pair has two distinct, non-empty languages.
func (p LanguagePair) Valid() bool {
	return p.SourceLanguage != "" && p.TargetLanguage != "" &&
		p.SourceLanguage != p.TargetLanguage
}

// Rate is one per-word price for a (translator, client, language pair,
// match category) key. ClientID nil means a general rate applying to any
// client of the translator. Rates are immutable inputs during a
// calculation; edits happen only through the rate-management endpoints.
type Rate struct {
	ID                int64           `json:"id"`
	TranslatorID      int64           `json:"translator_id"`
	ClientID          *int64          `json:"client_id,omitempty"`
	LanguagePairID    int64           `json:"language_pair_id"`
	Category          MatchCategory   `json:"category"`
	RatePerWord       decimal.Decimal `json:"rate_per_word"`
	MinimumFee        decimal.Decimal `json:"minimum_fee"`
	MinimumFeeEnabled bool            `json:"minimum_fee_enabled"`
	Currency          string          `json:"currency"`
}

// IsClientSpecific reports whether the rate is bound to one client.
func (r Rate) IsClientSpecific() bool {
	return r.ClientID != nil
}

// rateKey identifies a rate inside a snapshot. ClientID zero stands for
// the general (translator-only) tier.
type rateKey struct {
	TranslatorID   int64
	ClientID       int64
	LanguagePairID int64
	Category       MatchCategory
}

// RateSnapshot is an immutable set of rates taken at one point in time.
// The resolver and calculator read it without locking; it must not be
// mutated while a calculation is in flight.
type RateSnapshot struct {
	rates map[rateKey]Rate
}

// NewRateSnapshot builds a snapshot from a rate list. When the list holds
// duplicates for one exact key the last one wins; storage enforces
// uniqueness so that only matters for hand-built test fixtures.
func NewRateSnapshot(rates []Rate) *RateSnapshot {
	s := &RateSnapshot{rates: make(map[rateKey]Rate, len(rates))}
	for _, r := range rates {
		s.rates[keyFor(r.TranslatorID, r.ClientID, r.LanguagePairID, r.Category)] = r
	}
	return s
}

// Lookup returns the rate for an exact key tuple.
func (s *RateSnapshot) Lookup(translatorID int64, clientID *int64, pairID int64, cat MatchCategory) (Rate, bool) {
	r, ok := s.rates[keyFor(translatorID, clientID, pairID, cat)]
	return r, ok
}

// Len returns the number of rates in the snapshot.
func (s *RateSnapshot) Len() int {
	return len(s.rates)
}

func keyFor(translatorID int64, clientID *int64, pairID int64, cat MatchCategory) rateKey {
	k := rateKey{TranslatorID: translatorID, LanguagePairID: pairID, Category: cat}
	if clientID != nil {
		k.ClientID = *clientID
	}
	return k
}
