package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/username/catcost/backend/src/database"
	"github.com/username/catcost/backend/src/logger"
	"github.com/username/catcost/backend/src/models"
)

const (
	snapshotCacheTTL     = 5 * time.Minute
	snapshotCachePurge   = 10 * time.Minute
	snapshotCacheKeyFmt  = "rates:snapshot:%d"
	generalClientIDInRow = 0
)

type rateService struct {
	cache *cache.Cache
}

// NewRateService creates the rate service with its snapshot cache.
func NewRateService() RateService {
	return &rateService{
		cache: cache.New(snapshotCacheTTL, snapshotCachePurge),
	}
}

// SaveRate inserts or updates a rate keyed by (translator, client,
// language pair, category). SQLite treats NULL client_id values as
// distinct in UNIQUE indexes, so general rates are stored with
// client_id 0 instead of NULL to keep the upsert honest.
func (s *rateService) SaveRate(rate models.Rate) (models.Rate, error) {
	if _, ok := models.CategoryFromDisplayName(string(rate.Category)); !ok {
		return models.Rate{}, fmt.Errorf("unknown category %q", rate.Category)
	}
	if rate.RatePerWord.IsNegative() {
		return models.Rate{}, errors.New("rate per word cannot be negative")
	}
	if rate.MinimumFee.IsNegative() {
		return models.Rate{}, errors.New("minimum fee cannot be negative")
	}
	if rate.Currency == "" {
		return models.Rate{}, errors.New("currency is required")
	}

	clientID := int64(generalClientIDInRow)
	if rate.ClientID != nil {
		clientID = *rate.ClientID
	}

	res, err := database.DB.Exec(`
		INSERT INTO rates (translator_id, client_id, language_pair_id, category, rate_per_word, minimum_fee, minimum_fee_enabled, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(translator_id, client_id, language_pair_id, category) DO UPDATE SET
			rate_per_word = excluded.rate_per_word,
			minimum_fee = excluded.minimum_fee,
			minimum_fee_enabled = excluded.minimum_fee_enabled,
			currency = excluded.currency`,
		rate.TranslatorID, clientID, rate.LanguagePairID, string(rate.Category),
		rate.RatePerWord.Round(models.RatePrecision).String(),
		rate.MinimumFee.Round(models.MoneyPrecision).String(),
		rate.MinimumFeeEnabled, rate.Currency)
	if err != nil {
		return models.Rate{}, fmt.Errorf("error saving rate: %w", err)
	}

	id, err := res.LastInsertId()
	if err == nil && id > 0 {
		rate.ID = id
	}
	s.invalidateSnapshot(rate.TranslatorID)
	logger.L.Info("Rate saved", "translatorID", rate.TranslatorID, "category", rate.Category)
	return rate, nil
}

func (s *rateService) DeleteRate(id int64) error {
	var translatorID int64
	err := database.DB.QueryRow("SELECT translator_id FROM rates WHERE id = ?", id).Scan(&translatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("rate %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("error looking up rate: %w", err)
	}

	if _, err := database.DB.Exec("DELETE FROM rates WHERE id = ?", id); err != nil {
		return fmt.Errorf("error deleting rate: %w", err)
	}
	s.invalidateSnapshot(translatorID)
	return nil
}

func (s *rateService) ListRates(translatorID int64) ([]models.Rate, error) {
	rows, err := database.DB.Query(`
		SELECT id, translator_id, client_id, language_pair_id, category, rate_per_word, minimum_fee, minimum_fee_enabled, currency
		FROM rates WHERE translator_id = ? ORDER BY language_pair_id, client_id, category`, translatorID)
	if err != nil {
		return nil, fmt.Errorf("error listing rates: %w", err)
	}
	defer rows.Close()

	var rates []models.Rate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

// GetOrCreateLanguagePair returns the stored pair for a normalized
// source/target combination, inserting it on first sight.
func (s *rateService) GetOrCreateLanguagePair(source, target string) (models.LanguagePair, error) {
	src := models.NormalizeLanguage(source)
	tgt := models.NormalizeLanguage(target)
	if src == "" || tgt == "" {
		return models.LanguagePair{}, errors.New("source and target languages are required")
	}
	if src == tgt {
		return models.LanguagePair{}, errors.New("source and target languages must differ")
	}

	pair := models.LanguagePair{SourceLanguage: src, TargetLanguage: tgt}
	err := database.DB.QueryRow(
		"SELECT id FROM language_pairs WHERE source_language = ? AND target_language = ?", src, tgt).Scan(&pair.ID)
	if err == nil {
		return pair, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.LanguagePair{}, fmt.Errorf("error looking up language pair: %w", err)
	}

	res, err := database.DB.Exec(
		"INSERT INTO language_pairs (source_language, target_language) VALUES (?, ?)", src, tgt)
	if err != nil {
		return models.LanguagePair{}, fmt.Errorf("error creating language pair: %w", err)
	}
	pair.ID, err = res.LastInsertId()
	if err != nil {
		return models.LanguagePair{}, fmt.Errorf("error reading language pair id: %w", err)
	}
	return pair, nil
}

// Snapshot loads all of a translator's rates into an immutable
// snapshot, served from cache until a mutation invalidates it.
func (s *rateService) Snapshot(translatorID int64) (*models.RateSnapshot, error) {
	key := fmt.Sprintf(snapshotCacheKeyFmt, translatorID)
	if cached, found := s.cache.Get(key); found {
		if snap, ok := cached.(*models.RateSnapshot); ok {
			return snap, nil
		}
	}

	rates, err := s.ListRates(translatorID)
	if err != nil {
		return nil, err
	}
	snap := models.NewRateSnapshot(rates)
	s.cache.Set(key, snap, cache.DefaultExpiration)
	return snap, nil
}

func (s *rateService) invalidateSnapshot(translatorID int64) {
	s.cache.Delete(fmt.Sprintf(snapshotCacheKeyFmt, translatorID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRate(row rowScanner) (models.Rate, error) {
	var (
		rate        models.Rate
		clientID    int64
		category    string
		ratePerWord string
		minimumFee  string
	)
	err := row.Scan(&rate.ID, &rate.TranslatorID, &clientID, &rate.LanguagePairID,
		&category, &ratePerWord, &minimumFee, &rate.MinimumFeeEnabled, &rate.Currency)
	if err != nil {
		return models.Rate{}, fmt.Errorf("error scanning rate: %w", err)
	}

	if clientID != generalClientIDInRow {
		rate.ClientID = &clientID
	}
	rate.Category = models.MatchCategory(category)
	rate.RatePerWord, err = decimal.NewFromString(ratePerWord)
	if err != nil {
		return models.Rate{}, fmt.Errorf("invalid stored rate value %q: %w", ratePerWord, err)
	}
	rate.MinimumFee, err = decimal.NewFromString(minimumFee)
	if err != nil {
		return models.Rate{}, fmt.Errorf("invalid stored minimum fee %q: %w", minimumFee, err)
	}
	return rate, nil
}
