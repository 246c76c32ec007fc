package processors

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/username/catcost/backend/src/models"
)

// RateLookup supplies the rate for one category, or an error (typically a
// *models.RateNotFoundError) when none applies. The quote service binds
// it to a resolver plus its translator/client/pair key and optional
// default-rate fallback.
type RateLookup func(cat models.MatchCategory) (models.Rate, error)

// CostCalculator prices a set of canonical analyses against resolved
// rates. It is stateless: the same analyses, lookup results and MT
// percentage always yield an identical breakdown.
type CostCalculator struct{}

func NewCostCalculator() *CostCalculator {
	return &CostCalculator{}
}

// SplitWords derives the TM/MT division of a 100%-match word count from
// the MT percentage, with round-half-up so tm+mt always equals total.
func SplitWords(totalWords, mtPercentage int) (tm, mt int) {
	mt = (totalWords*mtPercentage + 50) / 100
	return totalWords - mt, mt
}

// Calculate merges category word counts across all analyses, prices each
// category, splits the 100% bucket between TM and MT, and applies the
// minimum-fee policy. A missing rate for a category with non-zero words
// fails the whole calculation; an empty analysis set yields a zero total.
func (c *CostCalculator) Calculate(analyses []models.FileAnalysis, lookup RateLookup, mtPercentage int) (*models.CostBreakdown, error) {
	if mtPercentage < 0 || mtPercentage > 100 {
		return nil, fmt.Errorf("mt percentage %d out of range [0,100]", mtPercentage)
	}

	merged, tmWords, mtWords := mergeAnalyses(analyses, mtPercentage)

	breakdown := &models.CostBreakdown{
		RawTotal:     decimal.Zero.Round(models.MoneyPrecision),
		MinimumFee:   decimal.Zero.Round(models.MoneyPrecision),
		MTPercentage: mtPercentage,
	}

	var currencies []string
	maxFee := decimal.Zero
	feeEnabled := false

	addLine := func(name string, words int, cat models.MatchCategory) error {
		if words <= 0 {
			return nil
		}
		rate, err := lookup(cat)
		if err != nil {
			return err
		}
		perWord := rate.RatePerWord.Round(models.RatePrecision)
		subtotal := perWord.Mul(decimal.NewFromInt(int64(words))).Round(models.MoneyPrecision)
		breakdown.Lines = append(breakdown.Lines, models.CostLine{
			Category:    name,
			Words:       words,
			RatePerWord: perWord,
			Subtotal:    subtotal,
		})
		breakdown.RawTotal = breakdown.RawTotal.Add(subtotal)
		breakdown.TotalWords += words
		if rate.Currency != "" && !contains(currencies, rate.Currency) {
			currencies = append(currencies, rate.Currency)
		}
		if rate.MinimumFeeEnabled {
			feeEnabled = true
			if rate.MinimumFee.GreaterThan(maxFee) {
				maxFee = rate.MinimumFee
			}
		}
		return nil
	}

	for _, cat := range models.StandardCategories {
		if cat == models.CategoryMatch100 {
			if mtWords == 0 {
				// No MT share: one plain 100% line.
				if err := addLine(string(models.CategoryMatch100), tmWords, models.CategoryMatch100); err != nil {
					return nil, err
				}
				continue
			}
			if err := addLine(models.LineTM100, tmWords, models.CategoryMatch100); err != nil {
				return nil, err
			}
			if err := addLine(models.LineMT100, mtWords, models.CategoryMTMatch); err != nil {
				return nil, err
			}
			continue
		}
		if err := addLine(string(cat), merged[cat], cat); err != nil {
			return nil, err
		}
	}

	if len(currencies) > 1 {
		return nil, &models.CurrencyConflictError{Currencies: currencies}
	}
	if len(currencies) == 1 {
		breakdown.Currency = currencies[0]
	}

	breakdown.FinalTotal = breakdown.RawTotal
	if feeEnabled {
		breakdown.MinimumFee = maxFee.Round(models.MoneyPrecision)
		if breakdown.MinimumFee.GreaterThan(breakdown.RawTotal) {
			breakdown.FinalTotal = breakdown.MinimumFee
			breakdown.MinimumFeeApplied = true
		}
	}
	return breakdown, nil
}

// mergeAnalyses sums per-category words across files and works out the
// 100% TM/MT division. Files carrying an explicit breakdown contribute it
// verbatim (NT words ride on the TM line: they are full matches priced at
// the 100% rate); files without one get the derived split.
func mergeAnalyses(analyses []models.FileAnalysis, mtPercentage int) (map[models.MatchCategory]int, int, int) {
	merged := make(map[models.MatchCategory]int)
	tmWords, mtWords := 0, 0

	for i := range analyses {
		analysis := &analyses[i]
		for cat, count := range analysis.Categories {
			if cat == models.CategoryMatch100 {
				continue // handled below
			}
			merged[cat] += count.Words
		}

		words100 := analysis.Category(models.CategoryMatch100).Words
		if b := analysis.Match100; b != nil {
			tmWords += b.TM + b.NT
			mtWords += b.MT
		} else {
			tm, mt := SplitWords(words100, mtPercentage)
			tmWords += tm
			mtWords += mt
		}
	}
	return merged, tmWords, mtWords
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
