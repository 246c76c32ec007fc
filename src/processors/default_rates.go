package processors

import (
	"github.com/shopspring/decimal"

	"github.com/username/catcost/backend/src/models"
)

// defaultRatesPerWord is the system default price table, used only when
// the deployment enables default-rate fallback and the hierarchy resolves
// nothing for a category.
var defaultRatesPerWord = map[models.MatchCategory]string{
	models.CategoryContextMatch: "0.03",
	models.CategoryRepetitions:  "0.03",
	models.CategoryMatch100:     "0.05",
	models.CategoryMatch95:      "0.08",
	models.CategoryMatch85:      "0.10",
	models.CategoryMatch75:      "0.11",
	models.CategoryMatch50:      "0.12",
	models.CategoryNoMatch:      "0.12",
	models.CategoryMTMatch:      "0.02",
}

// DefaultRate returns the system default rate for a category, priced in
// the given currency, with no minimum fee.
func DefaultRate(cat models.MatchCategory, currency string) (models.Rate, bool) {
	raw, ok := defaultRatesPerWord[cat]
	if !ok {
		return models.Rate{}, false
	}
	perWord, err := decimal.NewFromString(raw)
	if err != nil {
		return models.Rate{}, false
	}
	return models.Rate{
		Category:    cat,
		RatePerWord: perWord,
		MinimumFee:  decimal.Zero,
		Currency:    currency,
	}, true
}
