package models

import "github.com/shopspring/decimal"

// CostLine is one priced line of a cost breakdown.
type CostLine struct {
	Category    string          `json:"category"`
	Words       int             `json:"words"`
	RatePerWord decimal.Decimal `json:"rate_per_word"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CostBreakdown is the result of one calculation: ordered line items plus
// totals. Produced fresh per request and never persisted by the engine
// itself; the quote service decides what to store.
type CostBreakdown struct {
	Lines             []CostLine      `json:"lines"`
	RawTotal          decimal.Decimal `json:"raw_total"`
	MinimumFee        decimal.Decimal `json:"minimum_fee"`
	MinimumFeeApplied bool            `json:"minimum_fee_applied"`
	FinalTotal        decimal.Decimal `json:"final_total"`
	Currency          string          `json:"currency"`

	TotalWords   int       `json:"total_words"`
	MTPercentage int       `json:"mt_percentage"`
	Warnings     []Warning `json:"warnings,omitempty"`
}

// Line display names for the split 100% category. The TM line keeps the
// plain category name so rate rows keyed by "100%" stay recognizable.
const (
	LineTM100 = "100% (TM)"
	LineMT100 = "100% (MT)"
)
