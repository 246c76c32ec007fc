package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the ingestion/costing pipeline. Callers match with
// errors.Is and map them to user-facing responses; none of these abort
// the process.
var (
	// ErrUnrecognizedFormat: the detector could not classify the input.
	// Recoverable by supplying a manual column mapping.
	ErrUnrecognizedFormat = errors.New("unrecognized analysis format")

	// ErrMalformedInput: the format was recognized but the content is
	// structurally broken (missing file-info line, empty job, ...).
	ErrMalformedInput = errors.New("malformed analysis input")

	// ErrRateNotFound: a category with non-zero words has no applicable
	// rate at any hierarchy level.
	ErrRateNotFound = errors.New("no applicable rate found")

	// ErrCurrencyConflict: line items resolve to more than one currency.
	ErrCurrencyConflict = errors.New("line items resolve to mixed currencies")
)

// RateNotFoundError names the exact missing rate key so the caller can
// render a precise message.
type RateNotFoundError struct {
	TranslatorID   int64
	ClientID       *int64
	LanguagePairID int64
	Category       MatchCategory
}

func (e *RateNotFoundError) Error() string {
	client := "general"
	if e.ClientID != nil {
		client = fmt.Sprintf("client %d", *e.ClientID)
	}
	return fmt.Sprintf("no applicable rate for category %q (translator %d, %s, language pair %d)",
		e.Category, e.TranslatorID, client, e.LanguagePairID)
}

func (e *RateNotFoundError) Unwrap() error { return ErrRateNotFound }

// CurrencyConflictError lists the currencies that collided.
type CurrencyConflictError struct {
	Currencies []string
}

func (e *CurrencyConflictError) Error() string {
	return fmt.Sprintf("cannot sum line items across currencies: %s", strings.Join(e.Currencies, ", "))
}

func (e *CurrencyConflictError) Unwrap() error { return ErrCurrencyConflict }

// Warning codes. Warnings travel alongside a successful result; they never
// replace it.
const (
	WarnValidationMismatch = "VALIDATION_MISMATCH"
	WarnTotalRowMismatch   = "TOTAL_ROW_MISMATCH"
	WarnDefaultRateUsed    = "DEFAULT_RATE_USED"
)

// Warning is a non-fatal finding attached to a parse or calculation result.
type Warning struct {
	Code     string `json:"code"`
	File     string `json:"file,omitempty"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
	Expected int    `json:"expected,omitempty"`
	Found    int    `json:"found,omitempty"`
}
