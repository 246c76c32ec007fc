package sheet

import (
	"fmt"
	"strings"
)

// Canonical field names a column can be bound to. FieldCategory and
// FieldWords are the minimum a usable mapping must resolve.
const (
	FieldCategory   = "category"
	FieldSegments   = "segments"
	FieldWords      = "words"
	FieldCharacters = "characters"
	FieldPlaceables = "placeables"
	FieldPercent    = "percent"
	FieldSourceLang = "source_language"
	FieldTargetLang = "target_language"
)

// ColumnMapping binds canonical fields to 0-based column indices. It is
// produced automatically from header keywords or supplied by the caller
// when automatic matching failed.
type ColumnMapping map[string]int

// MappingRequest surfaces what the parser saw so a mapping UI can let the
// user bind columns manually. The parser itself never blocks on input.
type MappingRequest struct {
	Filename  string   `json:"filename"`
	HeaderRow int      `json:"header_row"` // 0-based; -1 when no candidate row was found
	Columns   []string `json:"columns"`
	Missing   []string `json:"missing_fields"`
}

// MappingRequiredError signals that automatic column matching failed and
// carries the request for the manual-mapping collaborator.
type MappingRequiredError struct {
	Request MappingRequest
}

func (e *MappingRequiredError) Error() string {
	return fmt.Sprintf("spreadsheet %q needs a manual column mapping (missing: %s)",
		e.Request.Filename, strings.Join(e.Request.Missing, ", "))
}

// headerVocabulary maps normalized header keywords to canonical fields.
var headerVocabulary = map[string]string{
	"category":        FieldCategory,
	"match type":      FieldCategory,
	"match":           FieldCategory,
	"match category":  FieldCategory,
	"segments":        FieldSegments,
	"segment":         FieldSegments,
	"words":           FieldWords,
	"word count":      FieldWords,
	"wordcount":       FieldWords,
	"characters":      FieldCharacters,
	"chars":           FieldCharacters,
	"placeables":      FieldPlaceables,
	"percent":         FieldPercent,
	"percentage":      FieldPercent,
	"%":               FieldPercent,
	"source language": FieldSourceLang,
	"source":          FieldSourceLang,
	"source lang":     FieldSourceLang,
	"target language": FieldTargetLang,
	"target":          FieldTargetLang,
	"target lang":     FieldTargetLang,
}

// requiredFields must resolve before row extraction can proceed.
var requiredFields = []string{FieldCategory, FieldWords}

func normalizeHeader(cell string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(cell))), " ")
}

// autoMapColumns matches one candidate header row against the vocabulary,
// case- and whitespace-insensitively. The first column claiming a field
// wins; later duplicates are ignored.
func autoMapColumns(row []string) ColumnMapping {
	mapping := make(ColumnMapping)
	for i, cell := range row {
		norm := normalizeHeader(cell)
		if norm == "" {
			continue
		}
		field, ok := headerVocabulary[norm]
		if !ok {
			continue
		}
		if _, taken := mapping[field]; !taken {
			mapping[field] = i
		}
	}
	return mapping
}

// missingRequired lists required fields the mapping does not bind.
func missingRequired(mapping ColumnMapping) []string {
	var missing []string
	for _, field := range requiredFields {
		if _, ok := mapping[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// Validate checks a caller-supplied mapping before parsing with it.
func (m ColumnMapping) Validate(columnCount int) error {
	if missing := missingRequired(m); len(missing) > 0 {
		return fmt.Errorf("column mapping lacks required fields: %s", strings.Join(missing, ", "))
	}
	for field, idx := range m {
		if idx < 0 || (columnCount > 0 && idx >= columnCount) {
			return fmt.Errorf("column mapping binds %q to out-of-range column %d", field, idx)
		}
	}
	return nil
}
