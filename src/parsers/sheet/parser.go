// Package sheet parses tabular spreadsheet exports whose column layout is
// not fixed in advance: one row per match category, columns bound to
// canonical fields by header keywords or by a caller-supplied mapping.
package sheet

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/utils"
)

// headerSearchRows caps how deep the automatic header scan looks.
const headerSearchRows = 10

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse attempts automatic column matching. When it fails the returned
// error is a *MappingRequiredError carrying the detected header row and
// raw column list; the caller resolves the mapping externally and retries
// through ParseWithMapping.
func (p *Parser) Parse(r io.Reader, filename string) (*models.ParseResult, error) {
	data, rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	headerRow, mapping := findHeader(rows)
	if headerRow < 0 {
		return nil, &MappingRequiredError{Request: MappingRequest{
			Filename:  filename,
			HeaderRow: -1,
			Columns:   firstNonEmptyRow(rows),
			Missing:   requiredFields,
		}}
	}
	if missing := missingRequired(mapping); len(missing) > 0 {
		return nil, &MappingRequiredError{Request: MappingRequest{
			Filename:  filename,
			HeaderRow: headerRow,
			Columns:   rows[headerRow],
			Missing:   missing,
		}}
	}
	return extract(data, rows, headerRow, mapping, filename)
}

// ParseWithMapping parses with an explicit column mapping, typically one
// the user confirmed after a MappingRequiredError.
func (p *Parser) ParseWithMapping(r io.Reader, filename string, headerRow int, mapping ColumnMapping) (*models.ParseResult, error) {
	data, rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if headerRow < 0 || headerRow >= len(rows) {
		return nil, fmt.Errorf("%w: header row %d out of range", models.ErrMalformedInput, headerRow)
	}
	if err := mapping.Validate(len(rows[headerRow])); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}
	return extract(data, rows, headerRow, mapping, filename)
}

func readRows(r io.Reader) ([]byte, [][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read spreadsheet input: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: not a readable spreadsheet: %v", models.ErrMalformedInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: spreadsheet holds no sheets", models.ErrMalformedInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q is empty", models.ErrMalformedInput, sheets[0])
	}
	return data, rows, nil
}

// findHeader scans the leading rows for the one that resolves the most
// canonical fields, preferring complete required coverage.
func findHeader(rows [][]string) (int, ColumnMapping) {
	bestRow, bestScore := -1, 0
	var bestMapping ColumnMapping
	limit := min(len(rows), headerSearchRows)
	for i := 0; i < limit; i++ {
		mapping := autoMapColumns(rows[i])
		score := len(mapping)
		if len(missingRequired(mapping)) == 0 {
			score += 10
		}
		if score > bestScore {
			bestRow, bestScore, bestMapping = i, score, mapping
		}
	}
	if bestScore == 0 {
		return -1, nil
	}
	return bestRow, bestMapping
}

func extract(data []byte, rows [][]string, headerRow int, mapping ColumnMapping, filename string) (*models.ParseResult, error) {
	analysis := &models.FileAnalysis{
		Filename:   filename,
		CATTool:    "Spreadsheet",
		Categories: make(map[models.MatchCategory]models.CategoryCount),
	}
	analysis.ContentHash = utils.HashBytes(data)

	catCol := mapping[FieldCategory]
	for _, row := range rows[headerRow+1:] {
		label := strings.TrimSpace(cellAt(row, catCol))
		if label == "" {
			continue
		}
		if strings.EqualFold(label, "Total") {
			declared := utils.ParseCount(cellAt(row, mapping[FieldWords]))
			analysis.DeclaredTotalWords = &declared
			continue
		}
		cat, ok := matchCategoryLabel(label)
		if !ok {
			continue // unknown rows (notes, subtotals) are skipped
		}
		count := models.CategoryCount{
			Segments:   countField(row, mapping, FieldSegments),
			Words:      countField(row, mapping, FieldWords),
			Characters: countField(row, mapping, FieldCharacters),
			Placeables: countField(row, mapping, FieldPlaceables),
		}
		if idx, ok := mapping[FieldPercent]; ok {
			count.Percent = utils.ParsePercent(cellAt(row, idx))
		}
		if count.Segments != 0 || count.Words != 0 || count.Characters != 0 || count.Placeables != 0 {
			analysis.Categories[cat] = count
		}

		// Language cells repeat per row in most exports; the first
		// non-empty one wins.
		if analysis.SourceLanguage == "" {
			if idx, ok := mapping[FieldSourceLang]; ok {
				analysis.SourceLanguage = models.NormalizeLanguage(cellAt(row, idx))
			}
		}
		if analysis.TargetLanguage == "" {
			if idx, ok := mapping[FieldTargetLang]; ok {
				analysis.TargetLanguage = models.NormalizeLanguage(cellAt(row, idx))
			}
		}
	}

	if len(analysis.Categories) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet %q holds no recognizable category rows", models.ErrMalformedInput, filename)
	}
	if analysis.SourceLanguage == "" || analysis.TargetLanguage == "" {
		source, target := utils.ParseLanguagePairFromFilename(filename)
		analysis.SourceLanguage, analysis.TargetLanguage = source, target
	}

	warnings, err := analysis.Validate()
	if err != nil {
		return nil, err
	}
	return &models.ParseResult{
		Files:    []models.FileAnalysis{*analysis},
		Warnings: warnings,
	}, nil
}

// matchCategoryLabel resolves a row label to a category, tolerating case
// and whitespace differences and the Phrase key spellings.
func matchCategoryLabel(label string) (models.MatchCategory, bool) {
	if cat, ok := models.CategoryFromDisplayName(label); ok {
		return cat, true
	}
	if cat, ok := models.CategoryFromPhraseKey(label); ok {
		return cat, true
	}
	norm := strings.Join(strings.Fields(strings.ToLower(label)), " ")
	for _, cat := range models.AllCategories {
		display := strings.Join(strings.Fields(strings.ToLower(string(cat))), " ")
		if norm == display || norm == strings.ReplaceAll(display, " - ", "-") {
			return cat, true
		}
	}
	// Range labels without the surrounding spaces, e.g. "95%-99%".
	compact := strings.ReplaceAll(norm, " ", "")
	for _, cat := range models.AllCategories {
		if compact == strings.ReplaceAll(strings.ToLower(string(cat)), " ", "") {
			return cat, true
		}
	}
	return "", false
}

func countField(row []string, mapping ColumnMapping, field string) int {
	idx, ok := mapping[field]
	if !ok {
		return 0
	}
	return utils.ParseCount(cellAt(row, idx))
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func firstNonEmptyRow(rows [][]string) []string {
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return row
			}
		}
	}
	return nil
}
