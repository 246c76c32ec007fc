// Package trados parses Trados CSV analysis reports: two header lines,
// semicolon-delimited, one data row per analyzed file, in either of the
// two column layouts (with or without Characters sub-columns).
package trados

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/utils"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader, filename string) (*models.ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read Trados CSV input: %w", err)
	}
	content := strings.TrimPrefix(string(data), "\uFEFF")

	lines := nonEmptyLines(content)
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: Trados CSV needs two header lines and at least one data row", models.ErrMalformedInput)
	}

	mapping, err := buildColumnMapping(lines[:2])
	if err != nil {
		return nil, err
	}

	contentHash := utils.HashBytes(data)
	result := &models.ParseResult{}
	sumWords := 0
	totalRowWords := -1

	for i, row := range lines[2:] {
		cells := splitCells(row)
		if len(cells) <= mapping.FileCol {
			return nil, fmt.Errorf("%w: data row %d has no file cell", models.ErrMalformedInput, i+1)
		}

		if strings.EqualFold(cells[mapping.FileCol], "Total") {
			if mapping.TotalWordsCol >= 0 && mapping.TotalWordsCol < len(cells) {
				totalRowWords = utils.ParseCount(cells[mapping.TotalWordsCol])
			} else {
				// Some exports repeat the per-category layout on the
				// aggregate row; sum it instead.
				totalRowWords = sumCategoryWords(cells, mapping)
			}
			continue
		}

		analysis, err := p.parseDataRow(cells, mapping, filename)
		if err != nil {
			return nil, err
		}
		analysis.ContentHash = contentHash

		warnings, err := analysis.Validate()
		if err != nil {
			return nil, err
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Files = append(result.Files, *analysis)
		sumWords += analysis.TotalWords()
	}

	if len(result.Files) == 0 {
		return nil, fmt.Errorf("%w: Trados CSV holds no file rows", models.ErrMalformedInput)
	}
	if totalRowWords >= 0 && totalRowWords != sumWords {
		result.Warnings = append(result.Warnings, models.Warning{
			Code:     models.WarnTotalRowMismatch,
			File:     filename,
			Message:  "aggregate Total row word count disagrees with the sum of the per-file rows",
			Expected: totalRowWords,
			Found:    sumWords,
		})
	}
	return result, nil
}

func (p *Parser) parseDataRow(cells []string, mapping *columnMapping, uploadName string) (*models.FileAnalysis, error) {
	fileCell := cells[mapping.FileCol]
	name, source, target, err := parseFileInfo(fileCell)
	if err != nil {
		return nil, err
	}

	analysis := &models.FileAnalysis{
		Filename:       name,
		CATTool:        "Trados",
		SourceLanguage: source,
		TargetLanguage: target,
		Categories:     make(map[models.MatchCategory]models.CategoryCount),
	}

	numericCells := 0
	for _, cat := range mapping.Order {
		fi := mapping.Categories[cat]
		count := models.CategoryCount{
			Segments:   countAt(cells, fi.Segments),
			Words:      countAt(cells, fi.Words),
			Placeables: countAt(cells, fi.Placeables),
			Characters: countAt(cells, fi.Characters),
			Percent:    percentAt(cells, fi.Percent),
		}
		if fi.Words >= 0 && fi.Words < len(cells) && utils.IsNumericCell(cells[fi.Words]) {
			numericCells++
		}
		// Absence means zero occurrences; keep zero-word categories out of
		// the canonical map so serialized analyses stay sparse.
		if count.Segments != 0 || count.Words != 0 || count.Placeables != 0 || count.Characters != 0 {
			analysis.Categories[cat] = count
		}
	}
	if numericCells == 0 {
		return nil, fmt.Errorf("%w: row for file %q holds no numeric word counts", models.ErrMalformedInput, name)
	}

	if mapping.TotalWordsCol >= 0 && mapping.TotalWordsCol < len(cells) &&
		utils.IsNumericCell(cells[mapping.TotalWordsCol]) {
		declared := utils.ParseCount(cells[mapping.TotalWordsCol])
		analysis.DeclaredTotalWords = &declared
	}
	return analysis, nil
}

// parseFileInfo decodes the Trados file cell: "filename | src>tgt". When
// the language part is missing or broken, a pair embedded in the filename
// is the fallback; no pair at all is a parse error.
func parseFileInfo(cell string) (name, source, target string, err error) {
	name = strings.TrimSpace(cell)
	if name == "" {
		return "", "", "", fmt.Errorf("%w: data row has an empty file cell", models.ErrMalformedInput)
	}

	if idx := strings.Index(cell, " | "); idx >= 0 {
		name = strings.TrimSpace(cell[:idx])
		pair := strings.TrimSpace(cell[idx+3:])
		if s, t, ok := strings.Cut(pair, ">"); ok {
			source = models.NormalizeLanguage(s)
			target = models.NormalizeLanguage(t)
		}
	}

	if source == "" || target == "" {
		source, target = utils.ParseLanguagePairFromFilename(name)
	}
	if source == "" || target == "" {
		return "", "", "", fmt.Errorf("%w: file cell %q carries no language pair", models.ErrMalformedInput, cell)
	}
	return name, source, target, nil
}

func sumCategoryWords(cells []string, mapping *columnMapping) int {
	sum := 0
	for _, fi := range mapping.Categories {
		sum += countAt(cells, fi.Words)
	}
	return sum
}

func countAt(cells []string, idx int) int {
	if idx < 0 || idx >= len(cells) {
		return 0
	}
	return utils.ParseCount(cells[idx])
}

func percentAt(cells []string, idx int) float64 {
	if idx < 0 || idx >= len(cells) {
		return 0
	}
	return utils.ParsePercent(cells[idx])
}

func nonEmptyLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
