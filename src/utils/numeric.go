package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var langPairRe = regexp.MustCompile(`(?i)([a-z]{2,3})(?:-[A-Za-z]{2})?\s*[>_-]\s*([a-z]{2,3})(?:-[A-Za-z]{2})?`)

// ParseLanguagePairFromFilename pulls a "src>tgt"-style pair out of a
// filename such as "manual_en-de.docx". Returns empty strings when no
// pair is recognizable.
func ParseLanguagePairFromFilename(filename string) (source, target string) {
	m := langPairRe.FindStringSubmatch(filename)
	if m == nil {
		return "", ""
	}
	return strings.ToLower(m[1]), strings.ToLower(m[2])
}

// NormalizeNumber strips locale noise from a numeric cell: surrounding
// quotes, regular and non-breaking spaces as group separators, and
// thousands separators in both "1.234,56" and "1,234.56" conventions.
// The result uses '.' as the decimal mark.
func NormalizeNumber(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return ""
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the later one is the decimal mark.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = replaceSingleSeparator(s, ",")
	case lastDot >= 0:
		s = replaceSingleSeparator(s, ".")
	}
	return s
}

// replaceSingleSeparator decides whether a lone separator is a thousands
// group or a decimal mark: exactly three digits after every occurrence
// (and more than one occurrence, or a value that would otherwise start a
// thousands group) means grouping.
func replaceSingleSeparator(s, sep string) string {
	parts := strings.Split(s, sep)
	grouping := len(parts) > 1
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) != 3 {
			grouping = false
			break
		}
	}
	if grouping && len(parts) == 2 && len(parts[0]) > 3 {
		// "1234,567" is ambiguous; a leading group longer than three
		// digits only occurs with a decimal mark.
		grouping = false
	}
	if grouping {
		return strings.Join(parts, "")
	}
	// Treat as decimal mark.
	return strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
}

// ParseCount converts a count cell to a non-negative integer. A blank or
// non-numeric cell reads as zero: ad-hoc exports legitimately leave empty
// cells where a category has no occurrences. Decimal values truncate.
func ParseCount(raw string) int {
	s := NormalizeNumber(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0
		}
		return int(f)
	}
	return 0
}

// ParsePercent converts a percent cell to a float, tolerating a trailing
// '%' sign. Blank or junk cells read as zero.
func ParsePercent(raw string) float64 {
	s := NormalizeNumber(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}

// IsNumericCell reports whether the cell holds something parseable as a
// number once normalized. Used to tell an unparseable row from benign
// blank cells.
func IsNumericCell(raw string) bool {
	s := NormalizeNumber(raw)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
