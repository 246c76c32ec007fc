package parsers

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FormatKind identifies a supported analysis report format.
type FormatKind string

const (
	// FormatTradosCSVChars is the Trados CSV layout carrying a Characters
	// sub-column in every category block.
	FormatTradosCSVChars FormatKind = "trados_csv_with_characters"
	// FormatTradosCSV is the Trados CSV layout without Characters columns.
	FormatTradosCSV FormatKind = "trados_csv"
	// FormatPhraseJSON is the hierarchical Phrase analysis export.
	FormatPhraseJSON FormatKind = "phrase_json"
	// FormatSpreadsheet is a tabular xlsx export.
	FormatSpreadsheet FormatKind = "spreadsheet"
	// FormatUnknown means no format matched confidently.
	FormatUnknown FormatKind = "unknown"
)

// Detection is the detector's verdict. Reason is filled when Kind is
// FormatUnknown so the caller can offer manual mapping with context.
type Detection struct {
	Kind   FormatKind `json:"kind"`
	Reason string     `json:"reason,omitempty"`
}

// tradosIndicators are category labels that identify a Trados header line.
var tradosIndicators = []string{
	"Context Match", "Repetitions", "100%", "95% - 99%", "No Match", "Total",
}

var xlsxMagic = []byte{'P', 'K', 0x03, 0x04}

// Detect classifies raw report content by structure, never by file
// extension alone. It is a pure function of the input and does not panic
// on malformed data.
func Detect(data []byte, filenameHint string) Detection {
	if len(bytes.TrimSpace(data)) == 0 {
		return Detection{Kind: FormatUnknown, Reason: "input is empty"}
	}

	if bytes.HasPrefix(data, xlsxMagic) {
		return Detection{Kind: FormatSpreadsheet}
	}

	trimmed := bytes.TrimLeft(stripBOM(data), " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return detectPhraseJSON(trimmed)
	}

	return detectTradosCSV(stripBOM(data))
}

func detectPhraseJSON(data []byte) Detection {
	var probe struct {
		ProjectName          string            `json:"projectName"`
		AnalyseLanguageParts []json.RawMessage `json:"analyseLanguageParts"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Detection{Kind: FormatUnknown, Reason: "JSON input is not valid JSON"}
	}
	if probe.ProjectName == "" || probe.AnalyseLanguageParts == nil {
		return Detection{Kind: FormatUnknown, Reason: "JSON input lacks projectName/analyseLanguageParts keys"}
	}
	return Detection{Kind: FormatPhraseJSON}
}

func detectTradosCSV(data []byte) Detection {
	lines := splitLines(string(data))
	if len(lines) < 2 {
		return Detection{Kind: FormatUnknown, Reason: "fewer than two header lines"}
	}
	first, second := lines[0], lines[1]

	hasCategories := false
	for _, indicator := range tradosIndicators {
		if strings.Contains(first, indicator) {
			hasCategories = true
			break
		}
	}
	if !hasCategories {
		return Detection{Kind: FormatUnknown, Reason: "no known category labels on the first line"}
	}
	if !strings.Contains(first, ";") || !strings.Contains(second, ";") {
		return Detection{Kind: FormatUnknown, Reason: "header lines are not semicolon-delimited"}
	}
	if !strings.Contains(first, ";;;") {
		return Detection{Kind: FormatUnknown, Reason: "first line lacks category block separators"}
	}
	subHeaders := []string{"File", "Segments", "Words", "Percent"}
	hasSubHeader := false
	for _, h := range subHeaders {
		if strings.Contains(second, h) {
			hasSubHeader = true
			break
		}
	}
	if !hasSubHeader {
		return Detection{Kind: FormatUnknown, Reason: "second line lacks Segments/Words sub-column headers"}
	}

	// The Characters variant has one extra sub-column per category block,
	// which shows up both as the label itself and as a wider header row.
	columns := strings.Split(second, ";")
	charCols := 0
	for _, col := range columns {
		if strings.Contains(col, "Characters") {
			charCols++
		}
	}
	if charCols >= 3 || len(columns) >= 44 {
		return Detection{Kind: FormatTradosCSVChars}
	}
	return Detection{Kind: FormatTradosCSV}
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

func splitLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
