package trados

import (
	"fmt"
	"strings"

	"github.com/username/catcost/backend/src/models"
)

// fieldIndex holds the resolved column offsets of one category block.
// -1 marks a sub-column the layout does not carry.
type fieldIndex struct {
	Segments   int
	Words      int
	Characters int
	Placeables int
	Percent    int
}

func newFieldIndex() fieldIndex {
	return fieldIndex{Segments: -1, Words: -1, Characters: -1, Placeables: -1, Percent: -1}
}

// columnMapping is the header index built in phase one: block label to
// column offsets. Phase two reads cell values by resolved offset only.
type columnMapping struct {
	WithCharacters bool
	FileCol        int
	Categories     map[models.MatchCategory]fieldIndex
	Order          []models.MatchCategory
	TotalWordsCol  int // -1 when the layout has no Total block
}

const fixedLeadingColumns = 3 // File, Tagging Errors, Chars/Word

// buildColumnMapping indexes the two Trados header lines. Block
// boundaries come from the labelled cells of the first line; when an
// export ships merged (blank) labels the standard category order is
// assigned positionally instead.
func buildColumnMapping(headerLines []string) (*columnMapping, error) {
	if len(headerLines) < 2 {
		return nil, fmt.Errorf("%w: Trados CSV requires two header lines", models.ErrMalformedInput)
	}

	blockLabels := splitCells(headerLines[0])
	subHeaders := splitCells(headerLines[1])

	mapping := &columnMapping{
		WithCharacters: detectCharactersVariant(subHeaders),
		FileCol:        0,
		Categories:     make(map[models.MatchCategory]fieldIndex),
		TotalWordsCol:  -1,
	}

	for i, header := range subHeaders {
		if i >= 5 {
			break
		}
		if strings.Contains(strings.ToLower(header), "file") {
			mapping.FileCol = i
			break
		}
	}

	starts := blockStarts(blockLabels)
	if len(starts) == 0 {
		assignPositionally(mapping, len(subHeaders))
		return mapping, nil
	}

	for idx, start := range starts {
		end := len(subHeaders)
		if idx+1 < len(starts) {
			end = starts[idx+1]
		}
		label := strings.TrimSpace(blockLabels[start])

		if label == "Total" {
			mapping.TotalWordsCol = findField(subHeaders, start, end, "words")
			continue
		}

		cat, ok := models.CategoryFromTradosHeader(label)
		if !ok {
			// Unknown block: skip it, offsets of later blocks are
			// unaffected since they come from their own labels.
			continue
		}
		mapping.Categories[cat] = indexBlock(subHeaders, start, end, mapping.WithCharacters)
		mapping.Order = append(mapping.Order, cat)
	}

	if len(mapping.Categories) == 0 {
		return nil, fmt.Errorf("%w: no recognizable category blocks in Trados header", models.ErrMalformedInput)
	}
	return mapping, nil
}

// indexBlock resolves sub-column offsets inside one block, by sub-header
// name first and by the variant's positional layout when a name is blank.
func indexBlock(subHeaders []string, start, end int, withCharacters bool) fieldIndex {
	fi := newFieldIndex()
	positional := positionalFields(withCharacters)
	pos := 0
	for i := start; i < end && i < len(subHeaders); i++ {
		name := strings.ToLower(strings.TrimSpace(subHeaders[i]))
		field := ""
		switch {
		case strings.Contains(name, "segments"):
			field = "segments"
		case strings.Contains(name, "words"):
			field = "words"
		case strings.Contains(name, "characters"):
			field = "characters"
		case strings.Contains(name, "placeables"):
			field = "placeables"
		case strings.Contains(name, "percent"):
			field = "percent"
		default:
			if pos < len(positional) {
				field = positional[pos]
			}
		}
		pos++
		switch field {
		case "segments":
			fi.Segments = i
		case "words":
			fi.Words = i
		case "characters":
			fi.Characters = i
		case "placeables":
			fi.Placeables = i
		case "percent":
			fi.Percent = i
		}
	}
	return fi
}

// assignPositionally lays the standard category order over consecutive
// fixed-width blocks. Only used when every block label is blank.
func assignPositionally(mapping *columnMapping, totalColumns int) {
	width := len(positionalFields(mapping.WithCharacters))
	col := fixedLeadingColumns
	for _, cat := range models.StandardCategories {
		if col+width > totalColumns {
			break
		}
		fi := newFieldIndex()
		fields := positionalFields(mapping.WithCharacters)
		for j, field := range fields {
			switch field {
			case "segments":
				fi.Segments = col + j
			case "words":
				fi.Words = col + j
			case "characters":
				fi.Characters = col + j
			case "placeables":
				fi.Placeables = col + j
			case "percent":
				fi.Percent = col + j
			}
		}
		mapping.Categories[cat] = fi
		mapping.Order = append(mapping.Order, cat)
		col += width
	}
	if col+1 < totalColumns {
		mapping.TotalWordsCol = col + 1 // Total block: Segments, Words, ...
	}
}

func positionalFields(withCharacters bool) []string {
	if withCharacters {
		return []string{"segments", "words", "characters", "placeables", "percent"}
	}
	return []string{"segments", "words", "placeables", "percent"}
}

// blockStarts returns the indices of labelled cells past the fixed
// leading columns.
func blockStarts(blockLabels []string) []int {
	var starts []int
	for i, label := range blockLabels {
		if i < fixedLeadingColumns && strings.TrimSpace(label) == "" {
			continue
		}
		if strings.TrimSpace(label) != "" {
			starts = append(starts, i)
		}
	}
	return starts
}

func detectCharactersVariant(subHeaders []string) bool {
	count := 0
	for _, h := range subHeaders {
		if strings.Contains(h, "Characters") {
			count++
		}
	}
	return count >= 3 || len(subHeaders) >= 44
}

func findField(subHeaders []string, start, end int, field string) int {
	for i := start; i < end && i < len(subHeaders); i++ {
		if strings.Contains(strings.ToLower(subHeaders[i]), field) {
			return i
		}
	}
	return -1
}

func splitCells(line string) []string {
	cells := strings.Split(line, ";")
	for i := range cells {
		cells[i] = strings.Trim(strings.TrimSpace(cells[i]), `"`)
	}
	return cells
}
