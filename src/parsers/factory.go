package parsers

import (
	"fmt"
	"io"

	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/parsers/phrase"
	"github.com/username/catcost/backend/src/parsers/sheet"
	"github.com/username/catcost/backend/src/parsers/trados"
)

// Parser turns one concrete report format into canonical analyses. The
// filename is a hint only (language-pair fallback, file identity); parsers
// never touch the filesystem themselves.
type Parser interface {
	Parse(r io.Reader, filename string) (*models.ParseResult, error)
}

// GetParser returns the parser for a detected format. Both Trados CSV
// layouts share one parser; the column mapping sorts the variants out.
func GetParser(kind FormatKind) (Parser, error) {
	switch kind {
	case FormatTradosCSV, FormatTradosCSVChars:
		return trados.NewParser(), nil
	case FormatPhraseJSON:
		return phrase.NewParser(), nil
	case FormatSpreadsheet:
		return sheet.NewParser(), nil
	default:
		return nil, fmt.Errorf("%w: no parser available for format %q", models.ErrUnrecognizedFormat, kind)
	}
}
