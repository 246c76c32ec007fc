package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tradosHeader1 = `File;Tagging Errors;Chars/Word;Context Match;;;;Repetitions;;;;100%;;;;95% - 99%;;;;85% - 94%;;;;75% - 84%;;;;50% - 74%;;;;No Match;;;;Total;;;`

var tradosHeader2 = ";;;" + strings.Repeat("Segments;Words;Placeables;Percent;", 8) + "Segments;Words;Placeables"

var tradosCharsHeader2 = ";;;" + strings.Repeat("Segments;Words;Characters;Placeables;Percent;", 8) + "Segments;Words;Characters"

func TestDetectTradosCSV(t *testing.T) {
	data := []byte(tradosHeader1 + "\n" + tradosHeader2 + "\nrow")
	d := Detect(data, "analysis.csv")
	assert.Equal(t, FormatTradosCSV, d.Kind)
}

func TestDetectTradosCSVWithCharacters(t *testing.T) {
	data := []byte(tradosHeader1 + "\n" + tradosCharsHeader2 + "\nrow")
	d := Detect(data, "analysis.csv")
	assert.Equal(t, FormatTradosCSVChars, d.Kind)
}

func TestDetectTradosCSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(tradosHeader1+"\n"+tradosHeader2+"\nrow")...)
	d := Detect(data, "analysis.csv")
	assert.Equal(t, FormatTradosCSV, d.Kind)
}

func TestDetectPhraseJSON(t *testing.T) {
	data := []byte(`{"projectName": "Website", "analyseLanguageParts": []}`)
	d := Detect(data, "report.json")
	assert.Equal(t, FormatPhraseJSON, d.Kind)
}

func TestDetectPhraseJSONMissingKeys(t *testing.T) {
	d := Detect([]byte(`{"projectName": "Website"}`), "report.json")
	assert.Equal(t, FormatUnknown, d.Kind)
	assert.NotEmpty(t, d.Reason)

	d = Detect([]byte(`{"something": "else"}`), "report.json")
	assert.Equal(t, FormatUnknown, d.Kind)
}

func TestDetectSpreadsheet(t *testing.T) {
	// xlsx files are zip containers; the magic prefix decides.
	data := []byte{'P', 'K', 0x03, 0x04, 0x00, 0x00}
	d := Detect(data, "analysis.xlsx")
	assert.Equal(t, FormatSpreadsheet, d.Kind)
}

func TestDetectEmptyInput(t *testing.T) {
	d := Detect([]byte("   \n  "), "empty.csv")
	assert.Equal(t, FormatUnknown, d.Kind)
	assert.NotEmpty(t, d.Reason)
}

func TestDetectCommaDelimitedIsNotTrados(t *testing.T) {
	data := []byte("File,Context Match,Repetitions\n1,2,3")
	d := Detect(data, "other.csv")
	assert.Equal(t, FormatUnknown, d.Kind)
}

func TestDetectInvalidJSON(t *testing.T) {
	d := Detect([]byte(`{"projectName": `), "broken.json")
	assert.Equal(t, FormatUnknown, d.Kind)
}

func TestGetParser(t *testing.T) {
	for _, kind := range []FormatKind{FormatTradosCSV, FormatTradosCSVChars, FormatPhraseJSON, FormatSpreadsheet} {
		p, err := GetParser(kind)
		assert.NoError(t, err, string(kind))
		assert.NotNil(t, p, string(kind))
	}
	_, err := GetParser(FormatUnknown)
	assert.Error(t, err)
}
