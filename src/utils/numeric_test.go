package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguagePairFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		source   string
		target   string
	}{
		{"manual_en-de.docx", "en", "de"},
		{"report en-US>de-DE.csv", "en", "de"},
		{"pt-BR_es.xlsx", "pt", "es"},
		{"no pair here.docx", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		source, target := ParseLanguagePairFromFilename(tt.filename)
		assert.Equal(t, tt.source, source, tt.filename)
		assert.Equal(t, tt.target, target, tt.filename)
	}
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1 234", "1234"},
		{"1.234", "1234"},
		{"12,5", "12.5"},
		{`"7.412"`, "7412"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeNumber(tt.raw), tt.raw)
	}
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 1234, ParseCount("1.234"))
	assert.Equal(t, 1234, ParseCount("1,234"))
	assert.Equal(t, 42, ParseCount("42"))
	assert.Equal(t, 12, ParseCount("12.7"), "decimal counts truncate")
	assert.Equal(t, 0, ParseCount(""))
	assert.Equal(t, 0, ParseCount("n/a"))
	assert.Equal(t, 0, ParseCount("-5"), "negative counts clamp to zero")
}

func TestParsePercent(t *testing.T) {
	assert.InDelta(t, 12.5, ParsePercent("12,5"), 1e-9)
	assert.InDelta(t, 100.0, ParsePercent("100%"), 1e-9)
	assert.InDelta(t, 0.0, ParsePercent(""), 1e-9)
	assert.InDelta(t, 0.0, ParsePercent("junk"), 1e-9)
}

func TestIsNumericCell(t *testing.T) {
	assert.True(t, IsNumericCell("0"))
	assert.True(t, IsNumericCell("1.234,56"))
	assert.False(t, IsNumericCell(""))
	assert.False(t, IsNumericCell("words"))
}
