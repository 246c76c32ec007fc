// Package phrase parses Phrase (formerly Memsource) JSON analysis
// exports: project -> analyseLanguageParts -> jobs, one canonical
// analysis per job.
package phrase

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/utils"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

type report struct {
	ProjectName          string         `json:"projectName"`
	AnalyseLanguageParts []languagePart `json:"analyseLanguageParts"`
}

type languagePart struct {
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
	Jobs       []job  `json:"jobs"`
}

// job keeps the category entries raw: the fixed key vocabulary is decoded
// through the category table and unknown keys are ignored for forward
// compatibility.
type job struct {
	FileName   string
	SourceLang string
	TargetLang string
	Entries    map[string]json.RawMessage
}

func (j *job) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	j.Entries = all
	if raw, ok := all["fileName"]; ok {
		_ = json.Unmarshal(raw, &j.FileName)
	}
	if raw, ok := all["sourceLang"]; ok {
		_ = json.Unmarshal(raw, &j.SourceLang)
	}
	if raw, ok := all["targetLang"]; ok {
		_ = json.Unmarshal(raw, &j.TargetLang)
	}
	return nil
}

// categoryEntry is one category's figures. The words value of match100
// may itself be an object {sum, tm, mt, nt} carrying the TM/MT split.
type categoryEntry struct {
	Segments   int        `json:"segments"`
	Words      flexiWords `json:"words"`
	Characters int        `json:"characters"`
	Percent    float64    `json:"percent"`
}

type flexiWords struct {
	Total     int
	Breakdown *models.Match100Breakdown
}

func (w *flexiWords) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return ferr
			}
			v = int64(f)
		}
		w.Total = int(v)
		return nil
	}
	var split struct {
		Sum int `json:"sum"`
		TM  int `json:"tm"`
		MT  int `json:"mt"`
		NT  int `json:"nt"`
	}
	if err := json.Unmarshal(data, &split); err != nil {
		return err
	}
	w.Total = split.Sum
	w.Breakdown = &models.Match100Breakdown{TM: split.TM, MT: split.MT, NT: split.NT}
	return nil
}

func (p *Parser) Parse(r io.Reader, filename string) (*models.ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read Phrase JSON input: %w", err)
	}

	var rep report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("%w: invalid Phrase JSON: %v", models.ErrMalformedInput, err)
	}
	if rep.ProjectName == "" || rep.AnalyseLanguageParts == nil {
		return nil, fmt.Errorf("%w: Phrase JSON lacks projectName or analyseLanguageParts", models.ErrMalformedInput)
	}

	contentHash := utils.HashBytes(data)
	result := &models.ParseResult{}

	for pi, part := range rep.AnalyseLanguageParts {
		for ji, j := range part.Jobs {
			analysis, err := parseJob(j, part, filename)
			if err != nil {
				return nil, fmt.Errorf("language part %d job %d: %w", pi, ji, err)
			}
			analysis.ContentHash = contentHash

			warnings, err := analysis.Validate()
			if err != nil {
				return nil, err
			}
			result.Warnings = append(result.Warnings, warnings...)
			result.Files = append(result.Files, *analysis)
		}
	}

	if len(result.Files) == 0 {
		return nil, fmt.Errorf("%w: Phrase JSON %q holds no jobs", models.ErrMalformedInput, rep.ProjectName)
	}
	return result, nil
}

func parseJob(j job, part languagePart, uploadName string) (*models.FileAnalysis, error) {
	name := j.FileName
	if name == "" {
		name = uploadName
	}

	// A job-level pair overrides the language part's.
	source := models.NormalizeLanguage(firstNonEmpty(j.SourceLang, part.SourceLang))
	target := models.NormalizeLanguage(firstNonEmpty(j.TargetLang, part.TargetLang))

	analysis := &models.FileAnalysis{
		Filename:       name,
		CATTool:        "Phrase",
		SourceLanguage: source,
		TargetLanguage: target,
		Categories:     make(map[models.MatchCategory]models.CategoryCount),
	}

	seen := 0
	for key, raw := range j.Entries {
		cat, ok := models.CategoryFromPhraseKey(key)
		if !ok {
			continue // unknown category keys are ignored
		}
		entry, err := decodeEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: category %q of job %q is unreadable: %v",
				models.ErrMalformedInput, key, name, err)
		}
		seen++

		count := models.CategoryCount{
			Segments:   entry.Segments,
			Words:      entry.Words.Total,
			Characters: entry.Characters,
			Percent:    entry.Percent,
		}
		if count.Segments != 0 || count.Words != 0 || count.Characters != 0 {
			analysis.Categories[cat] = count
		}
		if cat.SupportsMTBreakdown() && entry.Words.Breakdown != nil {
			analysis.Match100 = entry.Words.Breakdown
		}
	}

	// Missing keys are zero-count categories; a job with no recognizable
	// category data at all carries nothing to price.
	if seen == 0 {
		return nil, fmt.Errorf("%w: job %q holds no category data", models.ErrMalformedInput, name)
	}
	return analysis, nil
}

// decodeEntry reads one category value. It is normally an object with
// segments/words/characters fields, but match100 may instead be a bare
// {sum, tm, mt, nt} object and older exports ship bare numbers.
func decodeEntry(raw json.RawMessage) (categoryEntry, error) {
	var entry categoryEntry
	if err := json.Unmarshal(raw, &entry); err == nil {
		if entry.Words.Total == 0 && entry.Words.Breakdown == nil && hasKey(raw, "sum") {
			var words flexiWords
			if json.Unmarshal(raw, &words) == nil {
				entry.Words = words
			}
		}
		return entry, nil
	}
	var words flexiWords
	if err := json.Unmarshal(raw, &words); err != nil {
		return categoryEntry{}, err
	}
	entry.Words = words
	return entry, nil
}

func hasKey(raw json.RawMessage, key string) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	_, ok := probe[key]
	return ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
