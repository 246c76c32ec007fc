package services

import (
	"errors"

	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/parsers"
	"github.com/username/catcost/backend/src/parsers/sheet"
)

var (
	ErrParsingFailed   = errors.New("parsing failed")
	ErrProjectNotFound = errors.New("project not found")
)

// UploadOutcome is what an upload produced: either parsed canonical
// analyses (with warnings) or, for spreadsheets that defeated automatic
// column matching, a mapping request for the manual-mapping collaborator.
type UploadOutcome struct {
	Format         parsers.FormatKind    `json:"format"`
	Result         *models.ParseResult   `json:"result,omitempty"`
	MappingRequest *sheet.MappingRequest `json:"mapping_request,omitempty"`
}

// QuoteService is the orchestration surface over detection, parsing,
// project storage and cost calculation.
type QuoteService interface {
	// ProcessUpload detects and parses a report. A non-empty projectID
	// attaches the parsed analyses to that project.
	ProcessUpload(data []byte, filename string, projectID string) (*UploadOutcome, error)

	// ProcessUploadWithMapping parses a spreadsheet with an explicit
	// column mapping after automatic matching failed.
	ProcessUploadWithMapping(data []byte, filename string, projectID string, headerRow int, mapping sheet.ColumnMapping) (*UploadOutcome, error)

	// CreateProject registers a project for a translator/client with an
	// MT percentage (out-of-range values fall back to the default).
	CreateProject(name string, translatorID int64, clientID *int64, mtPercentage int) (*models.Project, error)

	// QuoteProject prices all files of a project and records the result
	// in the project's quote history.
	QuoteProject(projectID string) (*models.CostBreakdown, error)

	// ListProjectQuotes returns a project's stored quotes, newest first.
	ListProjectQuotes(projectID string) ([]models.StoredQuote, error)

	// QuoteAnalyses prices a set of analyses directly, without storage.
	QuoteAnalyses(analyses []models.FileAnalysis, translatorID int64, clientID *int64, mtPercentage int) (*models.CostBreakdown, error)

	// RatePreview resolves the per-category rates that would price a
	// project for the given key, without running a calculation.
	RatePreview(translatorID int64, clientID *int64, source, target string) (map[string]models.Rate, error)
}

// RateService owns rate records and hands out immutable snapshots.
type RateService interface {
	SaveRate(rate models.Rate) (models.Rate, error)
	DeleteRate(id int64) error
	ListRates(translatorID int64) ([]models.Rate, error)
	GetOrCreateLanguagePair(source, target string) (models.LanguagePair, error)

	// Snapshot returns the cached immutable rate set for a translator.
	// Mutations through SaveRate/DeleteRate invalidate it.
	Snapshot(translatorID int64) (*models.RateSnapshot, error)
}

// EmailService sends a finished quote to a recipient.
type EmailService interface {
	SendQuoteEmail(toEmail, projectName string, breakdown *models.CostBreakdown) error
}
