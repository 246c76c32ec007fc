package services

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/username/catcost/backend/src/config"
	"github.com/username/catcost/backend/src/database"
	"github.com/username/catcost/backend/src/logger"
	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/parsers"
	"github.com/username/catcost/backend/src/parsers/sheet"
	"github.com/username/catcost/backend/src/processors"
)

type quoteService struct {
	rates      RateService
	calculator *processors.CostCalculator
}

// NewQuoteService wires the upload/quote orchestrator to the rate store.
func NewQuoteService(rates RateService) QuoteService {
	return &quoteService{
		rates:      rates,
		calculator: processors.NewCostCalculator(),
	}
}

func (s *quoteService) ProcessUpload(data []byte, filename string, projectID string) (*UploadOutcome, error) {
	detection := parsers.Detect(data, filename)
	if detection.Kind == parsers.FormatUnknown {
		return nil, fmt.Errorf("%w: %s", models.ErrUnrecognizedFormat, detection.Reason)
	}

	parser, err := parsers.GetParser(detection.Kind)
	if err != nil {
		return nil, err
	}

	result, err := parser.Parse(bytes.NewReader(data), filename)
	if err != nil {
		var mappingErr *sheet.MappingRequiredError
		if errors.As(err, &mappingErr) {
			logger.L.Info("Spreadsheet needs manual column mapping", "filename", filename)
			return &UploadOutcome{
				Format:         detection.Kind,
				MappingRequest: &mappingErr.Request,
			}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	return s.finishUpload(detection.Kind, result, filename, projectID)
}

func (s *quoteService) ProcessUploadWithMapping(data []byte, filename string, projectID string, headerRow int, mapping sheet.ColumnMapping) (*UploadOutcome, error) {
	parser := sheet.NewParser()
	result, err := parser.ParseWithMapping(bytes.NewReader(data), filename, headerRow, mapping)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	return s.finishUpload(parsers.FormatSpreadsheet, result, filename, projectID)
}

func (s *quoteService) finishUpload(kind parsers.FormatKind, result *models.ParseResult, filename, projectID string) (*UploadOutcome, error) {
	if projectID != "" {
		if err := s.storeProjectFiles(projectID, filename, string(kind), result.Files); err != nil {
			return nil, err
		}
	}
	logger.L.Info("Report parsed",
		"filename", filename, "format", kind,
		"files", len(result.Files), "warnings", len(result.Warnings))
	return &UploadOutcome{Format: kind, Result: result}, nil
}

// storeProjectFiles persists each parsed analysis, skipping analyses whose
// content hash is already attached to the project so re-uploads stay
// idempotent.
func (s *quoteService) storeProjectFiles(projectID, filename, format string, files []models.FileAnalysis) error {
	if _, err := s.loadProject(projectID); err != nil {
		return err
	}

	existing, err := s.loadProjectAnalyses(projectID)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, f := range existing {
		if f.ContentHash != "" {
			seen[f.ContentHash+"|"+f.Filename] = true
		}
	}

	for _, f := range files {
		if f.ContentHash != "" && seen[f.ContentHash+"|"+f.Filename] {
			logger.L.Warn("Skipping duplicate analysis file", "projectID", projectID, "file", f.Filename)
			continue
		}
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("error serializing analysis: %w", err)
		}
		_, err = database.DB.Exec(`
			INSERT INTO project_files (id, project_id, filename, format, parsed_data, uploaded_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), projectID, filename, format, string(payload), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("error storing project file: %w", err)
		}
	}
	return nil
}

func (s *quoteService) CreateProject(name string, translatorID int64, clientID *int64, mtPercentage int) (*models.Project, error) {
	if name == "" {
		return nil, errors.New("project name is required")
	}
	if mtPercentage < 0 || mtPercentage > 100 {
		mtPercentage = config.Cfg.DefaultMTPercentage
	}

	project := &models.Project{
		ID:           uuid.New().String(),
		Name:         name,
		TranslatorID: translatorID,
		ClientID:     clientID,
		MTPercentage: mtPercentage,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := database.DB.Exec(`
		INSERT INTO projects (id, name, translator_id, client_id, mt_percentage, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		project.ID, project.Name, project.TranslatorID, nullableID(project.ClientID),
		project.MTPercentage, project.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	logger.L.Info("Project created", "projectID", project.ID, "name", name)
	return project, nil
}

func (s *quoteService) QuoteProject(projectID string) (*models.CostBreakdown, error) {
	project, err := s.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	analyses, err := s.loadProjectAnalyses(projectID)
	if err != nil {
		return nil, err
	}
	if len(analyses) == 0 {
		return nil, fmt.Errorf("project %s has no analysis files", projectID)
	}

	breakdown, err := s.QuoteAnalyses(analyses, project.TranslatorID, project.ClientID, project.MTPercentage)
	if err != nil {
		return nil, err
	}
	if err := s.storeQuote(projectID, breakdown); err != nil {
		// History is best-effort; the quote itself already succeeded.
		logger.L.Error("Failed to store quote history", "projectID", projectID, "error", err)
	}
	return breakdown, nil
}

func (s *quoteService) storeQuote(projectID string, breakdown *models.CostBreakdown) error {
	payload, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("error serializing quote: %w", err)
	}
	_, err = database.DB.Exec(`
		INSERT INTO quotes (id, project_id, breakdown, created_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), projectID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error storing quote: %w", err)
	}
	return nil
}

// ListProjectQuotes returns a project's quote history, newest first.
func (s *quoteService) ListProjectQuotes(projectID string) ([]models.StoredQuote, error) {
	if _, err := s.loadProject(projectID); err != nil {
		return nil, err
	}
	rows, err := database.DB.Query(`
		SELECT id, project_id, breakdown, created_at
		FROM quotes WHERE project_id = ? ORDER BY created_at DESC, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("error loading quote history: %w", err)
	}
	defer rows.Close()

	var quotes []models.StoredQuote
	for rows.Next() {
		var q models.StoredQuote
		if err := rows.Scan(&q.ID, &q.ProjectID, &q.Breakdown, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (s *quoteService) QuoteAnalyses(analyses []models.FileAnalysis, translatorID int64, clientID *int64, mtPercentage int) (*models.CostBreakdown, error) {
	if len(analyses) == 0 {
		return nil, errors.New("no analyses to price")
	}

	pairCode := analyses[0].LanguagePairCode()
	for _, a := range analyses[1:] {
		if a.LanguagePairCode() != pairCode {
			return nil, fmt.Errorf("analyses span multiple language pairs (%s vs %s); quote them separately",
				pairCode, a.LanguagePairCode())
		}
	}

	pair, err := s.rates.GetOrCreateLanguagePair(analyses[0].SourceLanguage, analyses[0].TargetLanguage)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.rates.Snapshot(translatorID)
	if err != nil {
		return nil, err
	}

	resolver := processors.NewRateResolver(snapshot)
	var defaultsUsed []models.MatchCategory
	lookup := func(cat models.MatchCategory) (models.Rate, error) {
		rate, err := resolver.Resolve(translatorID, clientID, pair.ID, cat)
		if err == nil {
			return rate, nil
		}
		if !errors.Is(err, models.ErrRateNotFound) || !config.Cfg.DefaultRatesEnabled {
			return models.Rate{}, err
		}
		fallback, ok := processors.DefaultRate(cat, config.Cfg.DefaultCurrency)
		if !ok {
			return models.Rate{}, err
		}
		defaultsUsed = append(defaultsUsed, cat)
		return fallback, nil
	}

	breakdown, err := s.calculator.Calculate(analyses, lookup, mtPercentage)
	if err != nil {
		return nil, err
	}
	for _, cat := range defaultsUsed {
		breakdown.Warnings = append(breakdown.Warnings, models.Warning{
			Code:     models.WarnDefaultRateUsed,
			Category: string(cat),
			Message:  fmt.Sprintf("no configured rate for %q on %s; priced with the default rate", cat, pairCode),
		})
	}
	return breakdown, nil
}

// RatePreview resolves every standard category for a translator/client/pair
// so the caller can see which rate each line would use before quoting.
func (s *quoteService) RatePreview(translatorID int64, clientID *int64, source, target string) (map[string]models.Rate, error) {
	pair, err := s.rates.GetOrCreateLanguagePair(source, target)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.rates.Snapshot(translatorID)
	if err != nil {
		return nil, err
	}

	resolver := processors.NewRateResolver(snapshot)
	preview := make(map[string]models.Rate, len(models.AllCategories))
	for _, cat := range models.AllCategories {
		rate, err := resolver.Resolve(translatorID, clientID, pair.ID, cat)
		if err != nil {
			if errors.Is(err, models.ErrRateNotFound) && config.Cfg.DefaultRatesEnabled {
				if fallback, ok := processors.DefaultRate(cat, config.Cfg.DefaultCurrency); ok {
					preview[string(cat)] = fallback
					continue
				}
			}
			if errors.Is(err, models.ErrRateNotFound) {
				continue
			}
			return nil, err
		}
		preview[string(cat)] = rate
	}
	return preview, nil
}

func (s *quoteService) loadProject(projectID string) (*models.Project, error) {
	var (
		project  models.Project
		clientID sql.NullInt64
	)
	err := database.DB.QueryRow(`
		SELECT id, name, translator_id, client_id, mt_percentage, created_at
		FROM projects WHERE id = ?`, projectID).
		Scan(&project.ID, &project.Name, &project.TranslatorID, &clientID,
			&project.MTPercentage, &project.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading project: %w", err)
	}
	if clientID.Valid {
		project.ClientID = &clientID.Int64
	}
	return &project, nil
}

func (s *quoteService) loadProjectAnalyses(projectID string) ([]models.FileAnalysis, error) {
	rows, err := database.DB.Query(
		"SELECT parsed_data FROM project_files WHERE project_id = ? ORDER BY uploaded_at, id", projectID)
	if err != nil {
		return nil, fmt.Errorf("error loading project files: %w", err)
	}
	defer rows.Close()

	var analyses []models.FileAnalysis
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("error scanning project file: %w", err)
		}
		var analysis models.FileAnalysis
		if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
			return nil, fmt.Errorf("error decoding stored analysis: %w", err)
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
