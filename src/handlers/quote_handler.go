package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/catcost/backend/src/logger"
	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/services"
	"github.com/username/catcost/backend/src/utils"
)

type QuoteHandler struct {
	quoteService services.QuoteService
	emailService services.EmailService
}

func NewQuoteHandler(quoteService services.QuoteService, emailService services.EmailService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		emailService: emailService,
	}
}

type createProjectRequest struct {
	Name         string `json:"name"`
	TranslatorID int64  `json:"translator_id"`
	ClientID     *int64 `json:"client_id,omitempty"`
	MTPercentage *int   `json:"mt_percentage,omitempty"`
}

func (h *QuoteHandler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.TranslatorID <= 0 {
		utils.SendJSONError(w, "translator_id is required", http.StatusBadRequest)
		return
	}

	mtPercentage := -1
	if req.MTPercentage != nil {
		mtPercentage = *req.MTPercentage
	}
	project, err := h.quoteService.CreateProject(req.Name, req.TranslatorID, req.ClientID, mtPercentage)
	if err != nil {
		logger.L.Warn("Project creation failed", "name", req.Name, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, project, http.StatusCreated)
}

// quoteRequest prices either a stored project (project_id) or an inline set
// of analyses. Exactly one of the two must be present.
type quoteRequest struct {
	ProjectID    string                `json:"project_id,omitempty"`
	Analyses     []models.FileAnalysis `json:"analyses,omitempty"`
	TranslatorID int64                 `json:"translator_id,omitempty"`
	ClientID     *int64                `json:"client_id,omitempty"`
	MTPercentage *int                  `json:"mt_percentage,omitempty"`
	EmailTo      string                `json:"email_to,omitempty"`
}

func (h *QuoteHandler) HandleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	var (
		breakdown *models.CostBreakdown
		err       error
		subject   string
	)
	switch {
	case req.ProjectID != "" && len(req.Analyses) > 0:
		utils.SendJSONError(w, "Provide either project_id or analyses, not both", http.StatusBadRequest)
		return
	case req.ProjectID != "":
		subject = req.ProjectID
		breakdown, err = h.quoteService.QuoteProject(req.ProjectID)
	case len(req.Analyses) > 0:
		if req.TranslatorID <= 0 {
			utils.SendJSONError(w, "translator_id is required for inline quotes", http.StatusBadRequest)
			return
		}
		mtPercentage := -1
		if req.MTPercentage != nil {
			mtPercentage = *req.MTPercentage
		}
		subject = "ad-hoc quote"
		breakdown, err = h.quoteService.QuoteAnalyses(req.Analyses, req.TranslatorID, req.ClientID, mtPercentage)
	default:
		utils.SendJSONError(w, "Provide project_id or analyses", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.sendQuoteError(w, err)
		return
	}

	if req.EmailTo != "" {
		if err := h.emailService.SendQuoteEmail(req.EmailTo, subject, breakdown); err != nil {
			// Quote succeeded; email failure is reported but not fatal.
			logger.L.Error("Failed to email quote", "to", req.EmailTo, "error", err)
		}
	}
	utils.SendJSON(w, breakdown, http.StatusOK)
}

func (h *QuoteHandler) HandleListProjectQuotes(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		utils.SendJSONError(w, "project id is required", http.StatusBadRequest)
		return
	}
	quotes, err := h.quoteService.ListProjectQuotes(projectID)
	if err != nil {
		h.sendQuoteError(w, err)
		return
	}
	if quotes == nil {
		quotes = []models.StoredQuote{}
	}
	utils.SendJSON(w, quotes, http.StatusOK)
}

func (h *QuoteHandler) sendQuoteError(w http.ResponseWriter, err error) {
	var rateErr *models.RateNotFoundError
	var currencyErr *models.CurrencyConflictError
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &rateErr):
		utils.SendJSONError(w, fmt.Sprintf("Missing rate: %v", rateErr), http.StatusConflict)
	case errors.As(err, &currencyErr):
		utils.SendJSONError(w, currencyErr.Error(), http.StatusConflict)
	default:
		logger.L.Error("Quote calculation failed", "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	}
}
