package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/username/catcost/backend/src/logger"
	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/services"
	"github.com/username/catcost/backend/src/utils"
)

type RateHandler struct {
	rateService  services.RateService
	quoteService services.QuoteService
}

func NewRateHandler(rateService services.RateService, quoteService services.QuoteService) *RateHandler {
	return &RateHandler{
		rateService:  rateService,
		quoteService: quoteService,
	}
}

// saveRateRequest identifies the pair by language codes; the handler
// resolves (or creates) the stored pair before saving.
type saveRateRequest struct {
	TranslatorID      int64           `json:"translator_id"`
	ClientID          *int64          `json:"client_id,omitempty"`
	SourceLanguage    string          `json:"source_language"`
	TargetLanguage    string          `json:"target_language"`
	Category          string          `json:"category"`
	RatePerWord       decimal.Decimal `json:"rate_per_word"`
	MinimumFee        decimal.Decimal `json:"minimum_fee"`
	MinimumFeeEnabled bool            `json:"minimum_fee_enabled"`
	Currency          string          `json:"currency"`
}

func (h *RateHandler) HandleSaveRate(w http.ResponseWriter, r *http.Request) {
	var req saveRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.TranslatorID <= 0 {
		utils.SendJSONError(w, "translator_id is required", http.StatusBadRequest)
		return
	}

	category, ok := models.CategoryFromDisplayName(req.Category)
	if !ok {
		utils.SendJSONError(w, "Unknown match category: "+req.Category, http.StatusBadRequest)
		return
	}
	pair, err := h.rateService.GetOrCreateLanguagePair(req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rate, err := h.rateService.SaveRate(models.Rate{
		TranslatorID:      req.TranslatorID,
		ClientID:          req.ClientID,
		LanguagePairID:    pair.ID,
		Category:          category,
		RatePerWord:       req.RatePerWord,
		MinimumFee:        req.MinimumFee,
		MinimumFeeEnabled: req.MinimumFeeEnabled,
		Currency:          req.Currency,
	})
	if err != nil {
		logger.L.Warn("Rate save failed", "translatorID", req.TranslatorID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, rate, http.StatusOK)
}

func (h *RateHandler) HandleListRates(w http.ResponseWriter, r *http.Request) {
	translatorID, err := strconv.ParseInt(r.URL.Query().Get("translator_id"), 10, 64)
	if err != nil || translatorID <= 0 {
		utils.SendJSONError(w, "Valid translator_id query parameter is required", http.StatusBadRequest)
		return
	}

	rates, err := h.rateService.ListRates(translatorID)
	if err != nil {
		logger.L.Error("Rate listing failed", "translatorID", translatorID, "error", err)
		utils.SendJSONError(w, "Failed to list rates", http.StatusInternalServerError)
		return
	}
	if rates == nil {
		rates = []models.Rate{}
	}
	utils.SendJSON(w, rates, http.StatusOK)
}

func (h *RateHandler) HandleDeleteRate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.SendJSONError(w, "Invalid rate id", http.StatusBadRequest)
		return
	}
	if err := h.rateService.DeleteRate(id); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRatePreview resolves the effective rate for every category on a
// translator/client/pair so the UI can show what a quote would use.
func (h *RateHandler) HandleRatePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	translatorID, err := strconv.ParseInt(q.Get("translator_id"), 10, 64)
	if err != nil || translatorID <= 0 {
		utils.SendJSONError(w, "Valid translator_id query parameter is required", http.StatusBadRequest)
		return
	}

	var clientID *int64
	if raw := q.Get("client_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			utils.SendJSONError(w, "Invalid client_id query parameter", http.StatusBadRequest)
			return
		}
		clientID = &id
	}

	source, target := q.Get("source"), q.Get("target")
	if source == "" || target == "" {
		utils.SendJSONError(w, "source and target query parameters are required", http.StatusBadRequest)
		return
	}

	preview, err := h.quoteService.RatePreview(translatorID, clientID, source, target)
	if err != nil {
		logger.L.Warn("Rate preview failed", "translatorID", translatorID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, preview, http.StatusOK)
}
