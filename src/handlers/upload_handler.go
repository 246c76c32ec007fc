package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/username/catcost/backend/src/config"
	"github.com/username/catcost/backend/src/logger"
	"github.com/username/catcost/backend/src/models"
	"github.com/username/catcost/backend/src/parsers/sheet"
	"github.com/username/catcost/backend/src/services"
	"github.com/username/catcost/backend/src/utils"
)

type UploadHandler struct {
	quoteService services.QuoteService
}

func NewUploadHandler(service services.QuoteService) *UploadHandler {
	return &UploadHandler{quoteService: service}
}

// HandleUpload accepts an analysis report (Trados CSV, Phrase JSON or a
// spreadsheet), detects its format and returns the parsed canonical model.
// Spreadsheets that defeat automatic column matching come back as a
// mapping request with status 422 instead.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	data, filename, ok := h.readUploadedFile(w, r, userID)
	if !ok {
		return
	}
	projectID := r.FormValue("project_id")

	logger.L.Info("Processing upload request", "userID", userID, "filename", filename)
	outcome, err := h.quoteService.ProcessUpload(data, filename, projectID)
	if err != nil {
		h.sendUploadError(w, userID, filename, err)
		return
	}

	if outcome.MappingRequest != nil {
		utils.SendJSON(w, outcome, http.StatusUnprocessableEntity)
		return
	}
	utils.SendJSON(w, outcome, http.StatusOK)
}

// HandleUploadWithMapping re-parses a spreadsheet with the column mapping
// the user chose after a 422 response from HandleUpload.
func (h *UploadHandler) HandleUploadWithMapping(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	data, filename, ok := h.readUploadedFile(w, r, userID)
	if !ok {
		return
	}
	projectID := r.FormValue("project_id")

	var req struct {
		HeaderRow int                 `json:"header_row"`
		Mapping   sheet.ColumnMapping `json:"mapping"`
	}
	if err := json.Unmarshal([]byte(r.FormValue("mapping")), &req); err != nil {
		utils.SendJSONError(w, "Invalid 'mapping' field: expected JSON with header_row and mapping", http.StatusBadRequest)
		return
	}
	if len(req.Mapping) == 0 {
		utils.SendJSONError(w, "Column mapping is empty", http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing mapped upload request", "userID", userID, "filename", filename)
	outcome, err := h.quoteService.ProcessUploadWithMapping(data, filename, projectID, req.HeaderRow, req.Mapping)
	if err != nil {
		h.sendUploadError(w, userID, filename, err)
		return
	}
	utils.SendJSON(w, outcome, http.StatusOK)
}

func (h *UploadHandler) readUploadedFile(w http.ResponseWriter, r *http.Request, userID int64) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, "", false
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "userID", userID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, "", false
	}

	data, err := readAll(file, config.Cfg.MaxUploadSizeBytes)
	if err != nil {
		logger.L.Warn("Failed to read uploaded file", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to read uploaded file", http.StatusBadRequest)
		return nil, "", false
	}
	return data, fileHeader.Filename, true
}

func (h *UploadHandler) sendUploadError(w http.ResponseWriter, userID int64, filename string, err error) {
	switch {
	case errors.Is(err, models.ErrUnrecognizedFormat):
		logger.L.Warn("Upload format not recognized", "userID", userID, "filename", filename, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Unrecognized report format: %v", err), http.StatusUnsupportedMediaType)
	case errors.Is(err, models.ErrMalformedInput), errors.Is(err, services.ErrParsingFailed):
		logger.L.Warn("Upload parsing failed", "userID", userID, "filename", filename, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error parsing report: %v", err), http.StatusBadRequest)
	case errors.Is(err, services.ErrProjectNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	default:
		logger.L.Error("Upload processing failed", "userID", userID, "filename", filename, "error", err)
		utils.SendJSONError(w, "Failed to process upload", http.StatusInternalServerError)
	}
}

func readAll(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}
