package models

import "time"

// Translator is a person or vendor rates belong to.
type Translator struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Active bool   `json:"active"`
}

// Client is an end customer; client-specific rates take precedence over a
// translator's general rates.
type Client struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Active bool   `json:"active"`
}

// Project bundles the analyzed files of one job and the settings used to
// price it. Linkage to translator/client/files goes through stable IDs,
// never embedded references.
type Project struct {
	ID           string    `json:"id"` // uuid
	Name         string    `json:"name"`
	TranslatorID int64     `json:"translator_id"`
	ClientID     *int64    `json:"client_id,omitempty"`
	MTPercentage int       `json:"mt_percentage"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoredQuote is one historical costing of a project. Breakdown is the
// JSON serialization of the CostBreakdown returned to the caller.
type StoredQuote struct {
	ID        string    `json:"id"` // uuid
	ProjectID string    `json:"project_id"`
	Breakdown string    `json:"breakdown"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectFile is one imported analysis file. ParsedData is the JSON
// serialization of the FileAnalysis it produced; it round-trips losslessly
// through the canonical model fields.
type ProjectFile struct {
	ID         string    `json:"id"` // uuid
	ProjectID  string    `json:"project_id"`
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	ParsedData string    `json:"parsed_data"`
	UploadedAt time.Time `json:"uploaded_at"`
}
