package models

// ParseResult is the outcome of parsing one uploaded report: the
// canonical analyses it produced (one per analyzed file) plus non-fatal
// warnings. Shared between every parser and the services consuming them.
type ParseResult struct {
	Files    []FileAnalysis `json:"files"`
	Warnings []Warning      `json:"warnings,omitempty"`
}
