// Package api contains the HTTP API contracts of finextract.
// Version v1 represents the current stable API version.
package api

import (
	"finextract/pkg/contracts/domain"
)

// ExtractionResponse is the body of a successful extraction call.
type ExtractionResponse struct {
	RequestID  string              `json:"request_id,omitempty"`
	Records    []domain.YearRecord `json:"records"`
	Sheets     []SheetSummary      `json:"sheets"`
	Files      int                 `json:"files"`
	DurationMS int64               `json:"duration_ms"`
}

// SheetSummary reports how one sheet was read.
type SheetSummary struct {
	File      string          `json:"file"`
	Sheet     string          `json:"sheet"`
	Strategy  domain.Strategy `json:"strategy,omitempty"`
	HeaderRow int             `json:"header_row"`
	Rows      int             `json:"rows"`
	Skipped   bool            `json:"skipped"`
}
