package http

import (
	"context"

	"finextract/internal/services"
	"finextract/internal/workbook"
)

// ExtractionServiceInterface defines the extraction operations exposed over HTTP
type ExtractionServiceInterface interface {
	ExtractUploads(ctx context.Context, uploads []services.Upload) (*services.ExtractionResult, error)
	ExtractRows(ctx context.Context, source string, sheets []workbook.Sheet) (*services.ExtractionResult, error)
}
