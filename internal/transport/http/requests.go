package http

import (
	"finextract/internal/workbook"
)

// ExtractRowsRequest carries sheets whose cells were already read by the
// caller. Each cell is a JSON scalar: number, string, bool or null.
type ExtractRowsRequest struct {
	// Source names the logical file in diagnostics. Defaults to "request".
	Source string       `json:"source,omitempty" validate:"omitempty,filename"`
	Sheets []SheetInput `json:"sheets" validate:"max=256,dive"`
}

// SheetInput is one sheet of an ExtractRowsRequest.
type SheetInput struct {
	Name string            `json:"name" validate:"required,sheetname"`
	Rows [][]workbook.Cell `json:"rows" validate:"required"`
}

// ToSheets converts the request into workbook sheets in request order.
func (r ExtractRowsRequest) ToSheets() []workbook.Sheet {
	sheets := make([]workbook.Sheet, len(r.Sheets))
	for i, s := range r.Sheets {
		sheets[i] = workbook.Sheet{Name: s.Name, Rows: s.Rows}
	}
	return sheets
}

// SourceName returns Source or the "request" placeholder.
func (r ExtractRowsRequest) SourceName() string {
	if r.Source == "" {
		return "request"
	}
	return r.Source
}
