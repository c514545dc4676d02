package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "finextract/internal/errors"
	"finextract/internal/exporter"
	"finextract/internal/middleware"
	"finextract/internal/services"
)

const (
	// DefaultMultipartMemory is how much of a multipart body is kept in memory
	// before parts spill to temporary files.
	DefaultMultipartMemory = 32 << 20

	// FormatParam selects the response encoding.
	FormatParam = "format"

	// attachmentName is the base name of non-JSON downloads.
	attachmentName = "financials"
)

// uploadFields are the multipart field names accepted for spreadsheet files.
var uploadFields = []string{"files", "file"}

// ExtractionHandler serves the extraction endpoints with RFC 7807 errors
type ExtractionHandler struct {
	service      ExtractionServiceInterface
	validation   *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(service ExtractionServiceInterface, validation *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ExtractionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionHandler{
		service:      service,
		validation:   validation,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "extraction_handler")),
	}
}

// Routes returns the extraction routes
func (h *ExtractionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
		Post("/files", h.ExtractFiles)

	r.With(
		middleware.ContentTypeValidator(h.errorHandler, "application/json"),
		h.validation.ValidateRequest,
	).Post("/rows", h.ExtractRows)

	return r
}

// ExtractFiles handles POST /api/v1/extract/files
func (h *ExtractionHandler) ExtractFiles(w http.ResponseWriter, r *http.Request) {
	format, ok := h.format(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(DefaultMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, maxErr)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	uploads, err := readUploads(r.MultipartForm)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received uploads",
		slog.Int("files", len(uploads)),
		slog.String("format", string(format)),
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	result, err := h.service.ExtractUploads(r.Context(), uploads)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, format, result)
}

// ExtractRows handles POST /api/v1/extract/rows
func (h *ExtractionHandler) ExtractRows(w http.ResponseWriter, r *http.Request) {
	format, ok := h.format(w, r)
	if !ok {
		return
	}

	var req ExtractRowsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.ExtractRows(r.Context(), req.SourceName(), req.ToSheets())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, format, result)
}

func (h *ExtractionHandler) format(w http.ResponseWriter, r *http.Request) (exporter.Format, bool) {
	name, ok := h.query.ValidateEnum(w, r, FormatParam, exporter.Formats(), string(exporter.FormatJSON))
	if !ok {
		return "", false
	}
	f, err := exporter.ParseFormat(name)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(FormatParam, err.Error()))
		return "", false
	}
	return f, true
}

// respond writes the JSON envelope, or the records alone as a download for
// tabular formats.
func (h *ExtractionHandler) respond(w http.ResponseWriter, r *http.Request, format exporter.Format, result *services.ExtractionResult) {
	if format == exporter.FormatJSON {
		render.Status(r, http.StatusOK)
		render.JSON(w, r, result.Response(middleware.GetRequestID(r.Context())))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", attachmentName+format.Extension()))
	w.WriteHeader(http.StatusOK)

	if err := exporter.Write(w, format, result.Records); err != nil {
		// Headers are gone; all that is left is to log.
		h.logger.ErrorContext(r.Context(), "Failed to write export",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

func readUploads(form *multipart.Form) ([]services.Upload, error) {
	var uploads []services.Upload
	for _, field := range uploadFields {
		for _, fh := range form.File[field] {
			data, err := readPart(fh)
			if err != nil {
				return nil, apierrors.InvalidRequestWithError(
					fmt.Errorf("failed to read upload %s: %w", fh.Filename, err))
			}
			uploads = append(uploads, services.Upload{
				Name: filepath.Base(fh.Filename),
				Data: data,
			})
		}
	}
	return uploads, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
