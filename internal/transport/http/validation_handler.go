package http

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"metricqa/internal/dataset"
	apierrors "metricqa/internal/errors"
	"metricqa/internal/services"
)

// UploadField is the multipart field carrying the dataset file.
const UploadField = "file"

// ValidationHandler serves dataset validation and the metric catalog.
type ValidationHandler struct {
	service        *services.ValidationService
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// CatalogResponse lists the metrics every asset is expected to carry.
type CatalogResponse struct {
	Metrics []string `json:"metrics"`
	Count   int      `json:"count"`
}

// NewValidationHandler creates a validation handler with RFC 7807 error handling
func NewValidationHandler(service *services.ValidationService, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationHandler {
	return &ValidationHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "validation_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the validation routes
func (h *ValidationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/validate", h.Validate)
	r.Get("/catalog", h.Catalog)

	return r
}

// Validate handles POST /api/v1/validate.
// The dataset arrives as a multipart upload; its extension picks the parser
// and the optional "sheet" field selects a workbook sheet.
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.MissingParameter(UploadField))
		return
	}
	defer file.Close()

	format, err := dataset.FormatFromPath(header.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Validating upload",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("format", string(format)))

	rep, err := h.service.ValidateReader(r.Context(), file, format, r.FormValue("sheet"), header.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, rep)
}

// Catalog handles GET /api/v1/catalog
func (h *ValidationHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	cat, err := h.service.Catalog(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, CatalogResponse{Metrics: cat.Names(), Count: cat.Len()})
}
