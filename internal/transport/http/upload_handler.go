package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "datasight/internal/errors"
	"datasight/internal/middleware"
	"datasight/internal/services"
	v1 "datasight/pkg/contracts/api/v1"
)

// multipartOverhead covers boundary and form field bytes beyond the file itself.
const multipartOverhead = 1 << 20

// UploadHandler handles file upload, row paging and chart requests
type UploadHandler struct {
	service       UploadServiceInterface
	validation    *middleware.ValidationMiddleware
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
	maxUploadSize int64
}

// NewUploadHandler creates a new upload handler with RFC 7807 error handling
func NewUploadHandler(service UploadServiceInterface, validation *middleware.ValidationMiddleware, maxUploadSize int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *UploadHandler {
	return &UploadHandler{
		service:       service,
		validation:    validation,
		logger:        logger.With(slog.String("component", "upload_handler")),
		errorHandler:  errorHandler,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the upload routes
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/upload", h.Upload)
	r.Get("/uploads", h.ListUploads)

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/rows", h.Rows)
		r.Post("/charts", h.Chart)
	})
	return r
}

// Upload handles POST /api/upload. It accepts a multipart form with a
// single "file" field, stores the file and returns the preview, summary
// and default charts.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrFileTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A multipart \"file\" field is required"))
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "processing upload",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	result, err := h.service.Process(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		h.handleUploadError(w, r, err, reqID)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v1.SuccessResponse{
		Status: "success",
		Data: v1.UploadResponse{
			Filename:    result.File.Name,
			Size:        result.File.Size,
			UploadedAt:  result.File.ModifiedAt,
			RowCount:    result.Summary.RowCount,
			ColumnCount: result.Summary.ColumnCount,
			Preview:     toPreviewPage(result.Preview, result.Summary.RowCount),
			Summary:     toSummaryData(result.Summary),
			Charts:      toChartInfos(result.Charts),
		},
	})
}

// Rows handles POST /api/rows for load-more pagination.
func (h *UploadHandler) Rows(w http.ResponseWriter, r *http.Request) {
	var req v1.RowsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.Rows(r.Context(), req.Filename, req.Offset, req.Limit)
	if err != nil {
		h.handleUploadError(w, r, err, chimiddleware.GetReqID(r.Context()))
		return
	}

	render.JSON(w, r, v1.SuccessResponse{Status: "success", Data: toTablePage(page)})
}

// Chart handles POST /api/charts.
func (h *UploadHandler) Chart(w http.ResponseWriter, r *http.Request) {
	var req v1.ChartRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	img, err := h.service.Chart(r.Context(), req.Filename, req.Kind, req.Category, req.Value)
	if err != nil {
		h.handleUploadError(w, r, err, chimiddleware.GetReqID(r.Context()))
		return
	}

	render.JSON(w, r, v1.SuccessResponse{Status: "success", Data: toChartInfo(*img)})
}

// ListUploads handles GET /api/uploads.
func (h *UploadHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.service.ListUploads(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	infos := make([]v1.FileInfo, len(uploads))
	for i, f := range uploads {
		infos[i] = v1.FileInfo{Filename: f.Name, Size: f.Size, ModifiedAt: f.ModifiedAt}
	}
	render.JSON(w, r, v1.SuccessResponse{Status: "success", Data: infos})
}

// handleUploadError maps upload service sentinels to API errors.
func (h *UploadHandler) handleUploadError(w http.ResponseWriter, r *http.Request, err error, reqID string) {
	h.logger.ErrorContext(r.Context(), "upload operation failed",
		slog.String("request_id", reqID),
		slog.String("error", err.Error()))

	switch {
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFormat)
	case errors.Is(err, services.ErrFileTooLarge):
		h.errorHandler.HandleError(w, r, apierrors.ErrFileTooLarge)
	case errors.Is(err, services.ErrEmptyTable):
		h.errorHandler.HandleError(w, r, apierrors.ParsingFailedError(err))
	case errors.Is(err, services.ErrUploadNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadNotFound)
	case errors.Is(err, services.ErrInvalidInput):
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
