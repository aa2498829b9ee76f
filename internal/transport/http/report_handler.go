package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "datasight/internal/errors"
	"datasight/internal/middleware"
	"datasight/internal/services"
	v1 "datasight/pkg/contracts/api/v1"
)

// ReportHandler handles report generation and download
type ReportHandler struct {
	service      ReportServiceInterface
	validation   *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler with RFC 7807 error handling
func NewReportHandler(service ReportServiceInterface, validation *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/", h.Generate)
		r.Get("/", h.List)
	})

	// download serves the pdf itself, no json content type
	r.Get("/{filename}", h.Download)
	return r
}

// Generate handles POST /api/reports.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())

	var req v1.ReportGenerateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "generating report",
		slog.String("request_id", reqID),
		slog.String("filename", req.Filename),
		slog.String("provider", req.Provider))

	stored, err := h.service.Generate(r.Context(), req.Filename, req.Provider)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "report generation failed",
			slog.String("request_id", reqID),
			slog.String("filename", req.Filename),
			slog.String("error", err.Error()))

		switch {
		case errors.Is(err, services.ErrUploadNotFound):
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadNotFound)
		case errors.Is(err, services.ErrEmptyTable):
			h.errorHandler.HandleError(w, r, apierrors.ParsingFailedError(err))
		case errors.Is(err, services.ErrUnknownProvider):
			h.errorHandler.HandleError(w, r, apierrors.ErrUnknownProvider)
		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrReportFailed)
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v1.SuccessResponse{
		Status: "success",
		Data: v1.ReportResponse{
			Filename:    stored.Name,
			Size:        stored.Size,
			GeneratedAt: stored.ModifiedAt,
			DownloadURL: "/api/reports/" + stored.Name,
		},
	})
}

// Download handles GET /api/reports/{filename} and streams the pdf
// as an attachment.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	f, stat, err := h.service.Open(r.Context(), filename)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stat.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size, 10))

	if _, err := io.Copy(w, f); err != nil {
		h.logger.ErrorContext(r.Context(), "report download interrupted",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
	}
}

// List handles GET /api/reports.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	infos := make([]v1.FileInfo, len(reports))
	for i, f := range reports {
		infos[i] = v1.FileInfo{Filename: f.Name, Size: f.Size, ModifiedAt: f.ModifiedAt}
	}
	render.JSON(w, r, v1.SuccessResponse{Status: "success", Data: infos})
}
