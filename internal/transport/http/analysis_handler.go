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

// AnalysisHandler handles requests for provider commentary
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validation   *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler with RFC 7807 error handling
func NewAnalysisHandler(service AnalysisServiceInterface, validation *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/providers", h.Providers)
	r.Post("/{provider}", h.Analyze)
	return r
}

// Analyze handles POST /api/analysis/{provider}. Provider calls can take
// a while, so the request context carries the deadline.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())
	provider := chi.URLParam(r, "provider")

	var req v1.AnalysisRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "requesting analysis",
		slog.String("request_id", reqID),
		slog.String("provider", provider),
		slog.String("filename", req.Filename))

	result, err := h.service.Analyze(r.Context(), provider, req.Filename)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "analysis request failed",
			slog.String("request_id", reqID),
			slog.String("provider", provider),
			slog.String("error", err.Error()))

		switch {
		case errors.Is(err, services.ErrUnknownProvider):
			h.errorHandler.HandleError(w, r, apierrors.ErrUnknownProvider)
		case errors.Is(err, services.ErrProviderNotConfigured):
			h.errorHandler.HandleError(w, r, apierrors.ErrProviderUnavailable)
		case errors.Is(err, services.ErrUploadNotFound):
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadNotFound)
		case errors.Is(err, services.ErrEmptyTable):
			h.errorHandler.HandleError(w, r, apierrors.ParsingFailedError(err))
		default:
			h.errorHandler.HandleError(w, r, apierrors.ProviderError(provider, err))
		}
		return
	}

	render.JSON(w, r, v1.SuccessResponse{
		Status: "success",
		Data: v1.AnalysisResponse{
			Provider:   result.Provider,
			Filename:   req.Filename,
			Commentary: result.Commentary,
			ElapsedMS:  result.Elapsed.Milliseconds(),
		},
	})
}

// Providers handles GET /api/analysis/providers.
func (h *AnalysisHandler) Providers(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, v1.SuccessResponse{
		Status: "success",
		Data:   v1.ProvidersResponse{Providers: h.service.Providers()},
	})
}
