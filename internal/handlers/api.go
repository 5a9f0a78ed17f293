package handlers

import (
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/Jonikpatel/realtime-dashboard/internal/errors"
	"github.com/Jonikpatel/realtime-dashboard/internal/models"
	"github.com/Jonikpatel/realtime-dashboard/internal/observability"
	"github.com/Jonikpatel/realtime-dashboard/internal/services"
)

// Simulator slider defaults, matching the dashboard's initial positions.
const (
	defaultPriceDelta = 0.05
	defaultElasticity = 1.2
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	store  *services.Store
	logger *slog.Logger
}

func NewAPIHandlers(store *services.Store, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:  store,
		logger: logger,
	}
}

// filteredSubset applies the request's selection and writes the error
// response itself when the selection is unusable.
func (h *APIHandlers) filteredSubset(w http.ResponseWriter, r *http.Request) ([]models.Order, bool) {
	requestID := observability.GetRequestID(r.Context())

	sel, err := parseSelection(r)
	if err != nil {
		apperrors.WriteError(w, h.logger, err, requestID)
		return nil, false
	}

	subset, err := services.Filter(h.store.Orders(), sel)
	if err != nil {
		apperrors.WriteError(w, h.logger, apperrors.ValidationWrap(err, "invalid filter selection"), requestID)
		return nil, false
	}
	return subset, true
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	subset, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}

	apperrors.WriteSuccessWithHeaders(w, services.Summarize(subset), cacheHeaders)
}

func (h *APIHandlers) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	dim, err := services.ParseDimension(r.PathValue("dimension"))
	if err != nil {
		apperrors.WriteError(w, h.logger, apperrors.ValidationWrap(err, "unsupported breakdown dimension"), requestID)
		return
	}

	subset, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}

	apperrors.WriteSuccessWithHeaders(w, services.Breakdown(subset, dim), cacheHeaders)
}

func (h *APIHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	subset, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}

	apperrors.WriteSuccessWithHeaders(w, services.MonthlyTrend(subset), cacheHeaders)
}

func (h *APIHandlers) HandleFacets(w http.ResponseWriter, r *http.Request) {
	// Facets come from the full snapshot so filter controls always list
	// every available value, whatever the current selection.
	apperrors.WriteSuccessWithHeaders(w, services.CollectFacets(h.store.Orders()), cacheHeaders)
}

func (h *APIHandlers) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	deltaP, err := parseFloatParam(r, "delta", defaultPriceDelta)
	if err != nil {
		apperrors.WriteError(w, h.logger, err, requestID)
		return
	}
	elasticity, err := parseFloatParam(r, "elasticity", defaultElasticity)
	if err != nil {
		apperrors.WriteError(w, h.logger, err, requestID)
		return
	}

	subset, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}

	metrics := services.Summarize(subset)
	projection, err := services.SimulatePriceChange(
		float64(metrics.OrderCount),
		metrics.AverageOrderValue,
		metrics.TotalSales,
		elasticity,
		deltaP,
	)
	if err != nil {
		apperrors.WriteError(w, h.logger, apperrors.ValidationWrap(err, "invalid simulation parameters"), requestID)
		return
	}

	apperrors.WriteSuccess(w, projection)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	apperrors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, h.store.Stats())
}
