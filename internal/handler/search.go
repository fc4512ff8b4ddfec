package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AdamSoufiane/connectsearch/internal/models"
	"github.com/AdamSoufiane/connectsearch/internal/search"
)

type SearchHandler struct {
	svc *search.Coordinator
}

func NewSearchHandler(svc *search.Coordinator) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// ValidationResponse carries field-attributed validation failures.
type ValidationResponse struct {
	Error  string              `json:"error"`
	Errors []models.FieldError `json:"errors"`
}

func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	criteria, parseErrs := req.Criteria()
	if len(parseErrs) > 0 {
		return c.JSON(http.StatusBadRequest, ValidationResponse{
			Error:  "validation_error",
			Errors: parseErrs,
		})
	}

	resp, err := h.svc.Search(ctx, criteria)
	if err != nil {
		return searchError(c, err)
	}
	if len(resp.Errors) > 0 {
		return c.JSON(http.StatusBadRequest, ValidationResponse{
			Error:  "validation_error",
			Errors: resp.Errors,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// Invalidate drops cached results for the posted criteria. Wired to
// schedule-change notifications from the ingestion pipeline.
func (h *SearchHandler) Invalidate(c echo.Context) error {
	criteria, ok := h.bindCriteria(c)
	if !ok {
		return nil
	}
	if err := h.svc.Invalidate(c.Request().Context(), criteria); err != nil {
		return searchError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "invalidated"})
}

// Refresh recomputes cached results for the posted criteria, typically
// after ingestion for the date range completes.
func (h *SearchHandler) Refresh(c echo.Context) error {
	criteria, ok := h.bindCriteria(c)
	if !ok {
		return nil
	}
	if err := h.svc.Refresh(c.Request().Context(), criteria); err != nil {
		return searchError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *SearchHandler) bindCriteria(c echo.Context) (models.SearchCriteria, bool) {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
		return models.SearchCriteria{}, false
	}
	criteria, parseErrs := req.Criteria()
	if len(parseErrs) > 0 {
		_ = c.JSON(http.StatusBadRequest, ValidationResponse{
			Error:  "validation_error",
			Errors: parseErrs,
		})
		return models.SearchCriteria{}, false
	}
	return criteria, true
}

// searchError maps engine errors onto the transport: infrastructure
// failures are retryable 503s, anything else is a 500.
func searchError(c echo.Context, err error) error {
	if models.IsInfra(err) {
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:     "schedule_store_unavailable",
			Message:   err.Error(),
			Code:      http.StatusServiceUnavailable,
			Retryable: true,
		})
	}
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "search_error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
