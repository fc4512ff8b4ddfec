package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AdamSoufiane/connectsearch/internal/models"
	"github.com/AdamSoufiane/connectsearch/internal/schedule"
)

// IngestionRequest is the completion notification posted by the ingestion
// pipeline when schedule data for a date range finishes loading.
type IngestionRequest struct {
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to,omitempty"`
}

type IngestionHandler struct {
	tracker *schedule.MemoryIngestionTracker
}

func NewIngestionHandler(tracker *schedule.MemoryIngestionTracker) *IngestionHandler {
	return &IngestionHandler{tracker: tracker}
}

// Complete marks the posted date range as fully ingested. Entries computed
// while the range was still loading carry the short freshness window and
// expire on their own shortly after.
func (h *IngestionHandler) Complete(c echo.Context) error {
	var req IngestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	start, err := time.ParseInLocation(models.DateFormat, req.DateFrom, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ValidationResponse{
			Error:  "validation_error",
			Errors: []models.FieldError{{Field: "dateRange", Message: "date_from must be a valid YYYY-MM-DD date"}},
		})
	}
	end := start
	if req.DateTo != "" {
		end, err = time.ParseInLocation(models.DateFormat, req.DateTo, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ValidationResponse{
				Error:  "validation_error",
				Errors: []models.FieldError{{Field: "dateRange", Message: "date_to must be a valid YYYY-MM-DD date"}},
			})
		}
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, ValidationResponse{
			Error:  "validation_error",
			Errors: []models.FieldError{{Field: "dateRange", Message: "date range start must not be after its end"}},
		})
	}

	h.tracker.MarkComplete(models.NewDateRange(start, end))
	return c.JSON(http.StatusOK, map[string]string{"status": "recorded"})
}
