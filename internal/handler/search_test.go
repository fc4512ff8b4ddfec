package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamSoufiane/connectsearch/internal/cache"
	"github.com/AdamSoufiane/connectsearch/internal/models"
	"github.com/AdamSoufiane/connectsearch/internal/resolver"
	"github.com/AdamSoufiane/connectsearch/internal/schedule"
	"github.com/AdamSoufiane/connectsearch/internal/search"
)

func departureDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format(models.DateFormat)
}

func testStore() *schedule.MemoryStore {
	day, _ := time.ParseInLocation(models.DateFormat, departureDate(), time.UTC)
	return schedule.NewMemoryStore(
		models.FlightLeg{
			FlightID: "DL100", AirlineID: "DL",
			Origin: "JFK", Destination: "LAX",
			DepartureTime: day.Add(8 * time.Hour),
			ArrivalTime:   day.Add(11 * time.Hour),
			SeatsByClass:  map[models.SeatClass]int{models.SeatClassEconomy: 50},
		},
	)
}

func newTestHandler(store schedule.Store) *SearchHandler {
	res := resolver.New(store, resolver.DefaultConfig())
	coord := cache.NewCoordinator(cache.Config{TTL: time.Minute})
	svc := search.NewCoordinator(res, coord, nil, search.DefaultConfig())
	return NewSearchHandler(svc)
}

func doSearch(t *testing.T, h *SearchHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Search(e.NewContext(req, rec)))
	return rec
}

func TestSearch_OK(t *testing.T) {
	h := newTestHandler(testStore())

	body := `{"origin":"JFK","destination":"LAX","date_from":"` + departureDate() + `"}`
	rec := doSearch(t, h, body)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Itineraries, 1)
	assert.Equal(t, "DL100", resp.Itineraries[0].Legs[0].FlightID)
	assert.False(t, resp.ServedFromCache)
	assert.NotEmpty(t, resp.SearchID)

	rec = doSearch(t, h, body)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.ServedFromCache)
}

func TestSearch_ValidationErrorsAreFieldAttributed(t *testing.T) {
	h := newTestHandler(testStore())

	body := `{"origin":"JFK","destination":"JFK","date_from":"` + departureDate() + `"}`
	rec := doSearch(t, h, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ValidationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation_error", resp.Error)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "destination", resp.Errors[0].Field)
	assert.Contains(t, resp.Errors[0].Message, "must differ")
}

func TestSearch_MalformedDateRejected(t *testing.T) {
	h := newTestHandler(testStore())

	rec := doSearch(t, h, `{"origin":"JFK","destination":"LAX","date_from":"15-09-2026"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ValidationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "dateRange", resp.Errors[0].Field)
}

type downStore struct{}

func (downStore) FindLegs(ctx context.Context, origin, destination string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	return nil, models.NewInfraError("postgres: query legs", errors.New("connection refused"))
}

func (downStore) DeparturesFrom(ctx context.Context, origin string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	return nil, models.NewInfraError("postgres: query departures", errors.New("connection refused"))
}

func TestSearch_InfrastructureFailureIsRetryable503(t *testing.T) {
	h := newTestHandler(downStore{})

	body := `{"origin":"JFK","destination":"LAX","date_from":"` + departureDate() + `"}`
	rec := doSearch(t, h, body)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "schedule_store_unavailable", resp.Error)
	assert.True(t, resp.Retryable)
}

func TestCacheAdmin_InvalidateAndRefresh(t *testing.T) {
	h := newTestHandler(testStore())
	e := echo.New()
	body := `{"origin":"JFK","destination":"LAX","date_from":"` + departureDate() + `"}`

	rec := doSearch(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	require.NoError(t, h.Invalidate(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.SearchResponse
	rec = doSearch(t, h, body)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.ServedFromCache, "invalidate must drop the cached entry")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/cache/refresh", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	require.NoError(t, h.Refresh(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doSearch(t, h, body)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.ServedFromCache, "refresh leaves a fresh entry behind")
}

func TestSearch_DefaultWiringReportsDataComplete(t *testing.T) {
	// without an ingestion tracker the engine treats schedule data as
	// complete; results must carry the full freshness window
	h := newTestHandler(testStore())

	body := `{"origin":"JFK","destination":"LAX","date_from":"` + departureDate() + `"}`
	rec := doSearch(t, h, body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.DataComplete)
}

func TestIngestionComplete_FlipsDataComplete(t *testing.T) {
	tracker := schedule.NewMemoryIngestionTracker()
	res := resolver.New(testStore(), resolver.DefaultConfig())
	coord := cache.NewCoordinator(cache.Config{TTL: time.Minute, IncompleteTTL: time.Millisecond})
	svc := search.NewCoordinator(res, coord, tracker, search.DefaultConfig())
	h := NewSearchHandler(svc)
	ih := NewIngestionHandler(tracker)
	e := echo.New()

	body := `{"origin":"JFK","destination":"LAX","date_from":"` + departureDate() + `"}`
	rec := doSearch(t, h, body)
	var resp models.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.DataComplete, "unnotified range is still loading")

	notification := `{"date_from":"` + departureDate() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingestion/complete", strings.NewReader(notification))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	nrec := httptest.NewRecorder()
	require.NoError(t, ih.Complete(e.NewContext(req, nrec)))
	require.Equal(t, http.StatusOK, nrec.Code)

	// the incomplete entry was stored on the short freshness window
	time.Sleep(5 * time.Millisecond)

	rec = doSearch(t, h, body)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.DataComplete)
}

func TestIngestionComplete_MalformedDateRejected(t *testing.T) {
	ih := NewIngestionHandler(schedule.NewMemoryIngestionTracker())
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingestion/complete", strings.NewReader(`{"date_from":"soon"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, ih.Complete(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ValidationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "dateRange", resp.Errors[0].Field)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, HealthHandler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
