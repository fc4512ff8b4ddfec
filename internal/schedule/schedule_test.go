package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamSoufiane/connectsearch/internal/models"
	"github.com/AdamSoufiane/connectsearch/internal/ratelimit"
	"github.com/AdamSoufiane/connectsearch/internal/schedule/data"
)

var day = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func sampleLeg(id, origin, destination string, depHour int) models.FlightLeg {
	return models.FlightLeg{
		FlightID: id, AirlineID: id[:2],
		Origin: origin, Destination: destination,
		DepartureTime: day.Add(time.Duration(depHour) * time.Hour),
		ArrivalTime:   day.Add(time.Duration(depHour+3) * time.Hour),
		SeatsByClass: map[models.SeatClass]int{
			models.SeatClassEconomy:  20,
			models.SeatClassBusiness: 0,
		},
	}
}

func TestMemoryStore_FindLegs(t *testing.T) {
	store := NewMemoryStore(
		sampleLeg("DL100", "JFK", "LAX", 8),
		sampleLeg("DL200", "JFK", "ORD", 9),
		sampleLeg("UA300", "ORD", "LAX", 14),
	)
	dates := models.NewDateRange(day, day)

	legs, err := store.FindLegs(context.Background(), "JFK", "LAX", dates, models.SeatClassEconomy)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, "DL100", legs[0].FlightID)

	legs, err = store.DeparturesFrom(context.Background(), "JFK", dates, models.SeatClassEconomy)
	require.NoError(t, err)
	assert.Len(t, legs, 2)
}

func TestMemoryStore_FiltersDatesAndClass(t *testing.T) {
	store := NewMemoryStore(sampleLeg("DL100", "JFK", "LAX", 8))

	outside := models.NewDateRange(day.AddDate(0, 0, 2), day.AddDate(0, 0, 3))
	legs, err := store.FindLegs(context.Background(), "JFK", "LAX", outside, models.SeatClassEconomy)
	require.NoError(t, err)
	assert.Empty(t, legs, "legs outside the range are excluded")

	dates := models.NewDateRange(day, day)
	legs, err = store.FindLegs(context.Background(), "JFK", "LAX", dates, models.SeatClassBusiness)
	require.NoError(t, err)
	assert.Empty(t, legs, "sold-out class is excluded")
}

func TestEmbeddedDatasetLoads(t *testing.T) {
	store, err := NewMemoryStoreFromJSON(data.Legs)
	require.NoError(t, err)

	dates := models.NewDateRange(
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	)
	legs, err := store.FindLegs(context.Background(), "JFK", "LAX", dates, models.SeatClassEconomy)
	require.NoError(t, err)
	assert.NotEmpty(t, legs)
}

type flakyStore struct {
	failures int
	calls    int
}

func (s *flakyStore) FindLegs(ctx context.Context, origin, destination string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, models.NewInfraError("store: read", errors.New("transient"))
	}
	return []models.FlightLeg{sampleLeg("DL100", origin, destination, 8)}, nil
}

func (s *flakyStore) DeparturesFrom(ctx context.Context, origin string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	return s.FindLegs(ctx, origin, "", dates, class)
}

func TestRetryingStore_RecoversFromOneTransientFailure(t *testing.T) {
	inner := &flakyStore{failures: 1}
	store := WithRetry(inner, time.Millisecond)

	legs, err := store.FindLegs(context.Background(), "JFK", "LAX", models.NewDateRange(day, day), models.SeatClassEconomy)

	require.NoError(t, err)
	assert.Len(t, legs, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestRetryingStore_SingleBoundedRetry(t *testing.T) {
	inner := &flakyStore{failures: 10}
	store := WithRetry(inner, time.Millisecond)

	_, err := store.FindLegs(context.Background(), "JFK", "LAX", models.NewDateRange(day, day), models.SeatClassEconomy)

	require.Error(t, err)
	assert.True(t, models.IsInfra(err))
	assert.Equal(t, 2, inner.calls, "exactly one re-attempt, outages are not masked")
}

func TestLimitedStore_WaitsBeforeRead(t *testing.T) {
	limiter := ratelimit.NewKeyedLimiterWithDefaults()
	limiter.SetLimit("JFK", 1, 1)
	inner := &flakyStore{}
	store := WithRateLimit(inner, limiter)
	dates := models.NewDateRange(day, day)

	legs, err := store.FindLegs(context.Background(), "JFK", "LAX", dates, models.SeatClassEconomy)
	require.NoError(t, err)
	assert.Len(t, legs, 1)
	assert.Equal(t, 1, inner.calls)

	// the single token is spent; at 1 rps the next read cannot be
	// admitted within the deadline and must never reach the backend
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = store.FindLegs(ctx, "JFK", "LAX", dates, models.SeatClassEconomy)
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls, "throttled read must not hit the store")
}

func TestLimitedStore_DistinctOriginsNotThrottledTogether(t *testing.T) {
	limiter := ratelimit.NewKeyedLimiterWithDefaults()
	limiter.SetLimit("JFK", 1, 1)
	inner := &flakyStore{}
	store := WithRateLimit(inner, limiter)
	dates := models.NewDateRange(day, day)

	_, err := store.FindLegs(context.Background(), "JFK", "LAX", dates, models.SeatClassEconomy)
	require.NoError(t, err)

	// ORD uses its own bucket and is unaffected by JFK's spent token
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = store.DeparturesFrom(ctx, "ORD", dates, models.SeatClassEconomy)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestMemoryIngestionTracker(t *testing.T) {
	tracker := NewMemoryIngestionTracker()
	dates := models.NewDateRange(day, day.AddDate(0, 0, 2))

	complete, err := tracker.Complete(context.Background(), dates)
	require.NoError(t, err)
	assert.False(t, complete)

	tracker.MarkComplete(models.NewDateRange(day, day.AddDate(0, 0, 1)))
	complete, err = tracker.Complete(context.Background(), dates)
	require.NoError(t, err)
	assert.False(t, complete, "partially ingested range is incomplete")

	tracker.MarkComplete(dates)
	complete, err = tracker.Complete(context.Background(), dates)
	require.NoError(t, err)
	assert.True(t, complete)
}
