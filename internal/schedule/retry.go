package schedule

import (
	"context"
	"time"

	"github.com/AdamSoufiane/connectsearch/internal/models"
)

// RetryingStore re-attempts a failed read once after a short delay. A single
// bounded retry smooths transient faults without masking a systemic outage;
// anything beyond that is the caller's backoff policy.
type RetryingStore struct {
	inner Store
	delay time.Duration
}

func WithRetry(inner Store, delay time.Duration) *RetryingStore {
	return &RetryingStore{inner: inner, delay: delay}
}

func (s *RetryingStore) FindLegs(ctx context.Context, origin, destination string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	return s.attempt(ctx, func() ([]models.FlightLeg, error) {
		return s.inner.FindLegs(ctx, origin, destination, dates, class)
	})
}

func (s *RetryingStore) DeparturesFrom(ctx context.Context, origin string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	return s.attempt(ctx, func() ([]models.FlightLeg, error) {
		return s.inner.DeparturesFrom(ctx, origin, dates, class)
	})
}

func (s *RetryingStore) attempt(ctx context.Context, read func() ([]models.FlightLeg, error)) ([]models.FlightLeg, error) {
	legs, err := read()
	if err == nil || ctx.Err() != nil {
		return legs, err
	}

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return read()
}
