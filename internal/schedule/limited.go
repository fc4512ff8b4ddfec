package schedule

import (
	"context"

	"github.com/AdamSoufiane/connectsearch/internal/models"
	"github.com/AdamSoufiane/connectsearch/internal/ratelimit"
)

// LimitedStore throttles reads per origin airport before they reach the
// backend.
type LimitedStore struct {
	inner   Store
	limiter *ratelimit.KeyedLimiter
}

func WithRateLimit(inner Store, limiter *ratelimit.KeyedLimiter) *LimitedStore {
	return &LimitedStore{inner: inner, limiter: limiter}
}

func (s *LimitedStore) FindLegs(ctx context.Context, origin, destination string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	if err := s.limiter.Wait(ctx, origin); err != nil {
		return nil, err
	}
	return s.inner.FindLegs(ctx, origin, destination, dates, class)
}

func (s *LimitedStore) DeparturesFrom(ctx context.Context, origin string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	if err := s.limiter.Wait(ctx, origin); err != nil {
		return nil, err
	}
	return s.inner.DeparturesFrom(ctx, origin, dates, class)
}
