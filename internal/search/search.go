// Package search is the engine façade: validate the criteria, consult the
// cache coordinator, and only on a miss pay for connection resolution.
package search

import (
	"context"

	"github.com/google/uuid"

	"github.com/AdamSoufiane/connectsearch/internal/cache"
	"github.com/AdamSoufiane/connectsearch/internal/models"
	"github.com/AdamSoufiane/connectsearch/internal/schedule"
	"github.com/AdamSoufiane/connectsearch/internal/validate"
)

type ConnectionResolver interface {
	Resolve(ctx context.Context, c models.SearchCriteria, maxConnections int) ([]models.Itinerary, error)
}

type Cache interface {
	GetOrCompute(ctx context.Context, fp string, fn cache.ComputeFunc) (cache.EntrySnapshot, bool, error)
	Invalidate(ctx context.Context, fp string) error
	Refresh(ctx context.Context, fp string, fn cache.ComputeFunc) (cache.EntrySnapshot, error)
}

type Config struct {
	DefaultMaxConnections int
	MaxConnectionsCap     int
	Validation            validate.Options
}

func DefaultConfig() Config {
	return Config{
		DefaultMaxConnections: 1,
		MaxConnectionsCap:     2,
		Validation:            validate.DefaultOptions(),
	}
}

type Coordinator struct {
	resolver ConnectionResolver
	cache    Cache
	ingest   schedule.IngestionStatus
	cfg      Config
}

func NewCoordinator(resolver ConnectionResolver, c Cache, ingest schedule.IngestionStatus, cfg Config) *Coordinator {
	if ingest == nil {
		ingest = schedule.AlwaysComplete{}
	}
	if cfg.MaxConnectionsCap <= 0 {
		cfg.MaxConnectionsCap = DefaultConfig().MaxConnectionsCap
	}
	return &Coordinator{resolver: resolver, cache: c, ingest: ingest, cfg: cfg}
}

// Search validates the criteria and serves itineraries, from cache when
// fresh. Validation failures come back as response data with a nil error;
// only infrastructure failures return a Go error, and those are never
// cached.
func (s *Coordinator) Search(ctx context.Context, c models.SearchCriteria) (*models.SearchResponse, error) {
	n := c.Normalized()
	maxConn := s.maxConnections(n)

	resp := &models.SearchResponse{
		SearchID:     uuid.NewString(),
		Criteria:     models.EchoCriteria(n, maxConn),
		Itineraries:  []models.Itinerary{},
		DataComplete: true,
	}

	if errs := validate.Criteria(n, s.cfg.Validation); len(errs) > 0 {
		resp.Errors = errs
		return resp, nil
	}

	snap, hit, err := s.getOrCompute(ctx, n, maxConn)
	if err != nil {
		return nil, err
	}
	resp.ServedFromCache = hit
	resp.DataComplete = snap.Authoritative
	if snap.Itineraries != nil {
		resp.Itineraries = snap.Itineraries
	}

	if n.RoundTrip {
		rsnap, rhit, err := s.getOrCompute(ctx, n.ReturnCriteria(), maxConn)
		if err != nil {
			return nil, err
		}
		resp.ReturnItineraries = rsnap.Itineraries
		resp.ServedFromCache = hit && rhit
		resp.DataComplete = resp.DataComplete && rsnap.Authoritative
	}

	return resp, nil
}

// Invalidate drops cached results for the criteria, both directions for a
// round trip. Called by the cache administration contract when schedule
// data changes.
func (s *Coordinator) Invalidate(ctx context.Context, c models.SearchCriteria) error {
	n := c.Normalized()
	maxConn := s.maxConnections(n)
	if err := s.cache.Invalidate(ctx, cache.Fingerprint(n, maxConn)); err != nil {
		return err
	}
	if n.RoundTrip {
		return s.cache.Invalidate(ctx, cache.Fingerprint(n.ReturnCriteria(), maxConn))
	}
	return nil
}

// Refresh proactively recomputes cached results for the criteria,
// replacing entries atomically.
func (s *Coordinator) Refresh(ctx context.Context, c models.SearchCriteria) error {
	n := c.Normalized()
	maxConn := s.maxConnections(n)
	if _, err := s.cache.Refresh(ctx, cache.Fingerprint(n, maxConn), s.computeFn(n, maxConn)); err != nil {
		return err
	}
	if n.RoundTrip {
		rc := n.ReturnCriteria()
		if _, err := s.cache.Refresh(ctx, cache.Fingerprint(rc, maxConn), s.computeFn(rc, maxConn)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Coordinator) getOrCompute(ctx context.Context, c models.SearchCriteria, maxConn int) (cache.EntrySnapshot, bool, error) {
	fp := cache.Fingerprint(c, maxConn)
	return s.cache.GetOrCompute(ctx, fp, s.computeFn(c, maxConn))
}

func (s *Coordinator) computeFn(c models.SearchCriteria, maxConn int) cache.ComputeFunc {
	return func(ctx context.Context) (cache.Computed, error) {
		itins, err := s.resolver.Resolve(ctx, c, maxConn)
		if err != nil {
			return cache.Computed{}, err
		}
		complete, err := s.ingest.Complete(ctx, c.Dates)
		if err != nil {
			// a status outage must not fail the search; treat the data
			// as complete and let the normal TTL govern freshness
			complete = true
		}
		return cache.Computed{Itineraries: itins, Authoritative: complete}, nil
	}
}

func (s *Coordinator) maxConnections(c models.SearchCriteria) int {
	maxConn := s.cfg.DefaultMaxConnections
	if c.MaxConnections != nil {
		maxConn = *c.MaxConnections
	}
	if maxConn < 0 {
		maxConn = 0
	}
	if maxConn > s.cfg.MaxConnectionsCap {
		maxConn = s.cfg.MaxConnectionsCap
	}
	return maxConn
}
