package schedule

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/AdamSoufiane/connectsearch/internal/models"
)

// MemoryStore keeps legs indexed by origin airport. It backs the demo
// server (seeded from the embedded dataset) and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	byOrigin map[string][]models.FlightLeg
}

func NewMemoryStore(legs ...models.FlightLeg) *MemoryStore {
	s := &MemoryStore{byOrigin: make(map[string][]models.FlightLeg)}
	s.Add(legs...)
	return s
}

// NewMemoryStoreFromJSON seeds a store from a JSON array of legs, the
// format of the embedded schedule dataset.
func NewMemoryStoreFromJSON(raw []byte) (*MemoryStore, error) {
	var legs []models.FlightLeg
	if err := json.Unmarshal(raw, &legs); err != nil {
		return nil, err
	}
	return NewMemoryStore(legs...), nil
}

func (s *MemoryStore) Add(legs ...models.FlightLeg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range legs {
		s.byOrigin[l.Origin] = append(s.byOrigin[l.Origin], l)
	}
}

func (s *MemoryStore) FindLegs(ctx context.Context, origin, destination string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	return s.scan(ctx, origin, dates, class, func(l models.FlightLeg) bool {
		return l.Destination == destination
	})
}

func (s *MemoryStore) DeparturesFrom(ctx context.Context, origin string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	return s.scan(ctx, origin, dates, class, func(models.FlightLeg) bool { return true })
}

func (s *MemoryStore) scan(ctx context.Context, origin string, dates models.DateRange, class models.SeatClass, keep func(models.FlightLeg) bool) ([]models.FlightLeg, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.FlightLeg
	for _, l := range s.byOrigin[origin] {
		if dates.Contains(l.DepartureTime) && l.Available(class) && keep(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

// MemoryIngestionTracker records which days have finished ingesting.
// MarkComplete is called by the ingestion pipeline's completion hook.
type MemoryIngestionTracker struct {
	mu   sync.RWMutex
	days map[time.Time]bool
}

func NewMemoryIngestionTracker() *MemoryIngestionTracker {
	return &MemoryIngestionTracker{days: make(map[time.Time]bool)}
}

func (t *MemoryIngestionTracker) MarkComplete(dates models.DateRange) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for d := dates.Start; !d.After(dates.End); d = d.AddDate(0, 0, 1) {
		t.days[d] = true
	}
}

// Complete reports true only when every day of the range is marked.
func (t *MemoryIngestionTracker) Complete(ctx context.Context, dates models.DateRange) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for d := dates.Start; !d.After(dates.End); d = d.AddDate(0, 0, 1) {
		if !t.days[d] {
			return false, nil
		}
	}
	return true, nil
}
