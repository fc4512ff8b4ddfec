// Package resolver finds direct and connecting itineraries over the flight
// leg graph. Airports are nodes, legs are timed directed edges; the search
// is an iterative depth-bounded expansion with explicit pruning state so
// distinct searches can run in parallel without shared mutable state.
package resolver

import (
	"context"
	"sort"
	"time"

	"github.com/AdamSoufiane/connectsearch/internal/models"
	"github.com/AdamSoufiane/connectsearch/internal/schedule"
)

type Config struct {
	// MinConnectionTime is the shortest acceptable layover.
	MinConnectionTime time.Duration
	// MaxLayoverWindow is the longest acceptable layover.
	MaxLayoverWindow time.Duration
	// MaxConnectionsCap bounds any per-request max-connections override.
	MaxConnectionsCap int
}

func DefaultConfig() Config {
	return Config{
		MinConnectionTime: 45 * time.Minute,
		MaxLayoverWindow:  6 * time.Hour,
		MaxConnectionsCap: 2,
	}
}

type Resolver struct {
	store schedule.Store
	cfg   Config
}

func New(store schedule.Store, cfg Config) *Resolver {
	if cfg.MinConnectionTime <= 0 {
		cfg.MinConnectionTime = DefaultConfig().MinConnectionTime
	}
	if cfg.MaxLayoverWindow <= 0 {
		cfg.MaxLayoverWindow = DefaultConfig().MaxLayoverWindow
	}
	if cfg.MaxConnectionsCap <= 0 {
		cfg.MaxConnectionsCap = DefaultConfig().MaxConnectionsCap
	}
	return &Resolver{store: store, cfg: cfg}
}

type partialPath struct {
	legs []models.FlightLeg
}

func (p partialPath) last() models.FlightLeg {
	return p.legs[len(p.legs)-1]
}

func (p partialPath) visited(airport string) bool {
	if p.legs[0].Origin == airport {
		return true
	}
	for _, l := range p.legs {
		if l.Destination == airport {
			return true
		}
	}
	return false
}

// pathCost is how partial paths compare at an airport: when they got there
// and how long they have been travelling.
type pathCost struct {
	arrival time.Time
	elapsed time.Duration
}

// dominated reports whether a recorded path reached the airport no later
// and no slower than c.
func dominated(costs []pathCost, c pathCost) bool {
	for _, e := range costs {
		if !e.arrival.After(c.arrival) && e.elapsed <= c.elapsed {
			return true
		}
	}
	return false
}

// record adds c to the frontier, dropping entries c now dominates.
func record(costs []pathCost, c pathCost) []pathCost {
	kept := costs[:0]
	for _, e := range costs {
		if c.arrival.After(e.arrival) || c.elapsed > e.elapsed {
			kept = append(kept, e)
		}
	}
	return append(kept, c)
}

// Resolve returns every itinerary from origin to destination within the
// date range, using at most maxConnections intermediate stops. An empty
// result is a valid outcome; only store failures return an error.
func (r *Resolver) Resolve(ctx context.Context, c models.SearchCriteria, maxConnections int) ([]models.Itinerary, error) {
	c = c.Normalized()
	if maxConnections < 0 {
		maxConnections = 0
	}
	if maxConnections > r.cfg.MaxConnectionsCap {
		maxConnections = r.cfg.MaxConnectionsCap
	}
	maxLegs := maxConnections + 1

	first, err := r.store.DeparturesFrom(ctx, c.Origin, c.Dates, c.SeatClass)
	if err != nil {
		return nil, err
	}

	var found []models.Itinerary
	var stack []partialPath
	// pareto frontier of (arrival, elapsed-so-far) per intermediate
	// airport; a partial is dropped only when a recorded path got there
	// no later and no slower. A single scalar would prune partials that
	// depart later yet finish with a shorter total elapsed time, the
	// primary ordering key.
	reached := make(map[string][]pathCost)

	extend := func(p partialPath, leg models.FlightLeg) {
		if leg.Destination == c.Destination {
			legs := make([]models.FlightLeg, len(p.legs), len(p.legs)+1)
			copy(legs, p.legs)
			found = append(found, models.NewItinerary(append(legs, leg)))
			return
		}
		if len(p.legs)+1 >= maxLegs {
			return
		}
		if p.legs != nil && p.visited(leg.Destination) {
			return
		}
		depart := leg.DepartureTime
		if p.legs != nil {
			depart = p.legs[0].DepartureTime
		}
		cost := pathCost{arrival: leg.ArrivalTime, elapsed: leg.ArrivalTime.Sub(depart)}
		if dominated(reached[leg.Destination], cost) {
			return
		}
		reached[leg.Destination] = record(reached[leg.Destination], cost)
		legs := make([]models.FlightLeg, len(p.legs), len(p.legs)+1)
		copy(legs, p.legs)
		stack = append(stack, partialPath{legs: append(legs, leg)})
	}

	for _, leg := range first {
		if leg.Origin != c.Origin || leg.Destination == c.Origin {
			continue
		}
		extend(partialPath{}, leg)
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		arrival := p.last().ArrivalTime
		window := models.NewDateRange(arrival, arrival.Add(r.cfg.MaxLayoverWindow))
		next, err := r.store.DeparturesFrom(ctx, p.last().Destination, window, c.SeatClass)
		if err != nil {
			return nil, err
		}
		for _, leg := range next {
			layover := leg.DepartureTime.Sub(arrival)
			if layover < r.cfg.MinConnectionTime || layover > r.cfg.MaxLayoverWindow {
				continue
			}
			extend(p, leg)
		}
	}

	sortItineraries(found)
	return found, nil
}

// sortItineraries orders by total elapsed time, then leg count, then
// departure time, with flight ID as a deterministic final tiebreak.
func sortItineraries(its []models.Itinerary) {
	sort.Slice(its, func(i, j int) bool {
		a, b := its[i], its[j]
		if a.Elapsed() != b.Elapsed() {
			return a.Elapsed() < b.Elapsed()
		}
		if len(a.Legs) != len(b.Legs) {
			return len(a.Legs) < len(b.Legs)
		}
		if !a.Departure().Equal(b.Departure()) {
			return a.Departure().Before(b.Departure())
		}
		return a.Legs[0].FlightID < b.Legs[0].FlightID
	})
}
