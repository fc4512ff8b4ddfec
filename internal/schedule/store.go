// Package schedule provides read access to flight-leg records. The search
// engine consumes the Store contract; it never owns or mutates schedule data.
package schedule

import (
	"context"

	"github.com/AdamSoufiane/connectsearch/internal/models"
)

// Store is the read contract over schedule data. Implementations must be
// safe for concurrent reads. A failing backend returns an error; an empty
// slice always means "no matching legs", never "backend down".
type Store interface {
	// FindLegs returns legs flying origin to destination departing inside
	// the range with availability in the given class.
	FindLegs(ctx context.Context, origin, destination string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error)

	// DeparturesFrom returns all legs leaving origin inside the range with
	// availability in the given class, regardless of destination. Used by
	// connection search to expand the frontier.
	DeparturesFrom(ctx context.Context, origin string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error)
}

// IngestionStatus reports whether schedule data for a date range is fully
// loaded. While incomplete, an empty search result is not authoritative.
type IngestionStatus interface {
	Complete(ctx context.Context, dates models.DateRange) (bool, error)
}

// AlwaysComplete treats every range as fully ingested.
type AlwaysComplete struct{}

func (AlwaysComplete) Complete(ctx context.Context, dates models.DateRange) (bool, error) {
	return true, nil
}
