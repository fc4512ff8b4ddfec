// Package validate rejects malformed or semantically impossible search
// criteria before any schedule lookup happens. Validation is pure: every
// failure is reported, nothing is silently corrected.
package validate

import (
	"regexp"
	"time"

	"github.com/AdamSoufiane/connectsearch/internal/models"
)

// airportPattern accepts IATA (3 letter) and ICAO (4 letter) codes.
var airportPattern = regexp.MustCompile(`^[A-Z]{3,4}$`)

type Options struct {
	// GraceWindow is how far in the past a departure date may lie before
	// the range is rejected as stale.
	GraceWindow time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

func DefaultOptions() Options {
	return Options{GraceWindow: 24 * time.Hour, Now: time.Now}
}

// Criteria checks c against every rule and returns all failures. Criteria
// should already be normalized; codes are checked as given.
func Criteria(c models.SearchCriteria, opts Options) []models.FieldError {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	var errs []models.FieldError

	if !airportPattern.MatchString(c.Origin) {
		errs = append(errs, models.FieldError{Field: "origin", Message: "origin must be a 3-4 letter airport code"})
	}
	if !airportPattern.MatchString(c.Destination) {
		errs = append(errs, models.FieldError{Field: "destination", Message: "destination must be a 3-4 letter airport code"})
	} else if c.Origin == c.Destination {
		errs = append(errs, models.FieldError{Field: "destination", Message: "origin and destination airports must differ"})
	}

	errs = append(errs, dateRange(c, opts)...)

	if _, ok := models.ParseSeatClass(string(c.SeatClass)); !ok {
		errs = append(errs, models.FieldError{Field: "seatClass", Message: "seat class must be economy, business or first"})
	}

	if c.RoundTrip {
		switch {
		case c.ReturnDate == nil:
			errs = append(errs, models.FieldError{Field: "returnDate", Message: "return_date is required for round trips"})
		case c.ReturnDate.Before(c.Dates.Start):
			errs = append(errs, models.FieldError{Field: "returnDate", Message: "return_date must not be before the departure date"})
		}
	}

	if c.MaxConnections != nil && *c.MaxConnections < 0 {
		errs = append(errs, models.FieldError{Field: "maxConnections", Message: "max_connections must not be negative"})
	}

	return errs
}

func dateRange(c models.SearchCriteria, opts Options) []models.FieldError {
	if c.Dates.Start.IsZero() || c.Dates.End.IsZero() {
		return []models.FieldError{{Field: "dateRange", Message: "date range is required"}}
	}
	if c.Dates.Start.After(c.Dates.End) {
		return []models.FieldError{{Field: "dateRange", Message: "date range start must not be after its end"}}
	}
	cutoff := opts.Now().UTC().Add(-opts.GraceWindow)
	if c.Dates.End.AddDate(0, 0, 1).Before(cutoff) {
		return []models.FieldError{{Field: "dateRange", Message: "date range lies in the past"}}
	}
	return nil
}
