package models

import (
	"strings"
	"time"
)

const DateFormat = "2006-01-02"

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "economy"
	SeatClassBusiness SeatClass = "business"
	SeatClassFirst    SeatClass = "first"
)

func ParseSeatClass(s string) (SeatClass, bool) {
	switch SeatClass(strings.ToLower(strings.TrimSpace(s))) {
	case SeatClassEconomy:
		return SeatClassEconomy, true
	case SeatClassBusiness:
		return SeatClassBusiness, true
	case SeatClassFirst:
		return SeatClassFirst, true
	}
	return "", false
}

// DateRange is a day-granular inclusive range in UTC.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: truncateDay(start), End: truncateDay(end)}
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End.AddDate(0, 0, 1))
}

func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SearchCriteria is the validated shape of one search. Zero or missing
// optional fields keep their zero values; Normalized canonicalizes the
// rest before fingerprinting.
type SearchCriteria struct {
	Origin         string
	Destination    string
	Dates          DateRange
	SeatClass      SeatClass
	RoundTrip      bool
	ReturnDate     *time.Time
	MaxConnections *int
}

// Normalized returns a copy with airport codes upper-cased, dates truncated
// to day granularity and the seat class lower-cased. Two criteria that
// normalize equal must produce the same fingerprint.
func (c SearchCriteria) Normalized() SearchCriteria {
	n := c
	n.Origin = strings.ToUpper(strings.TrimSpace(c.Origin))
	n.Destination = strings.ToUpper(strings.TrimSpace(c.Destination))
	n.Dates = NewDateRange(c.Dates.Start, c.Dates.End)
	n.SeatClass = SeatClass(strings.ToLower(string(c.SeatClass)))
	if c.ReturnDate != nil {
		rd := truncateDay(*c.ReturnDate)
		n.ReturnDate = &rd
	}
	return n
}

// ReturnCriteria derives the one-way criteria for the return direction of a
// round trip: endpoints swapped, departing on the return date.
func (c SearchCriteria) ReturnCriteria() SearchCriteria {
	r := SearchCriteria{
		Origin:         c.Destination,
		Destination:    c.Origin,
		SeatClass:      c.SeatClass,
		MaxConnections: c.MaxConnections,
	}
	if c.ReturnDate != nil {
		r.Dates = NewDateRange(*c.ReturnDate, *c.ReturnDate)
	}
	return r
}
