package models

import "time"

// SearchRequest is the wire shape of the inbound search contract. Dates are
// YYYY-MM-DD strings; date_to defaults to date_from when omitted.
type SearchRequest struct {
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DateFrom       string  `json:"date_from"`
	DateTo         string  `json:"date_to,omitempty"`
	CabinClass     string  `json:"cabin_class,omitempty"`
	RoundTrip      bool    `json:"round_trip,omitempty"`
	ReturnDate     *string `json:"return_date,omitempty"`
	MaxConnections *int    `json:"max_connections,omitempty"`
}

// Criteria parses the request into SearchCriteria. Malformed fields are
// reported as field-attributed errors; semantic checks happen in the
// validator, not here.
func (r SearchRequest) Criteria() (SearchCriteria, []FieldError) {
	var errs []FieldError

	c := SearchCriteria{
		Origin:         r.Origin,
		Destination:    r.Destination,
		RoundTrip:      r.RoundTrip,
		MaxConnections: r.MaxConnections,
	}

	c.SeatClass = SeatClassEconomy
	if r.CabinClass != "" {
		class, ok := ParseSeatClass(r.CabinClass)
		if !ok {
			errs = append(errs, FieldError{Field: "seatClass", Message: "unknown cabin class: " + r.CabinClass})
		} else {
			c.SeatClass = class
		}
	}

	start, err := parseDate(r.DateFrom)
	if err != nil {
		errs = append(errs, FieldError{Field: "dateRange", Message: "date_from must be a valid YYYY-MM-DD date"})
	}
	end := start
	if r.DateTo != "" {
		end, err = parseDate(r.DateTo)
		if err != nil {
			errs = append(errs, FieldError{Field: "dateRange", Message: "date_to must be a valid YYYY-MM-DD date"})
		}
	}
	c.Dates = NewDateRange(start, end)

	if r.ReturnDate != nil && *r.ReturnDate != "" {
		rd, err := parseDate(*r.ReturnDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "returnDate", Message: "return_date must be a valid YYYY-MM-DD date"})
		} else {
			c.ReturnDate = &rd
		}
	}

	return c, errs
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}
