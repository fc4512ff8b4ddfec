package models

// CriteriaEcho mirrors the normalized criteria back to the caller.
type CriteriaEcho struct {
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DateFrom       string  `json:"date_from"`
	DateTo         string  `json:"date_to"`
	CabinClass     string  `json:"cabin_class"`
	RoundTrip      bool    `json:"round_trip"`
	ReturnDate     *string `json:"return_date,omitempty"`
	MaxConnections int     `json:"max_connections"`
}

func EchoCriteria(c SearchCriteria, maxConnections int) CriteriaEcho {
	e := CriteriaEcho{
		Origin:         c.Origin,
		Destination:    c.Destination,
		DateFrom:       c.Dates.Start.Format(DateFormat),
		DateTo:         c.Dates.End.Format(DateFormat),
		CabinClass:     string(c.SeatClass),
		RoundTrip:      c.RoundTrip,
		MaxConnections: maxConnections,
	}
	if c.ReturnDate != nil {
		rd := c.ReturnDate.Format(DateFormat)
		e.ReturnDate = &rd
	}
	return e
}

type SearchResponse struct {
	SearchID          string       `json:"search_id"`
	Criteria          CriteriaEcho `json:"search_criteria"`
	Itineraries       []Itinerary  `json:"itineraries"`
	ReturnItineraries []Itinerary  `json:"return_itineraries,omitempty"`
	ServedFromCache   bool         `json:"served_from_cache"`
	// DataComplete is false while schedule ingestion for the requested
	// range is still running; an empty result is then not authoritative.
	DataComplete bool         `json:"data_complete"`
	Errors       []FieldError `json:"errors,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}
