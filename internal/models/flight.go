package models

import "time"

// FlightLeg is a single scheduled segment, read-only to the search engine.
// Times are UTC.
type FlightLeg struct {
	FlightID      string            `json:"flight_id"`
	AirlineID     string            `json:"airline_id"`
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	DepartureTime time.Time         `json:"departure_time"`
	ArrivalTime   time.Time         `json:"arrival_time"`
	SeatsByClass  map[SeatClass]int `json:"seats_by_class"`
}

// Available reports whether the leg has at least one seat in the class.
func (l FlightLeg) Available(class SeatClass) bool {
	return l.SeatsByClass[class] > 0
}

// Itinerary is an ordered sequence of legs forming one travel option.
// Adjacent legs share an airport and respect the configured layover window.
type Itinerary struct {
	Legs         []FlightLeg `json:"legs"`
	Stops        int         `json:"stops"`
	TotalMinutes int         `json:"total_minutes"`
}

func NewItinerary(legs []FlightLeg) Itinerary {
	it := Itinerary{Legs: legs, Stops: len(legs) - 1}
	it.TotalMinutes = int(it.Elapsed() / time.Minute)
	return it
}

func (it Itinerary) Departure() time.Time {
	return it.Legs[0].DepartureTime
}

func (it Itinerary) Arrival() time.Time {
	return it.Legs[len(it.Legs)-1].ArrivalTime
}

// Elapsed is total travel time from first departure to last arrival,
// layovers included.
func (it Itinerary) Elapsed() time.Duration {
	if len(it.Legs) == 0 {
		return 0
	}
	return it.Arrival().Sub(it.Departure())
}
