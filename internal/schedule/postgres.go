package schedule

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdamSoufiane/connectsearch/internal/models"
)

// PostgresStore reads legs from the flight_legs table written by the
// ingestion pipeline. Seat availability per class lives in dedicated
// columns so the class filter happens in SQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, models.NewInfraError("postgres: parse config", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, models.NewInfraError("postgres: connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, models.NewInfraError("postgres: ping", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

const legColumns = `flight_id, airline_id, origin, destination, departure_time, arrival_time,
	economy_seats, business_seats, first_seats`

func seatColumn(class models.SeatClass) string {
	switch class {
	case models.SeatClassBusiness:
		return "business_seats"
	case models.SeatClassFirst:
		return "first_seats"
	default:
		return "economy_seats"
	}
}

func (s *PostgresStore) FindLegs(ctx context.Context, origin, destination string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	query := `SELECT ` + legColumns + `
		FROM flight_legs
		WHERE origin = $1 AND destination = $2
		  AND departure_time >= $3 AND departure_time < $4
		  AND ` + seatColumn(class) + ` > 0
		ORDER BY departure_time`
	rows, err := s.pool.Query(ctx, query, origin, destination, dates.Start, dates.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, models.NewInfraError("postgres: query legs", err)
	}
	return collectLegs(rows)
}

func (s *PostgresStore) DeparturesFrom(ctx context.Context, origin string, dates models.DateRange, class models.SeatClass) ([]models.FlightLeg, error) {
	query := `SELECT ` + legColumns + `
		FROM flight_legs
		WHERE origin = $1
		  AND departure_time >= $2 AND departure_time < $3
		  AND ` + seatColumn(class) + ` > 0
		ORDER BY departure_time`
	rows, err := s.pool.Query(ctx, query, origin, dates.Start, dates.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, models.NewInfraError("postgres: query departures", err)
	}
	return collectLegs(rows)
}

func collectLegs(rows pgx.Rows) ([]models.FlightLeg, error) {
	defer rows.Close()

	var legs []models.FlightLeg
	for rows.Next() {
		var l models.FlightLeg
		var economy, business, first int
		if err := rows.Scan(&l.FlightID, &l.AirlineID, &l.Origin, &l.Destination,
			&l.DepartureTime, &l.ArrivalTime, &economy, &business, &first); err != nil {
			return nil, models.NewInfraError("postgres: scan leg", err)
		}
		l.SeatsByClass = map[models.SeatClass]int{
			models.SeatClassEconomy:  economy,
			models.SeatClassBusiness: business,
			models.SeatClassFirst:    first,
		}
		legs = append(legs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewInfraError("postgres: read legs", err)
	}
	return legs, nil
}
