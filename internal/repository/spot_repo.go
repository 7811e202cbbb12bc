package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parkeasy/internal/db"
	apperrors "parkeasy/internal/errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const spotColumns = `s.id, s.name, s.spot_number, s.location, s.total_spots, s.available_spots,
	s.bike_hourly, s.car_hourly, s.bus_hourly, s.truck_hourly, s.price_per_hour, s.is_available,
	s.vehicle_type, s.features, s.booked_by, s.booked_spots, s.booked_at, s.booked_until,
	s.created_at, s.updated_at`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SpotRepository struct {
	DB *db.DB
}

func NewSpotRepository(conn *db.DB) *SpotRepository {
	return &SpotRepository{DB: conn}
}

func spotDest(s *db.ParkingSpot) []any {
	return []any{&s.ID, &s.Name, &s.SpotNumber, &s.Location, &s.TotalSpots, &s.AvailableSpots,
		&s.Rates.Bike, &s.Rates.Car, &s.Rates.Bus, &s.Rates.Truck, &s.PricePerHour, &s.IsAvailable,
		&s.VehicleType, pq.Array(&s.Features), &s.BookedBy, &s.BookedSpots, &s.BookedAt, &s.BookedUntil,
		&s.CreatedAt, &s.UpdatedAt}
}

// List returns spots ordered by spot number with the occupant summary joined.
func (r *SpotRepository) List(ctx context.Context, onlyAvailable bool) ([]db.ParkingSpot, error) {
	query := `
		SELECT ` + spotColumns + `, a.id, a.user_id, a.name, a.email
		FROM parking_spots s
		LEFT JOIN accounts a ON a.id = s.booked_by`
	if onlyAvailable {
		query += ` WHERE s.is_available`
	}
	query += ` ORDER BY s.spot_number`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing parking spots: %w", err)
	}
	defer rows.Close()

	spots := []db.ParkingSpot{}
	for rows.Next() {
		var (
			s                       db.ParkingSpot
			aID, aUID, aName, aMail sql.NullString
		)
		if err := rows.Scan(append(spotDest(&s), &aID, &aUID, &aName, &aMail)...); err != nil {
			return nil, fmt.Errorf("error scanning parking spot: %w", err)
		}
		if aID.Valid {
			s.Occupant = &db.AccountSummary{ID: aID.String, UserID: aUID.String, Name: aName.String, Email: aMail.String}
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

func (r *SpotRepository) GetByID(ctx context.Context, id string) (*db.ParkingSpot, error) {
	return getSpot(ctx, r.DB, id, false)
}

func getSpot(ctx context.Context, q querier, id string, forUpdate bool) (*db.ParkingSpot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrSpotNotFound
	}
	query := `SELECT ` + spotColumns + ` FROM parking_spots s WHERE s.id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s db.ParkingSpot
	err := q.QueryRowContext(ctx, query, id).Scan(spotDest(&s)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrSpotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching parking spot %s: %w", id, err)
	}
	return &s, nil
}

func (r *SpotRepository) Create(ctx context.Context, s *db.ParkingSpot) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Features == nil {
		s.Features = []string{}
	}
	query := `
		INSERT INTO parking_spots (id, name, spot_number, location, total_spots, available_spots,
			bike_hourly, car_hourly, bus_hourly, truck_hourly, price_per_hour, is_available,
			vehicle_type, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err := r.DB.QueryRowContext(ctx, query, s.ID, s.Name, s.SpotNumber, s.Location, s.TotalSpots,
		s.AvailableSpots, s.Rates.Bike, s.Rates.Car, s.Rates.Bus, s.Rates.Truck, s.PricePerHour,
		s.IsAvailable, s.VehicleType, pq.Array(s.Features)).Scan(&s.CreatedAt, &s.UpdatedAt)
	if _, ok := db.UniqueViolation(err); ok {
		return apperrors.ErrSpotNumberTaken
	}
	if err != nil {
		return fmt.Errorf("error inserting parking spot: %w", err)
	}
	return nil
}

// Update locks the spot row, lets fn modify it and writes it back.
func (r *SpotRepository) Update(ctx context.Context, id string, fn func(s *db.ParkingSpot) error) (*db.ParkingSpot, error) {
	var spot *db.ParkingSpot
	err := r.DB.Transaction(ctx, func(tx *sql.Tx) error {
		s, err := getSpot(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		if err := saveSpot(ctx, tx, s); err != nil {
			return err
		}
		spot = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return spot, nil
}

func saveSpot(ctx context.Context, q querier, s *db.ParkingSpot) error {
	if s.Features == nil {
		s.Features = []string{}
	}
	query := `
		UPDATE parking_spots SET
			name = $2, spot_number = $3, location = $4, total_spots = $5, available_spots = $6,
			bike_hourly = $7, car_hourly = $8, bus_hourly = $9, truck_hourly = $10,
			price_per_hour = $11, is_available = $12, vehicle_type = $13, features = $14,
			booked_by = $15, booked_spots = $16, booked_at = $17, booked_until = $18,
			updated_at = $19
		WHERE id = $1`

	s.UpdatedAt = time.Now().UTC()
	_, err := q.ExecContext(ctx, query, s.ID, s.Name, s.SpotNumber, s.Location, s.TotalSpots,
		s.AvailableSpots, s.Rates.Bike, s.Rates.Car, s.Rates.Bus, s.Rates.Truck, s.PricePerHour,
		s.IsAvailable, s.VehicleType, pq.Array(s.Features), s.BookedBy, s.BookedSpots, s.BookedAt,
		s.BookedUntil, s.UpdatedAt)
	if _, ok := db.UniqueViolation(err); ok {
		return apperrors.ErrSpotNumberTaken
	}
	if err != nil {
		return fmt.Errorf("error updating parking spot %s: %w", s.ID, err)
	}
	return nil
}

func (r *SpotRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.ErrSpotNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM parking_spots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting parking spot %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrSpotNotFound
	}
	return nil
}
