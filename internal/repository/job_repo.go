package repository

import (
	"context"
	"fmt"
	"time"

	"parkeasy/internal/db"
)

// OverdueBooking identifies an active booking whose window has ended.
type OverdueBooking struct {
	ID            string
	UserID        string
	ParkingSpotID string
	BookedUntil   time.Time
}

type JobRepository struct {
	DB *db.DB
}

func NewJobRepository(conn *db.DB) *JobRepository {
	return &JobRepository{DB: conn}
}

// GetOverdueActiveBookings finds active bookings whose end time is before now.
func (r *JobRepository) GetOverdueActiveBookings(ctx context.Context, now time.Time) ([]OverdueBooking, error) {
	query := `
		SELECT id, user_id, parking_spot_id, booked_until
		FROM bookings
		WHERE status = 'active' AND booked_until < $1
		ORDER BY booked_until`
	rows, err := r.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("error querying overdue bookings: %w", err)
	}
	defer rows.Close()

	var bookings []OverdueBooking
	for rows.Next() {
		var b OverdueBooking
		if err := rows.Scan(&b.ID, &b.UserID, &b.ParkingSpotID, &b.BookedUntil); err != nil {
			return nil, fmt.Errorf("error scanning overdue booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return bookings, nil
}
