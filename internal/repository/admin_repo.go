package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"parkeasy/internal/db"
)

// BookingFilter narrows the admin booking listing. Empty fields match all.
type BookingFilter struct {
	Status string
	UserID string
}

type AdminRepository struct {
	DB *db.DB
}

func NewAdminRepository(conn *db.DB) *AdminRepository {
	return &AdminRepository{DB: conn}
}

// ListBookings returns every booking with account and spot summaries,
// newest first.
func (r *AdminRepository) ListBookings(ctx context.Context, f BookingFilter) ([]db.BookingDetail, error) {
	query := `
	SELECT ` + bookingColumns + `,
		a.id, a.user_id, a.name, a.email,
		s.id, s.spot_number, s.location
	FROM bookings b
	LEFT JOIN accounts a ON a.id = b.user_id
	LEFT JOIN parking_spots s ON s.id = b.parking_spot_id
	WHERE 1=1`
	args := []any{}
	idx := 1

	if f.Status != "" {
		query += " AND b.status = $" + strconv.Itoa(idx)
		args = append(args, f.Status)
		idx++
	}
	if f.UserID != "" {
		query += " AND a.user_id = $" + strconv.Itoa(idx)
		args = append(args, f.UserID)
		idx++
	}
	query += " ORDER BY b.created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	details := []db.BookingDetail{}
	for rows.Next() {
		var (
			d                       db.BookingDetail
			aID, aUID, aName, aMail sql.NullString
			sID, sNum, sLoc         sql.NullString
		)
		dest := append(bookingDest(&d.Booking), &aID, &aUID, &aName, &aMail, &sID, &sNum, &sLoc)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		if aID.Valid {
			d.Account = &db.AccountSummary{ID: aID.String, UserID: aUID.String, Name: aName.String, Email: aMail.String}
		}
		if sID.Valid {
			d.Spot = &db.SpotSummary{ID: sID.String, SpotNumber: sNum.String, Location: sLoc.String}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// BookingStats counts bookings per status. Revenue excludes cancelled bookings.
func (r *AdminRepository) BookingStats(ctx context.Context) (*db.BookingStats, error) {
	query := `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'active'),
		COUNT(*) FILTER (WHERE status = 'completed'),
		COUNT(*) FILTER (WHERE status = 'cancelled'),
		COUNT(*) FILTER (WHERE status = 'released'),
		COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0)
	FROM bookings`

	var st db.BookingStats
	err := r.DB.QueryRowContext(ctx, query).Scan(&st.Total, &st.Active, &st.Completed,
		&st.Cancelled, &st.Released, &st.Revenue)
	if err != nil {
		return nil, fmt.Errorf("error computing booking stats: %w", err)
	}
	return &st, nil
}
