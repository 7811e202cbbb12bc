package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parkeasy/internal/db"
	apperrors "parkeasy/internal/errors"
	"parkeasy/internal/utils"

	"github.com/google/uuid"
)

const bookingColumns = `b.id, b.user_id, b.parking_spot_id, b.parking_spot_name, b.location,
	b.booked_spots, b.vehicle_type, b.price_per_hour, b.total_amount, b.booked_at, b.booked_until,
	b.released_at, b.entry_code, b.status, b.payment_status, b.stripe_session_id,
	b.stripe_payment_intent_id, b.created_at, b.updated_at`

const maxCodeAttempts = 20

// ReleaseFilter narrows the active bookings a release applies to.
// Empty fields match everything.
type ReleaseFilter struct {
	UserID    string
	BookingID string
}

type BookingRepository struct {
	DB *db.DB
	// NewCode draws a candidate entry code.
	NewCode func() string
}

func NewBookingRepository(conn *db.DB) *BookingRepository {
	return &BookingRepository{DB: conn, NewCode: utils.FiveDigitCode}
}

func bookingDest(b *db.Booking) []any {
	return []any{&b.ID, &b.UserID, &b.ParkingSpotID, &b.ParkingSpotName, &b.Location,
		&b.BookedSpots, &b.VehicleType, &b.PricePerHour, &b.TotalAmount, &b.BookedAt, &b.BookedUntil,
		&b.ReleasedAt, &b.EntryCode, &b.Status, &b.PaymentStatus, &b.StripeSessionID,
		&b.PaymentIntentID, &b.CreatedAt, &b.UpdatedAt}
}

// Reserve locks the spot, lets plan mutate it and describe the booking, then
// persists both in the same transaction with an entry code unused by any
// active booking.
func (r *BookingRepository) Reserve(ctx context.Context, spotID string,
	plan func(s *db.ParkingSpot) (*db.Booking, error)) (*db.ParkingSpot, *db.Booking, error) {
	var (
		spot    *db.ParkingSpot
		booking *db.Booking
	)
	err := r.DB.Transaction(ctx, func(tx *sql.Tx) error {
		s, err := getSpot(ctx, tx, spotID, true)
		if err != nil {
			return err
		}
		b, err := plan(s)
		if err != nil {
			return err
		}

		code, err := r.drawEntryCode(ctx, tx)
		if err != nil {
			return err
		}
		b.EntryCode = code
		if b.ID == "" {
			b.ID = uuid.NewString()
		}

		if err := insertBooking(ctx, tx, b); err != nil {
			return err
		}
		if err := saveSpot(ctx, tx, s); err != nil {
			return err
		}
		spot, booking = s, b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return spot, booking, nil
}

func (r *BookingRepository) drawEntryCode(ctx context.Context, tx *sql.Tx) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := r.NewCode()
		var taken bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM bookings WHERE entry_code = $1 AND status = 'active')`, code).Scan(&taken)
		if err != nil {
			return "", fmt.Errorf("error checking entry code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperrors.ErrCodeSpaceExhausted
}

func insertBooking(ctx context.Context, tx *sql.Tx, b *db.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, parking_spot_id, parking_spot_name, location, booked_spots,
			vehicle_type, price_per_hour, total_amount, booked_at, booked_until, entry_code, status,
			payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err := tx.QueryRowContext(ctx, query, b.ID, b.UserID, b.ParkingSpotID, b.ParkingSpotName,
		b.Location, b.BookedSpots, b.VehicleType, b.PricePerHour, b.TotalAmount, b.BookedAt,
		b.BookedUntil, b.EntryCode, b.Status, b.PaymentStatus).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting booking: %w", err)
	}
	return nil
}

// Release locks the spot and the active bookings matching filter. When none
// match nothing is written and the returned slice is empty. Otherwise apply
// mutates the spot and bookings and both are persisted.
func (r *BookingRepository) Release(ctx context.Context, spotID string, filter ReleaseFilter,
	apply func(s *db.ParkingSpot, bookings []db.Booking) error) (*db.ParkingSpot, []db.Booking, error) {
	var (
		spot     *db.ParkingSpot
		released []db.Booking
	)
	err := r.DB.Transaction(ctx, func(tx *sql.Tx) error {
		s, err := getSpot(ctx, tx, spotID, true)
		if err != nil {
			return err
		}
		spot = s

		query := `
			SELECT ` + bookingColumns + `
			FROM bookings b
			WHERE b.parking_spot_id = $1 AND b.status = 'active'
				AND ($2 = '' OR b.user_id::text = $2)
				AND ($3 = '' OR b.id::text = $3)
			FOR UPDATE`
		rows, err := tx.QueryContext(ctx, query, spotID, filter.UserID, filter.BookingID)
		if err != nil {
			return fmt.Errorf("error selecting active bookings: %w", err)
		}
		var bookings []db.Booking
		for rows.Next() {
			var b db.Booking
			if err := rows.Scan(bookingDest(&b)...); err != nil {
				rows.Close()
				return fmt.Errorf("error scanning booking: %w", err)
			}
			bookings = append(bookings, b)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating bookings: %w", err)
		}
		if len(bookings) == 0 {
			return nil
		}

		if err := apply(s, bookings); err != nil {
			return err
		}

		for _, b := range bookings {
			_, err := tx.ExecContext(ctx,
				`UPDATE bookings SET status = $2, released_at = $3, updated_at = NOW() WHERE id = $1`,
				b.ID, b.Status, b.ReleasedAt)
			if err != nil {
				return fmt.Errorf("error updating booking %s: %w", b.ID, err)
			}
		}
		if err := saveSpot(ctx, tx, s); err != nil {
			return err
		}
		released = bookings
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return spot, released, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*db.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrBookingNotFound
	}
	var b db.Booking
	err := r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`, id).
		Scan(bookingDest(&b)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &b, nil
}

// ListByUser returns the bookings of one account, newest reservation first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]db.BookingDetail, error) {
	query := `
		SELECT ` + bookingColumns + `, s.id, s.spot_number, s.location
		FROM bookings b
		LEFT JOIN parking_spots s ON s.id = b.parking_spot_id
		WHERE b.user_id = $1
		ORDER BY b.booked_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings for %s: %w", userID, err)
	}
	defer rows.Close()

	details := []db.BookingDetail{}
	for rows.Next() {
		var (
			d                  db.BookingDetail
			sID, sNum, sLocale sql.NullString
		)
		if err := rows.Scan(append(bookingDest(&d.Booking), &sID, &sNum, &sLocale)...); err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		if sID.Valid {
			d.Spot = &db.SpotSummary{ID: sID.String, SpotNumber: sNum.String, Location: sLocale.String}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
