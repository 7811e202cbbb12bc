package repository

import (
	"context"
	"fmt"

	"parkeasy/internal/db"
)

type StripeRepository struct {
	DB *db.DB
}

func NewStripeRepository(conn *db.DB) *StripeRepository {
	return &StripeRepository{DB: conn}
}

// SetCheckoutSession records the Checkout session opened for a booking.
func (r *StripeRepository) SetCheckoutSession(ctx context.Context, bookingID, sessionID string) error {
	query := `
		UPDATE bookings
		SET stripe_session_id = $2, payment_status = $3, updated_at = NOW()
		WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, bookingID, sessionID, db.PaymentPending)
	if err != nil {
		return fmt.Errorf("error storing checkout session for booking %s: %w", bookingID, err)
	}
	return nil
}

// MarkSessionPaid flags the booking behind a completed session as paid and
// remembers its payment intent. It reports how many bookings matched.
func (r *StripeRepository) MarkSessionPaid(ctx context.Context, sessionID, paymentIntentID string) (int64, error) {
	query := `
		UPDATE bookings
		SET payment_status = $2, stripe_payment_intent_id = $3, updated_at = NOW()
		WHERE stripe_session_id = $1`
	res, err := r.DB.ExecContext(ctx, query, sessionID, db.PaymentPaid, paymentIntentID)
	if err != nil {
		return 0, fmt.Errorf("error marking session %s paid: %w", sessionID, err)
	}
	return res.RowsAffected()
}

// MarkIntentRefunded flags the booking paid through paymentIntentID as refunded.
func (r *StripeRepository) MarkIntentRefunded(ctx context.Context, paymentIntentID string) (int64, error) {
	query := `
		UPDATE bookings
		SET payment_status = $2, updated_at = NOW()
		WHERE stripe_payment_intent_id = $1 AND stripe_payment_intent_id <> ''`
	res, err := r.DB.ExecContext(ctx, query, paymentIntentID, db.PaymentRefunded)
	if err != nil {
		return 0, fmt.Errorf("error marking payment intent %s refunded: %w", paymentIntentID, err)
	}
	return res.RowsAffected()
}
