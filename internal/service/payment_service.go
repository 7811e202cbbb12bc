package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"parkeasy/internal/db"
	"parkeasy/internal/entities"
	apperrors "parkeasy/internal/errors"
)

type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, amount int64, currency, description, customerEmail, bookingID string) (string, string, error)
	RefundPaymentIntent(ctx context.Context, paymentIntentID string) error
}

type PaymentRepository interface {
	SetCheckoutSession(ctx context.Context, bookingID, sessionID string) error
	MarkSessionPaid(ctx context.Context, sessionID, paymentIntentID string) (int64, error)
	MarkIntentRefunded(ctx context.Context, paymentIntentID string) (int64, error)
}

// PaymentService charges bookings through Stripe Checkout. A nil Provider
// means payments are switched off.
type PaymentService struct {
	Provider CheckoutProvider
	Repo     PaymentRepository
	Accounts AccountGetter
	Currency string
	log      *slog.Logger
}

func NewPaymentService(provider CheckoutProvider, repo PaymentRepository, accounts AccountGetter, currency string, log *slog.Logger) *PaymentService {
	return &PaymentService{Provider: provider, Repo: repo, Accounts: accounts, Currency: currency, log: log}
}

// minorUnits converts an amount to the smallest currency unit.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (s *PaymentService) Checkout(ctx context.Context, b *db.Booking) (*entities.CheckoutResponse, error) {
	if s.Provider == nil {
		return nil, apperrors.ErrPaymentsDisabled
	}
	if b.Status != db.BookingActive {
		return nil, apperrors.ErrBookingNotActive
	}
	if b.PaymentStatus == db.PaymentPaid {
		return nil, apperrors.ErrBookingPaid
	}

	email := ""
	if account, err := s.Accounts.GetByID(ctx, b.UserID); err == nil {
		email = account.Email
	}
	description := fmt.Sprintf("ParkEasy booking at %s (%d spot(s))", b.ParkingSpotName, b.BookedSpots)

	url, sessionID, err := s.Provider.CreateCheckoutSession(ctx, minorUnits(b.TotalAmount), s.Currency, description, email, b.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetCheckoutSession(ctx, b.ID, sessionID); err != nil {
		return nil, err
	}
	s.log.Info("checkout session created", "booking_id", b.ID, "session_id", sessionID)
	return &entities.CheckoutResponse{URL: url, SessionID: sessionID}, nil
}

func (s *PaymentService) SessionCompleted(ctx context.Context, sessionID, paymentIntentID string) error {
	n, err := s.Repo.MarkSessionPaid(ctx, sessionID, paymentIntentID)
	if err != nil {
		return err
	}
	if n == 0 {
		s.log.Warn("completed session matches no booking", "session_id", sessionID)
		return nil
	}
	s.log.Info("booking paid", "session_id", sessionID)
	return nil
}

func (s *PaymentService) ChargeRefunded(ctx context.Context, paymentIntentID string) error {
	n, err := s.Repo.MarkIntentRefunded(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	s.log.Info("booking refunded", "payment_intent", paymentIntentID, "bookings", n)
	return nil
}

// RefundBooking refunds a paid booking. The webhook flips its payment status.
func (s *PaymentService) RefundBooking(ctx context.Context, b db.Booking) error {
	if s.Provider == nil {
		return apperrors.ErrPaymentsDisabled
	}
	if b.PaymentIntentID == "" {
		return errors.New("booking has no payment intent")
	}
	return s.Provider.RefundPaymentIntent(ctx, b.PaymentIntentID)
}
