package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"parkeasy/internal/auth"
	"parkeasy/internal/db"
	"parkeasy/internal/entities"
	apperrors "parkeasy/internal/errors"
	"parkeasy/internal/repository"
	"parkeasy/internal/utils"
)

const noActiveBookingMessage = "No active booking found to release"

type BookingRepository interface {
	Reserve(ctx context.Context, spotID string, plan func(s *db.ParkingSpot) (*db.Booking, error)) (*db.ParkingSpot, *db.Booking, error)
	Release(ctx context.Context, spotID string, f repository.ReleaseFilter, apply func(s *db.ParkingSpot, bookings []db.Booking) error) (*db.ParkingSpot, []db.Booking, error)
	GetByID(ctx context.Context, id string) (*db.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]db.BookingDetail, error)
}

// Notifier tells account holders about their bookings.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b db.Booking)
	BookingEnded(ctx context.Context, b db.Booking)
}

// Refunder returns the payment of a cancelled booking.
type Refunder interface {
	RefundBooking(ctx context.Context, b db.Booking) error
}

// ReleaseResult is either the updated spot or a message when nothing was active.
type ReleaseResult struct {
	Spot     *entities.SpotResponse
	Released []db.Booking
	Message  string
}

type ReservationService struct {
	Repo     BookingRepository
	Cache    SpotCache
	Events   SpotEvents
	Notifier Notifier
	Refunder Refunder

	loc *time.Location
	now func() time.Time
	log *slog.Logger
	wg  sync.WaitGroup
}

func NewReservationService(repo BookingRepository, c SpotCache, events SpotEvents, notifier Notifier,
	refunder Refunder, loc *time.Location, log *slog.Logger) *ReservationService {
	return &ReservationService{
		Repo:     repo,
		Cache:    c,
		Events:   events,
		Notifier: notifier,
		Refunder: refunder,
		loc:      loc,
		now:      time.Now,
		log:      log,
	}
}

func (s *ReservationService) Reserve(ctx context.Context, actor *auth.Claims, spotID string, req entities.BookSpotRequest) (*entities.BookSpotResponse, error) {
	start, err := utils.ParseTimestamp(req.StartTime, s.loc)
	if err != nil {
		return nil, apperrors.ErrInvalidTime
	}
	end, err := utils.ParseTimestamp(req.EndTime, s.loc)
	if err != nil {
		return nil, apperrors.ErrInvalidTime
	}
	if start.Before(s.now()) {
		return nil, apperrors.ErrStartInPast
	}
	if !end.After(start) {
		return nil, apperrors.ErrEndBeforeStart
	}
	count := 1
	if req.SpotsToBook != nil {
		count = *req.SpotsToBook
	}
	if count < 1 {
		return nil, apperrors.BadRequest("At least one spot must be booked")
	}
	class, ok := utils.ParseVehicleClass(req.VehicleType)
	if !ok {
		return nil, apperrors.ErrInvalidVehicle
	}

	spot, booking, err := s.Repo.Reserve(ctx, spotID, func(spot *db.ParkingSpot) (*db.Booking, error) {
		return planReservation(spot, actor.ID, class, count, start.UTC(), end.UTC())
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("spot reserved",
		"booking_id", booking.ID, "spot_id", spot.ID, "user_id", actor.UserID,
		"spots", count, "total_amount", booking.TotalAmount)

	resp := s.spotChanged(ctx, *spot)
	s.dispatch(ctx, func(ctx context.Context) {
		s.Notifier.BookingConfirmed(ctx, *booking)
	})
	return &entities.BookSpotResponse{
		SpotResponse: resp,
		TotalAmount:  booking.TotalAmount,
		EntryCode:    booking.EntryCode,
		BookingID:    booking.ID,
	}, nil
}

// planReservation takes count slots of spot for userID and describes the
// resulting booking. The entry code is drawn by the repository.
func planReservation(spot *db.ParkingSpot, userID, class string, count int, start, end time.Time) (*db.Booking, error) {
	if spot.AvailableSpots < count {
		return nil, apperrors.InsufficientSpots(spot.AvailableSpots)
	}
	rate := utils.HourlyRate(spot.Rates, spot.PricePerHour, class)
	hours := end.Sub(start).Hours()
	total := utils.Round2(rate * float64(count) * hours)

	bookedAt, bookedUntil := start, end
	occupant := userID
	spot.AvailableSpots -= count
	spot.BookedSpots += count
	spot.BookedBy = &occupant
	spot.BookedAt = &bookedAt
	spot.BookedUntil = &bookedUntil
	spot.SyncAvailability()

	return &db.Booking{
		UserID:          userID,
		ParkingSpotID:   spot.ID,
		ParkingSpotName: spot.Name,
		Location:        spot.Location,
		BookedSpots:     count,
		VehicleType:     class,
		PricePerHour:    rate,
		TotalAmount:     total,
		BookedAt:        start,
		BookedUntil:     end,
		Status:          db.BookingActive,
		PaymentStatus:   db.PaymentUnpaid,
	}, nil
}

func validReleaseStatus(status string) bool {
	switch status {
	case db.BookingCancelled, db.BookingReleased, db.BookingCompleted:
		return true
	}
	return false
}

// Release ends the actor's active bookings on a spot. Admins may end any
// user's booking by naming it explicitly.
func (s *ReservationService) Release(ctx context.Context, actor *auth.Claims, spotID string, req entities.ReleaseSpotRequest) (*ReleaseResult, error) {
	status := req.Status
	if status == "" {
		status = db.BookingReleased
	}
	if !validReleaseStatus(status) {
		return nil, apperrors.ErrInvalidStatus
	}
	filter := repository.ReleaseFilter{UserID: actor.ID, BookingID: req.BookingID}
	if actor.IsAdmin() && req.BookingID != "" {
		filter.UserID = ""
	}
	return s.release(ctx, spotID, filter, status)
}

func (s *ReservationService) release(ctx context.Context, spotID string, filter repository.ReleaseFilter, status string) (*ReleaseResult, error) {
	at := s.now().UTC()
	spot, released, err := s.Repo.Release(ctx, spotID, filter, func(spot *db.ParkingSpot, bookings []db.Booking) error {
		applyRelease(spot, bookings, status, at)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(released) == 0 {
		return &ReleaseResult{Message: noActiveBookingMessage}, nil
	}

	ids := make([]string, 0, len(released))
	for _, b := range released {
		ids = append(ids, b.ID)
	}
	s.log.Info("bookings released", "spot_id", spot.ID, "status", status, "booking_ids", ids)

	resp := s.spotChanged(ctx, *spot)
	for _, b := range released {
		b := b
		s.dispatch(ctx, func(ctx context.Context) {
			s.Notifier.BookingEnded(ctx, b)
			if b.Status == db.BookingCancelled && b.PaymentStatus == db.PaymentPaid && s.Refunder != nil {
				if err := s.Refunder.RefundBooking(ctx, b); err != nil {
					s.log.Error("refund failed", "booking_id", b.ID, "error", err)
				}
			}
		})
	}
	return &ReleaseResult{Spot: &resp, Released: released}, nil
}

// applyRelease marks bookings with status and returns their slots to spot,
// never beyond its total. Occupancy is cleared once nothing remains booked.
func applyRelease(spot *db.ParkingSpot, bookings []db.Booking, status string, at time.Time) {
	freed := 0
	for i := range bookings {
		freed += bookings[i].BookedSpots
		releasedAt := at
		bookings[i].Status = status
		bookings[i].ReleasedAt = &releasedAt
	}
	spot.AvailableSpots = min(spot.TotalSpots, spot.AvailableSpots+freed)
	spot.BookedSpots = max(0, spot.BookedSpots-freed)
	if spot.BookedSpots == 0 {
		spot.BookedBy = nil
		spot.BookedAt = nil
		spot.BookedUntil = nil
	}
	spot.SyncAvailability()
}

// CompleteOverdue closes one booking whose window has passed. It reports
// false when the booking was no longer active.
func (s *ReservationService) CompleteOverdue(ctx context.Context, b repository.OverdueBooking) (bool, error) {
	res, err := s.release(ctx, b.ParkingSpotID,
		repository.ReleaseFilter{UserID: b.UserID, BookingID: b.ID}, db.BookingCompleted)
	if err != nil {
		return false, err
	}
	return len(res.Released) > 0, nil
}

func (s *ReservationService) History(ctx context.Context, actor *auth.Claims) ([]entities.BookingResponse, error) {
	details, err := s.Repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return entities.NewBookingDetailResponses(details), nil
}

// BookingFor returns a booking the actor owns, or any booking for admins.
func (s *ReservationService) BookingFor(ctx context.Context, actor *auth.Claims, bookingID string) (*db.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.ErrBookingForbidden
	}
	return b, nil
}

func (s *ReservationService) spotChanged(ctx context.Context, spot db.ParkingSpot) entities.SpotResponse {
	resp := entities.NewSpotResponse(spot)
	s.Cache.Invalidate(ctx)
	s.Events.SpotChanged(resp)
	return resp
}

// dispatch runs fn in the background, detached from the request's cancellation.
func (s *ReservationService) dispatch(ctx context.Context, fn func(ctx context.Context)) {
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(bg)
	}()
}

// Wait blocks until background notifications have finished.
func (s *ReservationService) Wait() {
	s.wg.Wait()
}
