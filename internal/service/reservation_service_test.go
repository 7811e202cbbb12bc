package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"parkeasy/internal/auth"
	"parkeasy/internal/cache"
	"parkeasy/internal/db"
	"parkeasy/internal/entities"
	apperrors "parkeasy/internal/errors"
	"parkeasy/internal/repository"
	"parkeasy/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

type reservationFixture struct {
	state    *memState
	events   *recordingEvents
	notifier *mockNotifier
	refunder *mockRefunder
	svc      *ReservationService
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	f := &reservationFixture{
		state:    newMemState(),
		events:   &recordingEvents{},
		notifier: &mockNotifier{},
		refunder: &mockRefunder{},
	}
	f.notifier.On("BookingConfirmed", mock.Anything, mock.Anything).Maybe()
	f.notifier.On("BookingEnded", mock.Anything, mock.Anything).Maybe()
	f.svc = NewReservationService(memBookings{f.state}, cache.Noop{}, f.events, f.notifier,
		f.refunder, time.UTC, discardLogger())
	f.svc.now = func() time.Time { return testNow }
	return f
}

func carSpot(total int) db.ParkingSpot {
	return db.ParkingSpot{
		Name:           "Spot A1",
		SpotNumber:     "A1",
		Location:       "Level 1",
		TotalSpots:     total,
		AvailableSpots: total,
		PricePerHour:   20,
		Rates:          utils.ClassRates{Car: ptr(25.0)},
		VehicleType:    "Any",
	}
}

func user(id string) *auth.Claims {
	return &auth.Claims{ID: id, UserID: "12345", Email: id + "@example.com", Role: db.RoleUser}
}

func TestReserveAndRelease(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(5))

	resp, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
		StartTime:   "2026-01-01T12:00:00Z",
		EndTime:     "2026-01-01T15:00:00Z",
		SpotsToBook: ptr(2),
		VehicleType: "car",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.AvailableSpots)
	assert.Equal(t, 2, resp.BookedSpots)
	assert.True(t, resp.IsAvailable)
	assert.Equal(t, 150.0, resp.TotalAmount)
	assert.Regexp(t, `^[1-9]\d{4}$`, resp.EntryCode)
	assert.NotEmpty(t, resp.BookingID)

	booking, err := memBookings{f.state}.GetByID(context.Background(), resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, db.BookingActive, booking.Status)
	assert.Equal(t, 25.0, booking.PricePerHour)
	assert.Equal(t, "car", booking.VehicleType)

	res, err := f.svc.Release(context.Background(), user("u1"), spot.ID, entities.ReleaseSpotRequest{Status: db.BookingCompleted})
	require.NoError(t, err)
	require.NotNil(t, res.Spot)
	assert.Equal(t, 5, res.Spot.AvailableSpots)
	assert.Equal(t, 0, res.Spot.BookedSpots)
	require.Len(t, res.Released, 1)
	assert.Equal(t, db.BookingCompleted, res.Released[0].Status)
	assert.NotNil(t, res.Released[0].ReleasedAt)

	after := f.state.spot(spot.ID)
	assert.Nil(t, after.BookedBy)
	assert.Nil(t, after.BookedUntil)

	f.svc.Wait()
	f.notifier.AssertCalled(t, "BookingConfirmed", mock.Anything, mock.Anything)
	f.notifier.AssertCalled(t, "BookingEnded", mock.Anything, mock.Anything)
	assert.Len(t, f.events.changed, 2)
}

func TestReserveValidation(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(5))

	tests := []struct {
		name string
		req  entities.BookSpotRequest
		want error
	}{
		{
			name: "start in the past",
			req:  entities.BookSpotRequest{StartTime: "2026-01-01T09:00:00Z", EndTime: "2026-01-01T12:00:00Z"},
			want: apperrors.ErrStartInPast,
		},
		{
			name: "end equals start",
			req:  entities.BookSpotRequest{StartTime: "2026-01-01T12:00:00Z", EndTime: "2026-01-01T12:00:00Z"},
			want: apperrors.ErrEndBeforeStart,
		},
		{
			name: "end before start",
			req:  entities.BookSpotRequest{StartTime: "2026-01-01T12:00:00Z", EndTime: "2026-01-01T11:00:00Z"},
			want: apperrors.ErrEndBeforeStart,
		},
		{
			name: "unparseable time",
			req:  entities.BookSpotRequest{StartTime: "tomorrow", EndTime: "2026-01-01T12:00:00Z"},
			want: apperrors.ErrInvalidTime,
		},
		{
			name: "unknown vehicle class",
			req:  entities.BookSpotRequest{StartTime: "2026-01-01T12:00:00Z", EndTime: "2026-01-01T13:00:00Z", VehicleType: "boat"},
			want: apperrors.ErrInvalidVehicle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 5, f.state.spot(spot.ID).AvailableSpots)
	assert.Empty(t, f.state.bookings)
}

func TestReserveUnknownSpot(t *testing.T) {
	f := newReservationFixture(t)
	_, err := f.svc.Reserve(context.Background(), user("u1"), "missing", entities.BookSpotRequest{
		StartTime: "2026-01-01T12:00:00Z",
		EndTime:   "2026-01-01T13:00:00Z",
	})
	assert.ErrorIs(t, err, apperrors.ErrSpotNotFound)
}

func TestReserveInsufficientSpots(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(1))

	_, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
		StartTime:   "2026-01-01T12:00:00Z",
		EndTime:     "2026-01-01T13:00:00Z",
		SpotsToBook: ptr(2),
	})
	var httpErr *apperrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
	assert.Equal(t, "Only 1 spot(s) available", httpErr.Message)
	assert.Equal(t, 1, f.state.spot(spot.ID).AvailableSpots)
}

func TestReserveFallsBackToLegacyRate(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(3))

	resp, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
		StartTime:   "2026-01-01T12:00:00Z",
		EndTime:     "2026-01-01T13:30:00Z",
		VehicleType: "bike",
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, resp.TotalAmount)
	assert.Equal(t, 2, resp.AvailableSpots)
}

func TestReserveRedrawsCollidingEntryCode(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(5))
	f.state.codes = []string{"11111", "11111", "22222"}

	req := entities.BookSpotRequest{StartTime: "2026-01-01T12:00:00Z", EndTime: "2026-01-01T13:00:00Z"}
	first, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, req)
	require.NoError(t, err)
	second, err := f.svc.Reserve(context.Background(), user("u2"), spot.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "11111", first.EntryCode)
	assert.Equal(t, "22222", second.EntryCode)
}

func TestConcurrentReservationsNeverOverbook(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(5))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
				StartTime: "2026-01-01T12:00:00Z",
				EndTime:   "2026-01-01T13:00:00Z",
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fail++
				return
			}
			ok++
		}()
	}
	wg.Wait()
	f.svc.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 7, fail)
	after := f.state.spot(spot.ID)
	assert.Equal(t, 0, after.AvailableSpots)
	assert.Equal(t, 5, after.BookedSpots)
	assert.False(t, after.IsAvailable)
}

func TestReleaseWithoutActiveBooking(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(5))

	_, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
		StartTime: "2026-01-01T12:00:00Z",
		EndTime:   "2026-01-01T13:00:00Z",
	})
	require.NoError(t, err)

	res, err := f.svc.Release(context.Background(), user("u2"), spot.ID, entities.ReleaseSpotRequest{})
	require.NoError(t, err)
	assert.Nil(t, res.Spot)
	assert.Equal(t, "No active booking found to release", res.Message)
	assert.Equal(t, 4, f.state.spot(spot.ID).AvailableSpots)

	_, err = f.svc.Release(context.Background(), user("u1"), spot.ID, entities.ReleaseSpotRequest{})
	require.NoError(t, err)
	again, err := f.svc.Release(context.Background(), user("u1"), spot.ID, entities.ReleaseSpotRequest{})
	require.NoError(t, err)
	assert.Equal(t, "No active booking found to release", again.Message)
	assert.Equal(t, 5, f.state.spot(spot.ID).AvailableSpots)
}

func TestReleaseRejectsUnknownStatus(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(5))

	_, err := f.svc.Release(context.Background(), user("u1"), spot.ID, entities.ReleaseSpotRequest{Status: "active"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestReleaseDefaultsToReleased(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(5))
	_, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
		StartTime: "2026-01-01T12:00:00Z",
		EndTime:   "2026-01-01T13:00:00Z",
	})
	require.NoError(t, err)

	res, err := f.svc.Release(context.Background(), user("u1"), spot.ID, entities.ReleaseSpotRequest{})
	require.NoError(t, err)
	require.Len(t, res.Released, 1)
	assert.Equal(t, db.BookingReleased, res.Released[0].Status)
}

func TestAdminReleasesNamedBooking(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(5))
	booked, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
		StartTime: "2026-01-01T12:00:00Z",
		EndTime:   "2026-01-01T13:00:00Z",
	})
	require.NoError(t, err)

	admin := &auth.Claims{ID: "a1", Role: db.RoleAdmin}
	res, err := f.svc.Release(context.Background(), admin, spot.ID, entities.ReleaseSpotRequest{})
	require.NoError(t, err)
	assert.Equal(t, noActiveBookingMessage, res.Message)

	res, err = f.svc.Release(context.Background(), admin, spot.ID, entities.ReleaseSpotRequest{BookingID: booked.BookingID})
	require.NoError(t, err)
	require.Len(t, res.Released, 1)
	assert.Equal(t, booked.BookingID, res.Released[0].ID)
	assert.Equal(t, 5, res.Spot.AvailableSpots)
}

func TestCancellingPaidBookingRefunds(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(5))
	booked, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
		StartTime: "2026-01-01T12:00:00Z",
		EndTime:   "2026-01-01T13:00:00Z",
	})
	require.NoError(t, err)
	f.state.mu.Lock()
	f.state.bookings[0].PaymentStatus = db.PaymentPaid
	f.state.bookings[0].PaymentIntentID = "pi_123"
	f.state.mu.Unlock()

	f.refunder.On("RefundBooking", mock.Anything, mock.MatchedBy(func(b db.Booking) bool {
		return b.ID == booked.BookingID && b.PaymentIntentID == "pi_123"
	})).Return(errors.New("stripe down")).Once()

	_, err = f.svc.Release(context.Background(), user("u1"), spot.ID, entities.ReleaseSpotRequest{Status: db.BookingCancelled})
	require.NoError(t, err)
	f.svc.Wait()
	f.refunder.AssertExpectations(t)
}

func TestCompleteOverdue(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(2))
	booked, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
		StartTime: "2026-01-01T12:00:00Z",
		EndTime:   "2026-01-01T13:00:00Z",
	})
	require.NoError(t, err)

	overdue := repository.OverdueBooking{ID: booked.BookingID, UserID: "u1", ParkingSpotID: spot.ID}
	done, err := f.svc.CompleteOverdue(context.Background(), overdue)
	require.NoError(t, err)
	assert.True(t, done)

	b, err := memBookings{f.state}.GetByID(context.Background(), booked.BookingID)
	require.NoError(t, err)
	assert.Equal(t, db.BookingCompleted, b.Status)

	done, err = f.svc.CompleteOverdue(context.Background(), overdue)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestBookingFor(t *testing.T) {
	f := newReservationFixture(t)
	spot := f.state.addSpot(carSpot(2))
	booked, err := f.svc.Reserve(context.Background(), user("u1"), spot.ID, entities.BookSpotRequest{
		StartTime: "2026-01-01T12:00:00Z",
		EndTime:   "2026-01-01T13:00:00Z",
	})
	require.NoError(t, err)

	_, err = f.svc.BookingFor(context.Background(), user("u2"), booked.BookingID)
	assert.ErrorIs(t, err, apperrors.ErrBookingForbidden)

	b, err := f.svc.BookingFor(context.Background(), &auth.Claims{ID: "a1", Role: db.RoleAdmin}, booked.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "u1", b.UserID)

	history, err := f.svc.History(context.Background(), user("u1"))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, booked.BookingID, history[0].ID)
}

func TestApplyReleaseClampsToTotal(t *testing.T) {
	at := testNow
	spot := &db.ParkingSpot{TotalSpots: 3, AvailableSpots: 2, BookedSpots: 4, BookedBy: ptr("u1")}
	bookings := []db.Booking{{BookedSpots: 4, Status: db.BookingActive}}

	applyRelease(spot, bookings, db.BookingCancelled, at)

	assert.Equal(t, 3, spot.AvailableSpots)
	assert.Equal(t, 0, spot.BookedSpots)
	assert.True(t, spot.IsAvailable)
	assert.Nil(t, spot.BookedBy)
	assert.Equal(t, db.BookingCancelled, bookings[0].Status)
	require.NotNil(t, bookings[0].ReleasedAt)
	assert.Equal(t, at, *bookings[0].ReleasedAt)
}

func TestApplyReleaseKeepsOccupancyWhileBooked(t *testing.T) {
	spot := &db.ParkingSpot{TotalSpots: 5, AvailableSpots: 1, BookedSpots: 4, BookedBy: ptr("u2")}
	applyRelease(spot, []db.Booking{{BookedSpots: 1}}, db.BookingReleased, testNow)

	assert.Equal(t, 2, spot.AvailableSpots)
	assert.Equal(t, 3, spot.BookedSpots)
	assert.NotNil(t, spot.BookedBy)
}

func TestPlanReservation(t *testing.T) {
	start := testNow.Add(time.Hour)
	spot := &db.ParkingSpot{ID: "s1", Name: "Spot A1", TotalSpots: 4, AvailableSpots: 1, PricePerHour: 10}

	b, err := planReservation(spot, "u1", utils.VehicleCar, 1, start, start.Add(45*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 7.5, b.TotalAmount)
	assert.Equal(t, db.BookingActive, b.Status)
	assert.Equal(t, db.PaymentUnpaid, b.PaymentStatus)
	assert.Equal(t, 0, spot.AvailableSpots)
	assert.False(t, spot.IsAvailable)
	require.NotNil(t, spot.BookedBy)
	assert.Equal(t, "u1", *spot.BookedBy)

	_, err = planReservation(spot, "u2", utils.VehicleCar, 1, start, start.Add(time.Hour))
	assert.Error(t, err)
}

func bookRequest(spots int) entities.BookSpotRequest {
	return entities.BookSpotRequest{
		StartTime:   "2026-01-01T12:00:00Z",
		EndTime:     "2026-01-01T13:00:00Z",
		SpotsToBook: ptr(spots),
	}
}
