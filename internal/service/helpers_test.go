package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"parkeasy/internal/db"
	"parkeasy/internal/entities"
	apperrors "parkeasy/internal/errors"
	"parkeasy/internal/repository"
	"parkeasy/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// memState is an in-memory stand-in for the spot and booking tables. The
// mutex plays the role of the spot row lock.
type memState struct {
	mu       sync.Mutex
	spots    map[string]*db.ParkingSpot
	bookings []*db.Booking
	codes    []string
}

func newMemState() *memState {
	return &memState{spots: map[string]*db.ParkingSpot{}}
}

func (m *memState) addSpot(s db.ParkingSpot) *db.ParkingSpot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.SyncAvailability()
	m.spots[s.ID] = &s
	return &s
}

func (m *memState) spot(id string) db.ParkingSpot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.spots[id]
}

func (m *memState) nextCode() string {
	if len(m.codes) > 0 {
		c := m.codes[0]
		m.codes = m.codes[1:]
		return c
	}
	return utils.FiveDigitCode()
}

type memSpots struct{ *memState }

func (m memSpots) List(_ context.Context, onlyAvailable bool) ([]db.ParkingSpot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.ParkingSpot{}
	for _, s := range m.spots {
		if onlyAvailable && !s.IsAvailable {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpotNumber < out[j].SpotNumber })
	return out, nil
}

func (m memSpots) GetByID(_ context.Context, id string) (*db.ParkingSpot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.spots[id]
	if !ok {
		return nil, apperrors.ErrSpotNotFound
	}
	cp := *s
	return &cp, nil
}

func (m memSpots) Create(_ context.Context, s *db.ParkingSpot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.spots {
		if existing.SpotNumber == s.SpotNumber {
			return apperrors.ErrSpotNumberTaken
		}
	}
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now()
	cp := *s
	m.spots[s.ID] = &cp
	return nil
}

func (m memSpots) Update(_ context.Context, id string, fn func(s *db.ParkingSpot) error) (*db.ParkingSpot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.spots[id]
	if !ok {
		return nil, apperrors.ErrSpotNotFound
	}
	cp := *s
	if err := fn(&cp); err != nil {
		return nil, err
	}
	m.spots[id] = &cp
	out := cp
	return &out, nil
}

func (m memSpots) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spots[id]; !ok {
		return apperrors.ErrSpotNotFound
	}
	delete(m.spots, id)
	return nil
}

type memBookings struct{ *memState }

func (m memBookings) Reserve(_ context.Context, spotID string, plan func(s *db.ParkingSpot) (*db.Booking, error)) (*db.ParkingSpot, *db.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.spots[spotID]
	if !ok {
		return nil, nil, apperrors.ErrSpotNotFound
	}
	cp := *s
	b, err := plan(&cp)
	if err != nil {
		return nil, nil, err
	}
	for {
		code := m.nextCode()
		taken := false
		for _, existing := range m.bookings {
			if existing.Status == db.BookingActive && existing.EntryCode == code {
				taken = true
			}
		}
		if !taken {
			b.EntryCode = code
			break
		}
	}
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	m.spots[spotID] = &cp
	stored := *b
	m.bookings = append(m.bookings, &stored)
	spotOut := cp
	return &spotOut, b, nil
}

func (m memBookings) Release(_ context.Context, spotID string, f repository.ReleaseFilter, apply func(s *db.ParkingSpot, bookings []db.Booking) error) (*db.ParkingSpot, []db.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.spots[spotID]
	if !ok {
		return nil, nil, apperrors.ErrSpotNotFound
	}
	var matched []db.Booking
	var idx []int
	for i, b := range m.bookings {
		if b.ParkingSpotID != spotID || b.Status != db.BookingActive {
			continue
		}
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.BookingID != "" && b.ID != f.BookingID {
			continue
		}
		matched = append(matched, *b)
		idx = append(idx, i)
	}
	cp := *s
	if len(matched) == 0 {
		return &cp, nil, nil
	}
	if err := apply(&cp, matched); err != nil {
		return nil, nil, err
	}
	for n, i := range idx {
		updated := matched[n]
		m.bookings[i] = &updated
	}
	m.spots[spotID] = &cp
	out := cp
	return &out, matched, nil
}

func (m memBookings) GetByID(_ context.Context, id string) (*db.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, apperrors.ErrBookingNotFound
}

func (m memBookings) ListByUser(_ context.Context, userID string) ([]db.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.BookingDetail{}
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, db.BookingDetail{Booking: *b})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
	return out, nil
}

// recordingEvents captures spot events.
type recordingEvents struct {
	mu      sync.Mutex
	changed []entities.SpotResponse
	deleted []string
}

func (r *recordingEvents) SpotChanged(s entities.SpotResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, s)
}

func (r *recordingEvents) SpotDeleted(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
}

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) Create(ctx context.Context, a *db.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAccountRepo) UserIDExists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*db.Account, error) {
	args := m.Called(ctx, email)
	a, _ := args.Get(0).(*db.Account)
	return a, args.Error(1)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id string) (*db.Account, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*db.Account)
	return a, args.Error(1)
}

func (m *mockAccountRepo) List(ctx context.Context) ([]db.Account, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).([]db.Account)
	return a, args.Error(1)
}

func (m *mockAccountRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) BookingConfirmed(ctx context.Context, b db.Booking) { m.Called(ctx, b) }
func (m *mockNotifier) BookingEnded(ctx context.Context, b db.Booking)     { m.Called(ctx, b) }

type mockRefunder struct{ mock.Mock }

func (m *mockRefunder) RefundBooking(ctx context.Context, b db.Booking) error {
	return m.Called(ctx, b).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string) ([]entities.SpotResponse, bool) {
	args := m.Called(ctx, key)
	s, _ := args.Get(0).([]entities.SpotResponse)
	return s, args.Bool(1)
}

func (m *mockCache) Set(ctx context.Context, key string, spots []entities.SpotResponse) {
	m.Called(ctx, key, spots)
}

func (m *mockCache) Invalidate(ctx context.Context) { m.Called(ctx) }
