package api

import (
	"context"

	"parkeasy/internal/auth"
	"parkeasy/internal/db"
	"parkeasy/internal/entities"
	"parkeasy/internal/repository"
	"parkeasy/internal/service"

	"github.com/stretchr/testify/mock"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Signup(ctx context.Context, req entities.SignupRequest) (*entities.AuthResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*entities.AuthResponse)
	return r, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*entities.AuthResponse)
	return r, args.Error(1)
}

func (m *mockAuthService) Profile(ctx context.Context, accountID string) (*entities.AccountResponse, error) {
	args := m.Called(ctx, accountID)
	r, _ := args.Get(0).(*entities.AccountResponse)
	return r, args.Error(1)
}

func (m *mockAuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

type mockSpotService struct{ mock.Mock }

func (m *mockSpotService) List(ctx context.Context) ([]entities.SpotResponse, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]entities.SpotResponse)
	return r, args.Error(1)
}

func (m *mockSpotService) ListAvailable(ctx context.Context) ([]entities.SpotResponse, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]entities.SpotResponse)
	return r, args.Error(1)
}

func (m *mockSpotService) Get(ctx context.Context, id string) (*entities.SpotResponse, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*entities.SpotResponse)
	return r, args.Error(1)
}

func (m *mockSpotService) Create(ctx context.Context, req entities.CreateSpotRequest) (*entities.SpotResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*entities.SpotResponse)
	return r, args.Error(1)
}

func (m *mockSpotService) Update(ctx context.Context, id string, req entities.UpdateSpotRequest) (*entities.SpotResponse, error) {
	args := m.Called(ctx, id, req)
	r, _ := args.Get(0).(*entities.SpotResponse)
	return r, args.Error(1)
}

func (m *mockSpotService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) ListAccounts(ctx context.Context) ([]entities.AccountResponse, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]entities.AccountResponse)
	return r, args.Error(1)
}

func (m *mockAdminService) DeleteAccount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAdminService) ListBookings(ctx context.Context, f repository.BookingFilter) ([]entities.BookingResponse, error) {
	args := m.Called(ctx, f)
	r, _ := args.Get(0).([]entities.BookingResponse)
	return r, args.Error(1)
}

func (m *mockAdminService) Summary(ctx context.Context) (*entities.BookingSummary, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*entities.BookingSummary)
	return r, args.Error(1)
}

type mockReservationService struct{ mock.Mock }

func (m *mockReservationService) Reserve(ctx context.Context, actor *auth.Claims, spotID string, req entities.BookSpotRequest) (*entities.BookSpotResponse, error) {
	args := m.Called(ctx, actor, spotID, req)
	r, _ := args.Get(0).(*entities.BookSpotResponse)
	return r, args.Error(1)
}

func (m *mockReservationService) Release(ctx context.Context, actor *auth.Claims, spotID string, req entities.ReleaseSpotRequest) (*service.ReleaseResult, error) {
	args := m.Called(ctx, actor, spotID, req)
	r, _ := args.Get(0).(*service.ReleaseResult)
	return r, args.Error(1)
}

func (m *mockReservationService) History(ctx context.Context, actor *auth.Claims) ([]entities.BookingResponse, error) {
	args := m.Called(ctx, actor)
	r, _ := args.Get(0).([]entities.BookingResponse)
	return r, args.Error(1)
}

func (m *mockReservationService) BookingFor(ctx context.Context, actor *auth.Claims, bookingID string) (*db.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	r, _ := args.Get(0).(*db.Booking)
	return r, args.Error(1)
}

type mockTicketService struct{ mock.Mock }

func (m *mockTicketService) QRCode(b db.Booking) ([]byte, error) {
	args := m.Called(b)
	r, _ := args.Get(0).([]byte)
	return r, args.Error(1)
}

func (m *mockTicketService) Receipt(ctx context.Context, b db.Booking) ([]byte, error) {
	args := m.Called(ctx, b)
	r, _ := args.Get(0).([]byte)
	return r, args.Error(1)
}

type mockCheckoutService struct{ mock.Mock }

func (m *mockCheckoutService) Checkout(ctx context.Context, b *db.Booking) (*entities.CheckoutResponse, error) {
	args := m.Called(ctx, b)
	r, _ := args.Get(0).(*entities.CheckoutResponse)
	return r, args.Error(1)
}
