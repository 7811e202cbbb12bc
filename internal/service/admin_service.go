package service

import (
	"context"

	"parkeasy/internal/db"
	"parkeasy/internal/entities"
	apperrors "parkeasy/internal/errors"
	"parkeasy/internal/repository"
)

type AdminRepository interface {
	ListBookings(ctx context.Context, f repository.BookingFilter) ([]db.BookingDetail, error)
	BookingStats(ctx context.Context) (*db.BookingStats, error)
}

type AdminService struct {
	Accounts AccountRepository
	Repo     AdminRepository
}

func NewAdminService(accounts AccountRepository, repo AdminRepository) *AdminService {
	return &AdminService{Accounts: accounts, Repo: repo}
}

func (s *AdminService) ListAccounts(ctx context.Context) ([]entities.AccountResponse, error) {
	accounts, err := s.Accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, entities.NewAccountResponse(a))
	}
	return out, nil
}

// DeleteAccount removes a user account. Admin accounts cannot be deleted.
func (s *AdminService) DeleteAccount(ctx context.Context, id string) error {
	account, err := s.Accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account.Role == db.RoleAdmin {
		return apperrors.ErrAdminDelete
	}
	return s.Accounts.Delete(ctx, id)
}

func (s *AdminService) ListBookings(ctx context.Context, f repository.BookingFilter) ([]entities.BookingResponse, error) {
	details, err := s.Repo.ListBookings(ctx, f)
	if err != nil {
		return nil, err
	}
	return entities.NewBookingDetailResponses(details), nil
}

func (s *AdminService) Summary(ctx context.Context) (*entities.BookingSummary, error) {
	stats, err := s.Repo.BookingStats(ctx)
	if err != nil {
		return nil, err
	}
	summary := entities.NewBookingSummary(*stats)
	return &summary, nil
}
