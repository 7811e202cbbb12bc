package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"parkeasy/internal/auth"
	"parkeasy/internal/db"
	"parkeasy/internal/entities"
	apperrors "parkeasy/internal/errors"
	"parkeasy/internal/repository"
	"parkeasy/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const maxUserIDAttempts = 10

type AccountRepository interface {
	Create(ctx context.Context, a *db.Account) error
	UserIDExists(ctx context.Context, userID string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*db.Account, error)
	GetByID(ctx context.Context, id string) (*db.Account, error)
	List(ctx context.Context) ([]db.Account, error)
	Delete(ctx context.Context, id string) error
}

type AuthService interface {
	Signup(ctx context.Context, req entities.SignupRequest) (*entities.AuthResponse, error)
	Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error)
	Profile(ctx context.Context, accountID string) (*entities.AccountResponse, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	repo      AccountRepository
	tokens    *auth.TokenManager
	newUserID func() string
	cost      int
	log       *slog.Logger
}

func NewAuthService(repo AccountRepository, tokens *auth.TokenManager, log *slog.Logger) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		newUserID: utils.FiveDigitCode,
		cost:      bcrypt.DefaultCost,
		log:       log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Signup(ctx context.Context, req entities.SignupRequest) (*entities.AuthResponse, error) {
	account, err := s.createAccount(ctx, req.Name, req.Email, req.Password, req.Phone, db.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.authResponse("User created successfully", *account)
}

func (s *authService) createAccount(ctx context.Context, name, email, password, phone, role string) (*db.Account, error) {
	email = normalizeEmail(email)
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &db.Account{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(phone),
		Role:         role,
	}

	for attempt := 0; attempt < maxUserIDAttempts; attempt++ {
		candidate := s.newUserID()
		taken, err := s.repo.UserIDExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		account.UserID = candidate
		err = s.repo.Create(ctx, account)
		if errors.Is(err, repository.ErrUserIDTaken) {
			// lost a race for the id
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log.Info("account created", "account_id", account.ID, "user_id", account.UserID, "role", role)
		return account, nil
	}
	return nil, fmt.Errorf("allocate user id after %d attempts: %w", maxUserIDAttempts, apperrors.ErrCodeSpaceExhausted)
}

func (s *authService) Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error) {
	account, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.authResponse("Login successful", *account)
}

func (s *authService) authResponse(message string, a db.Account) (*entities.AuthResponse, error) {
	token, err := s.tokens.Issue(a)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		Message: message,
		Token:   token,
		User:    entities.NewAccountResponse(a),
	}, nil
}

func (s *authService) Profile(ctx context.Context, accountID string) (*entities.AccountResponse, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := entities.NewAccountResponse(*account)
	return &resp, nil
}

// EnsureAdmin creates the bootstrap admin unless an account already uses email.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return errors.New("email and password cannot be empty")
	}
	_, err := s.createAccount(ctx, "Administrator", email, password, "", db.RoleAdmin)
	if errors.Is(err, apperrors.ErrEmailTaken) {
		return nil
	}
	return err
}
