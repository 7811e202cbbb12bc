package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parkeasy/internal/db"
	apperrors "parkeasy/internal/errors"

	"github.com/google/uuid"
)

// ErrUserIDTaken is returned when the generated short id collides.
var ErrUserIDTaken = errors.New("short user id already taken")

const accountColumns = `id, user_id, name, email, password_hash, phone, role, profile_photo, created_at, updated_at`

type AccountRepository struct {
	DB *db.DB
}

func NewAccountRepository(conn *db.DB) *AccountRepository {
	return &AccountRepository{DB: conn}
}

func scanAccount(row interface{ Scan(...any) error }) (*db.Account, error) {
	var a db.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Email, &a.PasswordHash, &a.Phone,
		&a.Role, &a.ProfilePhoto, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *db.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, name, email, password_hash, phone, role, profile_photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.DB.QueryRowContext(ctx, query, a.ID, a.UserID, a.Name, a.Email, a.PasswordHash,
		a.Phone, a.Role, a.ProfilePhoto).Scan(&a.CreatedAt, &a.UpdatedAt)
	if constraint, ok := db.UniqueViolation(err); ok {
		if constraint == "accounts_user_id_key" {
			return ErrUserIDTaken
		}
		return apperrors.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("error inserting account: %w", err)
	}
	return nil
}

func (r *AccountRepository) UserIDExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking user id: %w", err)
	}
	return exists, nil
}

// GetByEmail returns nil when no account uses email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*db.Account, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching account by email: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*db.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrUserNotFound
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching account %s: %w", id, err)
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]db.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []db.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting account %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
