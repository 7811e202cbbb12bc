package entities

import (
	"time"

	"parkeasy/internal/db"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AccountResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	ProfilePhoto string    `json:"profilePhoto"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AuthResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    AccountResponse `json:"user"`
}

type AccountSummary struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

func NewAccountResponse(a db.Account) AccountResponse {
	return AccountResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.Phone,
		Role:         a.Role,
		ProfilePhoto: a.ProfilePhoto,
		CreatedAt:    a.CreatedAt,
	}
}

func newAccountSummary(a *db.AccountSummary) *AccountSummary {
	if a == nil {
		return nil
	}
	return &AccountSummary{ID: a.ID, UserID: a.UserID, Name: a.Name, Email: a.Email}
}
