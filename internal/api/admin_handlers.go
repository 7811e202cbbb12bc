package api

import (
	"context"
	"net/http"

	"parkeasy/internal/db"
	"parkeasy/internal/entities"
	apperrors "parkeasy/internal/errors"
	"parkeasy/internal/repository"

	"github.com/gorilla/mux"
)

type AdminService interface {
	ListAccounts(ctx context.Context) ([]entities.AccountResponse, error)
	DeleteAccount(ctx context.Context, id string) error
	ListBookings(ctx context.Context, f repository.BookingFilter) ([]entities.BookingResponse, error)
	Summary(ctx context.Context) (*entities.BookingSummary, error)
}

type AdminHandler struct {
	Service AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Service.ListAccounts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteAccount(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.MessageResponse{Message: "User deleted successfully"})
}

// ListBookings accepts optional status and userId query filters.
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	filter := repository.BookingFilter{
		Status: r.URL.Query().Get("status"),
		UserID: r.URL.Query().Get("userId"),
	}
	switch filter.Status {
	case "", db.BookingActive, db.BookingCompleted, db.BookingCancelled, db.BookingReleased:
	default:
		respondError(w, r, apperrors.ErrInvalidStatus)
		return
	}
	bookings, err := h.Service.ListBookings(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
