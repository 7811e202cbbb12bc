package api

import (
	"context"
	"fmt"
	"net/http"

	"parkeasy/internal/auth"
	"parkeasy/internal/db"
	"parkeasy/internal/entities"
	"parkeasy/internal/service"

	"github.com/gorilla/mux"
)

type ReservationService interface {
	Reserve(ctx context.Context, actor *auth.Claims, spotID string, req entities.BookSpotRequest) (*entities.BookSpotResponse, error)
	Release(ctx context.Context, actor *auth.Claims, spotID string, req entities.ReleaseSpotRequest) (*service.ReleaseResult, error)
	History(ctx context.Context, actor *auth.Claims) ([]entities.BookingResponse, error)
	BookingFor(ctx context.Context, actor *auth.Claims, bookingID string) (*db.Booking, error)
}

type TicketService interface {
	QRCode(b db.Booking) ([]byte, error)
	Receipt(ctx context.Context, b db.Booking) ([]byte, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, b *db.Booking) (*entities.CheckoutResponse, error)
}

// UserReservationHandler serves booking operations for the signed-in account.
type UserReservationHandler struct {
	Service  ReservationService
	Tickets  TicketService
	Payments CheckoutService
}

func NewUserReservationHandler(svc ReservationService, tickets TicketService, payments CheckoutService) *UserReservationHandler {
	return &UserReservationHandler{Service: svc, Tickets: tickets, Payments: payments}
}

func (h *UserReservationHandler) Book(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	var req entities.BookSpotRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	resp, err := h.Service.Reserve(r.Context(), claims, mux.Vars(r)["id"], req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Release accepts an empty body, which releases every active booking of the
// caller on the spot.
func (h *UserReservationHandler) Release(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	var req entities.ReleaseSpotRequest
	if r.ContentLength != 0 {
		if err := decodeAndValidate(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
	}
	res, err := h.Service.Release(r.Context(), claims, mux.Vars(r)["id"], req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if res.Spot == nil {
		writeJSON(w, http.StatusOK, entities.MessageResponse{Message: res.Message})
		return
	}
	writeJSON(w, http.StatusOK, res.Spot)
}

func (h *UserReservationHandler) History(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	bookings, err := h.Service.History(r.Context(), claims)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *UserReservationHandler) booking(r *http.Request) (*db.Booking, error) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	return h.Service.BookingFor(r.Context(), claims, mux.Vars(r)["id"])
}

func (h *UserReservationHandler) EntryQRCode(w http.ResponseWriter, r *http.Request) {
	b, err := h.booking(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	png, err := h.Tickets.QRCode(*b)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *UserReservationHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	b, err := h.booking(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	pdf, err := h.Tickets.Receipt(r.Context(), *b)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=booking-%s.pdf", b.EntryCode))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *UserReservationHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	b, err := h.booking(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	resp, err := h.Payments.Checkout(r.Context(), b)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
