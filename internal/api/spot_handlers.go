package api

import (
	"context"
	"net/http"

	"parkeasy/internal/entities"

	"github.com/gorilla/mux"
)

type SpotService interface {
	List(ctx context.Context) ([]entities.SpotResponse, error)
	ListAvailable(ctx context.Context) ([]entities.SpotResponse, error)
	Get(ctx context.Context, id string) (*entities.SpotResponse, error)
	Create(ctx context.Context, req entities.CreateSpotRequest) (*entities.SpotResponse, error)
	Update(ctx context.Context, id string, req entities.UpdateSpotRequest) (*entities.SpotResponse, error)
	Delete(ctx context.Context, id string) error
}

// SpotHandler serves the spot inventory. Mutations are routed behind the
// admin gate.
type SpotHandler struct {
	Service SpotService
}

func NewSpotHandler(svc SpotService) *SpotHandler {
	return &SpotHandler{Service: svc}
}

func (h *SpotHandler) List(w http.ResponseWriter, r *http.Request) {
	spots, err := h.Service.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spots)
}

func (h *SpotHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	spots, err := h.Service.ListAvailable(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spots)
}

func (h *SpotHandler) Get(w http.ResponseWriter, r *http.Request) {
	spot, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spot)
}

func (h *SpotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateSpotRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	spot, err := h.Service.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, spot)
}

func (h *SpotHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req entities.UpdateSpotRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	spot, err := h.Service.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spot)
}

func (h *SpotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.MessageResponse{Message: "Parking spot deleted successfully"})
}
