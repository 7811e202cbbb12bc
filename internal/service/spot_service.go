package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"parkeasy/internal/cache"
	"parkeasy/internal/db"
	"parkeasy/internal/entities"
)

type SpotRepository interface {
	List(ctx context.Context, onlyAvailable bool) ([]db.ParkingSpot, error)
	GetByID(ctx context.Context, id string) (*db.ParkingSpot, error)
	Create(ctx context.Context, s *db.ParkingSpot) error
	Update(ctx context.Context, id string, fn func(s *db.ParkingSpot) error) (*db.ParkingSpot, error)
	Delete(ctx context.Context, id string) error
}

// SpotCache stores rendered spot listings between mutations.
type SpotCache interface {
	Get(ctx context.Context, key string) ([]entities.SpotResponse, bool)
	Set(ctx context.Context, key string, spots []entities.SpotResponse)
	Invalidate(ctx context.Context)
}

// SpotEvents is notified after every committed spot mutation.
type SpotEvents interface {
	SpotChanged(spot entities.SpotResponse)
	SpotDeleted(id string)
}

type SpotService struct {
	Repo   SpotRepository
	Cache  SpotCache
	Events SpotEvents
	log    *slog.Logger
}

func NewSpotService(repo SpotRepository, c SpotCache, events SpotEvents, log *slog.Logger) *SpotService {
	return &SpotService{Repo: repo, Cache: c, Events: events, log: log}
}

func (s *SpotService) List(ctx context.Context) ([]entities.SpotResponse, error) {
	return s.list(ctx, cache.KeyAllSpots, false)
}

func (s *SpotService) ListAvailable(ctx context.Context) ([]entities.SpotResponse, error) {
	return s.list(ctx, cache.KeyAvailableSpots, true)
}

func (s *SpotService) list(ctx context.Context, key string, onlyAvailable bool) ([]entities.SpotResponse, error) {
	if spots, ok := s.Cache.Get(ctx, key); ok {
		return spots, nil
	}
	rows, err := s.Repo.List(ctx, onlyAvailable)
	if err != nil {
		return nil, err
	}
	spots := entities.NewSpotResponses(rows)
	s.Cache.Set(ctx, key, spots)
	return spots, nil
}

func (s *SpotService) Get(ctx context.Context, id string) (*entities.SpotResponse, error) {
	spot, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := entities.NewSpotResponse(*spot)
	return &resp, nil
}

func (s *SpotService) Create(ctx context.Context, req entities.CreateSpotRequest) (*entities.SpotResponse, error) {
	total := 1
	if req.TotalSpots != nil {
		total = *req.TotalSpots
	}
	spot := &db.ParkingSpot{
		Name:           strings.TrimSpace(req.Name),
		SpotNumber:     strings.TrimSpace(req.SpotNumber),
		Location:       strings.TrimSpace(req.Location),
		TotalSpots:     total,
		AvailableSpots: total,
		Rates:          req.Pricing.ClassRates(),
		PricePerHour:   *req.PricePerHour,
		VehicleType:    req.VehicleType,
		Features:       req.Features,
	}
	if spot.Name == "" {
		spot.Name = fmt.Sprintf("Spot %s", spot.SpotNumber)
	}
	if spot.VehicleType == "" {
		spot.VehicleType = "Any"
	}
	spot.SyncAvailability()

	if err := s.Repo.Create(ctx, spot); err != nil {
		return nil, err
	}
	s.log.Info("parking spot created", "spot_id", spot.ID, "spot_number", spot.SpotNumber)
	return s.changed(ctx, *spot), nil
}

func (s *SpotService) Update(ctx context.Context, id string, req entities.UpdateSpotRequest) (*entities.SpotResponse, error) {
	spot, err := s.Repo.Update(ctx, id, func(spot *db.ParkingSpot) error {
		applySpotPatch(spot, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("parking spot updated", "spot_id", spot.ID, "available", spot.AvailableSpots, "total", spot.TotalSpots)
	return s.changed(ctx, *spot), nil
}

// applySpotPatch applies req to spot. A new total keeps the number of booked
// slots (total - available) intact; an explicit available count overrides it.
func applySpotPatch(spot *db.ParkingSpot, req entities.UpdateSpotRequest) {
	if req.Name != nil {
		spot.Name = strings.TrimSpace(*req.Name)
	}
	if req.SpotNumber != nil {
		spot.SpotNumber = strings.TrimSpace(*req.SpotNumber)
	}
	if req.Location != nil {
		spot.Location = strings.TrimSpace(*req.Location)
	}
	if req.PricePerHour != nil {
		spot.PricePerHour = *req.PricePerHour
	}
	if req.VehicleType != nil {
		spot.VehicleType = *req.VehicleType
	}
	if req.Features != nil {
		spot.Features = req.Features
	}
	if p := req.Pricing; p != nil {
		if p.Bike != nil {
			spot.Rates.Bike = p.Bike.Hourly
		}
		if p.Car != nil {
			spot.Rates.Car = p.Car.Hourly
		}
		if p.Bus != nil {
			spot.Rates.Bus = p.Bus.Hourly
		}
		if p.Truck != nil {
			spot.Rates.Truck = p.Truck.Hourly
		}
	}

	if req.TotalSpots != nil {
		booked := spot.TotalSpots - spot.AvailableSpots
		spot.TotalSpots = *req.TotalSpots
		spot.AvailableSpots = max(0, spot.TotalSpots-booked)
	}
	if req.AvailableSpots != nil {
		spot.AvailableSpots = min(max(0, *req.AvailableSpots), spot.TotalSpots)
	}
	spot.SyncAvailability()
}

func (s *SpotService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("parking spot deleted", "spot_id", id)
	s.Cache.Invalidate(ctx)
	s.Events.SpotDeleted(id)
	return nil
}

// changed invalidates cached listings and announces the new spot state.
func (s *SpotService) changed(ctx context.Context, spot db.ParkingSpot) *entities.SpotResponse {
	resp := entities.NewSpotResponse(spot)
	s.Cache.Invalidate(ctx)
	s.Events.SpotChanged(resp)
	return &resp
}
