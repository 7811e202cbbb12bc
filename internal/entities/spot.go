package entities

import (
	"time"

	"parkeasy/internal/db"
	"parkeasy/internal/utils"
)

type Rate struct {
	Hourly *float64 `json:"hourly,omitempty" validate:"omitnil,gte=0"`
}

// Pricing holds the optional per-class hourly rates.
type Pricing struct {
	Bike  *Rate `json:"bike,omitempty"`
	Car   *Rate `json:"car,omitempty"`
	Bus   *Rate `json:"bus,omitempty"`
	Truck *Rate `json:"truck,omitempty"`
}

type CreateSpotRequest struct {
	Name         string   `json:"name" validate:"max=100"`
	SpotNumber   string   `json:"spotNumber" validate:"required"`
	Location     string   `json:"location" validate:"required"`
	TotalSpots   *int     `json:"totalSpots" validate:"omitnil,min=1"`
	Pricing      *Pricing `json:"pricing"`
	PricePerHour *float64 `json:"pricePerHour" validate:"required,gt=0"`
	VehicleType  string   `json:"vehicleType" validate:"omitempty,spot_vehicle_type"`
	Features     []string `json:"features" validate:"omitempty,dive,spot_feature"`
}

// UpdateSpotRequest is a patch; nil fields are left untouched.
type UpdateSpotRequest struct {
	Name           *string  `json:"name" validate:"omitnil,min=1,max=100"`
	SpotNumber     *string  `json:"spotNumber" validate:"omitnil,min=1"`
	Location       *string  `json:"location" validate:"omitnil,min=1"`
	TotalSpots     *int     `json:"totalSpots" validate:"omitnil,min=1"`
	AvailableSpots *int     `json:"availableSpots"`
	Pricing        *Pricing `json:"pricing"`
	PricePerHour   *float64 `json:"pricePerHour" validate:"omitnil,gt=0"`
	VehicleType    *string  `json:"vehicleType" validate:"omitnil,spot_vehicle_type"`
	Features       []string `json:"features" validate:"omitempty,dive,spot_feature"`
}

type SpotResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	SpotNumber     string          `json:"spotNumber"`
	Location       string          `json:"location"`
	TotalSpots     int             `json:"totalSpots"`
	AvailableSpots int             `json:"availableSpots"`
	Pricing        Pricing         `json:"pricing"`
	PricePerHour   float64         `json:"pricePerHour"`
	IsAvailable    bool            `json:"isAvailable"`
	VehicleType    string          `json:"vehicleType"`
	Features       []string        `json:"features"`
	BookedBy       *AccountSummary `json:"bookedBy"`
	BookedSpots    int             `json:"bookedSpots"`
	BookedAt       *time.Time      `json:"bookedAt"`
	BookedUntil    *time.Time      `json:"bookedUntil"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func rate(v *float64) *Rate {
	if v == nil {
		return nil
	}
	return &Rate{Hourly: v}
}

func hourly(r *Rate) *float64 {
	if r == nil {
		return nil
	}
	return r.Hourly
}

// ClassRates converts the request pricing into storage form.
func (p *Pricing) ClassRates() utils.ClassRates {
	if p == nil {
		return utils.ClassRates{}
	}
	return utils.ClassRates{Bike: hourly(p.Bike), Car: hourly(p.Car), Bus: hourly(p.Bus), Truck: hourly(p.Truck)}
}

func NewSpotResponse(s db.ParkingSpot) SpotResponse {
	features := s.Features
	if features == nil {
		features = []string{}
	}
	resp := SpotResponse{
		ID:             s.ID,
		Name:           s.Name,
		SpotNumber:     s.SpotNumber,
		Location:       s.Location,
		TotalSpots:     s.TotalSpots,
		AvailableSpots: s.AvailableSpots,
		Pricing: Pricing{
			Bike:  rate(s.Rates.Bike),
			Car:   rate(s.Rates.Car),
			Bus:   rate(s.Rates.Bus),
			Truck: rate(s.Rates.Truck),
		},
		PricePerHour: s.PricePerHour,
		IsAvailable:  s.IsAvailable,
		VehicleType:  s.VehicleType,
		Features:     features,
		BookedSpots:  s.BookedSpots,
		BookedAt:     s.BookedAt,
		BookedUntil:  s.BookedUntil,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	switch {
	case s.Occupant != nil:
		resp.BookedBy = newAccountSummary(s.Occupant)
	case s.BookedBy != nil:
		resp.BookedBy = &AccountSummary{ID: *s.BookedBy}
	}
	return resp
}

func NewSpotResponses(spots []db.ParkingSpot) []SpotResponse {
	out := make([]SpotResponse, 0, len(spots))
	for _, s := range spots {
		out = append(out, NewSpotResponse(s))
	}
	return out
}
