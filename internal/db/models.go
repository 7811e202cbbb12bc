package db

import (
	"time"

	"parkeasy/internal/utils"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	BookingActive    = "active"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingReleased  = "released"
)

const (
	PaymentUnpaid   = "unpaid"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type Account struct {
	ID           string
	UserID       string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         string
	ProfilePhoto string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountSummary is the slice of an account shown next to spots and bookings.
type AccountSummary struct {
	ID     string
	UserID string
	Name   string
	Email  string
}

type ParkingSpot struct {
	ID             string
	Name           string
	SpotNumber     string
	Location       string
	TotalSpots     int
	AvailableSpots int
	Rates          utils.ClassRates
	PricePerHour   float64
	IsAvailable    bool
	VehicleType    string
	Features       []string
	BookedBy       *string
	BookedSpots    int
	BookedAt       *time.Time
	BookedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Occupant is filled by listing queries when BookedBy is set.
	Occupant *AccountSummary
}

// SyncAvailability keeps IsAvailable consistent with the available count.
func (s *ParkingSpot) SyncAvailability() {
	if s.AvailableSpots < 0 {
		s.AvailableSpots = 0
	}
	if s.AvailableSpots > s.TotalSpots {
		s.AvailableSpots = s.TotalSpots
	}
	s.IsAvailable = s.AvailableSpots > 0
}

type Booking struct {
	ID              string
	UserID          string
	ParkingSpotID   string
	ParkingSpotName string
	Location        string
	BookedSpots     int
	VehicleType     string
	PricePerHour    float64
	TotalAmount     float64
	BookedAt        time.Time
	BookedUntil     time.Time
	ReleasedAt      *time.Time
	EntryCode       string
	Status          string
	PaymentStatus   string
	StripeSessionID string
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingDetail is a booking joined with whatever still exists of its
// account and spot.
type BookingDetail struct {
	Booking
	Account *AccountSummary
	Spot    *SpotSummary
}

type SpotSummary struct {
	ID         string
	SpotNumber string
	Location   string
}

// BookingStats aggregates the booking ledger.
type BookingStats struct {
	Total     int
	Active    int
	Completed int
	Cancelled int
	Released  int
	Revenue   float64
}
