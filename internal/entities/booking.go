package entities

import (
	"time"

	"parkeasy/internal/db"
)

type BookSpotRequest struct {
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	SpotsToBook *int   `json:"spotsToBook" validate:"omitnil,min=1"`
	VehicleType string `json:"vehicleType"`
}

type ReleaseSpotRequest struct {
	Status    string `json:"status"`
	BookingID string `json:"bookingId"`
}

type BookSpotResponse struct {
	SpotResponse
	TotalAmount float64 `json:"totalAmount"`
	EntryCode   string  `json:"entryCode"`
	BookingID   string  `json:"bookingId"`
}

type SpotSummary struct {
	ID         string `json:"id"`
	SpotNumber string `json:"spotNumber"`
	Location   string `json:"location"`
}

type BookingResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	ParkingSpotID   string          `json:"parkingSpotId"`
	ParkingSpotName string          `json:"parkingSpotName"`
	Location        string          `json:"location"`
	BookedSpots     int             `json:"bookedSpots"`
	VehicleType     string          `json:"vehicleType"`
	PricePerHour    float64         `json:"pricePerHour"`
	TotalAmount     float64         `json:"totalAmount"`
	BookedAt        time.Time       `json:"bookedAt"`
	BookedUntil     time.Time       `json:"bookedUntil"`
	ReleasedAt      *time.Time      `json:"releasedAt"`
	EntryCode       string          `json:"entryCode"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
	ParkingSpot     *SpotSummary    `json:"parkingSpot"`
	User            *AccountSummary `json:"user,omitempty"`
}

type BookingSummary struct {
	TotalBookings int     `json:"totalBookings"`
	Active        int     `json:"active"`
	Completed     int     `json:"completed"`
	Cancelled     int     `json:"cancelled"`
	Released      int     `json:"released"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewBookingResponse(b db.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		ParkingSpotID:   b.ParkingSpotID,
		ParkingSpotName: b.ParkingSpotName,
		Location:        b.Location,
		BookedSpots:     b.BookedSpots,
		VehicleType:     b.VehicleType,
		PricePerHour:    b.PricePerHour,
		TotalAmount:     b.TotalAmount,
		BookedAt:        b.BookedAt,
		BookedUntil:     b.BookedUntil,
		ReleasedAt:      b.ReleasedAt,
		EntryCode:       b.EntryCode,
		Status:          b.Status,
		PaymentStatus:   b.PaymentStatus,
		CreatedAt:       b.CreatedAt,
	}
}

func NewBookingDetailResponses(details []db.BookingDetail) []BookingResponse {
	out := make([]BookingResponse, 0, len(details))
	for _, d := range details {
		resp := NewBookingResponse(d.Booking)
		if d.Spot != nil {
			resp.ParkingSpot = &SpotSummary{ID: d.Spot.ID, SpotNumber: d.Spot.SpotNumber, Location: d.Spot.Location}
		}
		resp.User = newAccountSummary(d.Account)
		out = append(out, resp)
	}
	return out
}

func NewBookingSummary(st db.BookingStats) BookingSummary {
	return BookingSummary{
		TotalBookings: st.Total,
		Active:        st.Active,
		Completed:     st.Completed,
		Cancelled:     st.Cancelled,
		Released:      st.Released,
		TotalRevenue:  st.Revenue,
	}
}
