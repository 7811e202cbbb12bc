package errors

import (
	stderrors "errors"
	"fmt"
)

// Domain errors shared by services and handlers. Compare with errors.Is.
var (
	ErrTokenRequired      = Unauthorized("Access token required")
	ErrInvalidToken       = Unauthorized("Invalid or expired token")
	ErrAdminRequired      = Forbidden("Admin access required")
	ErrInvalidCredentials = BadRequest("Invalid credentials")
	ErrEmailTaken         = BadRequest("User already exists")
	ErrUserNotFound       = NotFound("User not found")
	ErrAdminDelete        = BadRequest("Cannot delete admin accounts")

	ErrSpotNotFound       = NotFound("Parking spot not found")
	ErrSpotNumberTaken    = BadRequest("Parking spot with this number already exists")
	ErrStartInPast        = BadRequest("Start time cannot be in the past")
	ErrEndBeforeStart     = BadRequest("End time must be after start time")
	ErrInvalidTime        = BadRequest("Invalid start or end time")
	ErrInvalidStatus      = BadRequest("Invalid status")
	ErrInvalidVehicle     = BadRequest("Invalid vehicle type")
	ErrBookingNotFound    = NotFound("Booking not found")
	ErrBookingForbidden   = Forbidden("Not allowed to access this booking")
	ErrBookingNotActive   = BadRequest("Booking is not active")
	ErrBookingPaid        = BadRequest("Booking is already paid")
	ErrPaymentsDisabled   = Unavailable("Payments are not configured")
	ErrCodeSpaceExhausted = stderrors.New("could not draw an unused code")
)

// InsufficientSpots reports how many spots remain on a spot.
func InsufficientSpots(available int) *HTTPError {
	return BadRequest(fmt.Sprintf("Only %d spot(s) available", available))
}
