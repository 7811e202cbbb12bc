package utils

import "strings"

// Vehicle classes a booking can be priced for.
const (
	VehicleBike  = "bike"
	VehicleCar   = "car"
	VehicleBus   = "bus"
	VehicleTruck = "truck"
)

// Spot vehicle types an inventory record may be tagged with.
var SpotVehicleTypes = []string{"Car", "Motorcycle", "Truck", "Any", "Bike", "Bus"}

// ClassRates holds the optional per-class hourly rates of a spot.
type ClassRates struct {
	Bike  *float64
	Car   *float64
	Bus   *float64
	Truck *float64
}

// ParseVehicleClass normalizes a booking vehicle class. An empty value means car.
func ParseVehicleClass(s string) (string, bool) {
	class := strings.ToLower(strings.TrimSpace(s))
	if class == "" {
		return VehicleCar, true
	}
	switch class {
	case VehicleBike, VehicleCar, VehicleBus, VehicleTruck:
		return class, true
	}
	return "", false
}

// IsSpotVehicleType reports whether t is one of SpotVehicleTypes.
func IsSpotVehicleType(t string) bool {
	for _, v := range SpotVehicleTypes {
		if v == t {
			return true
		}
	}
	return false
}

// HourlyRate resolves the rate for class, falling back to the flat legacy rate
// when the class has no positive rate configured.
func HourlyRate(rates ClassRates, legacy float64, class string) float64 {
	var r *float64
	switch class {
	case VehicleBike:
		r = rates.Bike
	case VehicleCar:
		r = rates.Car
	case VehicleBus:
		r = rates.Bus
	case VehicleTruck:
		r = rates.Truck
	}
	if r != nil && *r > 0 {
		return *r
	}
	return legacy
}
