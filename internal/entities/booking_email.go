package entities

type BookingEmailData struct {
	UserName           string
	EntryCode          string
	SpotName           string
	Location           string
	BookedSpots        int
	VehicleType        string
	StartTimeFormatted string
	EndTimeFormatted   string
	TotalAmount        float64
	Status             string
	CurrentYear        int
}
