package utils

// SpotFeatures lists the amenities a spot can advertise.
var SpotFeatures = []string{
	"cctv", "security", "lighting", "covered", "ev_charging",
	"wheelchair_accessible", "valet", "car_wash", "24/7",
}

// UnknownFeature returns the first entry of features that is not a known amenity.
func UnknownFeature(features []string) (string, bool) {
	for _, f := range features {
		known := false
		for _, k := range SpotFeatures {
			if f == k {
				known = true
				break
			}
		}
		if !known {
			return f, true
		}
	}
	return "", false
}
