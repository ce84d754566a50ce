package geo

import "math"

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// Coordinate is a WGS84 latitude/longitude pair. It is the unit of location
// resolution shared between the geocoder and the nearby-search stage.
type Coordinate struct {
	Lat float64
	Lng float64
}

// DistanceTo returns the great-circle distance in meters to other.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return Haversine(c.Lat, c.Lng, other.Lat, other.Lng)
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees. Spherical approximation,
// accurate to ~0.5% versus ellipsoidal models.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
