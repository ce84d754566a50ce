package googlemaps

import "github.com/lokamap/placesearch/internal/domain/place"

// NormalizePlace maps a raw provider record into the canonical Place.
// It never fails: a missing name becomes "Unknown", missing geometry becomes
// the (0,0) unresolved coordinate, and absent optional fields stay nil.
// formatted_address wins over vicinity for the address.
func NormalizePlace(raw PlaceResult) place.Place {
	p := place.Place{
		Name:   raw.Name,
		Rating: raw.Rating,
	}
	if p.Name == "" {
		p.Name = "Unknown"
	}

	switch {
	case raw.FormattedAddress != nil && *raw.FormattedAddress != "":
		p.Address = raw.FormattedAddress
	case raw.Vicinity != nil && *raw.Vicinity != "":
		p.Address = raw.Vicinity
	}

	if raw.Geometry != nil {
		p.Lat = raw.Geometry.Location.Lat
		p.Lng = raw.Geometry.Location.Lng
	}

	if raw.PlaceID != "" {
		id := raw.PlaceID
		p.PlaceID = &id
	}

	if raw.OpeningHours != nil {
		p.OpenNow = raw.OpeningHours.OpenNow
	}

	return p
}

func normalizePlaces(raw []PlaceResult) []place.Place {
	out := make([]place.Place, len(raw))
	for i, r := range raw {
		out[i] = NormalizePlace(r)
	}
	return out
}
