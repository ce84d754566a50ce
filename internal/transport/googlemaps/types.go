package googlemaps

// Wire types for the Google Maps web service JSON envelopes. Only the
// fields the gateway reads are declared; the provider sends many more.

// PlaceResult is a raw place record as returned by the nearby-search,
// text-search and find-place endpoints.
type PlaceResult struct {
	Name             string        `json:"name"`
	FormattedAddress *string       `json:"formatted_address,omitempty"`
	Vicinity         *string       `json:"vicinity,omitempty"`
	Geometry         *Geometry     `json:"geometry,omitempty"`
	Rating           *float64      `json:"rating,omitempty"`
	PlaceID          string        `json:"place_id"`
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty"`
}

// Geometry holds the nested location of a place or geocode result.
type Geometry struct {
	Location Location `json:"location"`
}

// Location is a raw lat/lng pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OpeningHours carries the open-now flag when the provider knows it.
type OpeningHours struct {
	OpenNow *bool `json:"open_now,omitempty"`
}

type placesResponse struct {
	Results      []PlaceResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

type findPlaceResponse struct {
	Candidates   []PlaceResult `json:"candidates"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

type geocodeResponse struct {
	Results      []geocodeResult `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

type geocodeResult struct {
	Geometry Geometry `json:"geometry"`
}

type directionsResponse struct {
	Routes       []route `json:"routes"`
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
}

type route struct {
	Legs             []leg    `json:"legs"`
	OverviewPolyline polyline `json:"overview_polyline"`
}

type leg struct {
	Distance textValue `json:"distance"`
	Duration textValue `json:"duration"`
}

type textValue struct {
	Text string `json:"text"`
}

type polyline struct {
	Points string `json:"points"`
}
