package place

// Place is a normalized search result from the mapping provider.
// Lat/Lng default to 0,0 when the provider record carries no geometry;
// callers must treat a (0,0) coordinate as unresolved rather than a real
// location.
type Place struct {
	Name    string   `json:"name"`
	Address *string  `json:"address"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Rating  *float64 `json:"rating"`
	PlaceID *string  `json:"place_id"`
	OpenNow *bool    `json:"open_now"`
}

// Directions is a resolved route between two free-text endpoints.
type Directions struct {
	Polyline     *string `json:"polyline"`
	DistanceText *string `json:"distance_text"`
	DurationText *string `json:"duration_text"`
}
