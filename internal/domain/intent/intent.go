package intent

import (
	"fmt"
	"math"

	"github.com/lokamap/placesearch/internal/domain"
)

// Radius bounds in meters.
const (
	MinRadiusMeters     = 100
	MaxRadiusMeters     = 50_000
	DefaultRadiusMeters = 3_000
)

// Intent is a validated place-search request derived from a user prompt.
type Intent struct {
	query              string
	placeType          string
	locationText       string
	radiusMeters       int
	openNow            bool
	routeFrom          string
	needsClarification bool
	missingFields      []string
}

// New validates and builds an Intent. An out-of-bounds radius fails
// construction; defaulting for an absent radius happens in FromRaw.
func New(
	query, placeType, locationText string,
	radiusMeters int,
	openNow bool,
	routeFrom string,
	needsClarification bool,
	missingFields []string,
) (Intent, error) {
	if query == "" {
		return Intent{}, fmt.Errorf("%w: query is required", domain.ErrInvalidIntent)
	}
	if radiusMeters < MinRadiusMeters || radiusMeters > MaxRadiusMeters {
		return Intent{}, fmt.Errorf("%w: radius_m must be between %d and %d, got %d",
			domain.ErrInvalidIntent, MinRadiusMeters, MaxRadiusMeters, radiusMeters)
	}

	return Intent{
		query:              query,
		placeType:          placeType,
		locationText:       locationText,
		radiusMeters:       radiusMeters,
		openNow:            openNow,
		routeFrom:          routeFrom,
		needsClarification: needsClarification,
		missingFields:      missingFields,
	}, nil
}

// Query returns the search query text (never empty).
func (i *Intent) Query() string { return i.query }

// PlaceType returns the normalized category, or "" when unknown.
func (i *Intent) PlaceType() string { return i.placeType }

// LocationText returns the free-text location, or "" for an unanchored search.
func (i *Intent) LocationText() string { return i.locationText }

// RadiusMeters returns the validated search radius.
func (i *Intent) RadiusMeters() int { return i.radiusMeters }

// OpenNow reports whether only currently open places are wanted.
func (i *Intent) OpenNow() bool { return i.openNow }

// RouteFrom returns the directions origin, or "" (directions are disabled downstream).
func (i *Intent) RouteFrom() string { return i.routeFrom }

// NeedsClarification reports the clarification flag as set by the extractor.
func (i *Intent) NeedsClarification() bool { return i.needsClarification }

// MissingFields returns the ordered field names the extractor marked missing.
func (i *Intent) MissingFields() []string { return i.missingFields }

// Raw holds untrusted intent fields as decoded from the LLM collaborator's
// JSON output. Field presence and types are not guaranteed.
type Raw map[string]any

// FromRaw coerces and validates untrusted fields into an Intent.
// prompt backfills the query when the extractor omitted it. Errors wrap
// domain.ErrInvalidIntent and surface as client-input failures.
func FromRaw(raw Raw, prompt string) (Intent, error) {
	query, err := stringField(raw, "query")
	if err != nil {
		return Intent{}, err
	}
	if query == "" {
		query = prompt
	}

	placeType, err := stringField(raw, "place_type")
	if err != nil {
		return Intent{}, err
	}
	locationText, err := stringField(raw, "location_text")
	if err != nil {
		return Intent{}, err
	}
	routeFrom, err := stringField(raw, "route_from")
	if err != nil {
		return Intent{}, err
	}

	radius, radiusSet, err := intField(raw, "radius_m")
	if err != nil {
		return Intent{}, err
	}
	if !radiusSet {
		radius = DefaultRadiusMeters
	}

	openNow, err := boolField(raw, "open_now")
	if err != nil {
		return Intent{}, err
	}
	needsClarification, err := boolField(raw, "needs_clarification")
	if err != nil {
		return Intent{}, err
	}

	missingFields, err := stringListField(raw, "missing_fields")
	if err != nil {
		return Intent{}, err
	}

	return New(query, placeType, locationText, radius, openNow, routeFrom, needsClarification, missingFields)
}

func stringField(raw Raw, name string) (string, error) {
	v, ok := raw[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string, got %T", domain.ErrInvalidIntent, name, v)
	}
	return s, nil
}

func boolField(raw Raw, name string) (bool, error) {
	v, ok := raw[name]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: field %q must be a boolean, got %T", domain.ErrInvalidIntent, name, v)
	}
	return b, nil
}

// intField coerces a JSON number into an int, reporting whether the key was
// present. encoding/json decodes numbers as float64, so fractional and
// out-of-range values are rejected explicitly. An explicit null is a type
// error, not an absent key.
func intField(raw Raw, name string) (int, bool, error) {
	v, ok := raw[name]
	if !ok {
		return 0, false, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false, fmt.Errorf("%w: field %q must be a number, got %T", domain.ErrInvalidIntent, name, v)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false, fmt.Errorf("%w: field %q must be an integer, got %v", domain.ErrInvalidIntent, name, f)
	}
	return int(f), true, nil
}

func stringListField(raw Raw, name string) ([]string, error) {
	v, ok := raw[name]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q must be a list of strings, got %T", domain.ErrInvalidIntent, name, v)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q must contain only strings, got %T", domain.ErrInvalidIntent, name, item)
		}
		out = append(out, s)
	}
	return out, nil
}
