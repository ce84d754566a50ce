package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lokamap/placesearch/internal/domain"
	"github.com/lokamap/placesearch/internal/domain/geo"
	"github.com/lokamap/placesearch/internal/domain/place"
	"github.com/lokamap/placesearch/internal/metrics"
)

// Endpoint labels for metrics and error context.
const (
	endpointGeocode    = "geocode"
	endpointFindPlace  = "findplace"
	endpointNearby     = "nearby"
	endpointTextSearch = "textsearch"
	endpointDirections = "directions"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Config holds the mapping-provider client settings.
type Config struct {
	APIKey  string
	BaseURL string // override for tests; default Google Maps web API
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client calls the Google Maps geocoding, places and directions endpoints.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	retry   retryConfig
}

// NewClient creates a mapping-provider client.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		retry:   searchRetry,
	}
}

// providerError wraps a single failed provider call. It unwraps to
// domain.ErrProviderFailure; transient marks retryable failures (network
// errors and 5xx responses).
type providerError struct {
	endpoint  string
	err       error
	transient bool
}

func (e *providerError) Error() string { return fmt.Sprintf("maps %s: %v", e.endpoint, e.err) }

func (e *providerError) Unwrap() error { return domain.ErrProviderFailure }

// FindPlace resolves a free-text place name to a coordinate via the
// find-place endpoint. Returns (nil, nil) when the provider has no
// candidate; the caller falls through to Geocode.
func (c *Client) FindPlace(ctx context.Context, query string) (*geo.Coordinate, error) {
	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("input", query)
	params.Set("inputtype", "textquery")
	params.Set("fields", "geometry")

	var resp findPlaceResponse
	if err := c.get(ctx, endpointFindPlace, "/place/findplacefromtext/json", params, &resp, false); err != nil {
		return nil, err
	}
	if err := checkStatus(endpointFindPlace, resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Geometry == nil {
		return nil, nil
	}
	loc := resp.Candidates[0].Geometry.Location
	return &geo.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Geocode resolves a free-text address to a coordinate.
// Returns (nil, nil) when the provider has no result.
func (c *Client) Geocode(ctx context.Context, address string) (*geo.Coordinate, error) {
	if address == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("address", address)

	var resp geocodeResponse
	if err := c.get(ctx, endpointGeocode, "/geocode/json", params, &resp, false); err != nil {
		return nil, err
	}
	if err := checkStatus(endpointGeocode, resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		return nil, nil
	}
	loc := resp.Results[0].Geometry.Location
	return &geo.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// SearchNearby queries places around a coordinate. The nearby endpoint
// honors radius strictly. Results come back normalized in provider order.
func (c *Client) SearchNearby(
	ctx context.Context, loc geo.Coordinate, radiusMeters int, keyword string, openNow bool,
) ([]place.Place, error) {
	params := url.Values{}
	params.Set("location", formatLocation(loc))
	params.Set("radius", strconv.Itoa(clampRadius(radiusMeters)))
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	if openNow {
		params.Set("opennow", "true")
	}

	var resp placesResponse
	if err := c.get(ctx, endpointNearby, "/place/nearbysearch/json", params, &resp, true); err != nil {
		return nil, err
	}
	if err := checkStatus(endpointNearby, resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	return normalizePlaces(resp.Results), nil
}

// SearchText queries places matching a free-text query. The text-search
// endpoint treats radius only as a hint, so callers post-filter by distance
// themselves. loc may be nil for an unanchored search.
func (c *Client) SearchText(
	ctx context.Context, query string, loc *geo.Coordinate, radiusMeters int, openNow bool,
) ([]place.Place, error) {
	params := url.Values{}
	params.Set("query", query)
	if loc != nil {
		params.Set("location", formatLocation(*loc))
		params.Set("radius", strconv.Itoa(clampRadius(radiusMeters)))
	}
	if openNow {
		params.Set("opennow", "true")
	}

	var resp placesResponse
	if err := c.get(ctx, endpointTextSearch, "/place/textsearch/json", params, &resp, true); err != nil {
		return nil, err
	}
	if err := checkStatus(endpointTextSearch, resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	return normalizePlaces(resp.Results), nil
}

// Directions resolves a route between two free-text endpoints. A provider
// "no route" outcome returns (nil, nil) rather than an error.
func (c *Client) Directions(ctx context.Context, origin, destination string) (*place.Directions, error) {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)

	var resp directionsResponse
	if err := c.get(ctx, endpointDirections, "/directions/json", params, &resp, false); err != nil {
		return nil, err
	}

	if resp.Status != statusOK || len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return nil, nil
	}

	r := resp.Routes[0]
	d := &place.Directions{}
	if pts := r.OverviewPolyline.Points; pts != "" {
		d.Polyline = &pts
	}
	if dist := r.Legs[0].Distance.Text; dist != "" {
		d.DistanceText = &dist
	}
	if dur := r.Legs[0].Duration.Text; dur != "" {
		d.DurationText = &dur
	}
	return d, nil
}

// get performs one provider call, with the search retry schedule when
// retryable is true. The API key is appended here so endpoint methods never
// log it.
func (c *Client) get(
	ctx context.Context, endpoint, path string, params url.Values, out any, retryable bool,
) error {
	params.Set("key", c.apiKey)
	rawURL := c.baseURL + path + "?" + params.Encode()

	attempts := 1
	if retryable {
		attempts = c.retry.maxAttempts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.logger.Warn("retrying provider call",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if serr := sleep(ctx, c.retry.backoff(attempt-1)); serr != nil {
				return &providerError{endpoint: endpoint, err: serr}
			}
		}

		start := time.Now()
		err = c.doOnce(ctx, endpoint, rawURL, out)
		metrics.ProviderRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "success").Inc()
			return nil
		}
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "error").Inc()

		var pe *providerError
		if !errors.As(err, &pe) || !pe.transient {
			return err
		}
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, endpoint, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &providerError{endpoint: endpoint, err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &providerError{endpoint: endpoint, err: err, transient: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return &providerError{
			endpoint:  endpoint,
			err:       fmt.Errorf("unexpected status %d", resp.StatusCode),
			transient: true,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return &providerError{endpoint: endpoint, err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &providerError{endpoint: endpoint, err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Provider envelope statuses treated as success.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// checkStatus rejects API-level failures the provider reports with HTTP 200
// (REQUEST_DENIED, OVER_QUERY_LIMIT, INVALID_REQUEST).
func checkStatus(endpoint, status, errorMessage string) error {
	if status == "" || status == statusOK || status == statusZeroResults {
		return nil
	}
	err := fmt.Errorf("status %s", status)
	if errorMessage != "" {
		err = fmt.Errorf("status %s: %s", status, errorMessage)
	}
	return &providerError{endpoint: endpoint, err: err}
}

// clampRadius bounds the radius hint sent to the provider.
func clampRadius(radiusMeters int) int {
	if radiusMeters < 200 {
		return 200
	}
	if radiusMeters > 50_000 {
		return 50_000
	}
	return radiusMeters
}

func formatLocation(loc geo.Coordinate) string {
	return strconv.FormatFloat(loc.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(loc.Lng, 'f', -1, 64)
}
