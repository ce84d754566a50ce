package places

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/lokamap/placesearch/internal/domain"
	"github.com/lokamap/placesearch/internal/domain/geo"
	"github.com/lokamap/placesearch/internal/domain/intent"
	"github.com/lokamap/placesearch/internal/domain/place"
)

// --- Mocks ---

type mockExtractor struct {
	raw        intent.Raw
	err        error
	lastPrompt string
}

func (m *mockExtractor) Extract(_ context.Context, prompt string) (intent.Raw, error) {
	m.lastPrompt = prompt
	return m.raw, m.err
}

type mockLocator struct {
	findLoc    *geo.Coordinate
	findErr    error
	geoLoc     *geo.Coordinate
	geoErr     error
	findCalled bool
	geoCalled  bool
}

func (m *mockLocator) FindPlace(_ context.Context, _ string) (*geo.Coordinate, error) {
	m.findCalled = true
	return m.findLoc, m.findErr
}

func (m *mockLocator) Geocode(_ context.Context, _ string) (*geo.Coordinate, error) {
	m.geoCalled = true
	return m.geoLoc, m.geoErr
}

type mockSearcher struct {
	nearbyResults []place.Place
	nearbyErr     error
	textResults   []place.Place
	textErr       error

	nearbyCalled      bool
	textCalled        bool
	lastNearbyKeyword string
	lastNearbyRadius  int
	lastNearbyOpenNow bool
	lastTextQuery     string
	lastTextLoc       *geo.Coordinate
}

func (m *mockSearcher) SearchNearby(
	_ context.Context, _ geo.Coordinate, radiusMeters int, keyword string, openNow bool,
) ([]place.Place, error) {
	m.nearbyCalled = true
	m.lastNearbyKeyword = keyword
	m.lastNearbyRadius = radiusMeters
	m.lastNearbyOpenNow = openNow
	return m.nearbyResults, m.nearbyErr
}

func (m *mockSearcher) SearchText(
	_ context.Context, query string, loc *geo.Coordinate, _ int, _ bool,
) ([]place.Place, error) {
	m.textCalled = true
	m.lastTextQuery = query
	m.lastTextLoc = loc
	return m.textResults, m.textErr
}

type mockRouter struct {
	directions *place.Directions
	err        error
}

func (m *mockRouter) Directions(_ context.Context, _, _ string) (*place.Directions, error) {
	return m.directions, m.err
}

type mockCache struct {
	stored    []place.Place
	hit       bool
	getCalled bool
	putCalled bool
	putPlaces []place.Place
}

func (m *mockCache) Get(_ context.Context, _ *intent.Intent) ([]place.Place, bool) {
	m.getCalled = true
	return m.stored, m.hit
}

func (m *mockCache) Put(_ context.Context, _ *intent.Intent, places []place.Place) {
	m.putCalled = true
	m.putPlaces = places
}

// --- Helpers ---

// Bandung city center, the anchor for most scenarios.
var bandung = geo.Coordinate{Lat: -6.9175, Lng: 107.6191}

// placeAt returns a place offset north of the origin by roughly the given
// distance (one degree of latitude is ~111195 m).
func placeAt(name string, origin geo.Coordinate, meters float64) place.Place {
	return place.Place{
		Name: name,
		Lat:  origin.Lat + meters/111194.93,
		Lng:  origin.Lng,
	}
}

func makeIntent(t *testing.T, query, locationText string, radiusMeters int, openNow bool) *intent.Intent {
	t.Helper()
	i, err := intent.New(query, "", locationText, radiusMeters, openNow, "", false, nil)
	if err != nil {
		t.Fatalf("intent.New: %v", err)
	}
	return &i
}

type fixture struct {
	extractor *mockExtractor
	locator   *mockLocator
	searcher  *mockSearcher
	router    *mockRouter
	cache     *mockCache
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		extractor: &mockExtractor{},
		locator:   &mockLocator{},
		searcher:  &mockSearcher{},
		router:    &mockRouter{},
		cache:     &mockCache{},
	}
	f.svc = New(f.extractor, f.locator, f.searcher, f.router, f.cache)
	return f
}

// --- Search ---

func TestSearch_NearbyHappyPath(t *testing.T) {
	f := newFixture()
	f.locator.findLoc = &bandung
	f.searcher.nearbyResults = []place.Place{
		placeAt("Kopi Anjis", bandung, 500),
		placeAt("Yellow Truck", bandung, 1200),
	}

	i := makeIntent(t, "kedai kopi", "Bandung", 2000, true)
	got, err := f.svc.Search(context.Background(), i)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(got) != 2 || got[0].Name != "Kopi Anjis" || got[1].Name != "Yellow Truck" {
		t.Errorf("got = %+v, want both places in provider order", got)
	}
	if !f.searcher.nearbyCalled {
		t.Error("nearby search not called")
	}
	if f.searcher.lastNearbyKeyword != "cafe" {
		t.Errorf("keyword = %q, want cafe derived from query", f.searcher.lastNearbyKeyword)
	}
	if f.searcher.lastNearbyRadius != 2000 {
		t.Errorf("radius = %d, want 2000", f.searcher.lastNearbyRadius)
	}
	if !f.searcher.lastNearbyOpenNow {
		t.Error("openNow not forwarded")
	}
	if f.searcher.textCalled {
		t.Error("text search called although nearby had results")
	}
	if !f.cache.putCalled {
		t.Error("results not cached")
	}
}

func TestSearch_CapsResultsAtTwenty(t *testing.T) {
	f := newFixture()
	f.locator.findLoc = &bandung
	for n := 0; n < 25; n++ {
		f.searcher.nearbyResults = append(f.searcher.nearbyResults,
			placeAt(fmt.Sprintf("place-%02d", n), bandung, float64(n*10)))
	}

	got, err := f.svc.Search(context.Background(), makeIntent(t, "makan", "Bandung", 3000, false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	for n := 0; n < 20; n++ {
		if want := fmt.Sprintf("place-%02d", n); got[n].Name != want {
			t.Errorf("got[%d].Name = %q, want %q (provider order)", n, got[n].Name, want)
		}
	}
	if len(f.cache.putPlaces) != 20 {
		t.Errorf("cached %d places, want the capped 20", len(f.cache.putPlaces))
	}
}

func TestSearch_DistanceFilterDropsFarPlaces(t *testing.T) {
	f := newFixture()
	f.locator.findLoc = &bandung
	f.searcher.nearbyResults = []place.Place{
		placeAt("near", bandung, 500),
		placeAt("inside", bandung, 2900),
		placeAt("outside", bandung, 3500),
	}

	got, err := f.svc.Search(context.Background(), makeIntent(t, "makan", "Bandung", 3000, false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(got) != 2 || got[0].Name != "near" || got[1].Name != "inside" {
		t.Errorf("got = %+v, want near and inside only", got)
	}
}

func TestSearch_DistanceFilterFloorsAtTwoHundredMeters(t *testing.T) {
	f := newFixture()
	f.locator.findLoc = &bandung
	f.searcher.nearbyResults = []place.Place{
		placeAt("walkable", bandung, 150),
		placeAt("too far", bandung, 250),
	}

	got, err := f.svc.Search(context.Background(), makeIntent(t, "atm", "Bandung", 100, false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(got) != 1 || got[0].Name != "walkable" {
		t.Errorf("got = %+v, want only the place within the 200 m floor", got)
	}
}

func TestFilterByDistance_InclusiveAtCutoff(t *testing.T) {
	// A place at exactly the cutoff distance is kept; one meter less on
	// the limit drops it.
	p := placeAt("edge", bandung, 2500)
	d := geo.Haversine(bandung.Lat, bandung.Lng, p.Lat, p.Lng)

	atCutoff := int(math.Ceil(d))
	if kept := filterByDistance([]place.Place{p}, bandung, atCutoff); len(kept) != 1 {
		t.Errorf("limit %d m with place at %.2f m: dropped, want kept", atCutoff, d)
	}

	below := int(d) - 1
	if kept := filterByDistance([]place.Place{p}, bandung, below); len(kept) != 0 {
		t.Errorf("limit %d m with place at %.2f m: kept, want dropped", below, d)
	}
}

func TestSearch_TextFallbackWhenNearbySparse(t *testing.T) {
	f := newFixture()
	f.locator.findLoc = &bandung
	f.searcher.nearbyResults = nil
	f.searcher.textResults = []place.Place{placeAt("Museum Geologi", bandung, 1000)}

	got, err := f.svc.Search(context.Background(), makeIntent(t, "wisata museum", "Bandung", 3000, false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if !f.searcher.textCalled {
		t.Fatal("text search fallback not called")
	}
	if f.searcher.lastTextQuery != "tourist_attraction" {
		t.Errorf("text query = %q, want the derived keyword", f.searcher.lastTextQuery)
	}
	if f.searcher.lastTextLoc == nil || *f.searcher.lastTextLoc != bandung {
		t.Errorf("text loc = %v, want the resolved anchor", f.searcher.lastTextLoc)
	}
	if len(got) != 1 || got[0].Name != "Museum Geologi" {
		t.Errorf("got = %+v", got)
	}
}

func TestSearch_UnanchoredSkipsLocatorAndFilter(t *testing.T) {
	f := newFixture()
	f.searcher.textResults = []place.Place{
		{Name: "anywhere", Lat: 40.0, Lng: -70.0},
	}

	got, err := f.svc.Search(context.Background(), makeIntent(t, "kopi", "", 3000, false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if f.locator.findCalled || f.locator.geoCalled {
		t.Error("locator called for an unanchored search")
	}
	if f.searcher.nearbyCalled {
		t.Error("nearby search called without an anchor")
	}
	if f.searcher.lastTextLoc != nil {
		t.Errorf("text loc = %v, want nil", f.searcher.lastTextLoc)
	}
	if len(got) != 1 {
		t.Errorf("got = %+v, want the unfiltered text result", got)
	}
}

func TestSearch_GeocodeFallbackWhenFindPlaceEmpty(t *testing.T) {
	f := newFixture()
	f.locator.findLoc = nil
	f.locator.geoLoc = &bandung
	f.searcher.nearbyResults = []place.Place{placeAt("x", bandung, 100)}

	if _, err := f.svc.Search(context.Background(), makeIntent(t, "kopi", "Bandung", 3000, false)); err != nil {
		t.Fatalf("Search: %v", err)
	}

	if !f.locator.findCalled || !f.locator.geoCalled {
		t.Errorf("findCalled = %t, geoCalled = %t, want both", f.locator.findCalled, f.locator.geoCalled)
	}
	if !f.searcher.nearbyCalled {
		t.Error("nearby search not called with the geocoded anchor")
	}
}

func TestSearch_UnresolvedLocationFallsToTextSearch(t *testing.T) {
	f := newFixture()
	f.searcher.textResults = []place.Place{{Name: "somewhere"}}

	got, err := f.svc.Search(context.Background(), makeIntent(t, "kopi", "Atlantis", 3000, false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if f.searcher.nearbyCalled {
		t.Error("nearby search called without a resolved anchor")
	}
	if !f.searcher.textCalled {
		t.Error("text search not called")
	}
	if len(got) != 1 {
		t.Errorf("got = %+v", got)
	}
}

func TestSearch_CacheHitSkipsProviders(t *testing.T) {
	f := newFixture()
	f.cache.stored = []place.Place{{Name: "cached"}}
	f.cache.hit = true

	got, err := f.svc.Search(context.Background(), makeIntent(t, "kopi", "Bandung", 3000, false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(got) != 1 || got[0].Name != "cached" {
		t.Errorf("got = %+v, want cached result", got)
	}
	if f.locator.findCalled || f.searcher.nearbyCalled || f.searcher.textCalled {
		t.Error("providers called on a cache hit")
	}
	if f.cache.putCalled {
		t.Error("cache rewritten on a hit")
	}
}

func TestSearch_NearbyErrorPropagates(t *testing.T) {
	f := newFixture()
	f.locator.findLoc = &bandung
	f.searcher.nearbyErr = fmt.Errorf("maps nearby: status 500: %w", domain.ErrProviderFailure)

	_, err := f.svc.Search(context.Background(), makeIntent(t, "kopi", "Bandung", 3000, false))
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
	if f.cache.putCalled {
		t.Error("failed search must not be cached")
	}
}

func TestSearch_FindPlaceErrorFallsToGeocode(t *testing.T) {
	f := newFixture()
	f.locator.findErr = fmt.Errorf("maps findplace: %w", domain.ErrProviderFailure)
	f.locator.geoLoc = &bandung
	f.searcher.nearbyResults = []place.Place{placeAt("x", bandung, 100)}

	got, err := f.svc.Search(context.Background(), makeIntent(t, "kopi", "Bandung", 3000, false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !f.locator.geoCalled {
		t.Error("geocode not attempted after find-place failure")
	}
	if len(got) != 1 {
		t.Errorf("got = %+v, want the nearby result", got)
	}
}

func TestSearch_GeocodeErrorPropagates(t *testing.T) {
	f := newFixture()
	f.locator.findLoc = nil
	f.locator.geoErr = fmt.Errorf("maps geocode: %w", domain.ErrProviderFailure)

	_, err := f.svc.Search(context.Background(), makeIntent(t, "kopi", "Bandung", 3000, false))
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
	if f.cache.putCalled {
		t.Error("failed search must not be cached")
	}
}

// --- SearchPrompt ---

func TestSearchPrompt(t *testing.T) {
	f := newFixture()
	f.extractor.raw = intent.Raw{
		"query":         "kedai kopi",
		"location_text": "Bandung",
		"radius_m":      float64(2000),
		"open_now":      true,
	}
	f.locator.findLoc = &bandung
	f.searcher.nearbyResults = []place.Place{placeAt("Kopi Anjis", bandung, 500)}

	got, err := f.svc.SearchPrompt(context.Background(), "cari kedai kopi di Bandung yang buka")
	if err != nil {
		t.Fatalf("SearchPrompt: %v", err)
	}

	if f.extractor.lastPrompt != "cari kedai kopi di Bandung yang buka" {
		t.Errorf("prompt = %q", f.extractor.lastPrompt)
	}
	if f.searcher.lastNearbyRadius != 2000 || !f.searcher.lastNearbyOpenNow {
		t.Errorf("intent not carried through: radius=%d openNow=%t",
			f.searcher.lastNearbyRadius, f.searcher.lastNearbyOpenNow)
	}
	if len(got) != 1 {
		t.Errorf("got = %+v", got)
	}
}

func TestSearchPrompt_InvalidIntent(t *testing.T) {
	f := newFixture()
	f.extractor.raw = intent.Raw{
		"query":    "kopi",
		"radius_m": float64(99),
	}

	_, err := f.svc.SearchPrompt(context.Background(), "kopi")
	if !errors.Is(err, domain.ErrInvalidIntent) {
		t.Fatalf("err = %v, want ErrInvalidIntent", err)
	}
	if f.searcher.nearbyCalled || f.searcher.textCalled {
		t.Error("search ran despite invalid intent")
	}
}

func TestSearchPrompt_ExtractorErrorPropagates(t *testing.T) {
	f := newFixture()
	f.extractor.err = fmt.Errorf("intent request failed: %w", domain.ErrProviderFailure)

	_, err := f.svc.SearchPrompt(context.Background(), "kopi")
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
}

// --- Directions ---

func TestDirections(t *testing.T) {
	f := newFixture()
	pl := "encoded"
	f.router.directions = &place.Directions{Polyline: &pl}

	got, err := f.svc.Directions(context.Background(), "Jakarta", "Bandung")
	if err != nil {
		t.Fatalf("Directions: %v", err)
	}
	if got == nil || got.Polyline == nil || *got.Polyline != "encoded" {
		t.Errorf("got = %+v", got)
	}
}

func TestDirections_NoRoute(t *testing.T) {
	f := newFixture()

	got, err := f.svc.Directions(context.Background(), "here", "nowhere")
	if err != nil {
		t.Fatalf("Directions: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil for no route", got)
	}
}
