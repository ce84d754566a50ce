package googlemaps

import (
	"testing"
)

func strPtr(s string) *string { return &s }

func TestNormalizePlace_FullRecord(t *testing.T) {
	rating := 4.6
	open := true
	raw := PlaceResult{
		Name:             "Kopi Tuku",
		FormattedAddress: strPtr("Jl. Cipete Raya No.7, Jakarta"),
		Vicinity:         strPtr("Cipete"),
		Geometry:         &Geometry{Location: Location{Lat: -6.2754, Lng: 106.7972}},
		Rating:           &rating,
		PlaceID:          "ChIJabc123",
		OpeningHours:     &OpeningHours{OpenNow: &open},
	}

	got := NormalizePlace(raw)

	if got.Name != "Kopi Tuku" {
		t.Errorf("Name = %q, want %q", got.Name, "Kopi Tuku")
	}
	if got.Address == nil || *got.Address != "Jl. Cipete Raya No.7, Jakarta" {
		t.Errorf("Address = %v, want formatted_address to win over vicinity", got.Address)
	}
	if got.Lat != -6.2754 || got.Lng != 106.7972 {
		t.Errorf("coordinate = (%v, %v), want (-6.2754, 106.7972)", got.Lat, got.Lng)
	}
	if got.Rating == nil || *got.Rating != 4.6 {
		t.Errorf("Rating = %v, want 4.6", got.Rating)
	}
	if got.PlaceID == nil || *got.PlaceID != "ChIJabc123" {
		t.Errorf("PlaceID = %v, want ChIJabc123", got.PlaceID)
	}
	if got.OpenNow == nil || !*got.OpenNow {
		t.Errorf("OpenNow = %v, want true", got.OpenNow)
	}
}

func TestNormalizePlace_Defaults(t *testing.T) {
	got := NormalizePlace(PlaceResult{})

	if got.Name != "Unknown" {
		t.Errorf("Name = %q, want Unknown", got.Name)
	}
	if got.Address != nil {
		t.Errorf("Address = %v, want nil", got.Address)
	}
	if got.Lat != 0 || got.Lng != 0 {
		t.Errorf("coordinate = (%v, %v), want unresolved (0, 0)", got.Lat, got.Lng)
	}
	if got.Rating != nil || got.PlaceID != nil || got.OpenNow != nil {
		t.Errorf("optional fields = (%v, %v, %v), want all nil", got.Rating, got.PlaceID, got.OpenNow)
	}
}

func TestNormalizePlace_VicinityFallback(t *testing.T) {
	raw := PlaceResult{
		Name:     "Warung Sate",
		Vicinity: strPtr("Blok M"),
	}

	got := NormalizePlace(raw)
	if got.Address == nil || *got.Address != "Blok M" {
		t.Errorf("Address = %v, want vicinity fallback Blok M", got.Address)
	}
}

func TestNormalizePlace_EmptyFormattedAddressFallsBack(t *testing.T) {
	raw := PlaceResult{
		Name:             "Warung Sate",
		FormattedAddress: strPtr(""),
		Vicinity:         strPtr("Blok M"),
	}

	got := NormalizePlace(raw)
	if got.Address == nil || *got.Address != "Blok M" {
		t.Errorf("Address = %v, want Blok M", got.Address)
	}
}

func TestNormalizePlaces_PreservesOrder(t *testing.T) {
	raw := []PlaceResult{
		{Name: "first"},
		{Name: "second"},
		{Name: "third"},
	}

	got := normalizePlaces(raw)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Name != want {
			t.Errorf("got[%d].Name = %q, want %q", i, got[i].Name, want)
		}
	}
}
