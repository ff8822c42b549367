// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"errors"
	"testing"

	"golang.org/x/text/language"
)

func TestParseCoordinate(t *testing.T) {
	t.Run("parsing a valid coordinate succeeds", func(t *testing.T) {
		coords, err := ParseCoordinate("6.235718, -75.573979")
		if err != nil {
			t.Fatal(err)
		}
		if coords.Lat != 6.235718 || coords.Lon != -75.573979 {
			t.Errorf("unexpected coordinate: %s", coords)
		}
		if coords.String() != "6.235718,-75.573979" {
			t.Errorf("expected string to be %q, got %q", "6.235718,-75.573979", coords.String())
		}
	})
	tests := []struct {
		name  string
		value string
	}{
		{"missing separator", "6.235718"},
		{"broken latitude", "abc,-75.5"},
		{"broken longitude", "6.2,abc"},
		{"latitude out of range", "91,0"},
		{"longitude out of range", "0,-181"},
	}
	for _, tc := range tests {
		t.Run("parsing fails with "+tc.name, func(t *testing.T) {
			if _, err := ParseCoordinate(tc.value); err == nil {
				t.Errorf("expected parsing %q to fail", tc.value)
			}
		})
	}
	t.Run("out of range coordinates wrap the sentinel error", func(t *testing.T) {
		_, err := ParseCoordinate("100,0")
		if !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("expected error to be %s, got %s", ErrInvalidCoordinate, err)
		}
	})
}

func TestBounds(t *testing.T) {
	t.Run("bounds render in query notation", func(t *testing.T) {
		bounds := &Bounds{
			Southwest: LatLng{Lat: 5.418365, Lng: -77.135572},
			Northeast: LatLng{Lat: 8.8814071, Lng: -73.871107},
		}
		want := "5.418365,-77.135572|8.8814071,-73.871107"
		if got := bounds.QueryString(); got != want {
			t.Errorf("expected query string to be %q, got %q", want, got)
		}
	})
	t.Run("nil and empty bounds have no query string", func(t *testing.T) {
		var bounds *Bounds
		if bounds.HasBounds() {
			t.Error("expected nil bounds to have no bounds")
		}
		if bounds.QueryString() != "" {
			t.Errorf("expected empty query string, got %q", bounds.QueryString())
		}
		if (&Bounds{}).HasBounds() {
			t.Error("expected zero bounds to have no bounds")
		}
	})
	t.Run("parsing bounds roundtrips the query notation", func(t *testing.T) {
		value := "5.418365,-77.135572|8.8814071,-73.871107"
		bounds, err := ParseBounds(value)
		if err != nil {
			t.Fatal(err)
		}
		if bounds.QueryString() != value {
			t.Errorf("expected query string to be %q, got %q", value, bounds.QueryString())
		}
	})
	t.Run("parsing broken bounds fails", func(t *testing.T) {
		for _, value := range []string{"5.4,-77.1", "5.4,-77.1|abc", "abc|8.8,-73.8"} {
			if _, err := ParseBounds(value); err == nil {
				t.Errorf("expected parsing %q to fail", value)
			}
		}
	})
}

func TestComponentFilter(t *testing.T) {
	t.Run("filters render in a fixed order", func(t *testing.T) {
		filter := ComponentFilter{Country: "us", AdministrativeArea: "California"}
		want := "administrative_area:California|country:us"
		if got := filter.QueryString(); got != want {
			t.Errorf("expected query string to be %q, got %q", want, got)
		}
	})
	t.Run("setting filters by API name succeeds", func(t *testing.T) {
		var filter ComponentFilter
		for key, value := range map[string]string{
			"route": "Carrera 43A", "locality": "Medellín", "administrative_area": "Antioquia",
			"postal_code": "050021", "Country": " co ",
		} {
			if err := filter.Set(key, value); err != nil {
				t.Fatal(err)
			}
		}
		want := "route:Carrera 43A|locality:Medellín|administrative_area:Antioquia|postal_code:050021|country:co"
		if got := filter.QueryString(); got != want {
			t.Errorf("expected query string to be %q, got %q", want, got)
		}
	})
	t.Run("setting an unknown filter fails", func(t *testing.T) {
		var filter ComponentFilter
		if err := filter.Set("planet", "earth"); err == nil {
			t.Error("expected setting an unknown filter to fail")
		}
	})
	t.Run("empty filter is detected", func(t *testing.T) {
		if !(ComponentFilter{}).IsEmpty() {
			t.Error("expected empty filter to be empty")
		}
		if (ComponentFilter{Country: "co"}).IsEmpty() {
			t.Error("expected filter with country to be non-empty")
		}
	})
}

func TestOptions_String(t *testing.T) {
	t.Run("options render a stable key", func(t *testing.T) {
		opts := Options{
			Language:   language.Spanish,
			Region:     "CO",
			Components: ComponentFilter{Country: "co"},
		}
		want := "es;co;;country:co"
		if got := opts.String(); got != want {
			t.Errorf("expected options string to be %q, got %q", want, got)
		}
	})
}

func TestResult_HasType(t *testing.T) {
	result := Result{Types: []string{TypeStreetAddress}}
	if !result.HasType(TypeStreetAddress) {
		t.Error("expected result to have street_address type")
	}
	if result.HasType(TypeRoute) {
		t.Error("expected result to not have route type")
	}
	var resp *Response
	if resp.OK() {
		t.Error("expected nil response to not be OK")
	}
}
