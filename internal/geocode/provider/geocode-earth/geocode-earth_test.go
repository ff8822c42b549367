// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/wneessen/addressparts/internal/addressparts"
	"github.com/wneessen/addressparts/internal/geocode"
	"github.com/wneessen/addressparts/internal/http"
	"github.com/wneessen/addressparts/internal/logger"
	"github.com/wneessen/addressparts/internal/testhelper"
)

const (
	cityExpected = "Friedrichstraße 67, Berlin, Germany"
	cityFile     = "../../../../testdata/geocodeearth_berlin.json"
	townFile     = "../../../../testdata/geocodeearth_otley.json"
	emptyFile    = "../../../../testdata/geocodeearth_empty.json"
	deniedFile   = "../../../../testdata/geocodeearth_denied.json"
	testHitTTL   = 1 * time.Second
	testMissTTL  = 1 * time.Second
)

var cityCoords = geocode.Coordinate{Lat: 52.5129, Lon: 13.3910}

func TestNew(t *testing.T) {
	t.Run("provider name is correct", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, nil)
		if coder.Name() != name {
			t.Errorf("expected provider name to be %q, got %q", name, coder.Name())
		}
	})
}

func TestGeocodeEarth_Reverse(t *testing.T) {
	t.Run("reverse geocoding succeeds", func(t *testing.T) {
		var query map[string][]string
		var path string
		fileFn := testhelper.FileResponder(t, cityFile)
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			query, path = req.URL.Query(), req.URL.Path
			return fileFn(req)
		}

		coder := testCoderWithRoundtripFunc(t, rtFn)
		resp, err := coder.Reverse(t.Context(), cityCoords, geocode.Options{})
		if err != nil {
			t.Fatal(err)
		}
		if !resp.OK() {
			t.Fatalf("expected status to be OK, got %q", resp.Status)
		}
		if path != "/v1/reverse" {
			t.Errorf("expected request path to be %q, got %q", "/v1/reverse", path)
		}
		want := map[string]string{
			"point.lat": "52.512900",
			"point.lon": "13.391000",
			"lang":      "en",
			"api_key":   "apikey",
		}
		for key, value := range want {
			if got := query[key]; len(got) != 1 || got[0] != value {
				t.Errorf("expected query parameter %q to be %q, got %q", key, value, got)
			}
		}
		if len(resp.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(resp.Results))
		}
		result := resp.Results[0]
		if result.FormattedAddress != cityExpected {
			t.Errorf("expected address to be %q, got %q", cityExpected, result.FormattedAddress)
		}
		if result.Geometry.Location.Lat != 52.512274 || result.Geometry.Location.Lng != 13.390617 {
			t.Errorf("expected location to be converted from GeoJSON order, got %+v", result.Geometry.Location)
		}
		if result.Geometry.Viewport.Southwest.Lat != 52.5120 || result.Geometry.Viewport.Northeast.Lng != 13.3911 {
			t.Errorf("expected bbox to be converted into a viewport, got %+v", result.Geometry.Viewport)
		}
		if !resp.Results[1].HasType(geocode.TypeRoute) {
			t.Errorf("expected street layer to be a route, got %v", resp.Results[1].Types)
		}
	})
	t.Run("reverse geocoded components are extracted into address parts", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponder(t, cityFile))
		resp, err := coder.Reverse(t.Context(), cityCoords, geocode.Options{})
		if err != nil {
			t.Fatal(err)
		}
		want := addressparts.Parts{
			AddressLiteral1: "Friedrichstraße",
			AddressNumber2:  "67",
			City:            "Berlin",
			State:           "Berlin",
			Country:         "Germany",
			Neighbourhood:   "Friedrichstadt",
			ZipCode:         "10117",
		}
		got, ok := addressparts.ExtractFirst(&resp)
		if !ok {
			t.Fatal("expected address to be found")
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected address parts (-want +got):\n%s", diff)
		}
	})
	t.Run("reverse cached geocoding succeeds", func(t *testing.T) {
		coder := geocode.NewCachedGeocoder(testCoderWithRoundtripFunc(t, testhelper.FileResponder(t, cityFile)),
			testHitTTL, testMissTTL)
		if _, err := coder.Reverse(t.Context(), cityCoords, geocode.Options{}); err != nil {
			t.Fatal(err)
		}
		resp, err := coder.Reverse(t.Context(), cityCoords, geocode.Options{})
		if err != nil {
			t.Fatal(err)
		}
		if !resp.CacheHit {
			t.Error("expected cache hit")
		}
	})
	t.Run("no features return zero results", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponder(t, emptyFile))
		resp, err := coder.Reverse(t.Context(), geocode.Coordinate{Lat: 0, Lon: -30}, geocode.Options{})
		if err != nil {
			t.Fatal(err)
		}
		if resp.Status != geocode.StatusZeroResults {
			t.Errorf("expected status to be %q, got %q", geocode.StatusZeroResults, resp.Status)
		}
	})
	t.Run("a denied request fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			data, err := os.Open(deniedFile)
			if err != nil {
				t.Fatalf("failed to open JSON response file: %s", err)
			}
			return &stdhttp.Response{StatusCode: 401, Body: data, Header: make(stdhttp.Header)}, nil
		}
		coder := testCoderWithRoundtripFunc(t, rtFn)
		resp, err := coder.Reverse(t.Context(), cityCoords, geocode.Options{})
		if err == nil {
			t.Fatal("expected reverse geocoding to fail")
		}
		if resp.Status != geocode.StatusRequestDenied {
			t.Errorf("expected status to be %q, got %q", geocode.StatusRequestDenied, resp.Status)
		}
		if !strings.Contains(err.Error(), "Invalid API key") {
			t.Errorf("expected error to contain the API message, got %s", err)
		}
	})
	t.Run("an unexpected status code fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 500,
				Body:       io.NopCloser(strings.NewReader(`{"features":[]}`)),
				Header:     make(stdhttp.Header),
			}, nil
		}
		coder := testCoderWithRoundtripFunc(t, rtFn)
		_, err := coder.Reverse(t.Context(), cityCoords, geocode.Options{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		wantErr := "received non-positive response code from geocode.earth API: 500"
		if err.Error() != wantErr {
			t.Errorf("expected error to be %q, got %q", wantErr, err)
		}
	})
	t.Run("a feature with only one coordinate fails", func(t *testing.T) {
		response := Response{Features: []Feature{{Geometry: Geometry{Coordinates: []float64{cityCoords.Lon}}}}}
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			buf := bytes.NewBuffer(nil)
			if err := json.NewEncoder(buf).Encode(response); err != nil {
				return nil, err
			}
			return &stdhttp.Response{StatusCode: 200, Body: io.NopCloser(buf), Header: make(stdhttp.Header)}, nil
		}
		coder := testCoderWithRoundtripFunc(t, rtFn)
		_, err := coder.Reverse(t.Context(), cityCoords, geocode.Options{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "expected 2 coordinates in response") {
			t.Errorf("unexpected error: %s", err)
		}
	})
	t.Run("invalid coordinates fail without a request", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, nil)
		_, err := coder.Reverse(t.Context(), geocode.Coordinate{Lat: 91, Lon: 0}, geocode.Options{})
		if !errors.Is(err, geocode.ErrInvalidCoordinate) {
			t.Errorf("expected error to be %s, got %s", geocode.ErrInvalidCoordinate, err)
		}
	})
	t.Run("reverse geocoding fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("intentionally failing")
		}
		coder := testCoderWithRoundtripFunc(t, rtFn)
		if _, err := coder.Reverse(t.Context(), cityCoords, geocode.Options{}); err == nil {
			t.Fatal("expected API request to fail")
		}
	})
}

func TestGeocodeEarth_Geocode(t *testing.T) {
	t.Run("forward geocoding sends the filters", func(t *testing.T) {
		var query map[string][]string
		var path string
		fileFn := testhelper.FileResponder(t, townFile)
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			query, path = req.URL.Query(), req.URL.Path
			return fileFn(req)
		}
		bounds, err := geocode.ParseBounds("53.9,-1.7|53.91,-1.68")
		if err != nil {
			t.Fatalf("failed to parse bounds: %s", err)
		}
		coder := testCoderWithRoundtripFunc(t, rtFn)
		resp, err := coder.Geocode(t.Context(), "Boroughgate, Otley", geocode.Options{
			Language: language.German,
			Region:   "gb",
			Bounds:   bounds,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !resp.OK() {
			t.Fatalf("expected status to be OK, got %q", resp.Status)
		}
		if path != "/v1/search" {
			t.Errorf("expected request path to be %q, got %q", "/v1/search", path)
		}
		want := map[string]string{
			"text":                  "Boroughgate, Otley",
			"size":                  "5",
			"lang":                  "de",
			"boundary.country":      "GB",
			"boundary.rect.min_lat": "53.900000",
			"boundary.rect.max_lon": "-1.680000",
		}
		for key, value := range want {
			if got := query[key]; len(got) != 1 || got[0] != value {
				t.Errorf("expected query parameter %q to be %q, got %q", key, value, got)
			}
		}
	})
	t.Run("the local admin area is used as city without locality", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponder(t, townFile))
		resp, err := coder.Geocode(t.Context(), "Boroughgate, Otley", geocode.Options{})
		if err != nil {
			t.Fatal(err)
		}
		result := resp.Results[0]
		if result.HasType(geocode.TypeStreetAddress) {
			t.Error("did not expect a street without house number to be a street address")
		}
		for _, c := range result.AddressComponents {
			if c.HasType(geocode.TypeLocality) && c.LongName != "Otley" {
				t.Errorf("expected city to be %q, got %q", "Otley", c.LongName)
			}
			if c.HasType(geocode.TypeCountry) && c.ShortName != "GBR" {
				t.Errorf("expected country short name to be %q, got %q", "GBR", c.ShortName)
			}
		}
		if _, ok := addressparts.ExtractFirst(&resp); ok {
			t.Error("expected no street address to be found")
		}
	})
	t.Run("forward geocoding an empty address fails", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, nil)
		if _, err := coder.Geocode(t.Context(), " ", geocode.Options{}); !errors.Is(err, geocode.ErrEmptyAddress) {
			t.Errorf("expected error to be %s, got %s", geocode.ErrEmptyAddress, err)
		}
	})
}

func TestGeocodeEarth_Reverse_integration(t *testing.T) {
	testhelper.PerformIntegrationTests(t)
	apikey := os.Getenv("GEOCODEEARTH_APIKEY")
	if apikey == "" {
		t.Skip("no geocode.earth API key set, skipping tests")
	}
	coder := New(http.New(logger.NewLogger(slog.LevelDebug, io.Discard)), language.English, apikey)
	resp, err := coder.Reverse(t.Context(), cityCoords, geocode.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.OK() {
		t.Errorf("expected status to be OK, got %q", resp.Status)
	}
}

func testCoderWithRoundtripFunc(t *testing.T, fn func(req *stdhttp.Request) (*stdhttp.Response, error)) *GeocodeEarth {
	t.Helper()
	testHttpClient := http.New(logger.NewLogger(slog.LevelDebug, io.Discard))
	if fn != nil {
		testHttpClient.Transport = testhelper.MockRoundTripper{Fn: fn}
	}
	return New(testHttpClient, language.English, "apikey")
}
