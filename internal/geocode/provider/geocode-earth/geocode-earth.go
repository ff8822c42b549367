// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/addressparts/internal/geocode"
	"github.com/wneessen/addressparts/internal/http"
)

const (
	APISearchEndpoint  = "https://api.geocode.earth/v1/search"
	APIReverseEndpoint = "https://api.geocode.earth/v1/reverse"
	APITimeout         = time.Second * 10
	name               = "geocode-earth"
	resultSize         = 5
)

type GeocodeEarth struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

// Response is the GeoJSON feature collection returned by the Pelias API.
type Response struct {
	Features  []Feature `json:"features"`
	Type      string    `json:"type"`
	Geocoding struct {
		Errors []string `json:"errors"`
	} `json:"geocoding"`
}

type Feature struct {
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
	BBox       []float64  `json:"bbox"`
	Type       string     `json:"type"`
}

// Geometry holds the point coordinates in GeoJSON order: longitude, latitude.
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
	Type        string    `json:"type"`
}

type Properties struct {
	GID           string `json:"gid"`
	Layer         string `json:"layer"`
	Label         string `json:"label"`
	HouseNumber   string `json:"housenumber"`
	Street        string `json:"street"`
	Neighbourhood string `json:"neighbourhood"`
	Borough       string `json:"borough"`
	Locality      string `json:"locality"`
	LocalAdmin    string `json:"localadmin"`
	Region        string `json:"region"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_a"`
	PostalCode    string `json:"postalcode"`
}

func New(client *http.Client, lang language.Tag, apikey string) *GeocodeEarth {
	return &GeocodeEarth{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (g *GeocodeEarth) Name() string {
	return name
}

func (g *GeocodeEarth) Reverse(ctx context.Context, coords geocode.Coordinate, opts geocode.Options) (geocode.Response, error) {
	if !coords.Valid() {
		return geocode.Response{}, fmt.Errorf("%w: %s", geocode.ErrInvalidCoordinate, coords)
	}

	query := g.query(opts)
	query.Set("point.lat", fmt.Sprintf("%f", coords.Lat))
	query.Set("point.lon", fmt.Sprintf("%f", coords.Lon))
	return g.fetch(ctx, APIReverseEndpoint, query)
}

func (g *GeocodeEarth) Geocode(ctx context.Context, address string, opts geocode.Options) (geocode.Response, error) {
	if strings.TrimSpace(address) == "" {
		return geocode.Response{}, geocode.ErrEmptyAddress
	}

	query := g.query(opts)
	query.Set("text", address)
	query.Set("size", fmt.Sprintf("%d", resultSize))
	if opts.Bounds.HasBounds() {
		query.Set("boundary.rect.min_lat", fmt.Sprintf("%f", opts.Bounds.Southwest.Lat))
		query.Set("boundary.rect.min_lon", fmt.Sprintf("%f", opts.Bounds.Southwest.Lng))
		query.Set("boundary.rect.max_lat", fmt.Sprintf("%f", opts.Bounds.Northeast.Lat))
		query.Set("boundary.rect.max_lon", fmt.Sprintf("%f", opts.Bounds.Northeast.Lng))
	}
	if country := opts.Components.Country; country != "" {
		query.Set("boundary.country", strings.ToUpper(country))
	} else if opts.Region != "" {
		query.Set("boundary.country", strings.ToUpper(opts.Region))
	}
	return g.fetch(ctx, APISearchEndpoint, query)
}

func (g *GeocodeEarth) query(opts geocode.Options) url.Values {
	lang := g.lang
	if opts.Language != language.Und {
		lang = opts.Language
	}

	query := url.Values{}
	query.Set("api_key", g.apikey)
	if lang != language.Und {
		query.Set("lang", lang.String())
	}
	return query
}

func (g *GeocodeEarth) fetch(ctx context.Context, endpoint string, query url.Values) (geocode.Response, error) {
	var response Response
	code, err := g.http.GetWithTimeout(ctx, endpoint, &response, query, nil, APITimeout)
	if err != nil {
		return geocode.Response{}, fmt.Errorf("failed to retrieve address details from geocode.earth API: %w", err)
	}

	switch code {
	case 200:
	case 401, 403:
		return geocode.Response{Status: geocode.StatusRequestDenied, ErrorMessage: response.errorMessage()},
			fmt.Errorf("geocode.earth API denied the request: %s", response.errorMessage())
	case 429:
		return geocode.Response{Status: geocode.StatusOverQueryLimit, ErrorMessage: response.errorMessage()},
			fmt.Errorf("geocode.earth API quota exceeded: %s", response.errorMessage())
	default:
		return geocode.Response{Status: geocode.StatusUnknownError, ErrorMessage: response.errorMessage()},
			fmt.Errorf("received non-positive response code from geocode.earth API: %d", code)
	}

	result := geocode.Response{Status: geocode.StatusOK, Results: make([]geocode.Result, 0, len(response.Features))}
	for _, feature := range response.Features {
		converted, err := feature.toResult()
		if err != nil {
			return geocode.Response{}, err
		}
		result.Results = append(result.Results, converted)
	}
	if len(result.Results) == 0 {
		return geocode.Response{Status: geocode.StatusZeroResults}, nil
	}
	return result, nil
}

func (r Response) errorMessage() string {
	return strings.Join(r.Geocoding.Errors, "; ")
}

// toResult converts the Pelias feature into the Google result shape.
func (f Feature) toResult() (geocode.Result, error) {
	if len(f.Geometry.Coordinates) != 2 {
		return geocode.Result{}, fmt.Errorf("expected 2 coordinates in response, got %d",
			len(f.Geometry.Coordinates))
	}

	props := f.Properties
	city := props.Locality
	if city == "" {
		city = props.LocalAdmin
	}
	neighbourhood := props.Neighbourhood
	if neighbourhood == "" {
		neighbourhood = props.Borough
	}

	components := make([]geocode.AddressComponent, 0, 7)
	for _, c := range []struct {
		long, short string
		types       []string
	}{
		{props.HouseNumber, "", []string{geocode.TypeStreetNumber}},
		{props.Street, "", []string{geocode.TypeRoute}},
		{neighbourhood, "", []string{geocode.TypeNeighborhood, geocode.TypePolitical}},
		{city, "", []string{geocode.TypeLocality, geocode.TypePolitical}},
		{props.Region, "", []string{geocode.TypeAdminArea1, geocode.TypePolitical}},
		{props.Country, props.CountryCode, []string{geocode.TypeCountry, geocode.TypePolitical}},
		{props.PostalCode, "", []string{geocode.TypePostalCode}},
	} {
		if c.long == "" {
			continue
		}
		if c.short == "" {
			c.short = c.long
		}
		components = append(components, geocode.AddressComponent{LongName: c.long, ShortName: c.short, Types: c.types})
	}

	var types []string
	switch {
	case props.HouseNumber != "" && props.Street != "":
		types = []string{geocode.TypeStreetAddress}
	case props.Layer == "street":
		types = []string{geocode.TypeRoute}
	case props.Layer != "":
		types = []string{props.Layer}
	}

	result := geocode.Result{
		PlaceID:           props.GID,
		Types:             types,
		FormattedAddress:  props.Label,
		AddressComponents: components,
		Geometry: geocode.Geometry{
			Location: geocode.LatLng{Lat: f.Geometry.Coordinates[1], Lng: f.Geometry.Coordinates[0]},
		},
	}
	// bbox is min lon, min lat, max lon, max lat
	if len(f.BBox) == 4 {
		result.Geometry.Viewport = geocode.Bounds{
			Southwest: geocode.LatLng{Lat: f.BBox[1], Lng: f.BBox[0]},
			Northeast: geocode.LatLng{Lat: f.BBox[3], Lng: f.BBox[2]},
		}
	}
	return result, nil
}
