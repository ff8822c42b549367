// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

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
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"
)

type OpenCage struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	Status       Status   `json:"status"`
	TotalResults int      `json:"total_results"`
}

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	Bounds      *Bounds    `json:"bounds"`
	Components  Components `json:"components"`
	Confidence  int        `json:"confidence"`
	DisplayName string     `json:"formatted"`
	Geometry    Geometry   `json:"geometry"`
}

type Components struct {
	Category      string `json:"_category"`
	Type          string `json:"_type"`
	NomalizedCity string `json:"_normalized_city"`
	City          string `json:"city"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
	HouseNumber   string `json:"house_number"`
	Neighbourhood string `json:"neighbourhood"`
	Postcode      string `json:"postcode"`
	Road          string `json:"road"`
	State         string `json:"state"`
	Suburb        string `json:"suburb"`
	Town          string `json:"town"`
	Village       string `json:"village"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

type Bounds struct {
	Northeast Geometry `json:"northeast"`
	Southwest Geometry `json:"southwest"`
}

func New(client *http.Client, lang language.Tag, apikey string) *OpenCage {
	return &OpenCage{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (o *OpenCage) Name() string {
	return name
}

func (o *OpenCage) Reverse(ctx context.Context, coords geocode.Coordinate, opts geocode.Options) (geocode.Response, error) {
	if !coords.Valid() {
		return geocode.Response{}, fmt.Errorf("%w: %s", geocode.ErrInvalidCoordinate, coords)
	}

	query := o.query(opts)
	query.Set("q", fmt.Sprintf("%f,%f", coords.Lat, coords.Lon))
	return o.fetch(ctx, query)
}

func (o *OpenCage) Geocode(ctx context.Context, address string, opts geocode.Options) (geocode.Response, error) {
	if strings.TrimSpace(address) == "" {
		return geocode.Response{}, geocode.ErrEmptyAddress
	}

	query := o.query(opts)
	query.Set("q", address)
	if opts.Bounds.HasBounds() {
		// OpenCage expects the bounds as min lon, min lat, max lon, max lat
		query.Set("bounds", fmt.Sprintf("%f,%f,%f,%f", opts.Bounds.Southwest.Lng, opts.Bounds.Southwest.Lat,
			opts.Bounds.Northeast.Lng, opts.Bounds.Northeast.Lat))
	}
	if country := opts.Components.Country; country != "" {
		query.Set("countrycode", strings.ToLower(country))
	} else if opts.Region != "" {
		query.Set("countrycode", strings.ToLower(opts.Region))
	}
	return o.fetch(ctx, query)
}

func (o *OpenCage) query(opts geocode.Options) url.Values {
	lang := o.lang
	if opts.Language != language.Und {
		lang = opts.Language
	}

	query := url.Values{}
	query.Set("key", o.apikey)
	query.Set("no_annotations", "1")
	query.Set("no_record", "1")
	if lang != language.Und {
		query.Set("language", lang.String())
	}
	return query
}

func (o *OpenCage) fetch(ctx context.Context, query url.Values) (geocode.Response, error) {
	var response Response
	code, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, APITimeout)
	if err != nil {
		return geocode.Response{}, fmt.Errorf("failed to retrieve address details from OpenCage API: %w", err)
	}

	switch code {
	case 200:
	case 400:
		return geocode.Response{Status: geocode.StatusInvalidRequest, ErrorMessage: response.Status.Message},
			fmt.Errorf("OpenCage API rejected the request: %s", response.Status.Message)
	case 401, 403:
		return geocode.Response{Status: geocode.StatusRequestDenied, ErrorMessage: response.Status.Message},
			fmt.Errorf("OpenCage API denied the request: %s", response.Status.Message)
	case 402, 429:
		return geocode.Response{Status: geocode.StatusOverQueryLimit, ErrorMessage: response.Status.Message},
			fmt.Errorf("OpenCage API quota exceeded: %s", response.Status.Message)
	default:
		return geocode.Response{Status: geocode.StatusUnknownError, ErrorMessage: response.Status.Message},
			fmt.Errorf("received non-positive response code from OpenCage API: %d", code)
	}

	if response.TotalResults == 0 || len(response.Results) == 0 {
		return geocode.Response{Status: geocode.StatusZeroResults}, nil
	}
	result := geocode.Response{Status: geocode.StatusOK, Results: make([]geocode.Result, 0, len(response.Results))}
	for _, r := range response.Results {
		result.Results = append(result.Results, r.toResult())
	}
	return result, nil
}

// toResult converts the OpenCage result into the Google result shape.
func (r Result) toResult() geocode.Result {
	comp := r.Components
	city := comp.NomalizedCity
	if city == "" {
		city = comp.City
	}
	if comp.Town != "" {
		city = comp.Town
	}
	if comp.Village != "" {
		city = comp.Village
	}
	neighbourhood := comp.Neighbourhood
	if neighbourhood == "" {
		neighbourhood = comp.Suburb
	}

	components := make([]geocode.AddressComponent, 0, 7)
	for _, c := range []struct {
		long, short string
		types       []string
	}{
		{comp.HouseNumber, "", []string{geocode.TypeStreetNumber}},
		{comp.Road, "", []string{geocode.TypeRoute}},
		{neighbourhood, "", []string{geocode.TypeNeighborhood, geocode.TypePolitical}},
		{city, "", []string{geocode.TypeLocality, geocode.TypePolitical}},
		{comp.State, "", []string{geocode.TypeAdminArea1, geocode.TypePolitical}},
		{comp.Country, strings.ToUpper(comp.CountryCode), []string{geocode.TypeCountry, geocode.TypePolitical}},
		{comp.Postcode, "", []string{geocode.TypePostalCode}},
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
	case comp.HouseNumber != "" && comp.Road != "":
		types = []string{geocode.TypeStreetAddress}
	case comp.Type == "road":
		types = []string{geocode.TypeRoute}
	case comp.Type != "":
		types = []string{comp.Type}
	}

	result := geocode.Result{
		Types:             types,
		FormattedAddress:  r.DisplayName,
		AddressComponents: components,
		Geometry: geocode.Geometry{
			Location: geocode.LatLng{Lat: r.Geometry.Lat, Lng: r.Geometry.Lon},
		},
	}
	if r.Bounds != nil {
		result.Geometry.Viewport = geocode.Bounds{
			Southwest: geocode.LatLng{Lat: r.Bounds.Southwest.Lat, Lng: r.Bounds.Southwest.Lon},
			Northeast: geocode.LatLng{Lat: r.Bounds.Northeast.Lat, Lng: r.Bounds.Northeast.Lon},
		}
	}
	return result
}
