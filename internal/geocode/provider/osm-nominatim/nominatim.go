// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/addressparts/internal/geocode"
	"github.com/wneessen/addressparts/internal/http"
)

const (
	APISearchEndpoint  = "https://nominatim.openstreetmap.org/search"
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	APITimeout         = time.Second * 10
	name               = "osm-nominatim"
	searchLimit        = 5
)

type Nominatim struct {
	http *http.Client
	lang language.Tag
}

// Place is a single Nominatim result in jsonv2 format with address details.
type Place struct {
	PlaceID     int64    `json:"place_id"`
	APILat      string   `json:"lat"`
	APILon      string   `json:"lon"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	AddressType string   `json:"addresstype"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Address     Address  `json:"address"`
	BoundingBox []string `json:"boundingbox"`
	Error       string   `json:"error"`
}

type Address struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Quarter       string `json:"quarter"`
	Suburb        string `json:"suburb"`
	CityDistrict  string `json:"city_district"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
}

func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang: lang,
		http: client,
	}
}

func (n *Nominatim) Name() string {
	return name
}

func (n *Nominatim) Reverse(ctx context.Context, coords geocode.Coordinate, opts geocode.Options) (geocode.Response, error) {
	if !coords.Valid() {
		return geocode.Response{}, fmt.Errorf("%w: %s", geocode.ErrInvalidCoordinate, coords)
	}

	var place Place
	query := n.query(opts)
	query.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))

	if _, err := n.http.GetWithTimeout(ctx, APIReverseEndpoint, &place, query, nil, APITimeout); err != nil {
		return geocode.Response{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}

	// Nominatim answers coordinates without a match with an error object
	if place.Error != "" {
		return geocode.Response{Status: geocode.StatusZeroResults}, nil
	}
	result, err := place.toResult()
	if err != nil {
		return geocode.Response{}, err
	}

	return geocode.Response{Status: geocode.StatusOK, Results: []geocode.Result{result}}, nil
}

func (n *Nominatim) Geocode(ctx context.Context, address string, opts geocode.Options) (geocode.Response, error) {
	if strings.TrimSpace(address) == "" {
		return geocode.Response{}, geocode.ErrEmptyAddress
	}

	var places []Place
	query := n.query(opts)
	query.Set("q", address)
	query.Set("limit", strconv.Itoa(searchLimit))
	if opts.Bounds.HasBounds() {
		// Nominatim expects the viewbox as <x1>,<y1>,<x2>,<y2>
		query.Set("viewbox", fmt.Sprintf("%s,%s,%s,%s",
			strconv.FormatFloat(opts.Bounds.Southwest.Lng, 'f', -1, 64),
			strconv.FormatFloat(opts.Bounds.Southwest.Lat, 'f', -1, 64),
			strconv.FormatFloat(opts.Bounds.Northeast.Lng, 'f', -1, 64),
			strconv.FormatFloat(opts.Bounds.Northeast.Lat, 'f', -1, 64)))
	}
	if country := opts.Components.Country; country != "" {
		query.Set("countrycodes", strings.ToLower(country))
	} else if opts.Region != "" {
		query.Set("countrycodes", strings.ToLower(opts.Region))
	}

	if _, err := n.http.GetWithTimeout(ctx, APISearchEndpoint, &places, query, nil, APITimeout); err != nil {
		return geocode.Response{}, fmt.Errorf("failed to fetch address details from Nominatim API: %w", err)
	}
	if len(places) < 1 {
		return geocode.Response{Status: geocode.StatusZeroResults}, nil
	}

	response := geocode.Response{Status: geocode.StatusOK, Results: make([]geocode.Result, 0, len(places))}
	for _, place := range places {
		result, err := place.toResult()
		if err != nil {
			return geocode.Response{}, err
		}
		response.Results = append(response.Results, result)
	}

	return response, nil
}

func (n *Nominatim) query(opts geocode.Options) url.Values {
	lang := n.lang
	if opts.Language != language.Und {
		lang = opts.Language
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("addressdetails", "1")
	if lang != language.Und {
		query.Set("accept-language", lang.String())
	}
	return query
}

// toResult converts the place into the Google result shape. A place with a road and a
// house number is tagged as street address.
func (p Place) toResult() (geocode.Result, error) {
	lat, err := strconv.ParseFloat(p.APILat, 64)
	if err != nil {
		return geocode.Result{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	lon, err := strconv.ParseFloat(p.APILon, 64)
	if err != nil {
		return geocode.Result{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	addr := p.Address
	city := addr.City
	if city == "" && addr.Town != "" {
		city = addr.Town
	}
	if city == "" && addr.Town == "" && addr.Village != "" {
		city = addr.Village
	}
	neighbourhood := addr.Neighbourhood
	if neighbourhood == "" {
		neighbourhood = addr.Suburb
	}

	var components []geocode.AddressComponent
	add := func(value, short string, types ...string) {
		if value == "" {
			return
		}
		if short == "" {
			short = value
		}
		components = append(components, geocode.AddressComponent{LongName: value, ShortName: short, Types: types})
	}
	add(addr.HouseNumber, "", geocode.TypeStreetNumber)
	add(addr.Road, "", geocode.TypeRoute)
	add(neighbourhood, "", geocode.TypeNeighborhood, geocode.TypePolitical)
	add(city, "", geocode.TypeLocality, geocode.TypePolitical)
	add(addr.State, "", geocode.TypeAdminArea1, geocode.TypePolitical)
	add(addr.Country, strings.ToUpper(addr.CountryCode), geocode.TypeCountry, geocode.TypePolitical)
	add(addr.Postcode, "", geocode.TypePostalCode)

	resultType := p.AddressType
	switch {
	case addr.HouseNumber != "" && addr.Road != "":
		resultType = geocode.TypeStreetAddress
	case addr.Road != "" && (resultType == "" || resultType == "road"):
		resultType = geocode.TypeRoute
	}

	result := geocode.Result{
		PlaceID:           "osm-" + strconv.FormatInt(p.PlaceID, 10),
		FormattedAddress:  p.DisplayName,
		AddressComponents: components,
		Geometry: geocode.Geometry{
			Location: geocode.LatLng{Lat: lat, Lng: lon},
		},
	}
	if resultType != "" {
		result.Types = []string{resultType}
	}
	if viewport, ok := parseBoundingBox(p.BoundingBox); ok {
		result.Geometry.Viewport = viewport
	}

	return result, nil
}

// parseBoundingBox converts a Nominatim bounding box (south, north, west, east) into Bounds.
func parseBoundingBox(box []string) (geocode.Bounds, bool) {
	if len(box) != 4 {
		return geocode.Bounds{}, false
	}
	values := make([]float64, 4)
	for i, raw := range box {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return geocode.Bounds{}, false
		}
		values[i] = val
	}
	return geocode.Bounds{
		Southwest: geocode.LatLng{Lat: values[0], Lng: values[2]},
		Northeast: geocode.LatLng{Lat: values[1], Lng: values[3]},
	}, true
}
