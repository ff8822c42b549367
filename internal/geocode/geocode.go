// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode defines the geocoding response model shared by all providers and a
// caching decorator for them.
package geocode

import (
	"context"
	"errors"
)

// Response status values as returned by the Google Geocoding API. The other providers
// report their results using the same vocabulary.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusOverDailyLimit = "OVER_DAILY_LIMIT"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusInvalidRequest = "INVALID_REQUEST"
	StatusUnknownError   = "UNKNOWN_ERROR"
)

// Type tags used on results and address components.
const (
	TypeStreetAddress = "street_address"
	TypeStreetNumber  = "street_number"
	TypeRoute         = "route"
	TypeLocality      = "locality"
	TypeAdminArea1    = "administrative_area_level_1"
	TypeCountry       = "country"
	TypePostalCode    = "postal_code"
	TypeNeighborhood  = "neighborhood"
	TypeSublocality   = "sublocality"
	TypePolitical     = "political"
)

var (
	ErrEmptyAddress      = errors.New("address must not be empty")
	ErrInvalidCoordinate = errors.New("coordinate is out of range")
)

// Response is a decoded geocoding response. It is treated as read-only once received.
type Response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      []Result `json:"results"`

	CacheHit bool `json:"-"`
}

// Result is a single entry of a geocoding response.
type Result struct {
	PlaceID           string             `json:"place_id"`
	Types             []string           `json:"types"`
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []AddressComponent `json:"address_components"`
	Geometry          Geometry           `json:"geometry"`
	PartialMatch      bool               `json:"partial_match,omitempty"`
}

// AddressComponent is one named part of a result's address, e.g. the route or the locality.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type Geometry struct {
	Location     LatLng  `json:"location"`
	LocationType string  `json:"location_type,omitempty"`
	Viewport     Bounds  `json:"viewport"`
	Bounds       *Bounds `json:"bounds,omitempty"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocoder is implemented by every geocoding provider.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, address string, opts Options) (Response, error)
	Reverse(ctx context.Context, coords Coordinate, opts Options) (Response, error)
}

// OK reports whether the response carries the success status.
func (r *Response) OK() bool {
	return r != nil && r.Status == StatusOK
}

// HasType reports whether the result is tagged with typ.
func (r Result) HasType(typ string) bool {
	return containsType(r.Types, typ)
}

// HasType reports whether the component is tagged with typ.
func (c AddressComponent) HasType(typ string) bool {
	return containsType(c.Types, typ)
}

func containsType(types []string, typ string) bool {
	for _, t := range types {
		if t == typ {
			return true
		}
	}
	return false
}
