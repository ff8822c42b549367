// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Options are the optional request parameters of a geocoding lookup. Providers ignore the
// options their API does not support.
type Options struct {
	// Language of the returned results. language.Und selects the provider default.
	Language language.Tag
	// Region is a ccTLD region code used to bias the results.
	Region string
	// Bounds biases the results towards the given viewport.
	Bounds *Bounds
	// Components restricts the results to the given components.
	Components ComponentFilter
}

// Bounds is a rectangular viewport given by its south-west and north-east corners.
type Bounds struct {
	Southwest LatLng `json:"southwest"`
	Northeast LatLng `json:"northeast"`
}

// ComponentFilter restricts a geocoding lookup to results matching all non-empty fields.
type ComponentFilter struct {
	Route              string
	Locality           string
	AdministrativeArea string
	PostalCode         string
	Country            string
}

// ParseBounds parses a "swlat,swlng|nelat,nelng" string into Bounds.
func ParseBounds(value string) (*Bounds, error) {
	sw, ne, ok := strings.Cut(value, "|")
	if !ok {
		return nil, fmt.Errorf("invalid bounds %q: expected format swlat,swlng|nelat,nelng", value)
	}
	swCoords, err := ParseCoordinate(sw)
	if err != nil {
		return nil, fmt.Errorf("invalid south-west corner: %w", err)
	}
	neCoords, err := ParseCoordinate(ne)
	if err != nil {
		return nil, fmt.Errorf("invalid north-east corner: %w", err)
	}
	return &Bounds{
		Southwest: LatLng{Lat: swCoords.Lat, Lng: swCoords.Lon},
		Northeast: LatLng{Lat: neCoords.Lat, Lng: neCoords.Lon},
	}, nil
}

// HasBounds reports whether any corner of the viewport is set.
func (b *Bounds) HasBounds() bool {
	if b == nil {
		return false
	}
	return b.Southwest != (LatLng{}) || b.Northeast != (LatLng{})
}

// QueryString returns the bounds in the "swlat,swlng|nelat,nelng" notation.
func (b *Bounds) QueryString() string {
	if !b.HasBounds() {
		return ""
	}
	return formatLatLng(b.Southwest) + "|" + formatLatLng(b.Northeast)
}

// Set assigns value to the field named by key. Keys use the API names, e.g.
// "administrative_area" or "postal_code".
func (f *ComponentFilter) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "route":
		f.Route = value
	case "locality":
		f.Locality = value
	case "administrative_area":
		f.AdministrativeArea = value
	case "postal_code":
		f.PostalCode = value
	case "country":
		f.Country = value
	default:
		return fmt.Errorf("unsupported component filter: %q", key)
	}
	return nil
}

// IsEmpty reports whether no filter field is set.
func (f ComponentFilter) IsEmpty() bool {
	return f == ComponentFilter{}
}

// QueryString returns the filter in the "key:value|key:value" notation.
func (f ComponentFilter) QueryString() string {
	fields := []struct{ key, value string }{
		{"route", f.Route},
		{"locality", f.Locality},
		{"administrative_area", f.AdministrativeArea},
		{"postal_code", f.PostalCode},
		{"country", f.Country},
	}
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		parts = append(parts, field.key+":"+field.value)
	}
	return strings.Join(parts, "|")
}

// String returns a stable representation of the options, suitable as part of a cache key.
func (o Options) String() string {
	return strings.Join([]string{
		o.Language.String(),
		strings.ToLower(o.Region),
		o.Bounds.QueryString(),
		o.Components.QueryString(),
	}, ";")
}

func formatLatLng(l LatLng) string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}
