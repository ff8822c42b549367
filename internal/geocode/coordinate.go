// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate represents a geographic coordinate in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// ParseCoordinate parses a "lat,lon" string into a Coordinate.
func ParseCoordinate(value string) (Coordinate, error) {
	latStr, lonStr, ok := strings.Cut(value, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected format lat,lon", value)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to parse longitude: %w", err)
	}
	coords := Coordinate{Lat: lat, Lon: lon}
	if !coords.Valid() {
		return coords, fmt.Errorf("%w: %s", ErrInvalidCoordinate, coords)
	}
	return coords, nil
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// String returns the coordinate in the "lat,lon" notation the geocoding APIs expect.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}
