// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package addressparts decomposes a geocoded street address into normalized address parts.
package addressparts

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wneessen/addressparts/internal/geocode"
)

// Parts holds the normalized parts of a street address.
//
// For a route "Calle 10" and a street number "28-29", AddressLiteral1 is "Calle",
// AddressNumber1 is "10", AddressNumber2 is the shared prefix "2" of the number range
// and AddressNumber3 the half distance "0.5" between both ends of the range.
type Parts struct {
	AddressLiteral1 string `json:"address_literal1"`
	AddressNumber1  string `json:"address_number1"`
	AddressNumber2  string `json:"address_number2"`
	AddressNumber3  string `json:"address_number3"`
	City            string `json:"city"`
	State           string `json:"state"`
	Country         string `json:"country"`
	Neighbourhood   string `json:"neighbourhood"`
	ZipCode         string `json:"zip_code"`
}

// ExtractFirst returns the parts of the first result tagged as street address. The bool is
// false if the response is nil, not successful or has no such result with address components.
func ExtractFirst(resp *geocode.Response) (Parts, bool) {
	if !resp.OK() {
		return Parts{}, false
	}

	var result *geocode.Result
	for i := range resp.Results {
		if resp.Results[i].HasType(geocode.TypeStreetAddress) {
			result = &resp.Results[i]
			break
		}
	}
	if result == nil || len(result.AddressComponents) == 0 {
		return Parts{}, false
	}

	components := result.AddressComponents
	parts := Parts{
		City:          componentValue(components, geocode.TypeLocality),
		State:         componentValue(components, geocode.TypeAdminArea1),
		Country:       componentValue(components, geocode.TypeCountry),
		Neighbourhood: componentValue(components, geocode.TypeNeighborhood),
		ZipCode:       componentValue(components, geocode.TypePostalCode),
	}
	parts.AddressLiteral1, parts.AddressNumber1 = splitAt(componentValue(components, geocode.TypeRoute), " ")
	parts.AddressNumber2, parts.AddressNumber3 = splitAt(componentValue(components, geocode.TypeStreetNumber), "-")
	parts.AddressNumber2, parts.AddressNumber3 = normalizeRange(parts.AddressNumber2, parts.AddressNumber3)

	return parts, true
}

// componentValue returns the trimmed long name of the first component tagged with typ.
func componentValue(components []geocode.AddressComponent, typ string) string {
	for _, component := range components {
		if component.HasType(typ) {
			return strings.TrimSpace(component.LongName)
		}
	}
	return ""
}

// splitAt splits value at the first occurrence of sep. A separator at the very start does
// not count, the whole value is returned as head in that case.
func splitAt(value, sep string) (head, tail string) {
	if strings.TrimSpace(value) == "" {
		return "", ""
	}
	idx := strings.Index(value, sep)
	if idx <= 0 {
		return strings.TrimSpace(value), ""
	}
	return strings.TrimSpace(value[:idx]), strings.TrimSpace(value[idx+len(sep):])
}

// normalizeRange turns a number range like "28-29" into the shared prefix of both ends and
// half the distance between the remaining digits ("2" and "0.5"). The values are returned
// unchanged if they do not share a prefix or the remainders are not integers.
func normalizeRange(from, to string) (string, string) {
	fromLen, toLen := utf8.RuneCountInString(from), utf8.RuneCountInString(to)
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" || fromLen <= 1 || fromLen > toLen {
		return from, to
	}

	// Byte offset of the shared prefix
	common := 0
	for common < len(from) && common < len(to) {
		fr, fsize := utf8.DecodeRuneInString(from[common:])
		tr, tsize := utf8.DecodeRuneInString(to[common:])
		if fr != tr || fsize != tsize {
			break
		}
		common += fsize
	}
	if common == 0 {
		return from, to
	}

	start, err := parseInt(from[common:])
	if err != nil {
		return from, to
	}
	end, err := parseInt(to[common:])
	if err != nil {
		return from, to
	}

	return from[:common], formatHalfDistance(start, end)
}

// parseInt accepts the same input as a 32-bit base-10 integer parse that tolerates
// surrounding whitespace and a leading sign.
func parseInt(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 32)
}

// formatHalfDistance always renders exactly one decimal place, e.g. "0.5" or "1.0".
func formatHalfDistance(start, end int64) string {
	return strconv.FormatFloat(math.Abs(float64(end-start)*0.5), 'f', 1, 64)
}
