// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package google

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/addressparts/internal/geocode"
	"github.com/wneessen/addressparts/internal/http"
)

const (
	APIEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	APITimeout  = time.Second * 10
	name        = "google"
)

var (
	ErrRequestDenied  = errors.New("google geocoding API denied the request")
	ErrInvalidRequest = errors.New("google geocoding API rejected the request as invalid")
	ErrOverQueryLimit = errors.New("google geocoding API quota exceeded")
	ErrUnknown        = errors.New("google geocoding API failed with an unknown error")
)

type Google struct {
	apikey   string
	endpoint string
	http     *http.Client
	lang     language.Tag
}

func New(client *http.Client, lang language.Tag, apikey string) *Google {
	return &Google{
		apikey:   apikey,
		endpoint: APIEndpoint,
		lang:     lang,
		http:     client,
	}
}

func (g *Google) Name() string {
	return name
}

func (g *Google) Geocode(ctx context.Context, address string, opts geocode.Options) (geocode.Response, error) {
	if strings.TrimSpace(address) == "" && opts.Components.IsEmpty() {
		return geocode.Response{}, geocode.ErrEmptyAddress
	}

	query := g.query(opts)
	if strings.TrimSpace(address) != "" {
		query.Set("address", address)
	}
	if opts.Bounds.HasBounds() {
		query.Set("bounds", opts.Bounds.QueryString())
	}
	if !opts.Components.IsEmpty() {
		query.Set("components", opts.Components.QueryString())
	}

	return g.fetch(ctx, query)
}

func (g *Google) Reverse(ctx context.Context, coords geocode.Coordinate, opts geocode.Options) (geocode.Response, error) {
	if !coords.Valid() {
		return geocode.Response{}, fmt.Errorf("%w: %s", geocode.ErrInvalidCoordinate, coords)
	}

	query := g.query(opts)
	query.Set("latlng", coords.String())

	return g.fetch(ctx, query)
}

func (g *Google) query(opts geocode.Options) url.Values {
	query := url.Values{}
	query.Set("key", g.apikey)

	lang := g.lang
	if opts.Language != language.Und {
		lang = opts.Language
	}
	if lang != language.Und {
		query.Set("language", lang.String())
	}
	if opts.Region != "" {
		query.Set("region", strings.ToLower(opts.Region))
	}
	return query
}

func (g *Google) fetch(ctx context.Context, query url.Values) (geocode.Response, error) {
	var response geocode.Response

	code, err := g.http.GetWithTimeout(ctx, g.endpoint, &response, query, nil, APITimeout)
	if err != nil {
		return geocode.Response{}, fmt.Errorf("failed to retrieve geocoding results from Google API: %w", err)
	}

	switch response.Status {
	case geocode.StatusOK, geocode.StatusZeroResults:
		return response, nil
	case geocode.StatusRequestDenied:
		return response, statusError(ErrRequestDenied, response)
	case geocode.StatusInvalidRequest:
		return response, statusError(ErrInvalidRequest, response)
	case geocode.StatusOverQueryLimit, geocode.StatusOverDailyLimit:
		return response, statusError(ErrOverQueryLimit, response)
	case geocode.StatusUnknownError:
		return response, statusError(ErrUnknown, response)
	default:
		return response, fmt.Errorf("unexpected response from Google API (HTTP %d): status %q", code,
			response.Status)
	}
}

func statusError(err error, response geocode.Response) error {
	if response.ErrorMessage == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, response.ErrorMessage)
}
