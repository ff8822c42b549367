// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/wneessen/addressparts/internal/config"
	"github.com/wneessen/addressparts/internal/geocode"
	geocodeearth "github.com/wneessen/addressparts/internal/geocode/provider/geocode-earth"
	"github.com/wneessen/addressparts/internal/geocode/provider/google"
	"github.com/wneessen/addressparts/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/addressparts/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/addressparts/internal/http"
	"github.com/wneessen/addressparts/internal/logger"
)

func selectGeocodeProvider(conf *config.Config, log *logger.Logger, lang language.Tag) (geocode.Geocoder, error) {
	var geocoder geocode.Geocoder

	switch strings.ToLower(conf.GeoCoder.Provider) {
	case config.ProviderGoogle:
		if conf.GeoCoder.APIKey == "" {
			return nil, fmt.Errorf("google geocoder requires an API key")
		}
		geocoder = google.New(http.New(log), lang, conf.GeoCoder.APIKey)
	case config.ProviderNominatim:
		geocoder = nominatim.New(http.New(log), lang)
	case config.ProviderOpenCage:
		if conf.GeoCoder.APIKey == "" {
			return nil, fmt.Errorf("opencage geocoder requires an API key")
		}
		geocoder = opencage.New(http.New(log), lang, conf.GeoCoder.APIKey)
	case config.ProviderGeocodeEarth:
		if conf.GeoCoder.APIKey == "" {
			return nil, fmt.Errorf("geocode.earth geocoder requires an API key")
		}
		geocoder = geocodeearth.New(http.New(log), lang, conf.GeoCoder.APIKey)
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.GeoCoder.Provider)
	}

	return geocoder, nil
}
