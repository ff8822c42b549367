// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Xuanwo/go-locale"
	"github.com/go-co-op/gocron/v2"
	"github.com/go-redis/redis/v8"
	"golang.org/x/text/language"

	"github.com/wneessen/addressparts/internal/addressparts"
	"github.com/wneessen/addressparts/internal/config"
	"github.com/wneessen/addressparts/internal/geocode"
	"github.com/wneessen/addressparts/internal/logger"
)

const cachePurgeJob = "geocoder_cache_purge_job"

// Service resolves addresses and coordinates into address parts using the configured
// geocoding provider.
type Service struct {
	config    *config.Config
	logger    *logger.Logger
	geocoder  geocode.Geocoder
	provider  string
	cache     *geocode.CachedGeocoder
	redis     *redis.Client
	scheduler gocron.Scheduler
	lang      language.Tag
}

// Result is the outcome of a single lookup.
type Result struct {
	Query    string             `json:"query"`
	Found    bool               `json:"found"`
	Provider string             `json:"provider"`
	CacheHit bool               `json:"cache_hit"`
	Parts    addressparts.Parts `json:"parts"`
}

func New(conf *config.Config, log *logger.Logger) (*Service, error) {
	lang := resolveLanguage(conf.Locale)
	provider, err := selectGeocodeProvider(conf, log, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoder: %w", err)
	}
	return newWithGeocoder(conf, log, provider, lang)
}

func newWithGeocoder(conf *config.Config, log *logger.Logger, provider geocode.Geocoder, lang language.Tag) (*Service, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		geocoder:  provider,
		provider:  provider.Name(),
		scheduler: scheduler,
		lang:      lang,
	}
	switch {
	case conf.Cache.Disable:
	case conf.Cache.Backend == config.CacheRedis:
		service.redis = redis.NewClient(&redis.Options{
			Addr:       conf.Cache.Redis.Addr,
			Password:   conf.Cache.Redis.Password,
			DB:         conf.Cache.Redis.DB,
			MaxRetries: 3,
		})
		service.geocoder = geocode.NewRedisCachedGeocoder(provider, service.redis, log, conf.Cache.HitTTL,
			conf.Cache.MissTTL)
	default:
		service.cache = geocode.NewCachedGeocoder(provider, conf.Cache.HitTTL, conf.Cache.MissTTL)
		service.geocoder = service.cache
	}
	return service, nil
}

// Start schedules the background maintenance jobs. They run until the context is cancelled,
// which also shuts the scheduler down.
func (s *Service) Start(ctx context.Context) error {
	if s.cache != nil {
		_, err := s.scheduler.NewJob(
			gocron.DurationJob(s.config.Cache.PurgeInterval),
			gocron.NewTask(s.purgeCache),
			gocron.WithContext(ctx),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithName(cachePurgeJob),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", cachePurgeJob, err)
		}
	}
	s.scheduler.Start()

	go func() {
		<-ctx.Done()
		if err := s.scheduler.Shutdown(); err != nil {
			s.logger.Error("failed to shut down scheduler", logger.Err(err))
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				s.logger.Error("failed to close redis client", logger.Err(err))
			}
		}
	}()
	return nil
}

func (s *Service) purgeCache(ctx context.Context) {
	s.cache.Purge(ctx)
	s.logger.Debug("geocoder cache purged", slog.Int("entries", s.cache.Len()))
}

// Lookup geocodes the address and extracts the address parts of the first street address.
func (s *Service) Lookup(ctx context.Context, address string, opts geocode.Options) (Result, error) {
	opts = s.withDefaults(opts)
	resp, err := s.geocoder.Geocode(ctx, address, opts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to geocode address %q: %w", address, err)
	}
	s.logger.Debug("address geocoded", slog.String("address", address), slog.String("status", resp.Status),
		slog.Int("results", len(resp.Results)), slog.Bool("cache_hit", resp.CacheHit))
	return s.result(address, &resp), nil
}

// ReverseLookup reverse geocodes the coordinates and extracts the address parts of the first
// street address.
func (s *Service) ReverseLookup(ctx context.Context, coords geocode.Coordinate, opts geocode.Options) (Result, error) {
	opts = s.withDefaults(opts)
	resp, err := s.geocoder.Reverse(ctx, coords, opts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to reverse geocode coordinates %s: %w", coords, err)
	}
	s.logger.Debug("coordinates reverse geocoded", slog.String("coordinates", coords.String()),
		slog.String("status", resp.Status), slog.Int("results", len(resp.Results)),
		slog.Bool("cache_hit", resp.CacheHit))
	return s.result(coords.String(), &resp), nil
}

// Extract returns the address parts of an already decoded geocoding response.
func (s *Service) Extract(query string, resp *geocode.Response) Result {
	return s.result(query, resp)
}

func (s *Service) result(query string, resp *geocode.Response) Result {
	parts, found := addressparts.ExtractFirst(resp)
	if !found {
		s.logger.Debug("no street address found", slog.String("query", query))
	}
	result := Result{
		Query:    query,
		Found:    found,
		Provider: s.provider,
		Parts:    parts,
	}
	if resp != nil {
		result.CacheHit = resp.CacheHit
	}
	return result
}

func (s *Service) withDefaults(opts geocode.Options) geocode.Options {
	if opts.Language == language.Und {
		opts.Language = s.lang
	}
	if opts.Region == "" {
		opts.Region = s.config.Region
	}
	return opts
}

// resolveLanguage returns the configured language, falls back to the detected system
// locale and finally to English.
func resolveLanguage(loc string) language.Tag {
	if loc != "" {
		if tag, err := language.Parse(loc); err == nil {
			return tag
		}
	}
	tag, err := locale.Detect()
	if err != nil || tag == language.Und {
		return language.English
	}
	return tag
}
