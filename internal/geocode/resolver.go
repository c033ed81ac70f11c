package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/ideiamap/internal/clients"
	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/monitoring"
)

const (
	DEFAULT_CITY    = "Florianópolis"
	DEFAULT_REGION  = "Santa Catarina"
	DEFAULT_COUNTRY = "Brasil"
	DEFAULT_BACKOFF = 1 * time.Second
	// A timed out lookup is retried once, never more.
	MAX_TIMEOUT_RETRIES = 1
)

const (
	outcomeResolved  = "resolved"
	outcomeNotFound  = "not_found"
	outcomeFailed    = "failed"
	outcomeTimeout   = "timeout"
	outcomeCancelled = "cancelled"
)

// Geocoder is the external address resolution capability.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.GeoPoint, error)
}

var _ Geocoder = (*clients.NominatimClient)(nil)

type Options struct {
	City    string
	Region  string
	Country string
	Backoff time.Duration
}

type Resolver struct {
	geocoder Geocoder
	cache    Cache
	opts     Options
	sleep    func(context.Context, time.Duration)
}

func NewResolver(geocoder Geocoder, cache Cache, opts Options) *Resolver {
	if opts.City == "" {
		opts.City = DEFAULT_CITY
	}
	if opts.Region == "" {
		opts.Region = DEFAULT_REGION
	}
	if opts.Country == "" {
		opts.Country = DEFAULT_COUNTRY
	}
	if opts.Backoff == 0 {
		opts.Backoff = DEFAULT_BACKOFF
	}
	if cache == nil {
		cache = NewMemoryCache()
	}

	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		opts:     opts,
		sleep:    sleepContext,
	}
}

// Query builds "<neighborhood>, <city>, <region>, <country>".
func (r *Resolver) Query(neighborhood string) string {
	return fmt.Sprintf("%s, %s, %s, %s", neighborhood, r.opts.City, r.opts.Region, r.opts.Country)
}

// Resolve returns the coordinates of a neighborhood, or an absent point when
// it cannot be found. Definitive answers go to every cache tier. Degraded
// outcomes stay in process, and a lookup abandoned by the caller's context
// is not cached at all.
func (r *Resolver) Resolve(ctx context.Context, neighborhood string) models.GeoPoint {
	key := CacheKey(neighborhood)
	if point, ok := r.cache.Get(ctx, key); ok {
		monitoring.GeocodeCacheTotal.WithLabelValues("hit").Inc()
		slog.Debug("[GeocodeResolver] Cache hit", slog.String("neighborhood", neighborhood))
		return point
	}
	monitoring.GeocodeCacheTotal.WithLabelValues("miss").Inc()

	point, outcome := r.lookup(ctx, neighborhood)
	switch outcome {
	case outcomeResolved, outcomeNotFound:
		r.cache.Set(ctx, key, point)
	case outcomeFailed, outcomeTimeout:
		r.cache.SetLocal(ctx, key, point)
	}
	return point
}

func (r *Resolver) lookup(ctx context.Context, neighborhood string) (models.GeoPoint, string) {
	query := r.Query(neighborhood)
	start := time.Now()

	for attempt := 0; attempt <= MAX_TIMEOUT_RETRIES; attempt++ {
		if attempt > 0 {
			r.sleep(ctx, r.opts.Backoff)
		}

		point, err := r.geocoder.Geocode(ctx, query)
		if err == nil {
			outcome := outcomeResolved
			if !point.Valid {
				outcome = outcomeNotFound
			}
			monitoring.GeocodeLookupsTotal.WithLabelValues(outcome).Inc()
			slog.Info("[GeocodeResolver] Lookup finished",
				slog.String("neighborhood", neighborhood),
				slog.String("outcome", outcome),
				slog.Duration("elapsed", time.Since(start)))
			return point, outcome
		}

		if abandoned(ctx, err) {
			monitoring.GeocodeLookupsTotal.WithLabelValues(outcomeCancelled).Inc()
			slog.Debug("[GeocodeResolver] Lookup abandoned",
				slog.String("neighborhood", neighborhood),
				slog.String("error", err.Error()))
			return models.AbsentGeoPoint(), outcomeCancelled
		}

		if !clients.IsTimeout(err) {
			monitoring.GeocodeLookupsTotal.WithLabelValues(outcomeFailed).Inc()
			slog.Warn("[GeocodeResolver] Lookup failed",
				slog.String("neighborhood", neighborhood),
				slog.String("error", err.Error()))
			return models.AbsentGeoPoint(), outcomeFailed
		}

		slog.Warn("[GeocodeResolver] Lookup timed out",
			slog.String("neighborhood", neighborhood),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}

	monitoring.GeocodeLookupsTotal.WithLabelValues(outcomeTimeout).Inc()
	return models.AbsentGeoPoint(), outcomeTimeout
}

// abandoned reports whether a lookup failed because of the caller rather
// than the geocoder.
func abandoned(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, clients.ErrGeocodeCancelled) ||
		errors.Is(err, context.Canceled)
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
