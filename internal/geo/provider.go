// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/ritualboard/internal/cache"
	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/models"
)

// ErrLookupUnavailable is returned when a lookup was not attempted: the
// address is private or invalid, the budget is spent or the breaker is open.
var ErrLookupUnavailable = errors.New("geo: lookup unavailable")

// errLookupFailed marks an answer from the service that carried no location.
// It does not count against the circuit breaker.
var errLookupFailed = errors.New("geo: lookup failed")

// SourceIPAPI is the Location.Source of locations resolved by IPAPIProvider.
const SourceIPAPI = "ip-api"

const breakerName = "ip-api"

// Provider looks up the location of a client IP address.
type Provider interface {
	Lookup(ctx context.Context, ip string) (models.Location, error)
	Name() string
}

type ipAPIResponse struct {
	Status      string `json:"status"` // "success" or "fail"
	Message     string `json:"message"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
	City        string `json:"city"`
}

// IPAPIProvider implements Provider using the free ip-api.com service.
type IPAPIProvider struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*ipAPIResponse]
	cache   *cache.LRU[models.Location]
}

// NewIPAPIProvider creates a provider from the geoip configuration.
func NewIPAPIProvider(cfg config.GeoIPConfig) *IPAPIProvider {
	perMinute := cfg.IPLookupsPerMinute
	if perMinute < 1 {
		perMinute = 45
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	log := logging.WithComponent("geo")

	return &IPAPIProvider{
		client:  &http.Client{Timeout: cfg.IPLookupTimeout},
		baseURL: strings.TrimRight(cfg.IPLookupURL, "/"),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		breaker: gobreaker.NewCircuitBreaker[*ipAPIResponse](gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errLookupFailed)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
				metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.CircuitBreakerStateValue(to.String()))
				metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			},
		}),
		cache: cache.NewLRU[models.Location](cfg.CacheSize, cfg.CacheTTL),
	}
}

// Name returns the provider name.
func (p *IPAPIProvider) Name() string {
	return SourceIPAPI
}

// Lookup returns the location of ip. Results are cached by IP fingerprint.
func (p *IPAPIProvider) Lookup(ctx context.Context, ip string) (models.Location, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !IsPublicAddr(addr) {
		return models.Location{}, ErrLookupUnavailable
	}
	addr = addr.Unmap()

	key := logging.Fingerprint(addr.String())
	if loc, ok := p.cache.Get(key); ok {
		metrics.GeoCacheHits.Inc()
		return loc, nil
	}
	metrics.GeoCacheMisses.Inc()

	if !p.limiter.Allow() {
		return models.Location{}, fmt.Errorf("%w: rate limit exceeded", ErrLookupUnavailable)
	}

	start := time.Now()
	result, err := p.breaker.Execute(func() (*ipAPIResponse, error) {
		return p.query(ctx, addr)
	})
	metrics.GeoAPICallDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return models.Location{}, fmt.Errorf("%w: %w", ErrLookupUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return models.Location{}, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()

	loc := models.Location{
		Country: strings.ToUpper(result.CountryCode),
		Region:  result.Region,
		City:    result.City,
		Source:  SourceIPAPI,
	}
	p.cache.Add(key, loc)
	return loc, nil
}

func (p *IPAPIProvider) query(ctx context.Context, addr netip.Addr) (*ipAPIResponse, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=status,message,countryCode,region,city",
		p.baseURL, url.PathEscape(addr.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip-api.com: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api.com returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ip-api.com response: %w", err)
	}

	if result.Status != "success" || result.CountryCode == "" {
		return nil, fmt.Errorf("%w: %s", errLookupFailed, result.Message)
	}
	return &result, nil
}

// IsPublicAddr reports whether addr is a routable unicast address that a
// geolocation service can place.
func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsMulticast():
		return false
	}
	return true
}
