// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package geo

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"net/url"
	"strings"

	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/models"
)

// unplaceable are country values edge networks send for unknown or Tor traffic.
var unplaceable = map[string]bool{
	"XX": true,
	"T1": true,
}

// Resolver turns an upgrade request into a Location. It never fails: a
// location without a country gets the fallback country.
type Resolver struct {
	countryHeaders []string
	regionHeaders  []string
	cityHeaders    []string
	fallback       string
	provider       Provider
}

// NewResolver creates a resolver. provider may be nil to disable IP lookups.
func NewResolver(cfg config.GeoIPConfig, fallbackCountry string, provider Provider) *Resolver {
	return &Resolver{
		countryHeaders: cfg.CountryHeaders,
		regionHeaders:  cfg.RegionHeaders,
		cityHeaders:    cfg.CityHeaders,
		fallback:       fallbackCountry,
		provider:       provider,
	}
}

// Resolve returns the location of the client that sent r.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) models.Location {
	var loc models.Location

	if country, header := firstHeader(req.Header, r.countryHeaders); country != "" {
		if !unplaceable[strings.ToUpper(country)] {
			loc.Country = country
			loc.Source = header
		}
	}
	loc.Region, _ = firstHeader(req.Header, r.regionHeaders)
	if city, _ := firstHeader(req.Header, r.cityHeaders); city != "" {
		if unescaped, err := url.QueryUnescape(city); err == nil {
			city = unescaped
		}
		loc.City = city
	}

	if loc.Country == "" && r.provider != nil {
		if ipLoc, ok := r.lookup(ctx, req.RemoteAddr); ok {
			loc = ipLoc
		}
	}

	loc = loc.WithFallback(r.fallback)
	metrics.GeoLookups.WithLabelValues(sourceLabel(loc.Source)).Inc()
	return loc
}

func (r *Resolver) lookup(ctx context.Context, remoteAddr string) (models.Location, bool) {
	addr, ok := ClientAddr(remoteAddr)
	if !ok {
		return models.Location{}, false
	}

	loc, err := r.provider.Lookup(ctx, addr.String())
	if err != nil {
		logger := logging.CtxWith(ctx).Str("component", "geo").Logger()
		event := logger.Debug()
		if !errors.Is(err, ErrLookupUnavailable) {
			event = logger.Warn()
		}
		event.Err(err).
			Str("provider", r.provider.Name()).
			Str("client", logging.Fingerprint(addr.String())).
			Msg("IP geolocation failed, using fallback country")
		return models.Location{}, false
	}
	return loc, true
}

// ClientAddr parses a RemoteAddr that may or may not carry a port.
func ClientAddr(remoteAddr string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(strings.Trim(remoteAddr, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func firstHeader(h http.Header, names []string) (value, name string) {
	for _, n := range names {
		if v := strings.TrimSpace(h.Get(n)); v != "" {
			return v, n
		}
	}
	return "", ""
}

func sourceLabel(source string) string {
	switch source {
	case models.SourceFallback:
		return "fallback"
	case SourceIPAPI:
		return "ip_api"
	default:
		return "header"
	}
}
