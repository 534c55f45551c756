package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a3tai/copa-listings/internal/extract"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	cityState = "San Francisco, CA"
	// Nominatim's usage policy allows one request per second.
	nominatimInterval = time.Second
)

var errNoResults = errors.New("no geocoding results")

// GeocoderOptions configures a Geocoder.
type GeocoderOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Interval between requests; zero disables throttling.
	Interval time.Duration
	Cache    Cache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// Geocoder resolves San Francisco addresses with a Nominatim search endpoint.
type Geocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	cache     Cache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewGeocoder creates a geocoder. Every request uses opts.Timeout.
func NewGeocoder(opts GeocoderOptions) *Geocoder {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	g := &Geocoder{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		client:    &http.Client{Timeout: opts.Timeout},
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		logger:    opts.Logger,
	}
	if opts.Interval > 0 {
		g.limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
	}
	return g
}

// NewNominatimGeocoder uses the public endpoint with its required throttling.
func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *Geocoder {
	return NewGeocoder(GeocoderOptions{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   timeout,
		Interval:  nominatimInterval,
		Cache:     cache,
		CacheTTL:  cacheTTL,
		Logger:    logger,
	})
}

// Queries builds the query strings tried for an address: the street first,
// then the secondary (corner) street.
func Queries(addr extract.AddressRecord) []string {
	var queries []string
	for _, street := range []string{addr.StreetAddress, addr.SecondaryAddress} {
		street = strings.TrimSpace(street)
		if street == "" {
			continue
		}
		q := street + ", " + cityState
		if addr.ZipCode != "" {
			q += ", " + addr.ZipCode
		}
		queries = append(queries, q)
	}
	return queries
}

// Resolve returns the coordinates of the first query that geocodes, or nil.
// Failures are logged and never returned; geocoding is best effort.
func (g *Geocoder) Resolve(ctx context.Context, addr extract.AddressRecord) *Point {
	for _, q := range Queries(addr) {
		p, err := g.Lookup(ctx, q)
		if err != nil {
			g.logger.Debug("geocode attempt failed", zap.String("query", q), zap.Error(err))
			continue
		}
		g.logger.Debug("geocoded address", zap.String("query", q),
			zap.Float64("lat", p.Lat), zap.Float64("lng", p.Lng))
		return &p
	}
	g.logger.Info("no geocoding result for any address variant",
		zap.String("address", addr.FullAddress))
	return nil
}

// Lookup geocodes one query string, consulting the cache first.
func (g *Geocoder) Lookup(ctx context.Context, q string) (Point, error) {
	if g.cache != nil {
		if p, ok, err := g.cache.Get(ctx, q); err == nil && ok {
			return p, nil
		} else if err != nil {
			g.logger.Warn("geocode cache read failed", zap.Error(err))
		}
	}

	p, err := g.search(ctx, q)
	if err != nil {
		return Point{}, err
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, q, p, g.cacheTTL); err != nil {
			g.logger.Warn("geocode cache write failed", zap.Error(err))
		}
	}
	return p, nil
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *Geocoder) search(ctx context.Context, q string) (Point, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return Point{}, err
		}
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Point{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Point{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return Point{}, errNoResults
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse longitude: %w", err)
	}
	return Point{Lat: lat, Lng: lng}, nil
}
