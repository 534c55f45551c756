package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// BoundaryLoader produces the neighborhood set for a batch run.
type BoundaryLoader interface {
	Load(ctx context.Context) (*NeighborhoodSet, error)
}

// SocrataLoader fetches neighborhood boundaries from an open-data endpoint
// returning records with a "name" and a GeoJSON "the_geom".
type SocrataLoader struct {
	url    string
	limit  int
	client *http.Client
	logger *zap.Logger
}

// NewSocrataLoader creates a loader for a Socrata resource URL.
func NewSocrataLoader(resourceURL string, limit int, timeout time.Duration, logger *zap.Logger) *SocrataLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocrataLoader{
		url:    resourceURL,
		limit:  limit,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type socrataRecord struct {
	Name string          `json:"name"`
	Geom json.RawMessage `json:"the_geom"`
}

// Load fetches and parses the boundary set. Records with unusable geometry
// are skipped with a warning.
func (l *SocrataLoader) Load(ctx context.Context) (*NeighborhoodSet, error) {
	u, err := url.Parse(l.url)
	if err != nil {
		return nil, fmt.Errorf("parse neighborhood url: %w", err)
	}
	q := u.Query()
	q.Set("$limit", strconv.Itoa(l.limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build neighborhood request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch neighborhoods: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch neighborhoods: unexpected status %d", resp.StatusCode)
	}

	var records []socrataRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode neighborhoods: %w", err)
	}

	items := make([]Neighborhood, 0, len(records))
	for _, rec := range records {
		polys, err := ParseGeoJSON(rec.Geom)
		if err != nil {
			l.logger.Warn("skipping neighborhood", zap.String("name", rec.Name), zap.Error(err))
			continue
		}
		items = append(items, NewNeighborhood(rec.Name, polys))
	}
	l.logger.Info("loaded neighborhoods", zap.Int("count", len(items)), zap.String("source", u.Host))
	return NewNeighborhoodSet(items), nil
}

// ParseGeoJSON decodes a Polygon or MultiPolygon geometry. Positions are
// [lng, lat] and every ring needs at least three of them.
func ParseGeoJSON(raw json.RawMessage) (orb.MultiPolygon, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing geometry")
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}

	var mp orb.MultiPolygon
	switch geom := g.Geometry().(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{geom}
	case orb.MultiPolygon:
		mp = geom
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}

	for _, poly := range mp {
		if len(poly) == 0 {
			return nil, fmt.Errorf("polygon without rings")
		}
		for _, ring := range poly {
			if len(ring) < 3 {
				return nil, fmt.Errorf("ring with %d positions", len(ring))
			}
		}
	}
	return mp, nil
}
