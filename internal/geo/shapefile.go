package geo

import (
	"context"
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// ShapefileLoader reads neighborhood boundaries from a local shapefile.
// Coordinates must already be WGS84 longitude/latitude.
type ShapefileLoader struct {
	path      string
	nameField string
	logger    *zap.Logger
}

// NewShapefileLoader creates a loader that names each polygon from nameField.
func NewShapefileLoader(path, nameField string, logger *zap.Logger) *ShapefileLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShapefileLoader{path: path, nameField: nameField, logger: logger}
}

// Load reads every polygon record. Clockwise parts start a new polygon and
// counter-clockwise parts are holes of the polygon before them.
func (l *ShapefileLoader) Load(_ context.Context) (*NeighborhoodSet, error) {
	r, err := shp.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", l.path, err)
	}
	defer r.Close()

	nameIdx := -1
	for i, f := range r.Fields() {
		if strings.EqualFold(f.String(), l.nameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("shapefile %s has no %q field", l.path, l.nameField)
	}

	var items []Neighborhood
	for r.Next() {
		idx, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		name := strings.TrimSpace(r.ReadAttribute(idx, nameIdx))
		items = append(items, NewNeighborhood(name, shapePolygons(poly)))
	}

	l.logger.Info("loaded neighborhoods", zap.Int("count", len(items)), zap.String("source", l.path))
	return NewNeighborhoodSet(items), nil
}

func shapePolygons(poly *shp.Polygon) orb.MultiPolygon {
	var mp orb.MultiPolygon
	numParts := len(poly.Parts)
	for partIdx := 0; partIdx < numParts; partIdx++ {
		start := poly.Parts[partIdx]
		end := int32(len(poly.Points))
		if partIdx+1 < numParts {
			end = poly.Parts[partIdx+1]
		}
		ring := make(orb.Ring, 0, int(end-start))
		for i := start; i < end; i++ {
			ring = append(ring, orb.Point{poly.Points[i].X, poly.Points[i].Y})
		}
		if len(ring) < 3 {
			continue
		}

		if ring.Orientation() == orb.CCW && len(mp) > 0 {
			mp[len(mp)-1] = append(mp[len(mp)-1], ring)
			continue
		}
		mp = append(mp, orb.Polygon{ring})
	}
	return mp
}
