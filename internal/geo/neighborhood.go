package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// UnknownNeighborhood is stored when no boundary contains a listing.
const UnknownNeighborhood = "Unknown"

// Neighborhood is a named boundary made of one or more polygons. Each polygon
// is an outer ring followed by its holes.
type Neighborhood struct {
	Name     string
	Boundary orb.MultiPolygon
	bound    orb.Bound
}

// NewNeighborhood drops polygons without rings and caches the bounding box.
func NewNeighborhood(name string, boundary orb.MultiPolygon) Neighborhood {
	kept := make(orb.MultiPolygon, 0, len(boundary))
	for _, poly := range boundary {
		if len(poly) > 0 {
			kept = append(kept, poly)
		}
	}
	return Neighborhood{Name: name, Boundary: kept, bound: kept.Bound()}
}

// Contains reports whether p is inside any of the neighborhood's polygons.
// Points inside a hole are outside.
func (n Neighborhood) Contains(p Point) bool {
	pt := p.Orb()
	if len(n.Boundary) == 0 || !n.bound.Contains(pt) {
		return false
	}
	return planar.MultiPolygonContains(n.Boundary, pt)
}

// NeighborhoodSet is a read-only boundary set loaded once per batch run.
type NeighborhoodSet struct {
	items []Neighborhood
}

// NewNeighborhoodSet wraps loaded neighborhoods.
func NewNeighborhoodSet(items []Neighborhood) *NeighborhoodSet {
	return &NeighborhoodSet{items: items}
}

// Len returns the number of neighborhoods.
func (s *NeighborhoodSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Names lists neighborhood names in load order.
func (s *NeighborhoodSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.items))
	for i, n := range s.items {
		names[i] = n.Name
	}
	return names
}

// Resolve returns the name of the first neighborhood containing p.
func (s *NeighborhoodSet) Resolve(p Point) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, n := range s.items {
		if n.Contains(p) {
			return n.Name, true
		}
	}
	return "", false
}

// ResolveNeighborhood looks up p in set. A nil point means geocoding failed.
func ResolveNeighborhood(p *Point, set *NeighborhoodSet) (string, bool) {
	if p == nil {
		return "", false
	}
	return set.Resolve(*p)
}
