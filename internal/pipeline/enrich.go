package pipeline

import (
	"context"

	"github.com/a3tai/copa-listings/internal/extract"
	"github.com/a3tai/copa-listings/internal/geo"
	"github.com/a3tai/copa-listings/internal/listing"
)

// EnrichResult labels how far enrichment got.
type EnrichResult string

const (
	EnrichResolved       EnrichResult = "resolved"
	EnrichNoMatch        EnrichResult = "no_match"
	EnrichNoNeighborhood EnrichResult = "no_neighborhood"
)

// Enrich geocodes addr and finds the neighborhood containing the point.
// Neither step is fatal; the enrichment holds whatever was found.
func Enrich(ctx context.Context, locator Locator, addr extract.AddressRecord, neighborhoods *geo.NeighborhoodSet) (listing.Enrichment, EnrichResult) {
	point := locator.Resolve(ctx, addr)
	if point == nil {
		return listing.Enrichment{}, EnrichNoMatch
	}
	name, ok := geo.ResolveNeighborhood(point, neighborhoods)
	if !ok {
		return listing.Enrichment{Location: point}, EnrichNoNeighborhood
	}
	return listing.Enrichment{Location: point, Neighborhood: name}, EnrichResolved
}

// Preview is an assembled listing with its details shown inline.
type Preview struct {
	Listing listing.Record  `json:"listing"`
	Details listing.Details `json:"details"`
}

// NewPreview exposes the details a Record keeps out of its JSON.
func NewPreview(rec listing.Record) Preview {
	return Preview{Listing: rec, Details: rec.Details}
}
