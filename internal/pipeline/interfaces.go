// Package pipeline turns inbound emails into stored listings.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/copa-listings/internal/extract"
	"github.com/a3tai/copa-listings/internal/geo"
	"github.com/a3tai/copa-listings/internal/intelligence"
	"github.com/a3tai/copa-listings/internal/listing"
	"github.com/a3tai/copa-listings/internal/pdf"
	"github.com/a3tai/copa-listings/internal/store"
)

// EmailStore is the persistence the processor needs.
type EmailStore interface {
	UnprocessedEmails(ctx context.Context, limit int) ([]store.Email, error)
	EmailByID(ctx context.Context, id uuid.UUID) (store.Email, error)
	Attachments(ctx context.Context, emailID uuid.UUID) ([]store.Attachment, error)
	SaveExtractedText(ctx context.Context, attachmentID uuid.UUID, text string) error
	FindListingByKey(ctx context.Context, key string) (uuid.UUID, bool, error)
	InsertListing(ctx context.Context, rec listing.Record) (uuid.UUID, error)
	MarkProcessed(ctx context.Context, emailID uuid.UUID, listingID *uuid.UUID) error
}

// PurgeStore is the persistence the retention purge needs.
type PurgeStore interface {
	OldEmailAttachments(ctx context.Context, before time.Time) ([]string, error)
	DeleteOldEmails(ctx context.Context) error
}

// DocumentReader extracts page text from PDF bytes.
type DocumentReader interface {
	ReadPagesFromBytes(name string, data []byte) (pdf.RawDocument, error)
}

// Classifier recognizes form variants.
type Classifier interface {
	Classify(ctx context.Context, pages []string) (intelligence.ClassificationResult, error)
	ExtractorFamily(variant intelligence.FormVariant) intelligence.FormVariant
}

// FallbackParser reads emails that carry no recognizable form.
type FallbackParser interface {
	Parse(ctx context.Context, subject, body string, attachments []string) (listing.Draft, error)
}

// Locator geocodes an address record. A nil point means no match.
type Locator interface {
	Resolve(ctx context.Context, addr extract.AddressRecord) *geo.Point
}

var (
	_ EmailStore     = (*store.Store)(nil)
	_ PurgeStore     = (*store.Store)(nil)
	_ DocumentReader = (*pdf.Reader)(nil)
	_ Classifier     = (*intelligence.FormClassifier)(nil)
	_ Locator        = (*geo.Geocoder)(nil)
)
