package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/blob"
	"github.com/a3tai/copa-listings/internal/geo"
	"github.com/a3tai/copa-listings/internal/listing"
	"github.com/a3tai/copa-listings/internal/pdf"
	"github.com/a3tai/copa-listings/internal/store"
)

// Outcome is what processing did with one email.
type Outcome string

const (
	// OutcomeCreated means a new listing was inserted.
	OutcomeCreated Outcome = "created"
	// OutcomeLinked means the email was attached to an existing listing.
	OutcomeLinked Outcome = "linked"
	// OutcomeSkipped means no listing was written: the email was already
	// linked or was not a listing.
	OutcomeSkipped Outcome = "skipped"
	// OutcomePlaceholder means nothing could be parsed and a flagged
	// placeholder listing was inserted.
	OutcomePlaceholder Outcome = "placeholder"
)

// Result reports the outcome for one email.
type Result struct {
	EmailID   uuid.UUID `json:"email_id"`
	Outcome   Outcome   `json:"outcome"`
	ListingID uuid.UUID `json:"listing_id"`
	Parser    string    `json:"parser,omitempty"`
	Address   string    `json:"address,omitempty"`
	Flagged   bool      `json:"flagged"`
}

// Options wires a Processor. Store, Blobs, Reader and Forms are required.
type Options struct {
	Store    EmailStore
	Blobs    blob.Storage
	Reader   DocumentReader
	Forms    *FormParser
	Fallback FallbackParser
	Locator  Locator
	Loader   geo.BoundaryLoader
	Metrics  *Metrics
	Logger   *zap.Logger
}

// Processor runs the email to listing pipeline.
type Processor struct {
	store    EmailStore
	blobs    blob.Storage
	reader   DocumentReader
	forms    *FormParser
	fallback FallbackParser
	locator  Locator
	loader   geo.BoundaryLoader
	metrics  *Metrics
	logger   *zap.Logger
}

// NewProcessor validates opts and builds a processor.
func NewProcessor(opts Options) (*Processor, error) {
	switch {
	case opts.Store == nil:
		return nil, errors.New("store cannot be nil")
	case opts.Blobs == nil:
		return nil, errors.New("blob storage cannot be nil")
	case opts.Reader == nil:
		return nil, errors.New("document reader cannot be nil")
	case opts.Forms == nil:
		return nil, errors.New("form parser cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	return &Processor{
		store:    opts.Store,
		blobs:    opts.Blobs,
		reader:   opts.Reader,
		forms:    opts.Forms,
		fallback: opts.Fallback,
		locator:  opts.Locator,
		loader:   opts.Loader,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}, nil
}

// document is the page text of one attachment.
type document struct {
	name  string
	pages []string
}

// ProcessEmail turns one email into a listing, a link to an existing listing,
// or nothing. neighborhoods may be nil.
func (p *Processor) ProcessEmail(ctx context.Context, email store.Email, neighborhoods *geo.NeighborhoodSet) (Result, error) {
	start := time.Now()
	defer func() { p.metrics.duration.Observe(time.Since(start).Seconds()) }()

	log := p.logger.With(zap.Stringer("email_id", email.ID), zap.String("subject", email.Subject))
	res := Result{EmailID: email.ID}

	if email.Linked() {
		log.Info("email already linked to a listing", zap.Stringer("listing_id", *email.ListingID))
		res.Outcome = OutcomeSkipped
		res.ListingID = *email.ListingID
		p.metrics.emails.WithLabelValues(string(res.Outcome)).Inc()
		return res, nil
	}

	docs, err := p.documents(ctx, log, email)
	if err != nil {
		return res, err
	}

	draft, found, err := p.parseForms(ctx, log, docs)
	if err != nil {
		return res, err
	}
	if !found {
		draft, found = p.parseFallback(ctx, log, email, docs)
		if found && draft.IsListing() && !draft.Address.Found() {
			log.Warn("fallback parser returned a listing without an address")
			found = false
		}
	}

	if found && !draft.IsListing() {
		log.Info("email is not a listing", zap.String("parser", string(draft.Parser)))
		if err := p.store.MarkProcessed(ctx, email.ID, nil); err != nil {
			return res, err
		}
		res.Outcome = OutcomeSkipped
		res.Parser = string(draft.Parser)
		p.metrics.emails.WithLabelValues(string(res.Outcome)).Inc()
		return res, nil
	}

	outcome := OutcomeCreated
	if !found {
		log.Warn("nothing parsed, storing placeholder")
		draft = listing.Placeholder(email.Subject)
		outcome = OutcomePlaceholder
	}

	rec := listing.Assemble(draft, p.enrich(ctx, log, draft, neighborhoods), listing.Source{
		EmailID:      email.ID.String(),
		EmailAddress: email.FromAddress,
		Subject:      email.Subject,
	}, email.ReceivedDate)

	res.Parser = string(draft.Parser)
	res.Address = rec.FullAddress
	res.Flagged = rec.Flagged

	if outcome != OutcomePlaceholder {
		existing, dup, err := p.store.FindListingByKey(ctx, listing.DedupKey(rec.FullAddress))
		if err != nil {
			return res, err
		}
		if dup {
			log.Info("duplicate listing, linking email", zap.Stringer("listing_id", existing), zap.String("address", rec.FullAddress))
			if err := p.store.MarkProcessed(ctx, email.ID, &existing); err != nil {
				return res, err
			}
			res.Outcome = OutcomeLinked
			res.ListingID = existing
			p.metrics.emails.WithLabelValues(string(res.Outcome)).Inc()
			return res, nil
		}
	}

	id, err := p.store.InsertListing(ctx, rec)
	if err != nil {
		return res, err
	}
	if err := p.store.MarkProcessed(ctx, email.ID, &id); err != nil {
		return res, err
	}

	log.Info("listing stored",
		zap.Stringer("listing_id", id),
		zap.String("address", rec.FullAddress),
		zap.String("neighborhood", rec.Neighborhood),
		zap.Bool("flagged", rec.Flagged),
	)
	res.Outcome = outcome
	res.ListingID = id
	p.metrics.emails.WithLabelValues(string(res.Outcome)).Inc()
	return res, nil
}

// documents collects page text for every usable attachment, preferring cached text.
func (p *Processor) documents(ctx context.Context, log *zap.Logger, email store.Email) ([]document, error) {
	attachments, err := p.store.Attachments(ctx, email.ID)
	if err != nil {
		return nil, err
	}

	var docs []document
	for _, att := range attachments {
		alog := log.With(zap.String("attachment", att.Filename))
		switch {
		case att.ExtractedText != "":
			alog.Debug("using cached text", zap.Int("chars", len(att.ExtractedText)))
			docs = append(docs, document{name: att.Filename, pages: pdf.SplitPages(att.ExtractedText)})
			continue
		case att.IsInline:
			alog.Debug("skipping inline attachment")
			continue
		case !att.IsPDF():
			alog.Debug("skipping non-PDF attachment", zap.String("content_type", att.ContentType))
			continue
		case att.StoragePath == "":
			alog.Warn("attachment has no storage path")
			continue
		}

		data, err := blob.ReadAll(ctx, p.blobs, att.StoragePath)
		if err != nil {
			alog.Warn("download failed", zap.Error(err))
			continue
		}
		doc, err := p.reader.ReadPagesFromBytes(att.Filename, data)
		if err != nil {
			alog.Warn("text extraction failed", zap.Error(err))
			continue
		}

		text := doc.Text()
		if strings.TrimSpace(text) != "" {
			if err := p.store.SaveExtractedText(ctx, att.ID, text); err != nil {
				alog.Warn("failed to cache extracted text", zap.Error(err))
			}
		}
		docs = append(docs, document{name: att.Filename, pages: doc.Pages})
	}
	return docs, nil
}

// parseForms returns the draft from the first document holding a known form
// with a readable address. A form without one is passed over.
func (p *Processor) parseForms(ctx context.Context, log *zap.Logger, docs []document) (listing.Draft, bool, error) {
	for _, doc := range docs {
		draft, ok, err := p.forms.Parse(ctx, doc.name, doc.pages)
		if err != nil {
			return listing.Draft{}, false, err
		}
		if !ok {
			continue
		}
		if !draft.Address.Found() {
			log.Warn("form recognized without an address",
				zap.String("document", doc.name),
				zap.String("variant", string(draft.Variant)))
			continue
		}
		return draft, true, nil
	}
	return listing.Draft{}, false, nil
}

// parseFallback asks the fallback parser. Its errors are logged, not returned.
func (p *Processor) parseFallback(ctx context.Context, log *zap.Logger, email store.Email, docs []document) (listing.Draft, bool) {
	if p.fallback == nil {
		return listing.Draft{}, false
	}
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, strings.Join(doc.pages, "\n"))
	}
	draft, err := p.fallback.Parse(ctx, email.Subject, email.Body(), texts)
	if err != nil {
		log.Warn("fallback parser failed", zap.Error(err))
		return listing.Draft{}, false
	}
	return draft, true
}

// enrich geocodes the draft and resolves its neighborhood. Failures leave the
// enrichment empty.
func (p *Processor) enrich(ctx context.Context, log *zap.Logger, draft listing.Draft, neighborhoods *geo.NeighborhoodSet) listing.Enrichment {
	if p.locator == nil || draft.Parser == listing.ParserPlaceholder || !draft.Address.Found() {
		return listing.Enrichment{}
	}

	e, result := Enrich(ctx, p.locator, draft.Address, neighborhoods)
	p.metrics.geocodes.WithLabelValues(string(result)).Inc()
	switch result {
	case EnrichNoMatch:
		log.Warn("address not geocoded", zap.String("address", draft.Address.FullAddress))
	case EnrichNoNeighborhood:
		log.Warn("no neighborhood contains point", zap.Float64("lat", e.Location.Lat), zap.Float64("lng", e.Location.Lng))
	}
	return e
}

// LoadNeighborhoods loads boundaries once for a batch. A failure yields nil.
func (p *Processor) LoadNeighborhoods(ctx context.Context) *geo.NeighborhoodSet {
	if p.loader == nil {
		return nil
	}
	set, err := p.loader.Load(ctx)
	if err != nil {
		p.logger.Warn("could not load neighborhoods, continuing without lookup", zap.Error(err))
		return nil
	}
	p.logger.Info("loaded neighborhoods", zap.Int("count", set.Len()))
	return set
}
