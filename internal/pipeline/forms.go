package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/extract"
	"github.com/a3tai/copa-listings/internal/listing"
)

// FormParser classifies a document and runs the matching extractors.
type FormParser struct {
	classifier Classifier
	logger     *zap.Logger
}

// NewFormParser wraps a classifier.
func NewFormParser(classifier Classifier, logger *zap.Logger) *FormParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormParser{classifier: classifier, logger: logger}
}

// Parse returns a draft and true when a known form is found in pages.
func (fp *FormParser) Parse(ctx context.Context, name string, pages []string) (listing.Draft, bool, error) {
	res, err := fp.classifier.Classify(ctx, pages)
	if err != nil {
		return listing.Draft{}, false, fmt.Errorf("classify %s: %w", name, err)
	}
	if !res.Recognized() {
		fp.logger.Debug("no form recognized", zap.String("document", name), zap.Int("pages", len(pages)))
		return listing.Draft{}, false, nil
	}

	data, err := extract.Extract(fp.classifier.ExtractorFamily(res.Variant), pages[res.PageIndex])
	if err != nil {
		return listing.Draft{}, false, fmt.Errorf("extract %s: %w", name, err)
	}

	fp.logger.Info("form recognized",
		zap.String("document", name),
		zap.String("variant", string(res.Variant)),
		zap.Int("page", res.PageIndex),
		zap.Strings("markers", res.Matched),
		zap.String("address", data.Address.FullAddress),
	)

	return listing.Draft{
		Classification: listing.ClassificationListing,
		Confidence:     listing.FormConfidence(data.Address, data.Property),
		Parser:         listing.ParserForm,
		Variant:        res.Variant,
		PageIndex:      res.PageIndex,
		Document:       name,
		Address:        data.Address,
		Property:       data.Property,
		Seller:         data.Seller,
		Financial:      data.Financial,
	}, true, nil
}
