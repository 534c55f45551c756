// Package aiparse extracts listings from free-form emails with a language model.
package aiparse

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/extract"
	"github.com/a3tai/copa-listings/internal/listing"
)

//go:embed prompt.txt
var systemPrompt string

// Parser asks a Generator to read an email and decodes its answer into a draft.
type Parser struct {
	gen                Generator
	schema             *jsonschema.Schema
	includeAttachments bool
	logger             *zap.Logger
}

// NewParser builds a parser. Attachment text is only sent to the model when
// includeAttachments is set.
func NewParser(gen Generator, includeAttachments bool, logger *zap.Logger) (*Parser, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := compileSchema(responseSchema)
	if err != nil {
		return nil, err
	}
	return &Parser{gen: gen, schema: schema, includeAttachments: includeAttachments, logger: logger}, nil
}

// Parse classifies the email and extracts a listing draft from it.
func (p *Parser) Parse(ctx context.Context, subject, body string, attachments []string) (listing.Draft, error) {
	if !p.includeAttachments {
		attachments = nil
	}
	raw, err := p.gen.Generate(ctx, BuildPrompt(subject, body, attachments))
	if err != nil {
		return listing.Draft{}, err
	}

	data := []byte(StripFences(raw))
	if err := validate(p.schema, data); err != nil {
		p.logger.Warn("model response rejected", zap.Error(err), zap.Int("bytes", len(data)))
		return listing.Draft{}, err
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return listing.Draft{}, fmt.Errorf("decode response: %w", err)
	}

	draft := res.Draft()
	p.logger.Info("model parsed email",
		zap.String("classification", string(draft.Classification)),
		zap.String("confidence", string(draft.Confidence)),
		zap.String("address", draft.Address.FullAddress),
	)
	return draft, nil
}

// BuildPrompt lays out the email for the model.
func BuildPrompt(subject, body string, attachments []string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n---\n\nHere is the email data to parse:\n\n")
	fmt.Fprintf(&sb, "EMAIL SUBJECT:\n%s\n\nEMAIL BODY:\n%s\n\n", subject, body)
	if len(attachments) > 0 {
		sb.WriteString("ATTACHMENTS:\n")
		for i, text := range attachments {
			fmt.Fprintf(&sb, "\n--- ATTACHMENT %d ---\n%s\n", i+1, text)
		}
	}
	return sb.String()
}

// StripFences removes a surrounding markdown code fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Result is the JSON object the model returns. Numbers use -1 for "not found".
type Result struct {
	Classification    string   `json:"classification"`
	Confidence        string   `json:"confidence"`
	FullAddress       string   `json:"full_address"`
	AskingPrice       *float64 `json:"asking_price"`
	TotalUnits        *float64 `json:"total_units"`
	ResidentialUnits  *float64 `json:"residential_units"`
	VacantResidential *float64 `json:"vacant_residential"`
	CommercialUnits   *float64 `json:"commercial_units"`
	VacantCommercial  *float64 `json:"vacant_commercial"`
	IsVacantLot       bool     `json:"is_vacant_lot"`
	Details           struct {
		AddressBreakdown *extract.AddressRecord `json:"address_breakdown"`
		SellerInfo       extract.SellerInfo     `json:"seller_info"`
		FinancialInfo    extract.FinancialInfo  `json:"financial_info"`
		Summary          string                 `json:"summary"`
	} `json:"details"`
}

// Draft converts the result. Unknown classifications become "other" and
// unknown confidences become "low".
func (r Result) Draft() listing.Draft {
	d := listing.Draft{
		Classification: listing.ClassificationOther,
		Confidence:     listing.ConfidenceLow,
		Parser:         listing.ParserAI,
		PageIndex:      listing.NotFound,
		Seller:         r.Details.SellerInfo,
		Financial:      r.Details.FinancialInfo,
		Summary:        r.Details.Summary,
		Property: extract.PropertyInfo{
			TotalUnits:        count(r.TotalUnits),
			ResidentialUnits:  count(r.ResidentialUnits),
			VacantResidential: count(r.VacantResidential),
			CommercialUnits:   count(r.CommercialUnits),
			VacantCommercial:  count(r.VacantCommercial),
			IsVacantLot:       r.IsVacantLot,
		},
	}

	if r.Classification == string(listing.ClassificationListing) {
		d.Classification = listing.ClassificationListing
	}
	switch c := listing.Confidence(r.Confidence); c {
	case listing.ConfidenceHigh, listing.ConfidenceMedium:
		d.Confidence = c
	}

	if r.AskingPrice != nil {
		d.Financial.AskingPrice = r.AskingPrice
	}

	switch {
	case r.Details.AddressBreakdown != nil && r.Details.AddressBreakdown.StreetAddress != "":
		d.Address = *r.Details.AddressBreakdown
		if r.FullAddress != "" {
			d.Address.FullAddress = r.FullAddress
		}
		if d.Address.PropertyType == "" {
			d.Address.PropertyType = extract.PropertyTypeSingleBuilding
		}
	case r.FullAddress != "":
		d.Address = extract.NewAddressRecord(r.FullAddress)
	}
	return d
}

// count truncates a model number to an int, keeping nil as nil.
func count(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
