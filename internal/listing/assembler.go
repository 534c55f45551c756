package listing

import (
	"strings"
	"time"

	"github.com/a3tai/copa-listings/internal/extract"
	"github.com/a3tai/copa-listings/internal/geo"
)

// Enrichment is the geocoding and neighborhood outcome for a draft.
type Enrichment struct {
	Location     *geo.Point
	Neighborhood string
}

// Resolved reports whether a neighborhood was found.
func (e Enrichment) Resolved() bool {
	return e.Neighborhood != "" && e.Neighborhood != geo.UnknownNeighborhood
}

// Assemble builds the storage record. Sentinel numbers become nil, a missing
// neighborhood becomes "Unknown", and the listing is flagged for review when
// confidence is low, the draft is not a listing, or no neighborhood matched.
func Assemble(d Draft, e Enrichment, src Source, sent time.Time) Record {
	src.Document = firstNonEmpty(src.Document, d.Document)
	if d.Variant != "" {
		src.Variant = string(d.Variant)
		idx := d.PageIndex
		src.PageIndex = &idx
	}

	property := d.Property
	property.TotalUnits = optionalInt(property.TotalUnits)
	property.ResidentialUnits = optionalInt(property.ResidentialUnits)
	property.VacantResidential = optionalInt(property.VacantResidential)
	property.CommercialUnits = optionalInt(property.CommercialUnits)
	property.VacantCommercial = optionalInt(property.VacantCommercial)

	financial := normalizeFinancial(d.Financial)

	neighborhood := e.Neighborhood
	if !e.Resolved() {
		neighborhood = geo.UnknownNeighborhood
	}

	rec := Record{
		TimeSent:          sent,
		FullAddress:       d.Address.FullAddress,
		Neighborhood:      neighborhood,
		AskingPrice:       financial.AskingPrice,
		TotalUnits:        property.TotalUnits,
		ResidentialUnits:  property.ResidentialUnits,
		VacantResidential: property.VacantResidential,
		CommercialUnits:   property.CommercialUnits,
		VacantCommercial:  property.VacantCommercial,
		IsVacantLot:       property.IsVacantLot,
		Flagged:           d.Confidence == ConfidenceLow || d.Classification == ClassificationOther || !e.Resolved(),
		Details: Details{
			Classification:   d.Classification,
			Confidence:       d.Confidence,
			Parser:           d.Parser,
			AddressBreakdown: d.Address,
			PropertyInfo:     property,
			SellerInfo:       d.Seller,
			FinancialInfo:    financial,
			Summary:          d.Summary,
			Source:           src,
		},
	}
	if e.Location != nil {
		rec.Location = NewLocation(*e.Location)
	}
	return rec
}

// Placeholder is the draft used when nothing could be parsed from an email.
// The subject stands in for the address so a reviewer can find it.
func Placeholder(subject string) Draft {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "(no subject)"
	}
	return Draft{
		Classification: ClassificationListing,
		Confidence:     ConfidenceLow,
		Parser:         ParserPlaceholder,
		PageIndex:      -1,
		Address:        extract.AddressRecord{FullAddress: subject, PropertyType: extract.PropertyTypeSingleBuilding},
		Financial:      extract.FinancialInfo{RentRoll: []extract.RentRollEntry{}},
	}
}

// FormConfidence grades a draft produced from a recognized form.
func FormConfidence(address extract.AddressRecord, property extract.PropertyInfo) Confidence {
	switch {
	case address.Found() && property.HasCounts():
		return ConfidenceHigh
	case address.Found():
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func optionalInt(v *int) *int {
	if v == nil || *v == NotFound {
		return nil
	}
	return v
}

func optionalFloat(v *float64) *float64 {
	if v == nil || *v == NotFound {
		return nil
	}
	return v
}

func normalizeFinancial(f extract.FinancialInfo) extract.FinancialInfo {
	for _, field := range []**float64{
		&f.AskingPrice, &f.MonthlyIncome, &f.TotalRents, &f.OtherIncome,
		&f.TotalMonthlyIncome, &f.TotalAnnualIncome, &f.AnnualExpenses,
		&f.LessTotalAnnualExpenses, &f.NetOperatingIncome, &f.PropertyTaxRate,
		&f.PropertyTaxAmount, &f.ManagementRate, &f.ManagementAmount,
		&f.Insurance, &f.Utilities, &f.Maintenance, &f.OtherExpenses,
	} {
		*field = optionalFloat(*field)
	}
	if f.RentRoll == nil {
		f.RentRoll = []extract.RentRollEntry{}
	}
	return f
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}
