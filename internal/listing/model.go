package listing

import (
	"time"

	"github.com/a3tai/copa-listings/internal/extract"
	"github.com/a3tai/copa-listings/internal/geo"
	"github.com/a3tai/copa-listings/internal/intelligence"
)

// Classification is what kind of message a document turned out to be.
type Classification string

const (
	ClassificationListing Classification = "listing"
	ClassificationOther   Classification = "other"
)

// Confidence grades how much of the listing was recovered.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Parser names the path that produced a draft.
type Parser string

const (
	ParserForm        Parser = "form"
	ParserAI          Parser = "ai"
	ParserPlaceholder Parser = "placeholder"
)

// NotFound is the sentinel some parsers use for "looked but did not find".
const NotFound = -1

// Draft is the extracted content of one document before enrichment.
type Draft struct {
	Classification Classification
	Confidence     Confidence
	Parser         Parser
	Variant        intelligence.FormVariant
	PageIndex      int
	Document       string
	Address        extract.AddressRecord
	Property       extract.PropertyInfo
	Seller         extract.SellerInfo
	Financial      extract.FinancialInfo
	Summary        string
}

// IsListing reports whether the draft describes a property for sale.
func (d Draft) IsListing() bool {
	return d.Classification == ClassificationListing
}

// Source identifies where a listing came from.
type Source struct {
	EmailID      string `json:"email_id,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Document     string `json:"document,omitempty"`
	Variant      string `json:"form_variant,omitempty"`
	PageIndex    *int   `json:"page_index,omitempty"`
}

// Details is the sub-object stored encrypted alongside the listing.
type Details struct {
	Classification   Classification        `json:"classification"`
	Confidence       Confidence            `json:"confidence"`
	Parser           Parser                `json:"parser"`
	AddressBreakdown extract.AddressRecord `json:"address_breakdown"`
	PropertyInfo     extract.PropertyInfo  `json:"property_info"`
	SellerInfo       extract.SellerInfo    `json:"seller_info"`
	FinancialInfo    extract.FinancialInfo `json:"financial_info"`
	Summary          string                `json:"summary,omitempty"`
	Source           Source                `json:"source"`
}

// Location is a GeoJSON point; coordinates are [lng, lat].
type Location struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewLocation converts a point to GeoJSON.
func NewLocation(p geo.Point) *Location {
	return &Location{Type: "Point", Coordinates: [2]float64{p.Lng, p.Lat}}
}

// Record is the canonical listing handed to storage.
type Record struct {
	TimeSent          time.Time `json:"time_sent_tz"`
	FullAddress       string    `json:"full_address"`
	Neighborhood      string    `json:"neighborhood"`
	AskingPrice       *float64  `json:"asking_price"`
	TotalUnits        *int      `json:"total_units"`
	ResidentialUnits  *int      `json:"residential_units"`
	VacantResidential *int      `json:"vacant_residential"`
	CommercialUnits   *int      `json:"commercial_units"`
	VacantCommercial  *int      `json:"vacant_commercial"`
	IsVacantLot       bool      `json:"is_vacant_lot"`
	Flagged           bool      `json:"flagged"`
	Location          *Location `json:"location,omitempty"`
	Details           Details   `json:"-"`
}

// Stored is a listing read back from storage.
type Stored struct {
	ID string
	Record
	CreatedAt time.Time
}
