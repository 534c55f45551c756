package extract

import (
	"fmt"

	"github.com/a3tai/copa-listings/internal/intelligence"
)

// family is the set of extractors used for one form variant.
type family struct {
	address   func(string) AddressRecord
	property  func(string) PropertyInfo
	seller    func(string) SellerInfo
	financial func(string) FinancialInfo
}

var families = map[intelligence.FormVariant]family{
	intelligence.VariantCOPA3: {
		address:   ExtractAddress,
		property:  ExtractPropertyInfo,
		seller:    ExtractSellerInfo,
		financial: ExtractFinancialInfo,
	},
	intelligence.VariantCOPA4: {
		address:   ExtractAddress,
		property:  extractCopa4PropertyInfo,
		seller:    ExtractSellerInfo,
		financial: ExtractFinancialInfo,
	},
}

// Extract normalizes the page text and runs the extractor family for variant.
// Missing fields are left empty; only an unknown variant is an error.
func Extract(variant intelligence.FormVariant, pageText string) (FormData, error) {
	fam, ok := families[variant]
	if !ok {
		return FormData{}, fmt.Errorf("no extractors for form variant %q", variant)
	}

	text := Normalize(pageText)
	return FormData{
		Address:   fam.address(text),
		Property:  fam.property(text),
		Seller:    fam.seller(text),
		Financial: fam.financial(text),
	}, nil
}
