package intelligence

import "encoding/json"

// FormVariant identifies a known disclosure form template.
type FormVariant string

const (
	// VariantNone is reported when no form template was recognized.
	VariantNone FormVariant = ""
	// VariantCOPA3 is the property information disclosure form.
	VariantCOPA3 FormVariant = "COPA3"
	// VariantCOPA4 is the notice of intent to sell form.
	VariantCOPA4 FormVariant = "COPA4"
)

// DefaultMarkerThreshold is how many marker phrases a page must contain.
const DefaultMarkerThreshold = 2

// ClassificationResult names the recognized variant and the page it was found on.
// PageIndex is -1 when Variant is VariantNone.
type ClassificationResult struct {
	Variant   FormVariant `json:"variant"`
	PageIndex int         `json:"page_index"`
	Matched   []string    `json:"matched_markers,omitempty"`
}

// Recognized reports whether a variant was found.
func (r ClassificationResult) Recognized() bool {
	return r.Variant != VariantNone
}

// NoMatch is the result for documents no variant claims.
func NoMatch() ClassificationResult {
	return ClassificationResult{Variant: VariantNone, PageIndex: -1}
}

// VariantRule describes how to recognize one form variant. Every variant is
// recognized at DefaultMarkerThreshold; Threshold exists so rule files can
// state it explicitly.
type VariantRule struct {
	Variant   FormVariant `json:"variant"`
	Family    FormVariant `json:"family,omitempty"`
	Markers   []string    `json:"markers"`
	Threshold int         `json:"threshold,omitempty"`
	Enabled   bool        `json:"enabled"`
}

// ExtractorFamily returns the variant whose extractors handle this rule's pages.
func (r VariantRule) ExtractorFamily() FormVariant {
	if r.Family != VariantNone {
		return r.Family
	}
	return r.Variant
}

// UnmarshalJSON enables a rule unless the file sets "enabled": false.
func (r *VariantRule) UnmarshalJSON(data []byte) error {
	type plain VariantRule
	rule := plain{Enabled: true}
	if err := json.Unmarshal(data, &rule); err != nil {
		return err
	}
	*r = VariantRule(rule)
	return nil
}

func (r VariantRule) threshold() int {
	if r.Threshold <= 0 {
		return DefaultMarkerThreshold
	}
	return r.Threshold
}

// VariantRuleSet is the on-disk format for additional rules.
type VariantRuleSet struct {
	Name    string        `json:"name"`
	Version string        `json:"version"`
	Rules   []VariantRule `json:"rules"`
}
