package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// FormClassifier recognizes disclosure form variants by counting marker phrases.
type FormClassifier struct {
	rules  []VariantRule
	logger *zap.Logger
}

// NewFormClassifier creates a classifier with the built-in rules.
func NewFormClassifier(logger *zap.Logger) *FormClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormClassifier{
		rules:  defaultRules(),
		logger: logger,
	}
}

// Classify scans pages for each enabled variant in priority order and returns
// the first page holding at least the variant's threshold of marker phrases.
// Markers are case-sensitive substrings of the raw page text.
func (fc *FormClassifier) Classify(ctx context.Context, pages []string) (ClassificationResult, error) {
	for _, rule := range fc.rules {
		if !rule.Enabled {
			continue
		}

		select {
		case <-ctx.Done():
			return NoMatch(), ctx.Err()
		default:
		}

		for i, page := range pages {
			matched := matchMarkers(page, rule.Markers)
			if len(matched) >= rule.threshold() {
				fc.logger.Debug("form variant recognized",
					zap.String("variant", string(rule.Variant)),
					zap.Int("page_index", i),
					zap.Strings("markers", matched))
				return ClassificationResult{Variant: rule.Variant, PageIndex: i, Matched: matched}, nil
			}
		}
	}
	return NoMatch(), nil
}

func matchMarkers(page string, markers []string) []string {
	if page == "" {
		return nil
	}
	var matched []string
	for _, marker := range markers {
		if marker != "" && strings.Contains(page, marker) {
			matched = append(matched, marker)
		}
	}
	return matched
}

// ExtractorFamily maps a recognized variant to the built-in variant whose
// extractors read it.
func (fc *FormClassifier) ExtractorFamily(variant FormVariant) FormVariant {
	for _, rule := range fc.rules {
		if rule.Variant == variant {
			return rule.ExtractorFamily()
		}
	}
	return variant
}

// Rules returns a copy of the configured rules in priority order.
func (fc *FormClassifier) Rules() []VariantRule {
	out := make([]VariantRule, len(fc.rules))
	copy(out, fc.rules)
	return out
}

// LoadCustomRules appends rules from a JSON file after the built-in ones.
func (fc *FormClassifier) LoadCustomRules(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read custom rules file: %w", err)
	}

	var ruleSet VariantRuleSet
	if err := json.Unmarshal(data, &ruleSet); err != nil {
		return fmt.Errorf("failed to parse custom rules: %w", err)
	}

	for _, rule := range ruleSet.Rules {
		if rule.Variant == VariantNone {
			return fmt.Errorf("custom rule without variant name in %s", path)
		}
		family := rule.ExtractorFamily()
		if family != VariantCOPA3 && family != VariantCOPA4 {
			return fmt.Errorf("custom rule %s: unknown extractor family %q", rule.Variant, family)
		}
		if rule.Threshold != 0 && rule.Threshold != DefaultMarkerThreshold {
			return fmt.Errorf("custom rule %s: threshold must be %d, got %d", rule.Variant, DefaultMarkerThreshold, rule.Threshold)
		}
		if len(rule.Markers) < DefaultMarkerThreshold {
			return fmt.Errorf("custom rule %s: needs at least %d markers", rule.Variant, DefaultMarkerThreshold)
		}
		if !rule.Enabled {
			fc.logger.Info("custom form rule disabled", zap.String("variant", string(rule.Variant)))
		}
	}

	fc.rules = append(fc.rules, ruleSet.Rules...)
	fc.logger.Info("loaded custom form rules",
		zap.String("path", path),
		zap.String("name", ruleSet.Name),
		zap.Int("count", len(ruleSet.Rules)))
	return nil
}
