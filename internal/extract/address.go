package extract

import (
	"regexp"
	"strings"
	"unicode"
)

const propertyAddressLabel = "Property Address:"

var (
	// labelCityStateZip matches a "City, ST 12345" suffix directly after the label.
	labelCityStateZip = regexp.MustCompile(`(?s)^(.*?)Property Address:\s*([^,]+,\s*[A-Z]{2}\s*\d{5})`)
	streetWithSuffix  = regexp.MustCompile(`\d+[\w\s-]+(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Boulevard|Blvd)\b`)
	sfCityZip         = regexp.MustCompile(`[^,]*San Francisco[^,]*?\d{5}`)
	firstZip          = regexp.MustCompile(`^.*?\d{5}`)
	inlineAddress     = regexp.MustCompile(`Property Address:\s*(\d+[^,\n]+,\s*[^,]+,\s*[A-Z]{2}\s*\d{5})`)
)

// addressWindow is how many words before the label the fallback scans.
const addressWindow = 6

// ExtractAddress locates the property address in normalized form text. It
// tries three strategies in order and returns an empty record when none match.
func ExtractAddress(text string) AddressRecord {
	for _, strategy := range []func(string) string{
		addressBeforeLabel,
		addressWordWindow,
		addressAfterLabel,
	} {
		if full := strategy(text); full != "" {
			return NewAddressRecord(full)
		}
	}
	return AddressRecord{}
}

// NewAddressRecord builds a record from a full address string.
func NewAddressRecord(full string) AddressRecord {
	full = strings.TrimSpace(full)
	if full == "" {
		return AddressRecord{}
	}
	parts := SplitAddress(full)
	street := parts.StreetAddress
	if street == "" {
		street = full
	}
	return AddressRecord{
		FullAddress:      full,
		StreetAddress:    street,
		SecondaryAddress: parts.SecondaryAddress,
		ZipCode:          parts.ZipCode,
		PropertyType:     PropertyTypeSingleBuilding,
	}
}

// addressBeforeLabel handles forms that print the street above the label and
// only "City, ST ZIP" after it.
func addressBeforeLabel(text string) string {
	m := labelCityStateZip.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	street := streetWithSuffix.FindString(strings.TrimSpace(m[1]))
	if street == "" {
		return ""
	}
	return strings.TrimSpace(street) + ", " + strings.TrimSpace(m[2])
}

// addressWordWindow takes the street from the last few words before the label,
// starting at the first word that begins with a digit.
func addressWordWindow(text string) string {
	idx := strings.Index(text, propertyAddressLabel)
	if idx < 0 {
		return ""
	}
	after := strings.TrimSpace(text[idx+len(propertyAddressLabel):])
	cityZip := strings.TrimSpace(sfCityZip.FindString(after))
	if cityZip == "" {
		cityZip = strings.TrimSpace(firstZip.FindString(after))
	}
	if cityZip == "" {
		return ""
	}

	words := strings.Fields(text[:idx])
	if len(words) < 2 {
		return ""
	}
	for i := max(0, len(words)-addressWindow); i < len(words); i++ {
		if startsWithDigit(words[i]) {
			return strings.Join(words[i:], " ") + ", " + cityZip
		}
	}
	return ""
}

// addressAfterLabel requires "number street, city, ST ZIP" right after the label.
func addressAfterLabel(text string) string {
	m := inlineAddress.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func startsWithDigit(word string) bool {
	for _, r := range word {
		return unicode.IsDigit(r)
	}
	return false
}
