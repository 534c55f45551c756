package extract

import (
	"regexp"
	"strings"
)

var (
	zipPattern = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	// The city, with the state that directly follows it.
	cityPattern = regexp.MustCompile(`(?i)\bsan\s*francisco\b[\s,]*(?:\b(?:ca|california)\b\.?)?`)
	// A state token standing alone as a comma-separated segment. Street
	// names such as "California St" are left alone.
	statePattern = regexp.MustCompile(`(?i)(^|,)\s*(?:ca|california)\.?\s*(,|$)`)
)

// AddressParts are the components of a full address.
type AddressParts struct {
	StreetAddress    string `json:"street_address"`
	SecondaryAddress string `json:"secondary_address"`
	ZipCode          string `json:"zip_code"`
}

// SplitAddress decomposes a full address into street, secondary (corner lot)
// and ZIP. A slash separates corner-lot streets and wins over commas.
func SplitAddress(full string) AddressParts {
	var parts AddressParts
	if strings.TrimSpace(full) == "" {
		return parts
	}

	rest := full
	if zips := zipPattern.FindAllStringIndex(rest, -1); len(zips) > 0 {
		last := zips[len(zips)-1]
		parts.ZipCode = rest[last[0]:last[1]]
		rest = rest[:last[0]] + rest[last[1]:]
	}
	rest = cityPattern.ReplaceAllString(rest, "")
	rest = statePattern.ReplaceAllString(rest, "${1}${2}")
	rest = strings.Trim(rest, ", \t")

	sep := ","
	if strings.Contains(rest, "/") {
		sep = "/"
	}

	var segments []string
	for _, s := range strings.Split(rest, sep) {
		s = strings.Trim(s, ", \t")
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) > 0 {
		parts.StreetAddress = segments[0]
	}
	if len(segments) > 1 {
		parts.SecondaryAddress = segments[1]
	}
	return parts
}
