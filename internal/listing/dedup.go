package listing

import (
	"regexp"
	"strings"
)

// Abbreviations applied in order when building a deduplication key.
var dedupReplacements = []struct{ from, to string }{
	{" street", " st"},
	{" avenue", " ave"},
	{" road", " rd"},
	{" boulevard", " blvd"},
	{" drive", " dr"},
	{" lane", " ln"},
	{" court", " ct"},
	{" place", " pl"},
	{"saint ", "st "},
	{"san francisco", "sf"},
}

// City and state segments dropped from the key. "California St" survives.
var cityStateSegment = regexp.MustCompile(`,\s*(?:sf|ca)\b`)

// DedupKey normalizes an address for exact-match duplicate detection.
// Distinct units at one street address share a key.
func DedupKey(address string) string {
	key := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	if key == "" {
		return ""
	}
	for _, r := range dedupReplacements {
		key = strings.ReplaceAll(key, r.from, r.to)
	}
	key = cityStateSegment.ReplaceAllString(key, "")
	return key
}

// SameAddress reports whether two addresses share a deduplication key.
func SameAddress(a, b string) bool {
	ka := DedupKey(a)
	return ka != "" && ka == DedupKey(b)
}
