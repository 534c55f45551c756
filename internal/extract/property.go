package extract

import (
	"regexp"
	"strconv"
)

var (
	totalUnitsPattern       = regexp.MustCompile(`(?i)Total\s*#\s*of\s*units\s*(\d+)`)
	residentialUnitsPattern = regexp.MustCompile(`(?i)#\s*of\s*residential\s*units\s*(\d+)`)
	vacantResidentialPat    = regexp.MustCompile(`(?i)#\s*currently\s*vacant\s*(\d+)`)
	commercialUnitsPattern  = regexp.MustCompile(`(?i)#\s*of\s*commercial\s*\(office/retail\)\s*units\s*(\d+)`)
	// The form prints "# currently vacant" twice with no distinguishing label;
	// the second occurrence belongs to the commercial block.
	vacantAnyPattern  = regexp.MustCompile(`(?i)#\s*currently\s*vacant.*?(\d+)(?:\s|$)`)
	vacantLotPattern  = regexp.MustCompile(`(?i)Check\s*if\s*a\s*vacant\s*lot\s{0,10}\[?([☑✓X])`)
	softStoryPattern  = regexp.MustCompile(`(?i)Soft\s*Story\s*work\s*required.*?(?:([☑✓X])\]?\s*Yes|([☑✓X])\]?\s*No)`)
	unitCountPatterns = []struct {
		pattern *regexp.Regexp
		set     func(*PropertyInfo, int)
	}{
		{totalUnitsPattern, func(p *PropertyInfo, n int) { p.TotalUnits = intPtr(n) }},
		{residentialUnitsPattern, func(p *PropertyInfo, n int) { p.ResidentialUnits = intPtr(n) }},
		{vacantResidentialPat, func(p *PropertyInfo, n int) { p.VacantResidential = intPtr(n) }},
		{commercialUnitsPattern, func(p *PropertyInfo, n int) { p.CommercialUnits = intPtr(n) }},
	}
)

// ExtractPropertyInfo reads unit counts and checkbox flags from normalized text.
func ExtractPropertyInfo(text string) PropertyInfo {
	info := extractUnitCounts(text)

	if all := vacantAnyPattern.FindAllStringSubmatch(text, -1); len(all) >= 2 {
		if n, err := strconv.Atoi(all[1][1]); err == nil {
			info.VacantCommercial = intPtr(n)
		}
	}

	info.IsVacantLot = vacantLotPattern.MatchString(text)
	info.SoftStoryRequired = softStoryRequired(text)
	return info
}

// extractCopa4PropertyInfo covers the notice form, which carries unit counts
// but none of the checkbox rows.
func extractCopa4PropertyInfo(text string) PropertyInfo {
	return extractUnitCounts(text)
}

func extractUnitCounts(text string) PropertyInfo {
	var info PropertyInfo
	for _, field := range unitCountPatterns {
		m := field.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			field.set(&info, n)
		}
	}
	return info
}

// softStoryRequired returns nil when neither box is marked.
func softStoryRequired(text string) *bool {
	m := softStoryPattern.FindStringSubmatch(text)
	switch {
	case m == nil:
		return nil
	case m[1] != "":
		return boolPtr(true)
	case m[2] != "":
		return boolPtr(false)
	}
	return nil
}
