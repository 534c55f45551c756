package extract

import (
	"regexp"
	"strconv"
	"strings"
)

const amountExpr = `\$?\s*(\d[\d,]*(?:\.\d+)?)`

// labelExpr joins label words so that both "Asking price" and the OCR'd
// "Askingprice" match.
func labelExpr(words ...string) string {
	return strings.Join(words, `\s*`)
}

func amountPattern(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + labelExpr(words...) + `\s*:?\s*` + amountExpr)
}

type amountField struct {
	pattern *regexp.Regexp
	// notAfter rejects a match whose label is preceded by this word, so that
	// "Monthly Income" does not claim the "Total Monthly Income" figure.
	notAfter string
	set      func(*FinancialInfo, float64)
}

var amountFields = []amountField{
	{amountPattern("Asking", "price"), "", func(f *FinancialInfo, v float64) { f.AskingPrice = floatPtr(v) }},
	{amountPattern("Monthly", "Income"), "total", func(f *FinancialInfo, v float64) { f.MonthlyIncome = floatPtr(v) }},
	{amountPattern("Total", "Rents"), "", func(f *FinancialInfo, v float64) { f.TotalRents = floatPtr(v) }},
	{amountPattern("Other", "Income"), "", func(f *FinancialInfo, v float64) { f.OtherIncome = floatPtr(v) }},
	{amountPattern("Total", "Monthly", "Income"), "", func(f *FinancialInfo, v float64) { f.TotalMonthlyIncome = floatPtr(v) }},
	{amountPattern("Total", "Annual", "Income"), "", func(f *FinancialInfo, v float64) { f.TotalAnnualIncome = floatPtr(v) }},
	{amountPattern("Annual", "Expenses"), "total", func(f *FinancialInfo, v float64) { f.AnnualExpenses = floatPtr(v) }},
	{amountPattern("Less", "Total", "Annual", "Expenses"), "", func(f *FinancialInfo, v float64) { f.LessTotalAnnualExpenses = floatPtr(v) }},
	{amountPattern("Net", "Operating", "Income"), "", func(f *FinancialInfo, v float64) { f.NetOperatingIncome = floatPtr(v) }},
	{amountPattern("Insurance"), "", func(f *FinancialInfo, v float64) { f.Insurance = floatPtr(v) }},
	{amountPattern("Utilities"), "", func(f *FinancialInfo, v float64) { f.Utilities = floatPtr(v) }},
	{amountPattern("Maintenance"), "", func(f *FinancialInfo, v float64) { f.Maintenance = floatPtr(v) }},
	{amountPattern("Other", "Expenses"), "", func(f *FinancialInfo, v float64) { f.OtherExpenses = floatPtr(v) }},
}

// rateField reads a percentage and a dollar amount printed under one label,
// e.g. "Property Tax 1.18% $23,450".
type rateField struct {
	rate    *regexp.Regexp
	amount  *regexp.Regexp
	setRate func(*FinancialInfo, float64)
	setAmt  func(*FinancialInfo, float64)
}

func newRateField(setRate, setAmt func(*FinancialInfo, float64), words ...string) rateField {
	label := `(?i)` + labelExpr(words...)
	return rateField{
		rate:    regexp.MustCompile(label + `[^%$\d]{0,20}?(\d+(?:\.\d+)?)\s*%`),
		amount:  regexp.MustCompile(label + `[^$]{0,40}?\$\s*(\d[\d,]*(?:\.\d+)?)`),
		setRate: setRate,
		setAmt:  setAmt,
	}
}

var rateFields = []rateField{
	newRateField(
		func(f *FinancialInfo, v float64) { f.PropertyTaxRate = floatPtr(v) },
		func(f *FinancialInfo, v float64) { f.PropertyTaxAmount = floatPtr(v) },
		"Property", "Tax",
	),
	newRateField(
		func(f *FinancialInfo, v float64) { f.ManagementRate = floatPtr(v) },
		func(f *FinancialInfo, v float64) { f.ManagementAmount = floatPtr(v) },
		"Management",
	),
}

// ExtractFinancialInfo reads the dollar figures from normalized text. Fields
// whose label is missing stay nil.
func ExtractFinancialInfo(text string) FinancialInfo {
	info := FinancialInfo{RentRoll: []RentRollEntry{}}

	for _, field := range amountFields {
		if v, ok := findAmount(text, field.pattern, field.notAfter); ok {
			field.set(&info, v)
		}
	}
	for _, field := range rateFields {
		if m := field.rate.FindStringSubmatch(text); m != nil {
			if v, ok := ParseAmount(m[1]); ok {
				field.setRate(&info, v)
			}
		}
		if m := field.amount.FindStringSubmatch(text); m != nil {
			if v, ok := ParseAmount(m[1]); ok {
				field.setAmt(&info, v)
			}
		}
	}
	return info
}

func findAmount(text string, pattern *regexp.Regexp, notAfter string) (float64, bool) {
	for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
		if notAfter != "" && precededBy(text[:loc[0]], notAfter) {
			continue
		}
		return ParseAmount(text[loc[2]:loc[3]])
	}
	return 0, false
}

func precededBy(prefix, word string) bool {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	return strings.HasSuffix(prefix, word)
}

// ParseAmount parses a number with optional thousands separators.
func ParseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
