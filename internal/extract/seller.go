package extract

import (
	"regexp"
	"strings"
)

// The label is sometimes OCR'd without its space ("Askingprice").
var sellerPattern = regexp.MustCompile(`(?s)Seller:\s*(.*?)Asking\s*price`)

// ExtractSellerInfo captures the text between "Seller:" and the asking price label.
func ExtractSellerInfo(text string) SellerInfo {
	m := sellerPattern.FindStringSubmatch(text)
	if m == nil {
		return SellerInfo{}
	}
	return SellerInfo{SellerName: strings.TrimSpace(m[1])}
}
