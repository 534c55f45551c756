package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSellerInfo(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"spaced label", "Seller: Sutter Holdings LLC Asking price: $2,000,000", "Sutter Holdings LLC"},
		{"unspaced label", "Seller: Jane Q. Owner Askingprice $900,000", "Jane Q. Owner"},
		{"no asking price", "Seller: Nobody", ""},
		{"no seller", "Asking price: $1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSellerInfo(tt.text).SellerName)
		})
	}
}
