package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"underline filler", "Seller: ____John Doe____", "Seller: John Doe"},
		{"asterisks", "**Total # of units** 12", "Total # of units 12"},
		{"newlines and tabs", "Property\n\tAddress:\r\n  1 Main St", "Property Address: 1 Main St"},
		{"only filler", "___ *** ___", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"  a  b  ",
		"Asking price: $1,295,000.00\n\n__Seller:__ *ACME*",
		"☑ Yes [ ] No\t\t# currently vacant 2",
		"Property Address: 450 Sutter Street",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
