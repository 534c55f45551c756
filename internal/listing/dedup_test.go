package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"450 Sutter Street, San Francisco, CA 94108", "450 sutter st 94108"},
		{"  450   SUTTER st, sf, ca 94108 ", "450 sutter st 94108"},
		{"1 Saint Francis Place", "1 st francis pl"},
		{"88 Mission Boulevard", "88 mission blvd"},
		{"2400 California Street, San Francisco, CA 94115", "2400 california st 94115"},
		{"1201 Pine St, California St, San Francisco, CA 94109", "1201 pine st, california st 94109"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DedupKey(tt.in), tt.in)
	}
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("450 Sutter Street, San Francisco, CA 94108", "450 sutter st, SF, CA 94108"))
	assert.False(t, SameAddress("450 Sutter Street", "451 Sutter Street"))
	assert.False(t, SameAddress("", ""))
	assert.False(t, SameAddress("1201 Pine St, California St", "1201 Pine St, Larkin St"))
}
