package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/copa-listings/internal/listing"
)

func TestWriteXLSX(t *testing.T) {
	price := 8500000.0
	units := 12
	listings := []listing.Stored{
		{
			ID: "3f1c6a1e-0000-4000-8000-000000000001",
			Record: listing.Record{
				TimeSent:     time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC),
				FullAddress:  "450 Sutter Street, San Francisco, CA 94108",
				Neighborhood: "Union Square",
				AskingPrice:  &price,
				TotalUnits:   &units,
			},
		},
		{
			ID:     "3f1c6a1e-0000-4000-8000-000000000002",
			Record: listing.Record{FullAddress: "COPA notice", Neighborhood: "Unknown", Flagged: true},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(listings, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "2025-04-02 15:00", rows[1][0])
	assert.Equal(t, "450 Sutter Street, San Francisco, CA 94108", rows[1][1])
	assert.Equal(t, "Union Square", rows[1][2])
	assert.Equal(t, "8500000", rows[1][3])
	assert.Equal(t, "12", rows[1][4])
	assert.Equal(t, "no", rows[1][10])
	assert.Equal(t, "yes", rows[2][10])
	assert.Equal(t, "", rows[2][3], "missing price is blank")
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(nil, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
