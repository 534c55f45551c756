package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const copa3Page = "Property Address: 450 Sutter Street, San Francisco, CA 94108 " +
	"Total # of units 12 # of residential units 10 # currently vacant 2 " +
	"# of commercial (office/retail) units 2 # currently vacant 1 " +
	"Check if a vacant lot [ ] Soft Story work required [ ] Yes [X] No"

func TestExtractPropertyInfo(t *testing.T) {
	got := ExtractPropertyInfo(copa3Page)

	require.NotNil(t, got.TotalUnits)
	require.NotNil(t, got.ResidentialUnits)
	require.NotNil(t, got.VacantResidential)
	require.NotNil(t, got.CommercialUnits)
	require.NotNil(t, got.VacantCommercial)
	require.NotNil(t, got.SoftStoryRequired)

	assert.Equal(t, 12, *got.TotalUnits)
	assert.Equal(t, 10, *got.ResidentialUnits)
	assert.Equal(t, 2, *got.VacantResidential)
	assert.Equal(t, 2, *got.CommercialUnits)
	assert.Equal(t, 1, *got.VacantCommercial)
	assert.False(t, got.IsVacantLot)
	assert.False(t, *got.SoftStoryRequired)
	assert.True(t, got.HasCounts())
}

func TestExtractPropertyInfo_Checkboxes(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantVacantLot bool
		wantSoftStory *bool
	}{
		{
			name:          "no markers at all",
			text:          "Total # of units 3",
			wantVacantLot: false,
			wantSoftStory: nil,
		},
		{
			name:          "soft story yes with check glyph",
			text:          "Soft Story work required ✓ Yes No",
			wantSoftStory: boolPtr(true),
		},
		{
			name:          "soft story no with ballot box",
			text:          "Soft Story work required Yes ☑ No",
			wantSoftStory: boolPtr(false),
		},
		{
			name:          "soft story label without a mark",
			text:          "Soft Story work required [ ] Yes [ ] No",
			wantSoftStory: nil,
		},
		{
			name:          "vacant lot marked",
			text:          "Check if a vacant lot [X]",
			wantVacantLot: true,
		},
		{
			name:          "vacant lot unspaced label",
			text:          "Checkifavacantlot ☑",
			wantVacantLot: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPropertyInfo(tt.text)
			assert.Equal(t, tt.wantVacantLot, got.IsVacantLot)
			assert.Equal(t, tt.wantSoftStory, got.SoftStoryRequired)
		})
	}
}

func TestExtractPropertyInfo_SingleVacantRow(t *testing.T) {
	got := ExtractPropertyInfo("# of residential units 4 # currently vacant 1")

	require.NotNil(t, got.VacantResidential)
	assert.Equal(t, 1, *got.VacantResidential)
	assert.Nil(t, got.VacantCommercial)
	assert.Nil(t, got.TotalUnits)
}

func TestExtractPropertyInfo_Empty(t *testing.T) {
	got := ExtractPropertyInfo("")
	assert.False(t, got.HasCounts())
	assert.False(t, got.IsVacantLot)
	assert.Nil(t, got.SoftStoryRequired)
}
