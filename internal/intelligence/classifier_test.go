package intelligence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormClassifier(t *testing.T) {
	classifier := NewFormClassifier(nil)
	require.NotNil(t, classifier)

	rules := classifier.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, VariantCOPA3, rules[0].Variant)
	assert.Equal(t, VariantCOPA4, rules[1].Variant)
}

func TestFormClassifier_Classify(t *testing.T) {
	classifier := NewFormClassifier(nil)

	tests := []struct {
		name        string
		pages       []string
		wantVariant FormVariant
		wantIndex   int
	}{
		{
			name: "copa3 on second page",
			pages: []string{
				"Cover letter for the attached disclosure",
				"Property Address: 450 Sutter Street, San Francisco, CA 94108\nTotal # of units 12\n# of residential units 10",
			},
			wantVariant: VariantCOPA3,
			wantIndex:   1,
		},
		{
			name:        "copa4 notice",
			pages:       []string{"Notice of Intent to Sell ... each Qualified Nonprofit may respond"},
			wantVariant: VariantCOPA4,
			wantIndex:   0,
		},
		{
			name:        "single marker is not enough",
			pages:       []string{"Seller: Jane Doe"},
			wantVariant: VariantNone,
			wantIndex:   -1,
		},
		{
			name:        "markers are case sensitive",
			pages:       []string{"property address: 1 Main St total # of units 4"},
			wantVariant: VariantNone,
			wantIndex:   -1,
		},
		{
			name:        "markers split across pages do not count",
			pages:       []string{"Property Address: 1 Main St", "Seller: ACME LLC"},
			wantVariant: VariantNone,
			wantIndex:   -1,
		},
		{
			name:        "empty pages",
			pages:       []string{"", ""},
			wantVariant: VariantNone,
			wantIndex:   -1,
		},
		{
			name:        "no pages",
			pages:       nil,
			wantVariant: VariantNone,
			wantIndex:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := classifier.Classify(context.Background(), tt.pages)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVariant, got.Variant)
			assert.Equal(t, tt.wantIndex, got.PageIndex)
		})
	}
}

func TestFormClassifier_PriorityOrder(t *testing.T) {
	classifier := NewFormClassifier(nil)

	// COPA4 markers appear first, COPA3 markers on a later page; COPA3 wins.
	pages := []string{
		"Notice of Intent to Sell. Qualified Nonprofit. Offer Period.",
		"Seller: ACME LLC Property Address: 1 Main St",
	}

	got, err := classifier.Classify(context.Background(), pages)
	require.NoError(t, err)
	assert.Equal(t, VariantCOPA3, got.Variant)
	assert.Equal(t, 1, got.PageIndex)
	assert.ElementsMatch(t, []string{"Seller:", "Property Address:"}, got.Matched)
}

func TestFormClassifier_Deterministic(t *testing.T) {
	classifier := NewFormClassifier(nil)
	pages := []string{"Seller: X Property Address: Y", "Notice of Intent to Sell Sales Price"}

	first, err := classifier.Classify(context.Background(), pages)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := classifier.Classify(context.Background(), pages)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFormClassifier_ContextCancelled(t *testing.T) {
	classifier := NewFormClassifier(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := classifier.Classify(ctx, []string{"Seller: X Property Address: Y"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, got.Recognized())
}

func TestFormClassifier_LoadCustomRules(t *testing.T) {
	dir := t.TempDir()

	t.Run("appends after built-ins", func(t *testing.T) {
		path := filepath.Join(dir, "rules.json")
		content := `{"name":"extra","version":"1","rules":[
			{"variant":"COPA3-2019","family":"COPA3","markers":["Address of Property:","Number of units"],"enabled":true}
		]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		classifier := NewFormClassifier(nil)
		require.NoError(t, classifier.LoadCustomRules(path))
		require.Len(t, classifier.Rules(), 3)

		got, err := classifier.Classify(context.Background(), []string{"Address of Property: 9 Elm St Number of units 3"})
		require.NoError(t, err)
		assert.Equal(t, FormVariant("COPA3-2019"), got.Variant)
		assert.Equal(t, VariantCOPA3, classifier.ExtractorFamily(got.Variant))
	})

	t.Run("rejects unknown family", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		content := `{"rules":[{"variant":"X","family":"COPA9","markers":["a","b"],"enabled":true}]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		classifier := NewFormClassifier(nil)
		assert.Error(t, classifier.LoadCustomRules(path))
		assert.Len(t, classifier.Rules(), 2)
	})

	t.Run("enabled unless disabled", func(t *testing.T) {
		path := filepath.Join(dir, "enabled.json")
		content := `{"rules":[
			{"variant":"A","family":"COPA4","markers":["Alpha","Beta"]},
			{"variant":"B","family":"COPA4","markers":["Gamma","Delta"],"enabled":false}
		]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		classifier := NewFormClassifier(nil)
		require.NoError(t, classifier.LoadCustomRules(path))
		rules := classifier.Rules()
		require.Len(t, rules, 4)
		assert.True(t, rules[2].Enabled)
		assert.False(t, rules[3].Enabled)

		got, err := classifier.Classify(context.Background(), []string{"Alpha and Beta"})
		require.NoError(t, err)
		assert.Equal(t, FormVariant("A"), got.Variant)

		got, err = classifier.Classify(context.Background(), []string{"Gamma and Delta"})
		require.NoError(t, err)
		assert.False(t, got.Recognized())
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			rule    string
			wantErr bool
		}{
			{"default threshold", `{"variant":"X","family":"COPA3","markers":["a","b"]}`, false},
			{"explicit threshold", `{"variant":"X","family":"COPA3","markers":["a","b"],"threshold":2}`, false},
			{"threshold of one", `{"variant":"X","family":"COPA3","markers":["a","b"],"threshold":1}`, true},
			{"threshold of three", `{"variant":"X","family":"COPA3","markers":["a","b","c"],"threshold":3}`, true},
			{"too few markers", `{"variant":"X","family":"COPA3","markers":["a"]}`, true},
			{"no variant", `{"family":"COPA3","markers":["a","b"]}`, true},
		}

		for i, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				path := filepath.Join(dir, fmt.Sprintf("rule-%d.json", i))
				require.NoError(t, os.WriteFile(path, []byte(`{"rules":[`+tt.rule+`]}`), 0o600))

				classifier := NewFormClassifier(nil)
				err := classifier.LoadCustomRules(path)
				if tt.wantErr {
					assert.Error(t, err)
					assert.Len(t, classifier.Rules(), 2)
					return
				}
				assert.NoError(t, err)
				assert.Len(t, classifier.Rules(), 3)
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		classifier := NewFormClassifier(nil)
		assert.Error(t, classifier.LoadCustomRules(filepath.Join(dir, "nope.json")))
	})
}
