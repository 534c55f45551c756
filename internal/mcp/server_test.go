package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/copa-listings/internal/config"
	"github.com/a3tai/copa-listings/internal/extract"
	"github.com/a3tai/copa-listings/internal/geo"
	"github.com/a3tai/copa-listings/internal/intelligence"
	"github.com/a3tai/copa-listings/internal/pdf"
)

type stubLocator struct{ point *geo.Point }

func (l stubLocator) Resolve(context.Context, extract.AddressRecord) *geo.Point { return l.point }

func newTestServer(t *testing.T, deps Deps) (*Server, string) {
	t.Helper()
	dir := t.TempDir()

	data, err := os.ReadFile("../pdf/testdata/copa3_two_pages.pdf")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "copa3.pdf"), data, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a pdf"), 0o600))

	svc, err := pdf.NewService(10*1024*1024, dir, nil)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.PDFDirectory = dir
	cfg.ServerName = "copa-test"

	deps.PDF = svc
	if deps.Classifier == nil {
		deps.Classifier = intelligence.NewFormClassifier(nil)
	}
	s, err := NewServer(cfg, deps)
	require.NoError(t, err)
	return s, dir
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			return text.Text
		}
		if text, ok := content.(*mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil, Deps{})
	assert.Error(t, err)

	_, err = NewServer(config.DefaultConfig(), Deps{})
	assert.Error(t, err)

	svc, err := pdf.NewService(1024, t.TempDir(), nil)
	require.NoError(t, err)
	_, err = NewServer(config.DefaultConfig(), Deps{PDF: svc})
	assert.Error(t, err, "classifier is required")
}

func TestHandleClassifyFile(t *testing.T) {
	s, _ := newTestServer(t, Deps{})

	result, err := s.handleClassifyFile(context.Background(), callRequest(map[string]any{"path": "copa3.pdf"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Form: COPA3")
	assert.Contains(t, text, "Page index: 1")
	assert.Contains(t, text, "Total # of units")
}

func TestHandleClassifyFile_Errors(t *testing.T) {
	s, _ := newTestServer(t, Deps{})

	result, err := s.handleClassifyFile(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleClassifyFile(context.Background(), callRequest(map[string]any{"path": "notes.txt"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleClassifyFile(context.Background(), callRequest(map[string]any{"path": "../../etc/passwd.pdf"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleExtractFile(t *testing.T) {
	s, _ := newTestServer(t, Deps{
		Locator: stubLocator{point: &geo.Point{Lat: 37.79, Lng: -122.41}},
		Loader:  staticLoader{},
	})

	result, err := s.handleExtractFile(context.Background(), callRequest(map[string]any{"path": "copa3.pdf", "geocode": true}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var preview struct {
		Listing map[string]any `json:"listing"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &preview))
	assert.Equal(t, "Union Square", preview.Listing["neighborhood"])
	assert.Equal(t, "form", preview.Details["parser"])
	source, ok := preview.Details["source"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "COPA3", source["form_variant"])
	assert.Equal(t, "copa3.pdf", source["document"])
}

func TestHandleExtractFile_WithoutGeocode(t *testing.T) {
	s, _ := newTestServer(t, Deps{})

	result, err := s.handleExtractFile(context.Background(), callRequest(map[string]any{"path": "copa3.pdf", "geocode": true}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"neighborhood": "Unknown"`)
}

func TestHandleValidateFile(t *testing.T) {
	s, _ := newTestServer(t, Deps{})

	result, err := s.handleValidateFile(context.Background(), callRequest(map[string]any{"path": "copa3.pdf"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "is valid and readable (2 pages)")

	result, err = s.handleValidateFile(context.Background(), callRequest(map[string]any{"path": "notes.txt"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "validation failed")
}

func TestHandleListFilesAndServerInfo(t *testing.T) {
	s, dir := newTestServer(t, Deps{})

	result, err := s.handleListFiles(context.Background(), callRequest(map[string]any{"query": "COPA"}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 PDF file(s)")
	assert.Contains(t, text, "copa3.pdf")
	assert.NotContains(t, text, "notes.txt")

	result, err = s.handleListFiles(context.Background(), callRequest(map[string]any{"query": "missing"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "(searched for: missing)")

	result, err = s.handleServerInfo(context.Background(), callRequest(nil))
	require.NoError(t, err)
	info := resultText(t, result)
	assert.Contains(t, info, "copa-test")
	assert.Contains(t, info, dir)
	assert.Contains(t, info, "copa_extract_file")
}

type staticLoader struct{}

func (staticLoader) Load(context.Context) (*geo.NeighborhoodSet, error) {
	return geo.NewNeighborhoodSet([]geo.Neighborhood{
		geo.NewNeighborhood("Union Square", orb.MultiPolygon{
			orb.Bound{Min: orb.Point{-122.42, 37.78}, Max: orb.Point{-122.40, 37.80}}.ToPolygon(),
		}),
	}), nil
}
