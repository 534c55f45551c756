package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "testdata/copa3_two_pages.pdf"

func TestReader_ReadPages(t *testing.T) {
	r := NewReader(10*1024*1024, nil)

	doc, err := r.ReadPages(fixture)
	require.NoError(t, err)

	assert.Equal(t, "copa3_two_pages.pdf", doc.Name)
	require.Equal(t, 2, doc.PageCount())
	assert.Contains(t, doc.Page(0), "Qualified")
	assert.Contains(t, doc.Page(1), "Property Address:")
	assert.Contains(t, doc.Page(1), "Total # of units")
	assert.Empty(t, doc.Page(5))
}

func TestReader_ReadPagesFromBytes(t *testing.T) {
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)

	r := NewReader(10*1024*1024, nil)
	doc, err := r.ReadPagesFromBytes("attachment.pdf", data)
	require.NoError(t, err)
	require.Equal(t, 2, doc.PageCount())
	assert.Contains(t, doc.Page(1), "Soft Story work required")

	streamed, err := r.ReadAllFrom("attachment.pdf", strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, doc.Pages, streamed.Pages)
}

func TestReader_Errors(t *testing.T) {
	dir := t.TempDir()
	textFile := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textFile, []byte("hello"), 0o600))
	garbage := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pdf at all"), 0o600))
	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	r := NewReader(1024, nil)

	tests := []struct {
		name   string
		path   string
		target error
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.pdf")},
		{name: "directory", path: dir},
		{name: "wrong extension", path: textFile, target: ErrNotPDF},
		{name: "empty file", path: empty, target: ErrEmptyDocument},
		{name: "unparseable", path: garbage},
		{name: "too large", path: fixture, target: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ReadPages(tt.path)
			require.Error(t, err)
			assert.True(t, IsDocumentError(err))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestSplitPages(t *testing.T) {
	pages := []string{"first", "", "third"}
	joined := JoinPages(pages)
	assert.Equal(t, pages, SplitPages(joined))
	assert.Nil(t, SplitPages(""))
	assert.Equal(t, []string{"legacy single text"}, SplitPages("legacy single text"))
}
