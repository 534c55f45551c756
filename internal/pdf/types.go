package pdf

import "strings"

// PageSeparator joins page texts when a document is cached as one string.
const PageSeparator = "\f"

// RawDocument is the ordered text of each page. A page whose text could not
// be extracted is the empty string.
type RawDocument struct {
	Name  string   `json:"name"`
	Pages []string `json:"pages"`
}

// PageCount returns the number of pages.
func (d RawDocument) PageCount() int {
	return len(d.Pages)
}

// Page returns the text of page i, or "" when out of range.
func (d RawDocument) Page(i int) string {
	if i < 0 || i >= len(d.Pages) {
		return ""
	}
	return d.Pages[i]
}

// Text joins the pages with PageSeparator.
func (d RawDocument) Text() string {
	return JoinPages(d.Pages)
}

// JoinPages joins page texts for storage.
func JoinPages(pages []string) string {
	return strings.Join(pages, PageSeparator)
}

// SplitPages reverses JoinPages. Text stored without separators is one page.
func SplitPages(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, PageSeparator)
}

// FileInfo describes a PDF in the working directory.
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ValidateResult reports whether a file is a readable PDF.
type ValidateResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}
