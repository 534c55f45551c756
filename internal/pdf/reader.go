package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Reader extracts per-page plain text from PDF documents.
type Reader struct {
	maxFileSize int64
	maxPageText int
	logger      *zap.Logger
}

// NewReader creates a reader that rejects files larger than maxFileSize.
func NewReader(maxFileSize int64, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		maxFileSize: maxFileSize,
		maxPageText: 1024 * 1024, // 1MB per page
		logger:      logger,
	}
}

// ReadPages reads a PDF file from disk.
func (r *Reader) ReadPages(path string) (RawDocument, error) {
	name := filepath.Base(path)
	fileInfo, err := os.Stat(path)
	if err != nil {
		return RawDocument{}, &DocumentError{Name: name, Op: "stat", Err: err}
	}
	if fileInfo.IsDir() {
		return RawDocument{}, &DocumentError{Name: name, Op: "stat", Err: fmt.Errorf("path is a directory")}
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return RawDocument{}, &DocumentError{Name: name, Op: "open", Err: ErrNotPDF}
	}
	if err := r.checkSize(fileInfo.Size()); err != nil {
		return RawDocument{}, &DocumentError{Name: name, Op: "open", Err: err}
	}

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return RawDocument{}, &DocumentError{Name: name, Op: "open", Err: err}
	}
	defer f.Close()

	return r.readAll(name, pdfReader), nil
}

// ReadPagesFromBytes reads a PDF held in memory, such as a downloaded attachment.
func (r *Reader) ReadPagesFromBytes(name string, data []byte) (RawDocument, error) {
	if err := r.checkSize(int64(len(data))); err != nil {
		return RawDocument{}, &DocumentError{Name: name, Op: "open", Err: err}
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return RawDocument{}, &DocumentError{Name: name, Op: "open", Err: err}
	}
	return r.readAll(name, pdfReader), nil
}

func (r *Reader) checkSize(size int64) error {
	if size == 0 {
		return ErrEmptyDocument
	}
	if size > r.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, size, r.maxFileSize)
	}
	return nil
}

func (r *Reader) readAll(name string, pdfReader *pdf.Reader) RawDocument {
	doc := RawDocument{Name: name, Pages: make([]string, pdfReader.NumPage())}
	for i := range doc.Pages {
		doc.Pages[i] = r.pageText(name, pdfReader, i+1)
	}
	return doc
}

// pageText returns "" for pages that cannot be decoded; the library panics
// on some malformed content streams.
func (r *Reader) pageText(name string, pdfReader *pdf.Reader, pageNum int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("page text extraction panicked",
				zap.String("document", name), zap.Int("page", pageNum), zap.Any("panic", rec))
			text = ""
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		r.logger.Debug("page text extraction failed",
			zap.String("document", name), zap.Int("page", pageNum), zap.Error(err))
		return ""
	}
	if len(content) > r.maxPageText {
		content = content[:r.maxPageText]
	}
	return content
}

// ReadAllFrom buffers an attachment stream and reads it.
func (r *Reader) ReadAllFrom(name string, src io.Reader) (RawDocument, error) {
	data, err := io.ReadAll(io.LimitReader(src, r.maxFileSize+1))
	if err != nil {
		return RawDocument{}, &DocumentError{Name: name, Op: "read", Err: err}
	}
	return r.ReadPagesFromBytes(name, data)
}
