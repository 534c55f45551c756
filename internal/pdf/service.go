package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/a3tai/copa-listings/internal/pdf/security"
	"go.uber.org/zap"
)

// Service exposes PDF operations restricted to one working directory.
type Service struct {
	reader        *Reader
	validator     *Validator
	pathValidator *security.PathValidator
}

// NewService creates a new PDF service rooted at directory.
func NewService(maxFileSize int64, directory string, logger *zap.Logger) (*Service, error) {
	pathValidator, err := security.NewPathValidator(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		reader:        NewReader(maxFileSize, logger),
		validator:     NewValidator(maxFileSize),
		pathValidator: pathValidator,
	}, nil
}

// Reader returns the underlying page reader.
func (s *Service) Reader() *Reader {
	return s.reader
}

// Directory returns the working directory.
func (s *Service) Directory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// ReadPages reads a PDF inside the working directory. Relative paths are
// resolved against it.
func (s *Service) ReadPages(path string) (RawDocument, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return RawDocument{}, fmt.Errorf("security validation failed: %w", err)
	}
	return s.reader.ReadPages(resolved)
}

// ValidateFile validates a PDF inside the working directory.
func (s *Service) ValidateFile(path string) (ValidateResult, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return ValidateResult{}, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(resolved), nil
}

// ListFiles returns the PDFs directly inside the working directory whose
// names contain query (case-insensitive), newest first.
func (s *Service) ListFiles(query string) ([]FileInfo, error) {
	dir := s.Directory()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(entry.Name()), query) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:         filepath.Join(dir, entry.Name()),
			Name:         entry.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format(time.RFC3339),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedTime > files[j].ModifiedTime
	})
	return files, nil
}
