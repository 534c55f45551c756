package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/config"
	"github.com/a3tai/copa-listings/internal/descriptions"
	"github.com/a3tai/copa-listings/internal/geo"
	"github.com/a3tai/copa-listings/internal/listing"
	"github.com/a3tai/copa-listings/internal/pdf"
	"github.com/a3tai/copa-listings/internal/pipeline"
)

// Deps are the collaborators the tools call. Locator and Loader are optional;
// without them copa_extract_file ignores geocode requests.
type Deps struct {
	PDF        *pdf.Service
	Classifier pipeline.Classifier
	Locator    pipeline.Locator
	Loader     geo.BoundaryLoader
	Logger     *zap.Logger
}

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	classifier pipeline.Classifier
	forms      *pipeline.FormParser
	locator    pipeline.Locator
	loader     geo.BoundaryLoader
	mcpServer  *server.MCPServer
	logger     *zap.Logger

	neighborhoodsOnce sync.Once
	neighborhoods     *geo.NeighborhoodSet
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if deps.PDF == nil {
		return nil, errors.New("pdfService cannot be nil")
	}
	if deps.Classifier == nil {
		return nil, errors.New("classifier cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: deps.PDF,
		classifier: deps.Classifier,
		forms:      pipeline.NewFormParser(deps.Classifier, deps.Logger),
		locator:    deps.Locator,
		loader:     deps.Loader,
		mcpServer:  mcpServer,
		logger:     deps.Logger,
	}
	s.registerTools()
	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"copa_classify_file",
		mcp.WithDescription(descriptions.GetToolDescription("copa_classify_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, absolute or relative to the working directory"),
		),
	), s.handleClassifyFile)

	s.mcpServer.AddTool(mcp.NewTool(
		"copa_extract_file",
		mcp.WithDescription(descriptions.GetToolDescription("copa_extract_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, absolute or relative to the working directory"),
		),
		mcp.WithBoolean("geocode",
			mcp.Description("Resolve coordinates and neighborhood for the extracted address"),
		),
	), s.handleExtractFile)

	s.mcpServer.AddTool(mcp.NewTool(
		"copa_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("copa_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	), s.handleValidateFile)

	s.mcpServer.AddTool(mcp.NewTool(
		"copa_list_files",
		mcp.WithDescription(descriptions.GetToolDescription("copa_list_files")),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive filter on file names"),
		),
	), s.handleListFiles)

	s.mcpServer.AddTool(mcp.NewTool(
		"copa_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("copa_server_info")),
	), s.handleServerInfo)
}

// Handler functions
func (s *Server) handleClassifyFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.pdfService.ReadPages(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.classifier.Classify(ctx, doc.Pages)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatClassification(doc, string(res.Variant), res.PageIndex, res.Matched)), nil
}

func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	geocode, _ := request.GetArguments()["geocode"].(bool)

	doc, err := s.pdfService.ReadPages(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	draft, ok, err := s.forms.Parse(ctx, doc.Name, doc.Pages)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no COPA form recognized in %s (%d pages)", doc.Name, doc.PageCount())), nil
	}

	var enrichment listing.Enrichment
	if geocode && s.locator != nil && draft.Address.Found() {
		enrichment, _ = pipeline.Enrich(ctx, s.locator, draft.Address, s.loadNeighborhoods(ctx))
	}

	rec := listing.Assemble(draft, enrichment, listing.Source{Document: doc.Name}, time.Now())
	data, err := json.MarshalIndent(pipeline.NewPreview(rec), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleListFiles(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, _ := request.GetArguments()["query"].(string)

	files, err := s.pdfService.ListFiles(query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatFileList(s.pdfService.Directory(), query, files)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.pdfService.ListFiles("")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Working Directory: %s\n", s.pdfService.Directory())
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("🌐 Geocoding: %t\n\n", s.locator != nil)

	if len(files) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(files))
		for i, file := range files {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(files)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in working directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, name := range descriptions.GetAllToolNames() {
		summary, _, _ := strings.Cut(descriptions.GetToolDescription(name), "\n")
		text += fmt.Sprintf("• %s: %s\n", name, summary)
	}
	return mcp.NewToolResultText(text), nil
}

// loadNeighborhoods loads boundaries on first use.
func (s *Server) loadNeighborhoods(ctx context.Context) *geo.NeighborhoodSet {
	s.neighborhoodsOnce.Do(func() {
		if s.loader == nil {
			return
		}
		set, err := s.loader.Load(ctx)
		if err != nil {
			s.logger.Warn("could not load neighborhoods", zap.Error(err))
			return
		}
		s.neighborhoods = set
	})
	return s.neighborhoods
}

func formatClassification(doc pdf.RawDocument, variant string, page int, matched []string) string {
	if variant == "" {
		return fmt.Sprintf("No COPA form recognized in %s (%d pages)", doc.Name, doc.PageCount())
	}
	text := fmt.Sprintf("Form: %s\n", variant)
	text += fmt.Sprintf("Document: %s (%d pages)\n", doc.Name, doc.PageCount())
	text += fmt.Sprintf("Page index: %d\n", page)
	text += fmt.Sprintf("Matched markers: %s\n", strings.Join(matched, "; "))
	return text
}

func formatFileList(dir, query string, files []pdf.FileInfo) string {
	if len(files) == 0 {
		text := fmt.Sprintf("No PDF files found in directory: %s", dir)
		if query != "" {
			text += fmt.Sprintf(" (searched for: %s)", query)
		}
		return text
	}

	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", len(files), dir)
	for i, file := range files {
		text += fmt.Sprintf("%d. %s (%d bytes, modified %s)\n", i+1, filepath.Base(file.Path), file.Size, file.ModifiedTime)
	}
	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server over standard I/O
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debug("starting MCP server in stdio mode", zap.String("dir", s.pdfService.Directory()))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE until ctx is cancelled
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server in SSE mode", zap.String("addr", addr))
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve sse: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sse.Shutdown(shutdownCtx)
	}
}
