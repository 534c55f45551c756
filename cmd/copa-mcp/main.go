package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/cli"
	"github.com/a3tai/copa-listings/internal/config"
	"github.com/a3tai/copa-listings/internal/logging"
	"github.com/a3tai/copa-listings/internal/mcp"
	"github.com/a3tai/copa-listings/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

var errVersionRequested = errors.New("version requested")

// parseFlags parses args into a flag set carrying every configuration flag.
func parseFlags(args []string) (*pflag.FlagSet, error) {
	flags := pflag.NewFlagSet("copa-mcp", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	showVersion := flags.BoolP("version", "v", false, "Print version information and exit")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if *showVersion {
		return flags, errVersionRequested
	}
	return flags, nil
}

// newLogger keeps stdout free for the MCP protocol. In stdio mode only
// errors are logged unless debug logging is enabled.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		level = "error"
	}
	return logging.New(logging.Options{Level: level, Format: cfg.LogFormat, Output: "stderr"})
}

// newServer wires the MCP server from cfg.
func newServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*mcp.Server, func(), error) {
	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create PDF service: %w", err)
	}
	classifier, err := cli.NewClassifier(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	locator, closeLocator := cli.NewLocator(ctx, cfg, logger)

	server, err := mcp.NewServer(cfg, mcp.Deps{
		PDF:        pdfService,
		Classifier: classifier,
		Locator:    locator,
		Loader:     cli.NewBoundaryLoader(cfg, logger),
		Logger:     logger,
	})
	if err != nil {
		closeLocator()
		return nil, nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server, closeLocator, nil
}

// run serves until the server stops or a shutdown signal arrives.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags, err := parseFlags(args)
	if errors.Is(err, errVersionRequested) {
		printVersion(stdout)
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if version != "dev" {
		cfg.Version = version
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Debug("starting", zap.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	server, closeFn, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "copa-mcp: %v\n", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "COPA Listings MCP Server\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
