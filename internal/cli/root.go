// Package cli implements the copa command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/config"
	"github.com/a3tai/copa-listings/internal/logging"
)

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

type appContextKey struct{}

// App carries the loaded configuration and logger through the command tree.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	closers []func()
}

// onClose registers f to run when the command finishes, in reverse order.
func (a *App) onClose(f func()) {
	a.closers = append(a.closers, f)
}

// Close releases everything the command opened.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.Logger.Sync()
}

// NewRootCommand creates the copa command with its subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copa",
		Short: "Turn COPA disclosure emails into property listings",
		Long: "copa classifies COPA disclosure PDFs, extracts listing fields, geocodes the\n" +
			"property and stores one listing per address.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildTime),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initApp(cmd, info)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, err := appFrom(cmd); err == nil {
				app.Close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(cmd.PersistentFlags())
	cmd.AddCommand(
		newClassifyCmd(),
		newExtractCmd(),
		newProcessCmd(),
		newPurgeCmd(),
		newExportCmd(),
	)
	return cmd
}

// initApp loads configuration from the parsed flags and stores the App in
// the command context.
func initApp(cmd *cobra.Command, info BuildInfo) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if info.Version != "" && info.Version != "dev" {
		cfg.Version = info.Version
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", zap.String("config", cfg.String()))

	app := &App{Config: cfg, Logger: logger}
	cmd.SetContext(context.WithValue(cmd.Context(), appContextKey{}, app))
	return nil
}

// appFrom extracts the App from a command's context.
func appFrom(cmd *cobra.Command) (*App, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	app, ok := ctx.Value(appContextKey{}).(*App)
	if !ok || app == nil {
		return nil, errors.New("application not initialized")
	}
	return app, nil
}

// Execute runs the command line with ctx and returns the first error.
func Execute(ctx context.Context, info BuildInfo, args []string) error {
	root := NewRootCommand(info)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", err)
		return err
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
