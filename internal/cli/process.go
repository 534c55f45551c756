package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/a3tai/copa-listings/internal/pipeline"
)

func newProcessCmd() *cobra.Command {
	var emailID string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Turn unprocessed emails into listings",
		Long: "process reads unprocessed emails, parses their COPA forms (falling back to\n" +
			"the AI parser), geocodes each address and stores or links the listing.\n" +
			"Without --email-id or --limit on a terminal, it asks what to process.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			opts := pipeline.BatchOptions{Limit: app.Config.BatchLimit, EmailID: emailID}
			if emailID == "" && !cmd.Flags().Changed("limit") && isTerminal(cmd.InOrStdin()) {
				opts, err = promptBatchOptions(cmd.InOrStdin(), cmd.ErrOrStderr(), app.Config.BatchLimit)
				if err != nil {
					return err
				}
			}

			reg := prometheus.NewRegistry()
			if app.Config.MetricsAddr != "" {
				app.onClose(serveMetrics(app.Config.MetricsAddr, reg, app.Logger))
			}

			proc, err := app.processor(cmd.Context(), pipeline.NewMetrics(reg))
			if err != nil {
				return err
			}
			summary, err := proc.RunBatch(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&emailID, "email-id", "", "process only this email")
	cmd.Flags().Int("limit", pipeline.DefaultBatchLimit, "maximum number of unprocessed emails to process")
	cmd.Flags().String("metrics", "", "serve Prometheus metrics on this address while running (e.g. :9090)")
	return cmd
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// promptBatchOptions asks for a batch size or an email ID. An empty answer
// keeps defaultLimit.
func promptBatchOptions(in io.Reader, out io.Writer, defaultLimit int) (pipeline.BatchOptions, error) {
	fmt.Fprintf(out, "How many unprocessed emails? [%d] (or paste an email ID): ", defaultLimit)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return pipeline.BatchOptions{}, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.TrimSpace(line)

	switch {
	case answer == "":
		return pipeline.BatchOptions{Limit: defaultLimit}, nil
	case isUUID(answer):
		return pipeline.BatchOptions{EmailID: answer}, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n <= 0 {
		return pipeline.BatchOptions{}, fmt.Errorf("expected a positive number or an email ID, got %q", answer)
	}
	return pipeline.BatchOptions{Limit: n}, nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// serveMetrics exposes reg on addr and returns a func that stops the server.
func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printSummary(w io.Writer, s pipeline.BatchSummary) {
	fmt.Fprintf(w, "Processed %d email(s): %d created, %d linked, %d placeholder(s), %d skipped, %d failed\n",
		s.Total, s.Created, s.Linked, s.Placeholders, s.Skipped, s.Failed)
	for _, r := range s.Results {
		flag := ""
		if r.Flagged {
			flag = " [flagged]"
		}
		fmt.Fprintf(w, "  %s  %-11s %s%s\n", r.EmailID, r.Outcome, r.Address, flag)
	}
}
