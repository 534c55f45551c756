package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/export"
	"github.com/a3tai/copa-listings/internal/pipeline"
)

func newPurgeCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete old emails and their attachment files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if days < 0 {
				return fmt.Errorf("days must be positive, got %d", days)
			}
			retention := app.Config.Retention()
			if days > 0 {
				retention = time.Duration(days) * 24 * time.Hour
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			blobs, err := app.blobs(cmd.Context())
			if err != nil {
				return err
			}

			summary, err := pipeline.NewPurger(st, blobs, nil, app.Logger).Purge(cmd.Context(), time.Now(), retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged emails received before %s: %d attachment file(s) deleted, %d failed\n",
				summary.Cutoff.Format(time.RFC3339), summary.BlobsDeleted, summary.BlobsFailed)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention in days (default from configuration, 90)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all stored listings to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			listings, err := st.ListListings(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := export.WriteXLSX(listings, f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			app.Logger.Info("exported listings", zap.Int("count", len(listings)), zap.String("path", out))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d listing(s) to %s\n", len(listings), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output .xlsx path")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
