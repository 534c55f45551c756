package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/listing"
	"github.com/a3tai/copa-listings/internal/pdf"
	"github.com/a3tai/copa-listings/internal/pipeline"
)

type classifyOutput struct {
	Document  string   `json:"document"`
	Pages     int      `json:"pages"`
	Variant   string   `json:"variant"`
	PageIndex int      `json:"page_index"`
	Matched   []string `json:"matched_markers,omitempty"`
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <pdf>",
		Short: "Report which COPA form a PDF contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			classifier, err := app.classifier()
			if err != nil {
				return err
			}

			doc, err := pdf.NewReader(app.Config.MaxFileSize, app.Logger).ReadPages(args[0])
			if err != nil {
				return err
			}
			res, err := classifier.Classify(cmd.Context(), doc.Pages)
			if err != nil {
				return err
			}

			out := classifyOutput{
				Document:  doc.Name,
				Pages:     doc.PageCount(),
				Variant:   string(res.Variant),
				PageIndex: res.PageIndex,
				Matched:   res.Matched,
			}
			if !res.Recognized() {
				out.Variant = "none"
			}
			return printJSON(cmd, out)
		},
	}
}

func newExtractCmd() *cobra.Command {
	var geocode bool

	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract listing fields from a COPA form PDF",
		Long: "extract classifies the PDF, runs the matching extractor and prints the\n" +
			"assembled listing as JSON. With --geocode the address is resolved to\n" +
			"coordinates and a neighborhood.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			classifier, err := app.classifier()
			if err != nil {
				return err
			}

			doc, err := pdf.NewReader(app.Config.MaxFileSize, app.Logger).ReadPages(args[0])
			if err != nil {
				return err
			}
			draft, ok, err := pipeline.NewFormParser(classifier, app.Logger).Parse(cmd.Context(), doc.Name, doc.Pages)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no COPA form recognized in %s (%d pages)", doc.Name, doc.PageCount())
			}

			var enrichment listing.Enrichment
			if geocode && draft.Address.Found() {
				loader := NewBoundaryLoader(app.Config, app.Logger)
				neighborhoods, err := loader.Load(cmd.Context())
				if err != nil {
					app.Logger.Warn("could not load neighborhoods", zap.Error(err))
				}
				enrichment, _ = pipeline.Enrich(cmd.Context(), app.locator(cmd.Context()), draft.Address, neighborhoods)
			}

			rec := listing.Assemble(draft, enrichment, listing.Source{Document: doc.Name}, time.Now())
			return printJSON(cmd, pipeline.NewPreview(rec))
		},
	}
	cmd.Flags().BoolVar(&geocode, "geocode", false, "resolve coordinates and neighborhood for the address")
	return cmd
}
