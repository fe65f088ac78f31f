package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

var (
	ingestQuery      string
	ingestMaxResults int
	ingestJSON       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch new PubMed records into the index",
	Long: `Runs one ingestion pass: fetches records published since the watermark,
drops identifiers already in the index, chunks and embeds the rest and
upserts them. The watermark advances only when new passages were stored.`,
	Aliases: []string{"update-db"},
	Args:    cobra.NoArgs,
	RunE:    runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestQuery, "query", "q", "", "PubMed search term (default from config)")
	ingestCmd.Flags().IntVar(&ingestMaxResults, "max-results", 0, "maximum records to fetch (default from config)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errNotBootstrapped
	}

	report, err := ingestService.Run(cmd.Context(), domain.IngestRequest{
		Query:      ingestQuery,
		MaxResults: ingestMaxResults,
	})

	if report != nil {
		if ingestJSON {
			data, mErr := json.MarshalIndent(report, "", "  ")
			if mErr != nil {
				return fmt.Errorf("failed to marshal report: %w", mErr)
			}
			cmd.Println(string(data))
		} else {
			printReport(cmd, report)
		}
	}

	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, r *domain.IngestReport) {
	cmd.Printf("Status: %s\n", r.Status)
	if r.Message != "" {
		cmd.Printf("  %s\n", r.Message)
	}
	c := r.Counts
	cmd.Printf("  fetched %d, duplicates %d, skipped %d\n", c.Fetched, c.Duplicates, c.SkippedEmpty)
	cmd.Printf("  chunks %d, embedded %d, upserted %d\n", c.Chunks, c.Embedded, c.Upserted)
	if r.Advanced() {
		cmd.Printf("  watermark advanced to %s\n", domain.FormatWatermark(*r.Watermark))
	}
}
