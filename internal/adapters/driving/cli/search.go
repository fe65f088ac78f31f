package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

var (
	searchModality  string
	searchLimit     int
	searchMinDeltaG float64
	searchLambda    float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed binding literature",
	Long: `Embeds the query in the chosen modality space and returns the nearest
passages, reranked by maximal marginal relevance.

The query is free text for the text modality, an amino-acid sequence for
protein and a SMILES string for molecule.`,
	Example: `  bioorbit search "allosteric ABL inhibitor"
  bioorbit search -m molecule "CC(=O)Oc1ccccc1C(=O)O" --min-delta-g -8
  bioorbit search --lambda 1 --json "kinase hinge binder"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchModality, "modality", "m", string(domain.ModalityText),
		"embedding space: text, protein or molecule")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinDeltaG, "min-delta-g", 0,
		"keep only passages with delta_g at or below this value (kcal/mol)")
	searchCmd.Flags().Float64Var(&searchLambda, "lambda", -1,
		"diversity trade-off in [0,1]; 1 is pure relevance (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errNotBootstrapped
	}

	modality, err := domain.ParseModality(searchModality)
	if err != nil {
		return err
	}

	req := domain.SearchRequest{
		Query:    args[0],
		Modality: modality,
		Limit:    searchLimit,
	}
	if cmd.Flags().Changed("min-delta-g") {
		req.MinAttribute = domain.Float64(searchMinDeltaG)
	}
	if cmd.Flags().Changed("lambda") {
		req.DiversityLambda = domain.Float64(searchLambda)
	}

	results, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	if results == nil {
		results = []domain.SearchResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// resultStyles renders plain text unless stdout is a terminal.
type resultStyles struct {
	title, muted, attr lipgloss.Style
}

func newResultStyles(w io.Writer) resultStyles {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		plain := lipgloss.NewStyle()
		return resultStyles{title: plain, muted: plain, attr: plain}
	}
	return resultStyles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DCFFF")),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#565F89")),
		attr:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A")),
	}
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	st := newResultStyles(cmd.OutOrStdout())
	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		p := results[i].Payload
		title := p.Title
		if title == "" {
			title = "PMID " + p.PMID
		}

		cmd.Printf("  [%d] %s (%.3f)\n", i+1, st.title.Render(title), results[i].Score)

		meta := "      PMID " + p.PMID
		if p.DeltaG != 0 {
			meta += "  " + st.attr.Render(fmt.Sprintf("ΔG %.2f kcal/mol", p.DeltaG))
		}
		cmd.Println(meta)
		if p.URL != "" {
			cmd.Printf("      %s\n", st.muted.Render(p.URL))
		}
		if snippet := snippet(p.Chunk, 160); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
}

// snippet flattens whitespace and cuts text to n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n-3]) + "..."
}
