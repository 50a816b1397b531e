package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

var (
	queryLimit  int
	queryJSON   bool
	queryHybrid bool
	queryRerank bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search indexed chunks",
	Long: `Retrieves the chunks most relevant to the query. Hybrid mode fuses
dense (embedding) and lexical (full-text) scores; disable it with
--hybrid=false to use dense retrieval only.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", domain.DefaultQueryK, "maximum number of results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().BoolVar(&queryHybrid, "hybrid", true, "fuse dense and lexical scores")
	queryCmd.Flags().BoolVar(&queryRerank, "rerank", false, "rerank results with the configured reranker")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := ensureService(); err != nil {
		return err
	}

	opts := domain.QueryOptions{
		K:      queryLimit,
		Hybrid: queryHybrid,
		Rerank: queryRerank,
	}

	// Config values apply when the flags were left at their defaults.
	if !cmd.Flags().Changed("limit") && loadedConfig.Query.K > 0 {
		opts.K = loadedConfig.Query.K
	}
	if !cmd.Flags().Changed("hybrid") {
		opts.Hybrid = loadedConfig.Query.Hybrid
	}

	results, err := ragService.Query(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}
	return outputQueryTable(cmd, results)
}

func outputQueryJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryTable(cmd *cobra.Command, results []domain.ScoredChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, res := range results {
		title := chunkTitle(res.Chunk)
		cmd.Printf("  [%d] %s %s\n", i+1,
			titleStyle.Render(title),
			scoreStyle.Render(fmt.Sprintf("(%.3f)", res.Score)))
		if text := snippet(res.Chunk.Text, 120); text != "" {
			cmd.Printf("      %s\n", text)
		}
		cmd.Printf("      %s\n", mutedStyle.Render(res.Chunk.ID))
		cmd.Println()
	}
	return nil
}

// chunkTitle names a chunk for display: source title plus chunk index,
// falling back to the chunk ID.
func chunkTitle(chunk domain.Chunk) string {
	if src := chunk.Metadata.Source; src != nil && src.Title != "" {
		return fmt.Sprintf("%s #%d", src.Title, chunk.Metadata.ChunkIndex)
	}
	return chunk.ID
}
