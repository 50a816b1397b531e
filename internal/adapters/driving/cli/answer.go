package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

var (
	answerTopK   int
	answerJSON   bool
	answerHybrid bool
	answerRerank bool
)

var answerCmd = &cobra.Command{
	Use:   "answer [question]",
	Short: "Answer a question from indexed content",
	Long: `Retrieves the most relevant chunks and asks the configured model to
answer the question using only those passages as context.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswer,
}

func init() {
	answerCmd.Flags().IntVarP(&answerTopK, "contexts", "k", domain.DefaultAnswerK, "number of context passages")
	answerCmd.Flags().BoolVar(&answerJSON, "json", false, "output the answer as JSON")
	answerCmd.Flags().BoolVar(&answerHybrid, "hybrid", true, "fuse dense and lexical scores during retrieval")
	answerCmd.Flags().BoolVar(&answerRerank, "rerank", false, "rerank retrieved contexts")
	rootCmd.AddCommand(answerCmd)
}

func runAnswer(cmd *cobra.Command, args []string) error {
	if err := ensureService(); err != nil {
		return err
	}

	opts := domain.AnswerOptions{
		TopK:   answerTopK,
		Hybrid: answerHybrid,
		Rerank: answerRerank,
	}

	// Config value applies when the flag was left at its default.
	if !cmd.Flags().Changed("hybrid") {
		opts.Hybrid = loadedConfig.Query.Hybrid
	}

	answer, err := ragService.Answer(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if answerJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)

	if len(answer.Contexts) > 0 {
		cmd.Println()
		cmd.Println(mutedStyle.Render("Sources:"))
		for i, ctx := range answer.Contexts {
			cmd.Printf("  [%d] %s %s\n", i+1,
				chunkTitle(ctx.Chunk),
				mutedStyle.Render(fmt.Sprintf("(%.3f)", ctx.Score)))
		}
	}
	return nil
}
