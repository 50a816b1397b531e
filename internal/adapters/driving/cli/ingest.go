package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

var (
	ingestTitle string
	ingestKind  string
	ingestURL   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest and index a document",
	Long: `Reads a document, splits it into chunks, embeds them, and writes them
to the vector and lexical stores. Pass "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (default: file name)")
	ingestCmd.Flags().StringVar(&ingestKind, "kind", "", "source kind, e.g. markdown (default: from file extension)")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "source URL for attribution")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureService(); err != nil {
		return err
	}

	path := args[0]
	content, err := readDocument(path)
	if err != nil {
		return err
	}

	source := &domain.SourceDescriptor{
		Title: ingestTitle,
		Kind:  ingestKind,
		URL:   ingestURL,
	}
	if source.Title == "" {
		if path == "-" {
			return fmt.Errorf("--title is required when reading from stdin")
		}
		base := filepath.Base(path)
		source.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if source.Kind == "" && strings.EqualFold(filepath.Ext(path), ".md") {
		source.Kind = domain.SourceKindMarkdown
	}

	ctx := cmd.Context()
	result, err := ragService.Ingest(ctx, source, content)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if err := ragService.Index(ctx, result.Chunks); err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks from %s (source %s)\n",
		len(result.Chunks), titleStyle.Render(source.Title), mutedStyle.Render(result.SourceID))
	return nil
}

func readDocument(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
