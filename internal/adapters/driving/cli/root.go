// Package cli implements the orquel command-line interface using cobra.
//
// Commands are wired to the core RAG service through the driving port,
// with driven adapters selected from the TOML configuration. Service
// construction is lazy so commands that need no backend (version, help)
// run without any configuration present.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	configfile "github.com/0xKoller/orquel-sub001/internal/adapters/driven/config/file"
	ollamaembed "github.com/0xKoller/orquel-sub001/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/0xKoller/orquel-sub001/internal/adapters/driven/embedding/openai"
	openaillm "github.com/0xKoller/orquel-sub001/internal/adapters/driven/llm/openai"
	blevestore "github.com/0xKoller/orquel-sub001/internal/adapters/driven/store/bleve"
	memstore "github.com/0xKoller/orquel-sub001/internal/adapters/driven/store/memory"
	sqlitestore "github.com/0xKoller/orquel-sub001/internal/adapters/driven/store/sqlite"
	"github.com/0xKoller/orquel-sub001/internal/chunker"
	"github.com/0xKoller/orquel-sub001/internal/core/ports/driven"
	"github.com/0xKoller/orquel-sub001/internal/core/ports/driving"
	"github.com/0xKoller/orquel-sub001/internal/core/services"
	"github.com/0xKoller/orquel-sub001/internal/logger"
)

// version is set by Execute from the build-time version string.
var version = "dev"

var (
	configPath  string
	verboseFlag bool
)

// ragService is the driving port used by all commands. Tests may set
// it directly to inject a mock; commands build it lazily otherwise.
var ragService driving.RAGService

// closers holds driven adapters that need shutdown after the command
// completes.
var closers []io.Closer

// loadedConfig holds the configuration behind the current service.
// Retrieval commands read it for flag defaults the user did not
// override.
var loadedConfig = configfile.Default()

var rootCmd = &cobra.Command{
	Use:   "orquel",
	Short: "Retrieval-augmented generation toolkit",
	Long: `Orquel ingests documents, indexes them for hybrid dense and lexical
retrieval, and answers questions grounded in the retrieved passages.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.orquel/config.toml)")
}

// Execute runs the root command. The version string is injected from
// main so build metadata stays out of this package.
func Execute(v string) error {
	version = v
	defer closeAll()
	return rootCmd.Execute()
}

func closeAll() {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn("closing adapter: %v", err)
		}
	}
	closers = nil
}

// ensureService builds the RAG service from configuration on first
// use. A service injected by tests is left untouched.
func ensureService() error {
	if ragService != nil {
		return nil
	}

	path := configPath
	if path == "" {
		var err error
		path, err = configfile.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := configfile.Load(path)
	if err != nil {
		return err
	}
	loadedConfig = cfg
	logger.Debug("loaded config from %s", path)

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	ragService = svc
	return nil
}

func buildService(cfg configfile.Config) (driving.RAGService, error) {
	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	answerer, err := buildAnswerer(cfg.Answerer)
	if err != nil {
		return nil, err
	}

	vectorStore, err := buildVectorStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	lexicalStore, err := buildLexicalStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	var chunkerOpts []chunker.Option
	if cfg.Chunker.MaxChunkSize > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithMaxChunkSize(cfg.Chunker.MaxChunkSize))
	}
	if cfg.Chunker.Overlap > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithOverlap(cfg.Chunker.Overlap))
	}

	return services.NewRAGService(services.Config{
		Chunker:       chunker.New(chunkerOpts...),
		Embedder:      embedder,
		VectorStore:   vectorStore,
		LexicalStore:  lexicalStore,
		Answerer:      answerer,
		DenseWeight:   cfg.Query.DenseWeight,
		LexicalWeight: cfg.Query.LexicalWeight,
	}), nil
}

func buildEmbedder(cfg configfile.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "openai", "":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring openai embeddings: %w", err)
		}
		closers = append(closers, svc)
		return svc, nil
	case "ollama":
		svc := ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		closers = append(closers, svc)
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func buildAnswerer(cfg configfile.AnswererConfig) (driven.Answerer, error) {
	switch cfg.Provider {
	case "openai", "":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		// Without a key, run retrieval-only. Answer commands will
		// report the missing answerer.
		if apiKey == "" {
			return nil, nil
		}
		svc, err := openaillm.NewAnswerer(openaillm.Config{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring openai answerer: %w", err)
		}
		closers = append(closers, svc)
		return svc, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown answerer provider %q", cfg.Provider)
	}
}

func buildVectorStore(cfg configfile.StoreConfig) (driven.VectorStore, error) {
	switch cfg.Vector {
	case "memory", "":
		return memstore.NewVectorStore(), nil
	case "sqlite":
		path := cfg.VectorPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("getting home directory: %w", err)
			}
			path = filepath.Join(home, configfile.DefaultDirName, "data", "vectors.db")
		}
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, err
		}
		closers = append(closers, store)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.Vector)
	}
}

func buildLexicalStore(cfg configfile.StoreConfig) (driven.LexicalStore, error) {
	switch cfg.Lexical {
	case "memory", "":
		store, err := blevestore.NewMemOnly()
		if err != nil {
			return nil, err
		}
		closers = append(closers, store)
		return store, nil
	case "bleve":
		path := cfg.LexicalPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("getting home directory: %w", err)
			}
			path = filepath.Join(home, configfile.DefaultDirName, "data", "index.bleve")
		}
		store, err := blevestore.Open(path)
		if err != nil {
			return nil, err
		}
		closers = append(closers, store)
		return store, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown lexical store %q", cfg.Lexical)
	}
}
