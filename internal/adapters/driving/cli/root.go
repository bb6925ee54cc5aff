// Package cli implements the command-line interface. Commands talk to
// the core services through the driving ports; adapter wiring happens
// once in initServices based on the config store.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/mnemo-labs/recall/internal/adapters/driven/config/file"
	"github.com/mnemo-labs/recall/internal/adapters/driven/embedding/batching"
	ollamaembed "github.com/mnemo-labs/recall/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/mnemo-labs/recall/internal/adapters/driven/embedding/openai"
	"github.com/mnemo-labs/recall/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/mnemo-labs/recall/internal/adapters/driven/llm/ollama"
	openaillm "github.com/mnemo-labs/recall/internal/adapters/driven/llm/openai"
	"github.com/mnemo-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/mnemo-labs/recall/internal/adapters/driven/storage/postgres"
	"github.com/mnemo-labs/recall/internal/chunkers"
	"github.com/mnemo-labs/recall/internal/chunkers/code"
	"github.com/mnemo-labs/recall/internal/chunkers/conversation"
	"github.com/mnemo-labs/recall/internal/chunkers/section"
	"github.com/mnemo-labs/recall/internal/chunkers/window"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
	"github.com/mnemo-labs/recall/internal/core/ports/driving"
	"github.com/mnemo-labs/recall/internal/core/services"
	"github.com/mnemo-labs/recall/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configStore      driven.ConfigStore
	indexerService   driving.Indexer
	retrievalService driving.Retriever

	// Kept for the status command's connectivity report.
	storePinger     driven.Pinger
	embedderService driven.EmbeddingService
	llmService      driven.LLMService

	// storeCloser shuts down the storage backend on exit.
	storeCloser interface{ Close() error }
)

var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Semantic indexing and retrieval for personal content",
	Long: `Recall chunks, embeds and indexes your content (code, notes,
conversations, journals) and answers queries against it, either by
exact title lookup or semantic similarity search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initServices(cmd.Context())
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if storeCloser != nil {
			_ = storeCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.recall)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices builds the adapter stack from configuration. Providers
// that are not configured are left nil; the services degrade rather
// than fail.
func initServices(ctx context.Context) error {
	store, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = store

	chunkStore, recordStore, repoStateStore, pinger, err := buildStorage(ctx, store)
	if err != nil {
		return err
	}

	embedder := buildEmbedder(store)
	llm := buildLLM(store)
	registry := buildChunkers()

	storePinger = pinger
	embedderService = embedder
	llmService = llm

	indexerService = services.NewIndexer(
		registry, embedder, llm,
		chunkStore, recordStore, repoStateStore,
		services.WithDomain(store.GetString("index.domain")),
		services.WithPinger(pinger),
	)
	retrievalService = services.NewRetrieval(embedder, chunkStore, recordStore)
	return nil
}

// buildStorage selects the storage backend. Postgres when a DSN is
// configured, in-memory otherwise.
func buildStorage(ctx context.Context, cfg driven.ConfigStore) (driven.ChunkStore, driven.RecordStore, driven.RepoStateStore, driven.Pinger, error) {
	dsn := cfg.GetString("storage.postgres_dsn")
	if dsn == "" {
		dsn = os.Getenv("RECALL_POSTGRES_DSN")
	}

	if dsn != "" {
		store, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		storeCloser = store
		return store.ChunkStore(), store.RecordStore(), store.RepoStateStore(), store, nil
	}

	logger.Warn("no postgres DSN configured, using in-memory storage")
	store := memory.NewStore()
	storeCloser = store
	return store.ChunkStore(), store.RecordStore(), store.RepoStateStore(), store, nil
}

// buildEmbedder creates the configured embedding provider wrapped in
// the batching decorator, or nil when embedding is disabled.
func buildEmbedder(cfg driven.ConfigStore) driven.EmbeddingService {
	provider := cfg.GetString("embedding.provider")
	if provider == "" {
		provider = "ollama"
	}

	var inner driven.EmbeddingService
	switch provider {
	case "none":
		return nil
	case "ollama":
		inner = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
	case "openai":
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
		if err != nil {
			logger.Error("embedding provider setup failed: %v", err)
			return nil
		}
		inner = svc
	default:
		logger.Error("unknown embedding provider %q", provider)
		return nil
	}

	opts := []batching.Option{}
	if n := cfg.GetInt("embedding.batch_size"); n > 0 {
		opts = append(opts, batching.WithBatchSize(n))
	}
	if rps := cfg.GetInt("embedding.batches_per_second"); rps > 0 {
		opts = append(opts, batching.WithLimiter(rate.NewLimiter(rate.Limit(rps), 1)))
	}
	return batching.New(inner, opts...)
}

// buildLLM creates the configured generation provider, or nil when
// extraction is disabled.
func buildLLM(cfg driven.ConfigStore) driven.LLMService {
	provider := cfg.GetString("llm.provider")
	if provider == "" || provider == "none" {
		return nil
	}

	switch provider {
	case "ollama":
		return ollamallm.New(ollamallm.Config{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
	case "openai":
		svc, err := openaillm.New(openaillm.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		if err != nil {
			logger.Error("llm provider setup failed: %v", err)
			return nil
		}
		return svc
	case "anthropic":
		svc, err := anthropic.New(anthropic.Config{
			APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		if err != nil {
			logger.Error("llm provider setup failed: %v", err)
			return nil
		}
		return svc
	default:
		logger.Error("unknown llm provider %q", provider)
		return nil
	}
}

// buildChunkers assembles the chunker registry with the sliding window
// as universal fallback.
func buildChunkers() driven.ChunkerRegistry {
	registry := chunkers.NewRegistry(window.New())
	registry.Register(code.New())
	registry.Register(conversation.New())
	registry.Register(section.New())
	return registry
}
