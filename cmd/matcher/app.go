package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/config"
	"github.com/jonathan/talent-match/internal/db"
	"github.com/jonathan/talent-match/internal/embedding"
	"github.com/jonathan/talent-match/internal/llm"
	"github.com/jonathan/talent-match/internal/observability"
)

// app bundles the shared dependencies every command wires up: merged
// configuration, logger, database pool and provider clients.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	database *db.DB
	client   llm.Client
	embedder embedding.Embedder
}

// loadConfig merges config file, environment and root flags, in that
// priority order (flags win).
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("api-key") || flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if cmd.Flags().Changed("db-url") || flagDatabaseURL != "" {
		cfg.DatabaseURL = flagDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = flagDebug
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.JSONLogs = flagJSONLogs
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds the shared dependency bundle. Callers must Close it.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.JSONLogs, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Sync() //nolint:errcheck
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	embedder, err := embedding.NewGeminiEmbedder(ctx, cfg.APIKey, "")
	if err != nil {
		_ = client.Close()
		database.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		client:   client,
		embedder: embedder,
	}, nil
}

// llmConfig applies per-tier model overrides from the merged config.
func llmConfig(cfg *config.Config) *llm.Config {
	out := llm.DefaultGeminiConfig()
	if cfg.LiteModel != "" {
		out = out.WithModel(llm.TierLite, cfg.LiteModel)
	}
	if cfg.StandardModel != "" {
		out = out.WithModel(llm.TierStandard, cfg.StandardModel)
	}
	if cfg.AdvancedModel != "" {
		out = out.WithModel(llm.TierAdvanced, cfg.AdvancedModel)
	}
	return out
}

func (a *app) Close() {
	_ = a.embedder.Close()
	_ = a.client.Close()
	a.database.Close()
	_ = a.logger.Sync()
}
