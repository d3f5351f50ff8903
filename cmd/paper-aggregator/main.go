// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-aggregator CLI. It searches
// arXiv and SSRN, merges papers found in both, and serves the same queries
// as MCP tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/logging"
	"github.com/pdiddy/paper-aggregator/internal/normalize"
	"github.com/pdiddy/paper-aggregator/internal/search"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paper-aggregator CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-aggregator",
	Short: "Search and merge academic papers from arXiv and SSRN",
	Long: `paper-aggregator queries arXiv and SSRN, normalizes both into one paper
record, merges papers that appear in several sources by title, and returns
them newest first.

Use search and recent for one-off queries, and serve to expose the same
operations as MCP tools over stdio or HTTP.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-aggregator.yaml or ~/.config/paper-aggregator/paper-aggregator.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default info)")
	pf.Bool("log-json", false, "write logs as JSON")

	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.json", pf.Lookup("log-json"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-aggregator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-aggregator"))
		}
	}

	setDefaults(types.DefaultConfig())

	viper.SetEnvPrefix("PAPER_AGGREGATOR")
	viper.SetEnvKeyReplacer(envKeyReplacer())
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// envKeyReplacer maps config keys to environment names: http.timeout
// becomes PAPER_AGGREGATOR_HTTP_TIMEOUT.
func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// setDefaults registers every key so environment variables can override
// keys absent from the config file.
func setDefaults(d types.Config) {
	viper.SetDefault("http.timeout", d.HTTP.Timeout)
	viper.SetDefault("http.user_agent", d.HTTP.UserAgent)
	viper.SetDefault("arxiv.base_url", d.Arxiv.BaseURL)
	viper.SetDefault("arxiv.delay", d.Arxiv.Delay)
	viper.SetDefault("arxiv.max_attempts", d.Arxiv.MaxAttempts)
	viper.SetDefault("ssrn.base_url", d.SSRN.BaseURL)
	viper.SetDefault("ssrn.delay", d.SSRN.Delay)
	viper.SetDefault("ssrn.max_attempts", d.SSRN.MaxAttempts)
	viper.SetDefault("ssrn.cache_ttl", d.SSRN.CacheTTL)
	viper.SetDefault("query.search_max_results", d.Query.SearchMaxResults)
	viper.SetDefault("query.recent_max_results", d.Query.RecentMaxResults)
	viper.SetDefault("server.transport", d.Server.Transport)
	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.json", d.Log.JSON)
}

// loadConfig decodes the merged flag, environment, file, and default
// settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if strings.HasSuffix(cfg.HTTP.UserAgent, "/dev") {
		cfg.HTTP.UserAgent = "paper-aggregator/" + version
	}
	return cfg, nil
}

// app bundles what every command needs.
type app struct {
	cfg          types.Config
	logger       *zap.Logger
	orchestrator *search.Orchestrator
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, err
	}
	sources := search.NewSources(cfg, normalize.New(), logger)
	return &app{
		cfg:          cfg,
		logger:       logger,
		orchestrator: search.NewOrchestrator(sources, cfg.Query, logger),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
