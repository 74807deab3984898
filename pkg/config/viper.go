// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file and environment variables, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup.
func InitConfig() {
	// --- Set Search Paths ---
	viper.SetConfigName("config")
	viper.AddConfigPath(".")                 // Current working directory
	viper.AddConfigPath("/etc/newsmapper/")  // System-wide configuration
	viper.AddConfigPath("$HOME/.newsmapper") // User-specific configuration

	// --- Set Defaults ---
	// LLM gateway (generate + embeddings endpoints).
	viper.SetDefault("ollama.base_url", "http://localhost:11434")
	viper.SetDefault("ollama.model", "gemma3n:e2b")
	viper.SetDefault("ollama.review_model", "gemma3n:e4b")
	viper.SetDefault("ollama.embedding_model", "nomic-embed-text")
	viper.SetDefault("ollama.timeout", "300s")
	viper.SetDefault("ollama.max_attempts", 3)
	viper.SetDefault("ollama.base_delay", "5s")

	// Geocoding lookup.
	viper.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	viper.SetDefault("geocode.timeout", "10s")
	viper.SetDefault("geocode.user_agent", "newsmapper/1.0")

	// Icon catalog.
	viper.SetDefault("catalog.assets_file", "assets_structure.json")
	viper.SetDefault("catalog.index_file", "icon_index.json")
	viper.SetDefault("catalog.default_icon", "Newspaper")
	viper.SetDefault("catalog.asset_base_url",
		"https://raw.githubusercontent.com/microsoft/fluentui-emoji/main/assets")

	// Feed sources and run state.
	viper.SetDefault("sources.file", "sources.yaml")
	viper.SetDefault("feed.timeout", "30s")
	viper.SetDefault("feed.user_agent", "newsmapper/1.0")
	viper.SetDefault("state.tracker_file", "source_tracker.json")
	viper.SetDefault("state.ledger_file", "published_links.json")

	// Run artifacts and publication.
	viper.SetDefault("output.dir", "outputs")
	viper.SetDefault("output.description_limit", 150)
	viper.SetDefault("publish.data_dir", "public/data")
	viper.SetDefault("publish.manifest_file", "public/news_manifest.json")
	viper.SetDefault("publish.max_manifest_entries", 100)

	// Publication repository. The token is only ever read from the
	// environment (NEWSMAPPER_GIT_TOKEN) and passed through unchanged.
	viper.SetDefault("git.branch", "main")
	viper.SetDefault("git.local_path", "newsmapper_repo")
	viper.SetDefault("git.author_name", "newsmapper bot")
	viper.SetDefault("git.author_email", "bot@globonews.io")

	// Optional monitoring endpoint for long-lived deployments.
	viper.SetDefault("monitoring.enabled", false)
	viper.SetDefault("monitoring.addr", ":8080")

	// --- Environment Variables ---
	viper.SetEnvPrefix("NEWSMAPPER") // e.g., NEWSMAPPER_OLLAMA_BASE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// --- Read Config File ---
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal: defaults plus environment variables may be enough.
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
