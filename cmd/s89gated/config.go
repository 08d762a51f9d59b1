package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds the gateway configuration
type Config struct {
	// Core server settings
	ListenAddr string `json:"listen_addr" env:"S89GATED_LISTEN_ADDR"`
	Port       int    `json:"port" env:"S89GATED_PORT"`

	// Site settings
	SiteRootDir string `json:"site_root_dir" env:"S89GATED_SITE_ROOT_DIR"` // Directory holding the published site

	// Document store settings
	SurrealURL       string `json:"surreal_url" env:"S89GATED_SURREAL_URL"`
	SurrealNamespace string `json:"surreal_namespace" env:"S89GATED_SURREAL_NAMESPACE"`
	SurrealDatabase  string `json:"surreal_database" env:"S89GATED_SURREAL_DATABASE"`
	SurrealUsername  string `json:"surreal_username,omitempty" env:"S89GATED_SURREAL_USERNAME"`
	SurrealPassword  string `json:"surreal_password,omitempty" env:"S89GATED_SURREAL_PASSWORD"`
	CharacterTable   string `json:"character_table,omitempty" env:"S89GATED_CHARACTER_TABLE"`

	// Session token settings
	TokenIssuer   string `json:"token_issuer" env:"S89GATED_TOKEN_ISSUER"`
	TokenAudience string `json:"token_audience" env:"S89GATED_TOKEN_AUDIENCE"`
	TokenKey      string `json:"token_key,omitempty" env:"S89GATED_TOKEN_KEY"` // Prefer the env var over the config file

	// Cache settings
	CharacterCacheTime int `json:"character_cache_time"` // How long to cache character records (seconds)
	PageCacheTime      int `json:"page_cache_time"`      // How long to cache page requirements (seconds)

	// Gate timing
	IdentityTimeout int `json:"identity_timeout"` // Bound on identity resolution (seconds)
	CheckTimeout    int `json:"check_timeout"`    // Bound on a whole gate check (seconds)

	// Logging settings
	AccessLogPath string `json:"access_log_path,omitempty" env:"S89GATED_ACCESS_LOG_PATH"`
	AppLogPath    string `json:"app_log_path,omitempty" env:"S89GATED_APP_LOG_PATH"`
	LogLevel      string `json:"log_level,omitempty" env:"S89GATED_LOG_LEVEL"`
}

// LoadConfig loads configuration from a JSON file with environment
// overrides
func LoadConfig(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	// Environment variables win over the file
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parsing environment overrides: %w", err)
	}

	// Convert relative paths to absolute paths based on config file location
	configDir := filepath.Dir(path)
	if config.SiteRootDir != "" && !filepath.IsAbs(config.SiteRootDir) {
		config.SiteRootDir = filepath.Join(configDir, config.SiteRootDir)
	}
	if config.AccessLogPath != "" && !filepath.IsAbs(config.AccessLogPath) {
		config.AccessLogPath = filepath.Join(configDir, config.AccessLogPath)
	}
	if config.AppLogPath != "" && !filepath.IsAbs(config.AppLogPath) {
		config.AppLogPath = filepath.Join(configDir, config.AppLogPath)
	}

	// Set defaults for optional settings
	if config.Port == 0 {
		config.Port = 8089
	}
	if config.CharacterCacheTime == 0 {
		config.CharacterCacheTime = 60 // 1 minute
	}
	if config.PageCacheTime == 0 {
		config.PageCacheTime = 300 // 5 minutes
	}
	if config.IdentityTimeout == 0 {
		config.IdentityTimeout = 3
	}
	if config.CheckTimeout == 0 {
		config.CheckTimeout = 5
	}

	// Validate required settings
	if config.SiteRootDir == "" {
		return fmt.Errorf("site_root_dir is required")
	}
	if config.SurrealURL == "" {
		return fmt.Errorf("surreal_url is required")
	}
	if config.TokenIssuer == "" || config.TokenAudience == "" || config.TokenKey == "" {
		return fmt.Errorf("token_issuer, token_audience and token_key are required")
	}

	return nil
}
