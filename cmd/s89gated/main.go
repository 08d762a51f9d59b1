package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	surrealdb "github.com/surrealdb/surrealdb.go"

	"github.com/site89/s89gated/pkg/characters"
	"github.com/site89/s89gated/pkg/identity"
	"github.com/site89/s89gated/pkg/logging"
	"github.com/site89/s89gated/pkg/pagemeta"
	"github.com/site89/s89gated/pkg/webgate"
)

var (
	version     = "dev" // Will be set during build
	cfgFile     string
	showVersion bool
)

func main() {
	cobra.CheckErr(rootCmd.Execute())
}

var rootCmd = &cobra.Command{
	Use:           "s89gated",
	Short:         "Site-89 clearance gateway",
	SilenceUsage:  false,
	SilenceErrors: true,
	Long: `Site-89 clearance gateway (s89gated) - clearance-gated access to the Site-89 web front

The gateway serves the published site and verifies every restricted page
against the character records in the site's document store before any
content is revealed. Pages declare their minimum clearance with a
required-clearance meta tag.

Configuration file must be in JSON format with the following structure:
{
    "listen_addr": "0.0.0.0",
    "port": 8089,
    "site_root_dir": "/srv/site89/public",
    "surreal_url": "ws://127.0.0.1:8000",
    "surreal_namespace": "site89",
    "surreal_database": "main",
    "surreal_username": "gateway",
    "surreal_password": "...",
    "character_table": "characters",
    "token_issuer": "site89-auth",
    "token_audience": "site89-web",
    "token_key": "...",
    "character_cache_time": 60,
    "page_cache_time": 300,
    "identity_timeout": 3,
    "check_timeout": 5,
    "access_log_path": "/var/log/s89gated/access.log",
    "app_log_path": "/var/log/s89gated/app.log"
}

Secrets may instead be supplied via S89GATED_TOKEN_KEY and
S89GATED_SURREAL_PASSWORD.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("Site-89 clearance gateway %s\n", version)
			return nil
		}

		if cfgFile == "" {
			return fmt.Errorf("config file is required (use --config)")
		}

		// Convert to absolute path if needed
		if !filepath.IsAbs(cfgFile) {
			var err error
			cfgFile, err = filepath.Abs(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to get absolute path: %v", err)
			}
		}

		// Load configuration
		var config Config
		if err := LoadConfig(cfgFile, &config); err != nil {
			return fmt.Errorf("failed to load config: %v", err)
		}

		// Initialize logging
		if err := logging.Initialize(config.AccessLogPath, config.AppLogPath, logging.LogLevel(config.LogLevel)); err != nil {
			return fmt.Errorf("failed to initialize logging: %v", err)
		}

		// Connect to the document store
		ctx := context.Background()
		db, err := connectSurreal(ctx, &config)
		if err != nil {
			return fmt.Errorf("failed to connect to document store: %v", err)
		}
		defer db.Close(ctx)

		// Character records, cached
		source := characters.NewSurrealSource(db, config.CharacterTable)
		repository := characters.NewRepository(source, time.Duration(config.CharacterCacheTime)*time.Second)

		// Session token verification
		tokens, err := identity.NewTokenProvider(config.TokenIssuer, config.TokenAudience, []byte(config.TokenKey))
		if err != nil {
			return fmt.Errorf("failed to create token provider: %v", err)
		}

		// Page requirements read from the site files themselves
		siteFS := afero.NewBasePathFs(afero.NewOsFs(), config.SiteRootDir)
		pages := pagemeta.NewFileSource(siteFS, time.Duration(config.PageCacheTime)*time.Second)

		// Gated site handler
		handler, err := webgate.NewHandler(webgate.HandlerConfig{
			Pages:           pages,
			Tokens:          tokens,
			Characters:      repository,
			SiteFS:          siteFS,
			IdentityTimeout: time.Duration(config.IdentityTimeout) * time.Second,
			CheckTimeout:    time.Duration(config.CheckTimeout) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("failed to create handler: %v", err)
		}

		server, err := webgate.New(&webgate.Config{
			ListenAddr: config.ListenAddr,
			Port:       config.Port,
		}, handler)
		if err != nil {
			return fmt.Errorf("failed to create server: %v", err)
		}

		fmt.Printf("Starting Site-89 clearance gateway %s on %s:%d\n", version, config.ListenAddr, config.Port)
		return server.ListenAndServe()
	},
}

// connectSurreal opens the document store connection and selects the
// configured namespace and database
func connectSurreal(ctx context.Context, config *Config) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, config.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}

	if err := db.Use(ctx, config.SurrealNamespace, config.SurrealDatabase); err != nil {
		return nil, fmt.Errorf("selecting namespace: %w", err)
	}

	if config.SurrealUsername != "" {
		token, err := db.SignIn(ctx, &surrealdb.Auth{
			Username: config.SurrealUsername,
			Password: config.SurrealPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("signing in: %w", err)
		}
		if err := db.Authenticate(ctx, token); err != nil {
			return nil, fmt.Errorf("authenticating: %w", err)
		}
	}

	return db, nil
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "path to config file (required)")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version information")
}
