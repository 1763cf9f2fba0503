package main

import (
	"fmt"

	"github.com/jonathan/services-gateway/internal/config"
	"github.com/jonathan/services-gateway/internal/logging"
	"github.com/jonathan/services-gateway/internal/server"
	"github.com/jonathan/services-gateway/internal/server/ratelimit"
	"github.com/jonathan/services-gateway/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveConfigPath string
	serveStoreDir   string
	serveHost       string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start an HTTP server exposing the services store.

Settings are taken from the defaults, then the config file (JSON, TOML or
YAML), then the environment (SERVICES_DIR, HOST, PORT, LOG_LEVEL, LOG_FORMAT,
CORS_ALLOW_ORIGIN), then flags.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to config file (.json, .toml, .yaml)")
	serveCmd.Flags().StringVar(&serveStoreDir, "store", "", "Root directory of the services store")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

// loadServeConfig layers defaults, config file, environment and the flags
// that were set explicitly.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Defaults()
	if serveConfigPath != "" {
		fileCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.StoreDir = serveStoreDir
	}
	if flags.Changed("host") {
		cfg.Host = serveHost
	}
	if flags.Changed("port") {
		cfg.Port = servePort
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := store.Open(cfg.StoreDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	rateLimit := ratelimit.LoadConfig()
	logger.Debug("rate limiting configured",
		zap.Bool("enabled", rateLimit.Enabled),
		zap.Int("default_limit", rateLimit.DefaultLimit),
	)

	srv, err := server.New(server.Config{
		Addr:            cfg.Addr(),
		Store:           st,
		Logger:          logger,
		RateLimit:       rateLimit,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		ReadTimeout:     cfg.ReadTimeout.Duration,
		WriteTimeout:    cfg.WriteTimeout.Duration,
		IdleTimeout:     cfg.IdleTimeout.Duration,
		ShutdownTimeout: cfg.ShutdownTimeout.Duration,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
