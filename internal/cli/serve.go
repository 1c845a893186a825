package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/evcraddock/pagecomments/internal/cache"
	"github.com/evcraddock/pagecomments/internal/client"
	"github.com/evcraddock/pagecomments/internal/config"
	"github.com/evcraddock/pagecomments/internal/i18n"
	"github.com/evcraddock/pagecomments/internal/logging"
	"github.com/evcraddock/pagecomments/internal/reporting"
	"github.com/evcraddock/pagecomments/internal/web"
	"github.com/evcraddock/pagecomments/internal/widget"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the widget server",
		Long:  "Start an HTTP server that renders the comments widget and forwards submissions to the comments service.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Port = port
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: configured port)")

	return cmd
}

func runServe(cmd *cobra.Command, cfg config.Config) error {
	logger := logging.New(cfg.DevMode)
	defer func() { _ = logger.Sync() }()

	reporter, err := reporting.New(reporting.SentryOptions{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     "pagecomments@" + Version,
	}, logger)
	if err != nil {
		return fmt.Errorf("setting up error reporting: %w", err)
	}
	if s, ok := reporter.(*reporting.Sentry); ok {
		defer s.Flush(2 * time.Second)
	}

	bundle, err := i18n.Load(cfg.DefaultLocale, cfg.Locales)
	if err != nil {
		return fmt.Errorf("loading locales: %w", err)
	}

	var service widget.Service = client.New(cfg.APIURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
	)
	if cfg.CacheTTL > 0 {
		service = cache.New(service, cfg.CacheSize, cfg.CacheTTL)
	}

	srv, err := web.NewServer(service, bundle, reporter, logger, web.Options{
		AllowRating: cfg.AllowRating,
		SubmitRate:  rate.Limit(cfg.SubmitRate),
		SubmitBurst: cfg.SubmitBurst,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	logger.Info("serving widget",
		zap.String("api_url", cfg.APIURL),
		zap.Strings("locales", bundle.Supported()),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Widget server on http://localhost:%d/widget/%s/\n", cfg.Port, bundle.Default())

	return listenAndServe(cmd.Context(), newHTTPServer(cfg.Port, srv), logger)
}
