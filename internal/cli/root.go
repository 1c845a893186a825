// Package cli defines the cobra command tree for pagecomments.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/pagecomments/internal/client"
	"github.com/evcraddock/pagecomments/internal/comment"
	"github.com/evcraddock/pagecomments/internal/config"
	"github.com/evcraddock/pagecomments/internal/db"
	"github.com/evcraddock/pagecomments/internal/i18n"
)

var (
	flagFormat string
	flagLocale string
	flagAPIURL string
	flagDB     string
	flagConfig string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pagecomments",
		Short:         "Comments and ratings for static pages",
		Long:          "Serve an embeddable comments widget backed by a comments service, and read or post comments from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagLocale, "locale", "", "locale of the page (default: configured default locale)")
	root.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "comments service URL (default: configured api_url)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path for the local service (default: ~/.pagecomments/comments.db)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ~/.config/pagecomments/config.yaml)")

	root.AddCommand(
		newServeCmd(),
		newAPICmd(),
		newCommentsCmd(),
		newCommentCmd(),
		newTargetCmd(),
		newRemoveCmd(),
		newKeyCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// configPath returns the --config flag or the default config path.
func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	return config.Path()
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig() (config.Config, error) {
	path, err := configPath()
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	return cfg, nil
}

// openDB opens the SQLite database of the local comments service.
func openDB(cfg config.Config) (*sql.DB, error) {
	path := cfg.DBPath
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path, db.WithBusyTimeout(cfg.DBBusyTimeout))
}

// newAPIClient creates a client for the configured comments service.
func newAPIClient(cfg config.Config) *client.Client {
	return client.New(cfg.APIURL, client.WithTimeout(cfg.RequestTimeout))
}

// resolveTarget maps a page path to its thread target, using the --locale
// flag matched against the configured locales.
func resolveTarget(cfg config.Config, path string) (comment.Target, *i18n.Locale, error) {
	bundle, err := i18n.Load(cfg.DefaultLocale, cfg.Locales)
	if err != nil {
		return "", nil, fmt.Errorf("loading locales: %w", err)
	}
	loc := bundle.Locale(flagLocale)
	return comment.NewTarget(loc.Tag(), path), loc, nil
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
