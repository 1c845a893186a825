package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evcraddock/pagecomments/internal/auth"
	"github.com/evcraddock/pagecomments/internal/comment"
	"github.com/evcraddock/pagecomments/internal/commentsapi"
	"github.com/evcraddock/pagecomments/internal/logging"
)

func newAPICmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Start a local comments service",
		Long:  "Start a local implementation of the comments service backed by SQLite. Point api_url at it to develop the widget offline. Deleting comments requires a key from 'pagecomments key create'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8081, "port to listen on")

	return cmd
}

func runAPI(cmd *cobra.Command, port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.DevMode)
	defer func() { _ = logger.Sync() }()

	database, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)

	api := commentsapi.New(comment.NewRepository(database), logger.Named("api"),
		commentsapi.WithModeratorKeys(auth.NewAPIKeyStore(database)),
	)

	logger.Info("serving local comments service", zap.Int("port", port))
	fmt.Fprintf(cmd.OutOrStdout(), "Comments service on http://localhost:%d\n", port)

	return listenAndServe(cmd.Context(), newHTTPServer(port, api), logger)
}
