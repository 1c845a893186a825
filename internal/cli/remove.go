package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/pagecomments/internal/comment"
)

func newRemoveCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "remove <comment-id>",
		Short: "Delete a comment from the local comments service",
		Long:  "Delete a comment by ID. Needs a moderator key via --key or PC_MODERATOR_KEY.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := moderatorKey(key)
			if apiKey == "" {
				return fmt.Errorf("a moderator key is required (--key or PC_MODERATOR_KEY)")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			id := comment.ID(args[0])
			if err := newAPIClient(cfg).Delete(cmd.Context(), id, apiKey); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment %s removed.\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "moderator key")

	return cmd
}
