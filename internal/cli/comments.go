package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/pagecomments/internal/comment"
)

func newCommentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comments <path>",
		Short: "List comments for a page",
		Long:  "List all comments of a page's thread, newest first.",
		Args:  cobra.ExactArgs(1),
		RunE:  runComments,
	}
}

func runComments(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target, loc, err := resolveTarget(cfg, args[0])
	if err != nil {
		return err
	}

	comments, err := newAPIClient(cfg).List(cmd.Context(), target)
	if err != nil {
		return fmt.Errorf("fetching comments: %w", err)
	}
	comment.SortNewestFirst(comments)

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, comments)
	}

	fmt.Fprintf(out, "Comments for %s:\n\n", target)
	printCommentList(out, loc, comments)
	return nil
}
