package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/pagecomments/internal/comment"
)

func newCommentCmd() *cobra.Command {
	var (
		author string
		rating int
	)

	cmd := &cobra.Command{
		Use:   `comment <path> "text"`,
		Short: "Post a comment on a page",
		Long:  "Post a comment on a page's thread. Comments are published after review by the service.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComment(cmd, args, author, rating)
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "name to show with the comment")
	cmd.Flags().IntVar(&rating, "rating", 0, fmt.Sprintf("rating from 1 to %d (0 for none)", comment.MaxRating))

	return cmd
}

func runComment(cmd *cobra.Command, args []string, author string, rating int) error {
	text := strings.Join(args[1:], " ")
	if text == "" {
		return fmt.Errorf("comment text is required")
	}

	draft, err := comment.NewDraft(author, text, rating)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target, _, err := resolveTarget(cfg, args[0])
	if err != nil {
		return err
	}

	req := draft.Request(target, rating > 0)
	if err := req.Validate(); err != nil {
		return err
	}

	if err := newAPIClient(cfg).Submit(cmd.Context(), req); err != nil {
		return fmt.Errorf("sending comment: %w", err)
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, req)
	}

	printSubmitted(out, req)
	return nil
}
