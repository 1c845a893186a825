package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/evcraddock/pagecomments/internal/comment"
	"github.com/evcraddock/pagecomments/internal/i18n"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printCommentList prints comments in text format.
func printCommentList(w io.Writer, loc *i18n.Locale, comments []comment.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments.")
		return
	}

	for _, c := range comments {
		author := c.Author
		if author == "" {
			author = "anonymous"
		}
		fmt.Fprintf(w, "[%s] %s", loc.FormatDate(c.AddedAt), author)
		if r := c.Rating(); r > 0 {
			fmt.Fprintf(w, " %s", formatRating(r))
		}
		fmt.Fprintln(w)
		for _, line := range c.Lines() {
			fmt.Fprintf(w, "  %s\n", line)
		}
		fmt.Fprintln(w)
	}
}

// printSubmitted confirms a submitted comment in text format.
func printSubmitted(w io.Writer, req comment.SubmitRequest) {
	fmt.Fprintf(w, "Comment sent for %s. It will be published after review.\n  %s\n", req.Target, truncate(req.Message, 72))
}

// formatRating returns a star representation of a rating.
func formatRating(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > comment.MaxRating {
		rating = comment.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", comment.MaxRating-rating)
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
