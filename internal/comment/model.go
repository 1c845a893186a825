// Package comment provides the comment domain model, thread targets and data access.
package comment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// MaxRating is the number of stars a rating is shown against.
const MaxRating = 5

// ID identifies a comment. The comments service may send it as a JSON
// number or string; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts both string and numeric identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding comment id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding comment id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Additional is the optional extension bag attached to a comment.
type Additional struct {
	Rating *int `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// Comment is a single comment as returned by the comments service.
type Comment struct {
	ID         ID          `json:"id"`
	Author     string      `json:"author"`
	Message    string      `json:"message"`
	AddedAt    string      `json:"added_at"`
	Additional *Additional `json:"additional,omitempty"`
}

// Rating returns the star rating attached to the comment, or 0 if there is none.
func (c Comment) Rating() int {
	if c.Additional == nil || c.Additional.Rating == nil {
		return 0
	}
	return *c.Additional.Rating
}

// Lines splits the message into its newline-separated lines.
func (c Comment) Lines() []string {
	return strings.Split(c.Message, "\n")
}

// SortNewestFirst orders comments by AddedAt, newest first. ISO-8601
// timestamps compare lexicographically in chronological order.
func SortNewestFirst(comments []Comment) {
	slices.SortStableFunc(comments, func(a, b Comment) int {
		return strings.Compare(b.AddedAt, a.AddedAt)
	})
}

// RatingPtr returns a pointer to r, for building Additional values.
func RatingPtr(r int) *int {
	return &r
}
