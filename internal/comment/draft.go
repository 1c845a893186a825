package comment

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SubmitRequest is the body of a comment submission.
type SubmitRequest struct {
	Author     string      `json:"author"`
	Message    string      `json:"message" validate:"required"`
	Target     Target      `json:"target" validate:"required"`
	Additional *Additional `json:"additional,omitempty"`
}

// Validate checks that the request carries a message and target and that
// any rating is within range.
func (r SubmitRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid comment: %w", err)
	}
	return nil
}

// Draft is the state of a comment being written. The zero value is an empty draft.
type Draft struct {
	author  string
	message string
	rating  int
}

// NewDraft returns a draft with the given fields.
func NewDraft(author, message string, rating int) (Draft, error) {
	var d Draft
	d.SetAuthor(author)
	d.SetMessage(message)
	if err := d.SetRating(rating); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Author returns the author name, which may be empty.
func (d Draft) Author() string { return d.author }

// Message returns the comment text.
func (d Draft) Message() string { return d.message }

// Rating returns the chosen rating, or 0 if none was chosen.
func (d Draft) Rating() int { return d.rating }

// SetAuthor sets the author name.
func (d *Draft) SetAuthor(author string) {
	d.author = author
}

// SetMessage sets the comment text.
func (d *Draft) SetMessage(message string) {
	d.message = message
}

// SetRating sets the rating. 0 clears it.
func (d *Draft) SetRating(rating int) error {
	if rating < 0 || rating > MaxRating {
		return fmt.Errorf("rating must be 0-%d, got %d", MaxRating, rating)
	}
	d.rating = rating
	return nil
}

// ResetAfterSuccess clears the message after a successful submission.
// Author and rating are kept for the next comment.
func (d *Draft) ResetAfterSuccess() {
	d.message = ""
}

// Request builds the submission body for target. The rating is only included
// when allowRating is set and a rating was chosen.
func (d Draft) Request(target Target, allowRating bool) SubmitRequest {
	req := SubmitRequest{
		Author:  d.author,
		Message: d.message,
		Target:  target,
	}
	if allowRating && d.rating != 0 {
		req.Additional = &Additional{Rating: RatingPtr(d.rating)}
	}
	return req
}
