package comment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftRequestWithoutRating(t *testing.T) {
	d, err := NewDraft("Alice", "Hello", 4)
	require.NoError(t, err)

	req := d.Request("en/blog", false)
	assert.Nil(t, req.Additional)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"author":"Alice","message":"Hello","target":"en/blog"}`, string(data))
}

func TestDraftRequestWithRating(t *testing.T) {
	d, err := NewDraft("", "Great", 3)
	require.NoError(t, err)

	req := d.Request("en/blog", true)
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"author":"","message":"Great","target":"en/blog","additional":{"rating":3}}`, string(data))
}

func TestDraftRequestRatingEnabledButNotChosen(t *testing.T) {
	d, err := NewDraft("", "Great", 0)
	require.NoError(t, err)

	req := d.Request("en/blog", true)
	assert.Nil(t, req.Additional)
}

func TestDraftSetRatingRange(t *testing.T) {
	var d Draft
	assert.NoError(t, d.SetRating(0))
	assert.NoError(t, d.SetRating(MaxRating))
	assert.Error(t, d.SetRating(-1))
	assert.Error(t, d.SetRating(MaxRating+1))
	assert.Equal(t, MaxRating, d.Rating())
}

func TestDraftResetAfterSuccess(t *testing.T) {
	d, err := NewDraft("Bob", "A message", 2)
	require.NoError(t, err)

	d.ResetAfterSuccess()

	assert.Equal(t, "", d.Message())
	assert.Equal(t, "Bob", d.Author())
	assert.Equal(t, 2, d.Rating())
}

func TestSubmitRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SubmitRequest
		wantErr bool
	}{
		{"valid", SubmitRequest{Message: "hi", Target: "en/x"}, false},
		{"valid with rating", SubmitRequest{Message: "hi", Target: "en/x", Additional: &Additional{Rating: RatingPtr(5)}}, false},
		{"empty additional", SubmitRequest{Message: "hi", Target: "en/x", Additional: &Additional{}}, false},
		{"missing message", SubmitRequest{Target: "en/x"}, true},
		{"missing target", SubmitRequest{Message: "hi"}, true},
		{"rating too high", SubmitRequest{Message: "hi", Target: "en/x", Additional: &Additional{Rating: RatingPtr(6)}}, true},
		{"rating zero", SubmitRequest{Message: "hi", Target: "en/x", Additional: &Additional{Rating: RatingPtr(0)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
