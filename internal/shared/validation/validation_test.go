package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title string `json:"title" validate:"required,min=3,max=10"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      sample
		wantFields map[string]string
	}{
		{
			name:  "valid input",
			input: sample{Title: "hello"},
		},
		{
			name:       "missing required field",
			input:      sample{},
			wantFields: map[string]string{"title": "This field is required."},
		},
		{
			name:       "too short",
			input:      sample{Title: "hi"},
			wantFields: map[string]string{"title": "Must be at least 3 characters long."},
		},
		{
			name:       "too long",
			input:      sample{Title: "abcdefghijk"},
			wantFields: map[string]string{"title": "Must be at most 10 characters long."},
		},
		{
			name:  "multiple failures",
			input: sample{Title: "", Email: "nope"},
			wantFields: map[string]string{
				"title": "This field is required.",
				"email": "Enter a valid email address.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Struct(tt.input)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verrs Errors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.wantFields, verrs.Fields())
		})
	}
}

func TestStruct_NonStruct(t *testing.T) {
	t.Parallel()

	err := Struct("not a struct")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestErrors_Helpers(t *testing.T) {
	t.Parallel()

	var errs Errors
	errs = errs.Add("title", "first").Add("title", "second").Add("content", "third")

	assert.Equal(t, "first", errs.For("title"))
	assert.Equal(t, "", errs.For("category"))
	assert.Equal(t, map[string]string{"title": "first", "content": "third"}, errs.Fields())
	assert.Equal(t, "validation failed: title: first; title: second; content: third", errs.Error())
	assert.True(t, errors.Is(errs, ErrValidation))
}
