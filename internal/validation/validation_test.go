package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patric-chuzhbe/bookcatalog/internal/models"
)

func TestStruct(t *testing.T) {
	fixedNow := func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) }
	v := New(fixedNow)

	testCases := []struct {
		name    string
		input   interface{}
		wantErr error
	}{
		{
			name:  "valid credentials",
			input: models.Credentials{Username: "alice", Password: "secret1"},
		},
		{
			name:    "empty username",
			input:   models.Credentials{Username: "", Password: "secret1"},
			wantErr: ErrEmptyFields,
		},
		{
			name:    "short password",
			input:   models.Credentials{Username: "alice", Password: "12345"},
			wantErr: ErrPasswordTooShort,
		},
		{
			name:  "valid book",
			input: models.BookInput{Title: "Dune", Author: "Herbert", PublishedYear: 1965, Genre: "Science Fiction"},
		},
		{
			name:  "current year is allowed",
			input: models.BookInput{Title: "New", Author: "Someone", PublishedYear: 2024, Genre: "Essay"},
		},
		{
			name:    "empty genre",
			input:   models.BookInput{Title: "Dune", Author: "Herbert", PublishedYear: 1965},
			wantErr: ErrEmptyFields,
		},
		{
			name:    "negative year",
			input:   models.BookInput{Title: "Dune", Author: "Herbert", PublishedYear: -1, Genre: "SF"},
			wantErr: ErrInvalidYear,
		},
		{
			name:    "future year",
			input:   models.BookInput{Title: "Dune", Author: "Herbert", PublishedYear: 2025, Genre: "SF"},
			wantErr: ErrInvalidYear,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := v.Struct(testCase.input)
			if testCase.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}
}
