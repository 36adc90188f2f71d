package client

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patric-chuzhbe/bookcatalog/internal/models"
	"github.com/patric-chuzhbe/bookcatalog/internal/validation"
)

// Form errors shown before any request is made.
var (
	ErrEmptyFields       = validation.ErrEmptyFields
	ErrPasswordTooShort  = validation.ErrPasswordTooShort
	ErrInvalidYear       = validation.ErrInvalidYear
	ErrPasswordsMismatch = errors.New("Passwords do not match")
	ErrBookFieldsMissing = errors.New("All fields are required")
)

// BooksPerPage is the page size of the book list.
const BooksPerPage = 12

// ValidateCredentials checks the login and signup forms. confirm is only
// looked at when isSignup is set. The confirmation is compared before the
// length check.
func ValidateCredentials(username, password, confirm string, isSignup bool) error {
	if username == "" || password == "" || (isSignup && confirm == "") {
		return ErrEmptyFields
	}

	if isSignup && password != confirm {
		return ErrPasswordsMismatch
	}
	if utf8.RuneCountInString(password) < models.MinPasswordLength {
		return ErrPasswordTooShort
	}

	return nil
}

// ParseBookInput validates the book form and converts the year. Fields
// are trimmed; a blank field counts as missing.
func ParseBookInput(title, author, year, genre string, now time.Time) (models.BookInput, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	year = strings.TrimSpace(year)
	genre = strings.TrimSpace(genre)
	if title == "" || author == "" || year == "" || genre == "" {
		return models.BookInput{}, ErrBookFieldsMissing
	}

	publishedYear, err := strconv.Atoi(year)
	if err != nil {
		return models.BookInput{}, ErrInvalidYear
	}

	input := models.BookInput{
		Title:         title,
		Author:        author,
		PublishedYear: publishedYear,
		Genre:         genre,
	}

	v := validation.New(func() time.Time { return now })
	if err := v.Struct(input); err != nil {
		return models.BookInput{}, err
	}

	return input, nil
}

// Paginate returns the 1-based page of books and the number of pages.
// Out of range pages are clamped.
func Paginate(books []models.Book, page, perPage int) ([]models.Book, int) {
	if perPage <= 0 {
		perPage = BooksPerPage
	}

	totalPages := (len(books) + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	if start >= len(books) {
		return []models.Book{}, totalPages
	}
	end := start + perPage
	if end > len(books) {
		end = len(books)
	}

	return books[start:end], totalPages
}
