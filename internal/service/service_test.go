package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/bookcatalog/internal/db/memorystorage"
	"github.com/patric-chuzhbe/bookcatalog/internal/mockstorage"
	"github.com/patric-chuzhbe/bookcatalog/internal/models"
	"github.com/patric-chuzhbe/bookcatalog/internal/validation"
)

var dune = models.BookInput{
	Title:         "Dune",
	Author:        "Frank Herbert",
	PublishedYear: 1965,
	Genre:         "Science Fiction",
}

func newMemoryService(t *testing.T, enforceOwnership bool) (*Service, *memorystorage.MemoryStorage) {
	t.Helper()
	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db, enforceOwnership), db
}

func TestCreateAndGetBook(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, true)

	created, err := svc.CreateBook(ctx, "1", "1", dune)
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)
	assert.Equal(t, "1", created.UserID)

	fetched, err := svc.GetBook(ctx, "1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	missing, err := svc.GetBook(ctx, "1", "404")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = svc.GetBook(ctx, "2", created.ID)
	assert.ErrorIs(t, err, models.ErrNotAuthorized)
}

func TestCreateBookValidation(t *testing.T) {
	ctx := context.Background()
	db, err := memorystorage.New()
	require.NoError(t, err)
	fixedNow := func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }
	svc := New(db, true, WithValidator(validation.New(fixedNow)))

	testCases := []struct {
		name    string
		input   models.BookInput
		wantErr error
	}{
		{name: "missing title", input: models.BookInput{Author: "A", PublishedYear: 2000, Genre: "G"}, wantErr: validation.ErrEmptyFields},
		{name: "negative year", input: models.BookInput{Title: "T", Author: "A", PublishedYear: -5, Genre: "G"}, wantErr: validation.ErrInvalidYear},
		{name: "future year", input: models.BookInput{Title: "T", Author: "A", PublishedYear: 2025, Genre: "G"}, wantErr: validation.ErrInvalidYear},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := svc.CreateBook(ctx, "1", "1", testCase.input)
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}

	count, err := db.GetNumberOfBooks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOwnershipEnforcement(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, true)

	_, err := svc.CreateBook(ctx, "", "1", dune)
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	_, err = svc.CreateBook(ctx, "2", "1", dune)
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	book, err := svc.CreateBook(ctx, "1", "1", dune)
	require.NoError(t, err)

	_, err = svc.GetBooks(ctx, "2", "1")
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	_, err = svc.SearchBooks(ctx, "2", "1", "dune")
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	_, err = svc.UpdateBook(ctx, "2", book.ID, dune)
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	deleted, err := svc.DeleteBook(ctx, "2", book.ID)
	assert.ErrorIs(t, err, models.ErrNotAuthorized)
	assert.False(t, deleted)

	_, err = svc.GetUser(ctx, "", "1")
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	books, err := svc.GetBooks(ctx, "1", "1")
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestOwnershipDisabled(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, false)

	book, err := svc.CreateBook(ctx, "", "1", dune)
	require.NoError(t, err)

	books, err := svc.GetBooks(ctx, "", "1")
	require.NoError(t, err)
	assert.Equal(t, []models.Book{*book}, books)

	deleted, err := svc.DeleteBook(ctx, "someone-else", book.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	usr, err := svc.GetUser(ctx, "", "1")
	require.NoError(t, err)
	assert.Nil(t, usr)
}

func TestSearchBooksFallsBackToListing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, true)

	_, err := svc.CreateBook(ctx, "1", "1", dune)
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, "1", "1", models.BookInput{
		Title: "Emma", Author: "Jane Austen", PublishedYear: 1815, Genre: "Romance",
	})
	require.NoError(t, err)

	all, err := svc.SearchBooks(ctx, "1", "1", "   ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matched, err := svc.SearchBooks(ctx, "1", "1", "AUSTEN")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Emma", matched[0].Title)
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()
	svc, db := newMemoryService(t, true)

	book, err := svc.CreateBook(ctx, "1", "1", dune)
	require.NoError(t, err)

	changed := dune
	changed.Title = "Dune Messiah"
	changed.PublishedYear = 1969
	updated, err := svc.UpdateBook(ctx, "1", book.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, book.ID, updated.ID)
	assert.Equal(t, "1", updated.UserID)
	assert.Equal(t, "Dune Messiah", updated.Title)

	_, err = svc.UpdateBook(ctx, "1", "999", changed)
	assert.ErrorIs(t, err, models.ErrBookNotFound)

	count, err := db.GetNumberOfBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, true)

	book, err := svc.CreateBook(ctx, "1", "1", dune)
	require.NoError(t, err)

	deleted, err := svc.DeleteBook(ctx, "1", "999")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = svc.DeleteBook(ctx, "1", book.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	books, err := svc.GetBooks(ctx, "1", "1")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestStorageFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	storageErr := errors.New("storage is down")

	db := &mockstorage.StorageMock{}
	db.On("GetBookByID", mock.Anything, "1").Return(nil, storageErr)
	db.On("Ping", mock.Anything).Return(storageErr)
	db.On("GetUserBooks", mock.Anything, "1").Return(nil, storageErr)
	db.OnGetNumberOfBooks = func(ctx context.Context) (int64, error) {
		return 0, storageErr
	}
	svc := New(db, true)

	_, err := svc.GetBook(ctx, "1", "1")
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.UpdateBook(ctx, "1", "1", dune)
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.DeleteBook(ctx, "1", "1")
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.SearchBooks(ctx, "1", "1", "")
	assert.ErrorIs(t, err, storageErr)

	assert.ErrorIs(t, svc.Ping(ctx), storageErr)

	_, err = svc.GetInternalStats(ctx)
	assert.ErrorIs(t, err, storageErr)

	db.AssertExpectations(t)
}

func TestGetInternalStats(t *testing.T) {
	db := &mockstorage.StorageMock{
		OnGetNumberOfBooks: func(ctx context.Context) (int64, error) { return 7, nil },
		OnGetNumberOfUsers: func(ctx context.Context) (int64, error) { return 3, nil },
	}
	svc := New(db, true)

	stats, err := svc.GetInternalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.InternalStatsResponse{Books: 7, Users: 3}, stats)
}
