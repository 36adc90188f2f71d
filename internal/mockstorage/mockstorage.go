// Package mockstorage provides a testify-based mock of the storage
// interfaces consumed by the service and router packages.
// It lets handler and service tests simulate storage failures and
// arbitrary states without building them up through real calls.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/bookcatalog/internal/models"
	"github.com/patric-chuzhbe/bookcatalog/internal/user"
)

// StorageMock is a testify mock that implements every storage method
// used by the service layer.
type StorageMock struct {
	mock.Mock

	// OnGetNumberOfUsers is an optional function field that can be assigned
	// to define custom mock behavior for GetNumberOfUsers in tests.
	//
	// If set, GetNumberOfUsers will delegate to this function instead of
	// using testify's generic mock handler.
	OnGetNumberOfUsers func(ctx context.Context) (int64, error)

	// OnGetNumberOfBooks works like OnGetNumberOfUsers for GetNumberOfBooks.
	OnGetNumberOfBooks func(ctx context.Context) (int64, error)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// CreateUser mocks user creation.
func (m *StorageMock) CreateUser(ctx context.Context, username, passwordHash string) (*user.User, error) {
	args := m.Called(ctx, username, passwordHash)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// GetUserByUsername mocks the username lookup.
func (m *StorageMock) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// GetUserByID mocks fetching a user by their ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// CreateBook mocks inserting a book.
func (m *StorageMock) CreateBook(ctx context.Context, userID string, input models.BookInput) (*models.Book, error) {
	args := m.Called(ctx, userID, input)
	book, _ := args.Get(0).(*models.Book)
	return book, args.Error(1)
}

// GetBookByID mocks the point lookup.
func (m *StorageMock) GetBookByID(ctx context.Context, bookID string) (*models.Book, error) {
	args := m.Called(ctx, bookID)
	book, _ := args.Get(0).(*models.Book)
	return book, args.Error(1)
}

// GetUserBooks mocks the owner-scoped listing.
func (m *StorageMock) GetUserBooks(ctx context.Context, userID string) ([]models.Book, error) {
	args := m.Called(ctx, userID)
	books, _ := args.Get(0).([]models.Book)
	return books, args.Error(1)
}

// SearchUserBooks mocks the owner-scoped search.
func (m *StorageMock) SearchUserBooks(ctx context.Context, userID, query string) ([]models.Book, error) {
	args := m.Called(ctx, userID, query)
	books, _ := args.Get(0).([]models.Book)
	return books, args.Error(1)
}

// UpdateBook mocks replacing the mutable fields of a book.
func (m *StorageMock) UpdateBook(ctx context.Context, bookID string, input models.BookInput) (*models.Book, error) {
	args := m.Called(ctx, bookID, input)
	book, _ := args.Get(0).(*models.Book)
	return book, args.Error(1)
}

// DeleteBook mocks book removal.
func (m *StorageMock) DeleteBook(ctx context.Context, bookID string) (bool, error) {
	args := m.Called(ctx, bookID)
	return args.Bool(0), args.Error(1)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetNumberOfUsers returns the number of users as defined by the mock.
//
// If OnGetNumberOfUsers is non-nil, it will be called to produce the result.
// Otherwise, the method returns 0 and no error by default.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfUsers != nil {
		return m.OnGetNumberOfUsers(ctx)
	}
	return 0, nil
}

// GetNumberOfBooks returns the number of stored books.
func (m *StorageMock) GetNumberOfBooks(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfBooks != nil {
		return m.OnGetNumberOfBooks(ctx)
	}
	return 0, nil
}
