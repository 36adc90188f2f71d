// Package memorystorage keeps users and books in process memory.
// All collections and id counters are guarded by a single lock, so the
// storage is safe for concurrent HTTP handlers. Nothing survives a restart.
package memorystorage

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/bookcatalog/internal/models"
	"github.com/patric-chuzhbe/bookcatalog/internal/user"
)

// MemoryStorage is the credential store and book repository backend.
type MemoryStorage struct {
	mu sync.RWMutex

	users      []*user.User
	nextUserID int

	books      []*models.Book
	nextBookID int
}

// New returns an empty storage whose counters start at 1.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:      []*user.User{},
		nextUserID: 1,
		books:      []*models.Book{},
		nextBookID: 1,
	}, nil
}

// Close drops every record.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = nil
	s.books = nil

	return nil
}

// Ping always succeeds for the memory backend.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// CreateUser stores a new account. The uniqueness check and the insert
// happen under the same lock.
func (s *MemoryStorage) CreateUser(ctx context.Context, username, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUser(func(u *user.User) bool { return u.Username == username }) != nil {
		return nil, models.ErrDuplicateUsername
	}

	usr := &user.User{
		ID:           strconv.Itoa(s.nextUserID),
		Username:     username,
		PasswordHash: passwordHash,
	}
	s.nextUserID++
	s.users = append(s.users, usr)

	result := *usr
	return &result, nil
}

// GetUserByUsername returns nil when no account matches exactly.
func (s *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usr := s.findUser(func(u *user.User) bool { return u.Username == username })
	if usr == nil {
		return nil, nil
	}
	result := *usr

	return &result, nil
}

// GetUserByID returns nil when the id is unknown.
func (s *MemoryStorage) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usr := s.findUser(func(u *user.User) bool { return u.ID == userID })
	if usr == nil {
		return nil, nil
	}
	result := *usr

	return &result, nil
}

// CreateBook assigns the next sequential id. The owner is not checked
// against the user collection.
func (s *MemoryStorage) CreateBook(ctx context.Context, userID string, input models.BookInput) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := &models.Book{
		ID:            strconv.Itoa(s.nextBookID),
		Title:         input.Title,
		Author:        input.Author,
		PublishedYear: input.PublishedYear,
		Genre:         input.Genre,
		UserID:        userID,
	}
	s.nextBookID++
	s.books = append(s.books, book)

	result := *book
	return &result, nil
}

// GetBookByID returns nil when the id is unknown.
func (s *MemoryStorage) GetBookByID(ctx context.Context, bookID string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.bookIndex(bookID)
	if index == -1 {
		return nil, nil
	}
	result := *s.books[index]

	return &result, nil
}

// GetUserBooks lists the owner's books in insertion order.
func (s *MemoryStorage) GetUserBooks(ctx context.Context, userID string) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterBooks(func(b *models.Book) bool {
		return b.UserID == userID
	}), nil
}

// SearchUserBooks matches the query case-insensitively against title,
// author and genre of the owner's books. An empty query matches everything.
func (s *MemoryStorage) SearchUserBooks(ctx context.Context, userID, query string) ([]models.Book, error) {
	lowerQuery := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterBooks(func(b *models.Book) bool {
		return b.UserID == userID &&
			(strings.Contains(strings.ToLower(b.Title), lowerQuery) ||
				strings.Contains(strings.ToLower(b.Author), lowerQuery) ||
				strings.Contains(strings.ToLower(b.Genre), lowerQuery))
	}), nil
}

// UpdateBook replaces the mutable fields in place. It returns nil and
// leaves the collection untouched when the id is unknown.
func (s *MemoryStorage) UpdateBook(ctx context.Context, bookID string, input models.BookInput) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.bookIndex(bookID)
	if index == -1 {
		return nil, nil
	}

	book := s.books[index]
	book.Title = input.Title
	book.Author = input.Author
	book.PublishedYear = input.PublishedYear
	book.Genre = input.Genre

	result := *book
	return &result, nil
}

// DeleteBook removes the record keeping the order of the rest.
func (s *MemoryStorage) DeleteBook(ctx context.Context, bookID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.bookIndex(bookID)
	if index == -1 {
		return false, nil
	}

	s.books = append(s.books[:index], s.books[index+1:]...)

	return true, nil
}

// GetNumberOfBooks returns the count of stored books.
func (s *MemoryStorage) GetNumberOfBooks(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.books)), nil
}

// GetNumberOfUsers returns the count of registered users.
func (s *MemoryStorage) GetNumberOfUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.users)), nil
}

func (s *MemoryStorage) findUser(predicate func(*user.User) bool) *user.User {
	found := funk.Find(s.users, predicate)
	if found == nil {
		return nil
	}

	return found.(*user.User)
}

func (s *MemoryStorage) bookIndex(bookID string) int {
	for i, b := range s.books {
		if b.ID == bookID {
			return i
		}
	}

	return -1
}

// filterBooks must be called with the lock held.
func (s *MemoryStorage) filterBooks(predicate func(*models.Book) bool) []models.Book {
	matched := funk.Filter(s.books, predicate).([]*models.Book)

	result := make([]models.Book, 0, len(matched))
	for _, b := range matched {
		result = append(result, *b)
	}

	return result
}
