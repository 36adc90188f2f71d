package service

import (
	"context"
	"strings"

	"github.com/patric-chuzhbe/bookcatalog/internal/models"
	"github.com/patric-chuzhbe/bookcatalog/internal/user"
	"github.com/patric-chuzhbe/bookcatalog/internal/validation"
)

type booksKeeper interface {
	CreateBook(ctx context.Context, userID string, input models.BookInput) (*models.Book, error)

	GetBookByID(ctx context.Context, bookID string) (*models.Book, error)

	GetUserBooks(ctx context.Context, userID string) ([]models.Book, error)

	SearchUserBooks(ctx context.Context, userID, query string) ([]models.Book, error)

	UpdateBook(ctx context.Context, bookID string, input models.BookInput) (*models.Book, error)

	DeleteBook(ctx context.Context, bookID string) (bool, error)
}

type usersKeeper interface {
	GetUserByID(ctx context.Context, userID string) (*user.User, error)
}

type statsKeeper interface {
	GetNumberOfBooks(ctx context.Context) (int64, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	booksKeeper
	usersKeeper
	statsKeeper
	pinger
}

// Service implements the book operations on top of the storage and applies
// the ownership policy. The caller argument of each method is the user id
// taken from the request token; it is empty for anonymous requests.
type Service struct {
	db               storage
	validate         *validation.Validator
	enforceOwnership bool
}

// Option customizes Service.
type Option func(*Service)

// WithValidator replaces the default input validator.
func WithValidator(v *validation.Validator) Option {
	return func(s *Service) {
		s.validate = v
	}
}

// New creates a Service over db. With enforceOwnership off no caller
// checks run.
func New(db storage, enforceOwnership bool, opts ...Option) *Service {
	s := &Service{
		db:               db,
		validate:         validation.New(nil),
		enforceOwnership: enforceOwnership,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateBook adds a book owned by userID.
func (s *Service) CreateBook(ctx context.Context, caller, userID string, input models.BookInput) (*models.Book, error) {
	if err := s.checkCaller(caller, userID); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	return s.db.CreateBook(ctx, userID, input)
}

// GetBook returns the book or nil when the id is unknown.
func (s *Service) GetBook(ctx context.Context, caller, bookID string) (*models.Book, error) {
	book, err := s.db.GetBookByID(ctx, bookID)
	if err != nil || book == nil {
		return nil, err
	}

	if err := s.checkCaller(caller, book.UserID); err != nil {
		return nil, err
	}

	return book, nil
}

// GetBooks lists the books of userID in insertion order.
func (s *Service) GetBooks(ctx context.Context, caller, userID string) ([]models.Book, error) {
	if err := s.checkCaller(caller, userID); err != nil {
		return nil, err
	}

	return s.db.GetUserBooks(ctx, userID)
}

// SearchBooks matches query against title, author and genre. A blank
// query lists every book of the user.
func (s *Service) SearchBooks(ctx context.Context, caller, userID, query string) ([]models.Book, error) {
	if err := s.checkCaller(caller, userID); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return s.db.GetUserBooks(ctx, userID)
	}

	return s.db.SearchUserBooks(ctx, userID, query)
}

// UpdateBook replaces the mutable fields of the book. It returns
// models.ErrBookNotFound when the id is unknown.
func (s *Service) UpdateBook(ctx context.Context, caller, bookID string, input models.BookInput) (*models.Book, error) {
	existing, err := s.db.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, models.ErrBookNotFound
	}

	if err := s.checkCaller(caller, existing.UserID); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	updated, err := s.db.UpdateBook(ctx, bookID, input)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, models.ErrBookNotFound
	}

	return updated, nil
}

// DeleteBook removes the book and reports whether it existed.
func (s *Service) DeleteBook(ctx context.Context, caller, bookID string) (bool, error) {
	existing, err := s.db.GetBookByID(ctx, bookID)
	if err != nil || existing == nil {
		return false, err
	}

	if err := s.checkCaller(caller, existing.UserID); err != nil {
		return false, err
	}

	return s.db.DeleteBook(ctx, bookID)
}

// GetUser returns the public view of the user or nil when unknown.
// With ownership enforcement on, an authenticated caller is required.
func (s *Service) GetUser(ctx context.Context, caller, userID string) (*models.PublicUser, error) {
	if s.enforceOwnership && caller == "" {
		return nil, models.ErrNotAuthorized
	}

	usr, err := s.db.GetUserByID(ctx, userID)
	if err != nil || usr == nil {
		return nil, err
	}

	public := usr.Public()
	return &public, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetInternalStats returns the number of stored books and users.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	books, err := s.db.GetNumberOfBooks(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return models.InternalStatsResponse{
		Books: books,
		Users: users,
	}, nil
}

func (s *Service) checkCaller(caller, ownerID string) error {
	if !s.enforceOwnership {
		return nil
	}
	if caller == "" || caller != ownerID {
		return models.ErrNotAuthorized
	}

	return nil
}
