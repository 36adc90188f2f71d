// Package gateway exposes the book catalog as a GraphQL schema with the
// register, login, getUser, createBook, getBook, getBooks, searchBooks,
// updateBook and deleteBook operations. Errors returned by the services
// become entries of the "errors" array of the response.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/patric-chuzhbe/bookcatalog/internal/auth"
	"github.com/patric-chuzhbe/bookcatalog/internal/logger"
	"github.com/patric-chuzhbe/bookcatalog/internal/models"
)

type authService interface {
	Register(ctx context.Context, username, password string) (*models.AuthResponse, error)

	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
}

type bookService interface {
	CreateBook(ctx context.Context, caller, userID string, input models.BookInput) (*models.Book, error)

	GetBook(ctx context.Context, caller, bookID string) (*models.Book, error)

	GetBooks(ctx context.Context, caller, userID string) ([]models.Book, error)

	SearchBooks(ctx context.Context, caller, userID, query string) ([]models.Book, error)

	UpdateBook(ctx context.Context, caller, bookID string, input models.BookInput) (*models.Book, error)

	DeleteBook(ctx context.Context, caller, bookID string) (bool, error)

	GetUser(ctx context.Context, caller, userID string) (*models.PublicUser, error)
}

// Gateway executes GraphQL documents against the auth and book services.
type Gateway struct {
	auth   authService
	books  bookService
	schema graphql.Schema
}

// New builds the schema and returns a ready Gateway.
func New(authSvc authService, books bookService) (*Gateway, error) {
	g := &Gateway{
		auth:  authSvc,
		books: books,
	}

	schema, err := g.buildSchema()
	if err != nil {
		return nil, fmt.Errorf("in internal/gateway/gateway.go/New(): error while `g.buildSchema()` calling: %w", err)
	}
	g.schema = schema

	return g, nil
}

// Execute runs one request. The request context carries the caller's user
// id put there by the auth middleware.
func (g *Gateway) Execute(ctx context.Context, request models.GraphQLRequest) *graphql.Result {
	result := graphql.Do(graphql.Params{
		Schema:         g.schema,
		RequestString:  request.Query,
		VariableValues: request.Variables,
		OperationName:  request.OperationName,
		Context:        ctx,
	})
	if result.HasErrors() {
		logger.Log.Debugw("graphql request finished with errors", "errors", result.Errors)
	}

	return result
}

func (g *Gateway) resolveRegister(p graphql.ResolveParams) (interface{}, error) {
	response, err := g.auth.Register(p.Context, stringArg(p, "username"), stringArg(p, "password"))
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (g *Gateway) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	response, err := g.auth.Login(p.Context, stringArg(p, "username"), stringArg(p, "password"))
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (g *Gateway) resolveGetUser(p graphql.ResolveParams) (interface{}, error) {
	usr, err := g.books.GetUser(p.Context, caller(p), stringArg(p, "id"))
	if err != nil || usr == nil {
		return nil, err
	}

	return usr, nil
}

func (g *Gateway) resolveCreateBook(p graphql.ResolveParams) (interface{}, error) {
	book, err := g.books.CreateBook(p.Context, caller(p), stringArg(p, "userId"), bookInput(p))
	if err != nil {
		return nil, err
	}

	return book, nil
}

func (g *Gateway) resolveGetBook(p graphql.ResolveParams) (interface{}, error) {
	book, err := g.books.GetBook(p.Context, caller(p), stringArg(p, "id"))
	if err != nil || book == nil {
		return nil, err
	}

	return book, nil
}

func (g *Gateway) resolveGetBooks(p graphql.ResolveParams) (interface{}, error) {
	books, err := g.books.GetBooks(p.Context, caller(p), stringArg(p, "userId"))
	if err != nil {
		return nil, err
	}

	return books, nil
}

func (g *Gateway) resolveSearchBooks(p graphql.ResolveParams) (interface{}, error) {
	books, err := g.books.SearchBooks(p.Context, caller(p), stringArg(p, "userId"), stringArg(p, "query"))
	if err != nil {
		return nil, err
	}

	return books, nil
}

func (g *Gateway) resolveUpdateBook(p graphql.ResolveParams) (interface{}, error) {
	book, err := g.books.UpdateBook(p.Context, caller(p), stringArg(p, "id"), bookInput(p))
	if errors.Is(err, models.ErrBookNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return book, nil
}

func (g *Gateway) resolveDeleteBook(p graphql.ResolveParams) (interface{}, error) {
	deleted, err := g.books.DeleteBook(p.Context, caller(p), stringArg(p, "id"))
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func caller(p graphql.ResolveParams) string {
	if p.Context == nil {
		return ""
	}
	userID, _ := auth.UserIDFromContext(p.Context)

	return userID
}

func stringArg(p graphql.ResolveParams, name string) string {
	value, _ := p.Args[name].(string)
	return value
}

// intArg accepts both int (literal arguments) and float64 (JSON variables
// that skipped coercion).
func intArg(p graphql.ResolveParams, name string) int {
	switch value := p.Args[name].(type) {
	case int:
		return value
	case float64:
		return int(value)
	default:
		return 0
	}
}

func bookInput(p graphql.ResolveParams) models.BookInput {
	return models.BookInput{
		Title:         stringArg(p, "title"),
		Author:        stringArg(p, "author"),
		PublishedYear: intArg(p, "publishedYear"),
		Genre:         stringArg(p, "genre"),
	}
}
