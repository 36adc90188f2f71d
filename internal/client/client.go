// Package client is the terminal-side counterpart of the API: a GraphQL
// client over resty, the persisted login session and the form checks run
// before any request is sent.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/bookcatalog/internal/models"
)

// ErrRequestFailed wraps transport failures and non-200 answers.
var ErrRequestFailed = errors.New("request failed")

const bookFields = `id title author publishedYear genre userId`

// Client executes GraphQL documents against one server.
type Client struct {
	http  *resty.Client
	token string
}

// Option customizes Client.
type Option func(*Client)

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithToken authenticates every request with the session token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:4000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetTimeout(10 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken replaces the session token, an empty string logs out.
func (c *Client) SetToken(token string) {
	c.token = token
}

type graphqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// execute posts the document and decodes data[field] into out. The first
// server error message is returned verbatim.
func (c *Client) execute(ctx context.Context, query string, variables map[string]interface{}, field string, out interface{}) error {
	request := c.http.R().
		SetContext(ctx).
		SetBody(models.GraphQLRequest{Query: query, Variables: variables})
	if c.token != "" {
		request.SetAuthToken(c.token)
	}

	resp, err := request.Post("/graphql")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s", ErrRequestFailed, resp.Status())
	}

	var decoded graphqlResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if len(decoded.Errors) > 0 {
		return errors.New(decoded.Errors[0].Message)
	}

	raw, ok := decoded.Data[field]
	if !ok {
		return fmt.Errorf("%w: no %q in response", ErrRequestFailed, field)
	}

	return json.Unmarshal(raw, out)
}

// Register creates an account and returns the new session.
func (c *Client) Register(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var response models.AuthResponse
	err := c.execute(ctx, `mutation Register($username: String!, $password: String!) {
		register(username: $username, password: $password) { token user { id username } }
	}`, map[string]interface{}{"username": username, "password": password}, "register", &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

// Login returns a fresh session for the credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var response models.AuthResponse
	err := c.execute(ctx, `mutation Login($username: String!, $password: String!) {
		login(username: $username, password: $password) { token user { id username } }
	}`, map[string]interface{}{"username": username, "password": password}, "login", &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

// GetUser returns nil when the user does not exist.
func (c *Client) GetUser(ctx context.Context, id string) (*models.PublicUser, error) {
	var usr *models.PublicUser
	err := c.execute(ctx, `query GetUser($id: String!) { getUser(id: $id) { id username } }`,
		map[string]interface{}{"id": id}, "getUser", &usr)

	return usr, err
}

// CreateBook adds a book owned by userID.
func (c *Client) CreateBook(ctx context.Context, userID string, input models.BookInput) (*models.Book, error) {
	variables := bookVariables(input)
	variables["userId"] = userID

	var book models.Book
	err := c.execute(ctx, `mutation CreateBook($userId: String!, $title: String!, $author: String!, $publishedYear: Int!, $genre: String!) {
		createBook(userId: $userId, title: $title, author: $author, publishedYear: $publishedYear, genre: $genre) { `+bookFields+` }
	}`, variables, "createBook", &book)
	if err != nil {
		return nil, err
	}

	return &book, nil
}

// GetBook returns nil when the id is unknown.
func (c *Client) GetBook(ctx context.Context, id string) (*models.Book, error) {
	var book *models.Book
	err := c.execute(ctx, `query GetBook($id: String!) { getBook(id: $id) { `+bookFields+` } }`,
		map[string]interface{}{"id": id}, "getBook", &book)

	return book, err
}

// GetBooks lists the books of userID.
func (c *Client) GetBooks(ctx context.Context, userID string) ([]models.Book, error) {
	books := []models.Book{}
	err := c.execute(ctx, `query GetBooks($userId: String!) { getBooks(userId: $userId) { `+bookFields+` } }`,
		map[string]interface{}{"userId": userID}, "getBooks", &books)

	return books, err
}

// SearchBooks falls back to GetBooks for a blank query.
func (c *Client) SearchBooks(ctx context.Context, userID, query string) ([]models.Book, error) {
	if strings.TrimSpace(query) == "" {
		return c.GetBooks(ctx, userID)
	}

	books := []models.Book{}
	err := c.execute(ctx, `query SearchBooks($userId: String!, $query: String!) {
		searchBooks(userId: $userId, query: $query) { `+bookFields+` }
	}`, map[string]interface{}{"userId": userID, "query": query}, "searchBooks", &books)

	return books, err
}

// UpdateBook returns nil when the id is unknown.
func (c *Client) UpdateBook(ctx context.Context, id string, input models.BookInput) (*models.Book, error) {
	variables := bookVariables(input)
	variables["id"] = id

	var book *models.Book
	err := c.execute(ctx, `mutation UpdateBook($id: String!, $title: String!, $author: String!, $publishedYear: Int!, $genre: String!) {
		updateBook(id: $id, title: $title, author: $author, publishedYear: $publishedYear, genre: $genre) { `+bookFields+` }
	}`, variables, "updateBook", &book)

	return book, err
}

// DeleteBook reports whether a book was removed.
func (c *Client) DeleteBook(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := c.execute(ctx, `mutation DeleteBook($id: String!) { deleteBook(id: $id) }`,
		map[string]interface{}{"id": id}, "deleteBook", &deleted)

	return deleted, err
}

func bookVariables(input models.BookInput) map[string]interface{} {
	return map[string]interface{}{
		"title":         input.Title,
		"author":        input.Author,
		"publishedYear": input.PublishedYear,
		"genre":         input.Genre,
	}
}
