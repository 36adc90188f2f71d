package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/patric-chuzhbe/bookcatalog/internal/client"
	"github.com/patric-chuzhbe/bookcatalog/internal/models"
)

type bookAPI interface {
	Register(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	CreateBook(ctx context.Context, userID string, input models.BookInput) (*models.Book, error)
	GetBook(ctx context.Context, id string) (*models.Book, error)
	GetBooks(ctx context.Context, userID string) ([]models.Book, error)
	SearchBooks(ctx context.Context, userID, query string) ([]models.Book, error)
	UpdateBook(ctx context.Context, id string, input models.BookInput) (*models.Book, error)
	DeleteBook(ctx context.Context, id string) (bool, error)
}

var (
	errNotLoggedIn    = errors.New("please log in first")
	errUnknownCommand = errors.New("unknown command")
)

type cli struct {
	store   *client.SessionStore
	session *client.Session
	newAPI  func(token string) bookAPI
	in      *bufio.Reader
	out     io.Writer
	now     func() time.Time

	// readPassword reads without echo; nil when stdin is not a terminal.
	readPassword func() ([]byte, error)
}

func newCLI(store *client.SessionStore, newAPI func(token string) bookAPI, in *bufio.Reader, out io.Writer) (*cli, error) {
	session, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &cli{
		store:   store,
		session: session,
		newAPI:  newAPI,
		in:      in,
		out:     out,
		now:     time.Now,
	}, nil
}

func (c *cli) api() bookAPI {
	return c.newAPI(c.session.Token)
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.usage()
		return nil
	}

	command, rest := args[0], args[1:]
	switch command {
	case "help":
		c.usage()
		return nil
	case "signup":
		return c.signup(ctx)
	case "login":
		return c.login(ctx)
	case "logout":
		return c.logout()
	case "whoami":
		return c.whoami()
	}

	if !c.session.IsAuthenticated() {
		return errNotLoggedIn
	}

	switch command {
	case "list":
		return c.list(ctx, rest)
	case "search":
		return c.search(ctx, rest)
	case "add":
		return c.add(ctx)
	case "show":
		return c.show(ctx, rest)
	case "edit":
		return c.edit(ctx, rest)
	case "delete":
		return c.remove(ctx, rest)
	}

	return fmt.Errorf("%w: %s", errUnknownCommand, command)
}

func (c *cli) usage() {
	if c.session.IsAuthenticated() {
		fmt.Fprintln(c.out, "Available commands: list [-page N], search <query>, add, show <id>, edit <id>, delete <id>, whoami, logout")
		return
	}
	fmt.Fprintln(c.out, "Available commands: signup, login")
}

func (c *cli) signup(ctx context.Context) error {
	username, err := c.prompt("Username")
	if err != nil {
		return err
	}
	password, err := c.promptPassword("Password")
	if err != nil {
		return err
	}
	confirm, err := c.promptPassword("Confirm password")
	if err != nil {
		return err
	}

	if err := client.ValidateCredentials(username, password, confirm, true); err != nil {
		return err
	}

	response, err := c.api().Register(ctx, username, password)
	if err != nil {
		return err
	}

	return c.startSession(response)
}

func (c *cli) login(ctx context.Context) error {
	username, err := c.prompt("Username")
	if err != nil {
		return err
	}
	password, err := c.promptPassword("Password")
	if err != nil {
		return err
	}

	if err := client.ValidateCredentials(username, password, "", false); err != nil {
		return err
	}

	response, err := c.api().Login(ctx, username, password)
	if err != nil {
		return err
	}

	return c.startSession(response)
}

func (c *cli) startSession(response *models.AuthResponse) error {
	usr := response.User
	c.session = &client.Session{Token: response.Token, User: &usr}
	if err := c.store.Save(c.session); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Logged in as %s\n", usr.Username)
	return nil
}

func (c *cli) logout() error {
	c.session = &client.Session{}
	if err := c.store.Clear(); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func (c *cli) whoami() error {
	if !c.session.IsAuthenticated() {
		fmt.Fprintln(c.out, "Not logged in")
		return nil
	}

	fmt.Fprintf(c.out, "%s (id %s)\n", c.session.User.Username, c.session.User.ID)
	return nil
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(c.out)
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	books, err := c.api().GetBooks(ctx, c.session.User.ID)
	if err != nil {
		return err
	}

	c.printBooks(books, *page)
	return nil
}

func (c *cli) search(ctx context.Context, args []string) error {
	books, err := c.api().SearchBooks(ctx, c.session.User.ID, strings.Join(args, " "))
	if err != nil {
		return err
	}

	c.printBooks(books, 1)
	return nil
}

func (c *cli) printBooks(books []models.Book, page int) {
	if len(books) == 0 {
		fmt.Fprintln(c.out, "No books found")
		return
	}

	shown, totalPages := client.Paginate(books, page, client.BooksPerPage)
	for _, book := range shown {
		fmt.Fprintf(c.out, "[%s] %s by %s (%d), %s\n", book.ID, book.Title, book.Author, book.PublishedYear, book.Genre)
	}
	if totalPages > 1 {
		if page < 1 {
			page = 1
		}
		if page > totalPages {
			page = totalPages
		}
		fmt.Fprintf(c.out, "Page %d of %d\n", page, totalPages)
	}
}

func (c *cli) add(ctx context.Context) error {
	input, err := c.bookForm(models.Book{})
	if err != nil {
		return err
	}

	book, err := c.api().CreateBook(ctx, c.session.User.ID, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Added book %s\n", book.ID)
	return nil
}

func (c *cli) show(ctx context.Context, args []string) error {
	id, err := bookID(args)
	if err != nil {
		return err
	}

	book, err := c.api().GetBook(ctx, id)
	if err != nil {
		return err
	}
	if book == nil {
		return models.ErrBookNotFound
	}

	fmt.Fprintf(c.out, "Title: %s\nAuthor: %s\nPublished: %d\nGenre: %s\n", book.Title, book.Author, book.PublishedYear, book.Genre)
	return nil
}

func (c *cli) edit(ctx context.Context, args []string) error {
	id, err := bookID(args)
	if err != nil {
		return err
	}

	current, err := c.api().GetBook(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return models.ErrBookNotFound
	}

	input, err := c.bookForm(*current)
	if err != nil {
		return err
	}

	updated, err := c.api().UpdateBook(ctx, id, input)
	if err != nil {
		return err
	}
	if updated == nil {
		return models.ErrBookNotFound
	}

	fmt.Fprintf(c.out, "Updated book %s\n", updated.ID)
	return nil
}

func (c *cli) remove(ctx context.Context, args []string) error {
	id, err := bookID(args)
	if err != nil {
		return err
	}

	answer, err := c.prompt("Are you sure you want to delete this book? [y/N]")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(c.out, "Cancelled")
		return nil
	}

	deleted, err := c.api().DeleteBook(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return models.ErrBookNotFound
	}

	fmt.Fprintf(c.out, "Deleted book %s\n", id)
	return nil
}

// bookForm asks for every field; an empty answer keeps the current value.
func (c *cli) bookForm(current models.Book) (models.BookInput, error) {
	currentYear := ""
	if current.ID != "" {
		currentYear = strconv.Itoa(current.PublishedYear)
	}

	fields := []struct {
		label   string
		current string
	}{
		{"Title", current.Title},
		{"Author", current.Author},
		{"Published year", currentYear},
		{"Genre", current.Genre},
	}

	answers := make([]string, len(fields))
	for i, field := range fields {
		label := field.label
		if field.current != "" {
			label = fmt.Sprintf("%s [%s]", field.label, field.current)
		}

		answer, err := c.prompt(label)
		if err != nil {
			return models.BookInput{}, err
		}
		if answer == "" {
			answer = field.current
		}
		answers[i] = answer
	}

	return client.ParseBookInput(answers[0], answers[1], answers[2], answers[3], c.now())
}

func (c *cli) prompt(label string) (string, error) {
	line, err := c.readLine(label)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// readLine returns the answer with only the line ending removed.
func (c *cli) readLine(label string) (string, error) {
	if _, err := fmt.Fprint(c.out, label+": "); err != nil {
		return "", err
	}

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

// promptPassword reads without echo on a terminal and falls back to a
// plain line otherwise. Passwords are never trimmed.
func (c *cli) promptPassword(label string) (string, error) {
	if c.readPassword == nil {
		return c.readLine(label)
	}

	fmt.Fprint(c.out, label+": ")
	password, err := c.readPassword()
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}

	return string(password), nil
}

func bookID(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New("expected exactly one book id")
	}

	return args[0], nil
}
