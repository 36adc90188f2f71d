package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patric-chuzhbe/bookcatalog/internal/models"
)

// Keys of the session file.
const (
	TokenKey = "authToken"
	UserKey  = "user"
)

// Session is the logged in state of the terminal client.
type Session struct {
	Token string
	User  *models.PublicUser
}

// IsAuthenticated requires both the token and the user.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// SessionStore persists a Session as a flat JSON key-value file. The user
// is kept JSON encoded under its key, so the file holds only strings.
type SessionStore struct {
	path string
}

// NewSessionStore returns a store backed by path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath is ~/.bookcatalog/session.json.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".bookcatalog", "session.json"), nil
}

// Load returns the stored session. A missing file or a missing key means
// logged out and is not an error; an unreadable user entry is dropped.
func (s *SessionStore) Load() (*Session, error) {
	values, err := s.read()
	if err != nil {
		return nil, err
	}

	session := &Session{}
	token, hasToken := values[TokenKey]
	rawUser, hasUser := values[UserKey]
	if !hasToken || !hasUser {
		return session, nil
	}

	var usr models.PublicUser
	if err := json.Unmarshal([]byte(rawUser), &usr); err != nil {
		return session, nil
	}

	session.Token = token
	session.User = &usr

	return session, nil
}

// Save stores both keys.
func (s *SessionStore) Save(session *Session) error {
	if !session.IsAuthenticated() {
		return errors.New("refusing to save an incomplete session")
	}

	values, err := s.read()
	if err != nil {
		return err
	}

	rawUser, err := json.Marshal(session.User)
	if err != nil {
		return err
	}
	values[TokenKey] = session.Token
	values[UserKey] = string(rawUser)

	return s.write(values)
}

// Clear removes both keys, leaving any other entries alone.
func (s *SessionStore) Clear() error {
	values, err := s.read()
	if err != nil {
		return err
	}

	delete(values, TokenKey)
	delete(values, UserKey)

	return s.write(values)
}

func (s *SessionStore) read() (map[string]string, error) {
	values := map[string]string{}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("in internal/client/session.go/read(): error while `os.ReadFile()` calling: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("in internal/client/session.go/read(): error while `json.Unmarshal()` calling: %w", err)
	}

	return values, nil
}

func (s *SessionStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(values, "", "\t")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}
