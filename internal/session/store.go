package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"tasksync/internal/service"
)

// Store persists the session between runs.
type Store interface {
	// Load returns the stored session, or nil if none is stored.
	Load() (*Session, error)

	// Save replaces the stored session.
	Save(s *Session) error

	// Clear removes the stored session. Clearing an empty store is not an error.
	Clear() error
}

type storedSession struct {
	Token *oauth2.Token `json:"token"`
	User  service.User  `json:"user"`
}

// FileStore keeps the session as JSON in a single file with mode 0600.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

// Load implements Store.
func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	if stored.Token == nil || stored.Token.AccessToken == "" {
		return nil, fmt.Errorf("invalid session file: missing access token")
	}
	token := *stored.Token
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}
	return &Session{token: &token, user: stored.User}, nil
}

// Save implements Store.
func (f *FileStore) Save(s *Session) error {
	if s == nil {
		return f.Clear()
	}
	data, err := json.MarshalIndent(storedSession{Token: s.token, User: s.user}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	// Write then rename so a crash never leaves a half-written pair behind.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Clear implements Store.
func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// memoryStore keeps nothing across runs. Used when no store is configured.
type memoryStore struct{}

func (memoryStore) Load() (*Session, error) { return nil, nil }
func (memoryStore) Save(*Session) error     { return nil }
func (memoryStore) Clear() error            { return nil }
