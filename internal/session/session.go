package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store holds the bearer token proving an authenticated user identity. It is
// read on every protected request and written or cleared only by explicit
// login/logout actions.
type Store interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

// FileStore persists the token to a file so the session survives restarts.
type FileStore struct {
	path  string
	token string
}

// DefaultPath returns the token location under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}

	return filepath.Join(dir, "budgetbook", "token"), nil
}

// NewFileStore loads any previously saved token from path. A missing file
// just means no session.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}

		return nil, fmt.Errorf("reading token file: %w", err)
	}

	s.token = strings.TrimSpace(string(data))

	return s, nil
}

func (s *FileStore) Token() string {
	return s.token
}

func (s *FileStore) SetToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}

	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	s.token = token

	return nil
}

func (s *FileStore) Clear() error {
	s.token = ""

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}

	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	token string
}

func NewMemStore(token string) *MemStore {
	return &MemStore{token: token}
}

func (s *MemStore) Token() string { return s.token }

func (s *MemStore) SetToken(token string) error {
	s.token = token
	return nil
}

func (s *MemStore) Clear() error {
	s.token = ""
	return nil
}
