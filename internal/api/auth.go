package api

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the bearer credential between runs. The token is the
// only credential the client ever holds; broker API keys pass through on
// creation and are never written anywhere.
type TokenStore struct {
	path string

	mu    sync.Mutex
	token string
	read  bool
}

// NewTokenStore creates a token store rooted at the given config directory.
func NewTokenStore(configDir string) *TokenStore {
	return &TokenStore{path: filepath.Join(configDir, "token")}
}

// Token returns the stored credential, or "" when logged out.
func (s *TokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.read {
		data, err := os.ReadFile(s.path)
		if err == nil {
			s.token = strings.TrimSpace(string(data))
		}
		s.read = true
	}
	return s.token
}

// Save stores a new credential.
func (s *TokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.read = true
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

// Clear removes the credential. Called on logout and on the first 401.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.read = true
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
