// Package store persists the session credentials across process restarts.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/publiflow/publiflow-client/internal/errs"
	"github.com/publiflow/publiflow-client/internal/model"
)

const (
	tokenFileName   = "token"
	profileFileName = "user.json"
)

// Store is a file-backed credential store rooted at a config directory.
// The two entries (bearer token, serialized profile) are written and
// cleared together.
type Store struct {
	dir string
}

// New constructs a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir resolves the per-user config directory, honoring XDG_CONFIG_HOME.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "publiflow")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "publiflow")
}

// Save writes the token and profile entries. The directory is created on demand.
func (s *Store) Save(token string, user model.UserProfile) error {
	if token == "" {
		return errors.New("validation: empty token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(s.tokenPath(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	f, err := os.Create(s.profilePath())
	if err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(user); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Load reads both entries. It returns ErrRestoreSkipped when either entry is
// missing or unparseable; callers treat that as "no persisted session".
func (s *Store) Load() (string, model.UserProfile, error) {
	tok, err := os.ReadFile(s.tokenPath())
	if err != nil {
		return "", model.UserProfile{}, fmt.Errorf("%w: %s", errs.ErrRestoreSkipped, "no token")
	}
	token := strings.TrimSpace(string(tok))
	if token == "" {
		return "", model.UserProfile{}, fmt.Errorf("%w: %s", errs.ErrRestoreSkipped, "empty token")
	}
	b, err := os.ReadFile(s.profilePath())
	if err != nil {
		return "", model.UserProfile{}, fmt.Errorf("%w: %s", errs.ErrRestoreSkipped, "no profile")
	}
	var user model.UserProfile
	if err := json.Unmarshal(b, &user); err != nil {
		return "", model.UserProfile{}, fmt.Errorf("%w: bad profile", errs.ErrRestoreSkipped)
	}
	if user.ID == 0 {
		return "", model.UserProfile{}, fmt.Errorf("%w: bad profile", errs.ErrRestoreSkipped)
	}
	return token, user, nil
}

// Clear removes both entries. Missing files are not an error.
func (s *Store) Clear() error {
	var first error
	for _, p := range []string{s.tokenPath(), s.profilePath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) && first == nil {
			first = err
		}
	}
	return first
}

func (s *Store) tokenPath() string   { return filepath.Join(s.dir, tokenFileName) }
func (s *Store) profilePath() string { return filepath.Join(s.dir, profileFileName) }
