// Package session persists the logged-in user's credentials between runs.
//
// The session lives in a single YAML file under the XDG state directory
// (~/.local/state/stockpile/session.yaml, mode 0600). Load reads it once at
// startup; SetAuth and Clear write through immediately so other stk
// processes, and the dashboard's file watcher, see the change.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vanderheijden86/stockpile/pkg/config"
	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"gopkg.in/yaml.v3"
)

// FileName is the session file's name inside the state directory.
const FileName = "session.yaml"

// Session is the persisted authentication state.
type Session struct {
	Token           string      `yaml:"token"`
	AttachmentToken string      `yaml:"attachment_token,omitempty"`
	ExpiresAt       time.Time   `yaml:"expires_at,omitempty"`
	User            *model.User `yaml:"user,omitempty"`
}

// Authenticated reports whether s holds a token that has not expired at now.
// A zero ExpiresAt never expires.
func (s Session) Authenticated(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// Store guards the current session and its backing file.
type Store struct {
	mu   sync.RWMutex
	path string
	cur  Session
	now  func() time.Time
}

// DefaultPath returns the session file location under config.StateDir().
func DefaultPath() string {
	dir := config.StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, FileName)
}

// NewStore returns an empty store backed by path. Call Load to read it.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory session with the file's contents. A missing
// file yields an empty session. A corrupt file also yields an empty session,
// and the parse error is returned.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Session{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			debug.Log("session: no session at %s", s.path)
			return nil
		}
		return fmt.Errorf("reading session: %w", err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("parsing session %s: %w", s.path, err)
	}
	s.cur = sess
	debug.Log("session: loaded (authenticated=%v)", sess.Authenticated(s.now()))
	return nil
}

// SetAuth stores a fresh login and writes it to disk.
func (s *Store) SetAuth(tok model.TokenResponse, user model.User) error {
	sess := Session{
		Token:           tok.Token,
		AttachmentToken: tok.AttachmentToken,
		ExpiresAt:       tok.ExpiresAt,
		User:            &user,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(sess); err != nil {
		return err
	}
	s.cur = sess
	debug.Log("session: saved for %s", user.Email)
	return nil
}

// SetUser replaces the stored user, keeping the token.
func (s *Store) SetUser(user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.cur
	sess.User = &user
	if err := s.write(sess); err != nil {
		return err
	}
	s.cur = sess
	return nil
}

// Clear forgets the session and removes the file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Session{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	debug.Log("session: cleared")
	return nil
}

// write atomically replaces the session file. Caller holds mu.
func (s *Store) write(sess Session) error {
	if s.path == "" {
		return fmt.Errorf("cannot determine session path")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.cur
	if sess.User != nil {
		u := *sess.User
		sess.User = &u
	}
	return sess
}

// Token returns the bearer token, or "" when logged out or expired.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.cur.Authenticated(s.now()) {
		return ""
	}
	return s.cur.Token
}

// IsAuthenticated reports whether a usable token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Authenticated(s.now())
}

// User returns a copy of the logged-in user, or nil.
func (s *Store) User() *model.User {
	return s.Snapshot().User
}
