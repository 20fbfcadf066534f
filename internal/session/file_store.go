package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
)

const (
	cookieUser  = "user"
	cookieToken = "token"
)

// cookie is one persisted entry with its own expiry.
type cookie struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

// FileStore keeps the session in a 0600 JSON cookie jar on disk.
type FileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the jar file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// WithClock overrides the time source. Used by tests to exercise expiry.
func (f *FileStore) WithClock(now func() time.Time) *FileStore {
	f.now = now
	return f
}

// Path returns the jar location.
func (f *FileStore) Path() string {
	return f.path
}

// Get returns the session if both entries exist and are unexpired.
func (f *FileStore) Get(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	jar, err := f.read()
	if err != nil {
		return nil, err
	}

	now := f.now()
	userCookie, okUser := live(jar, cookieUser, now)
	tokenCookie, okToken := live(jar, cookieToken, now)
	if !okUser || !okToken || tokenCookie.Value == "" {
		return nil, ErrNoSession
	}

	var user domain.User
	if err := json.Unmarshal([]byte(userCookie.Value), &user); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}

	expires := userCookie.Expires
	if tokenCookie.Expires.Before(expires) {
		expires = tokenCookie.Expires
	}

	return &Session{User: user, Token: tokenCookie.Value, ExpiresAt: expires}, nil
}

// Set writes both entries with the session expiry.
func (f *FileStore) Set(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return errors.New("session must carry a token")
	}

	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	jar := map[string]cookie{
		cookieUser:  {Value: string(userJSON), Expires: s.ExpiresAt},
		cookieToken: {Value: s.Token, Expires: s.ExpiresAt},
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(jar)
}

// Clear removes the jar file.
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

func (f *FileStore) read() (map[string]cookie, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var jar map[string]cookie
	if err := json.Unmarshal(data, &jar); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return jar, nil
}

func (f *FileStore) write(jar map[string]cookie) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(jar, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func live(jar map[string]cookie, name string, now time.Time) (cookie, bool) {
	c, ok := jar[name]
	if !ok {
		return cookie{}, false
	}
	if !c.Expires.IsZero() && !now.Before(c.Expires) {
		return cookie{}, false
	}
	return c, true
}
