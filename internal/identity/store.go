package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/clarifyai/clarify/internal/log"
)

// identityFile is the fixed name of the persisted identity blob
// inside the config directory.
const identityFile = "identity.json"

// Store holds the current identity and mirrors it to a file so a new
// process can restore the session. Concurrent processes serialize
// writes through a sibling flock file.
type Store struct {
	path   string
	logger log.Logger

	mu      sync.RWMutex
	current *Identity
}

// NewStore creates a Store persisting to path.
func NewStore(path string, logger log.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// DefaultPath returns the identity blob location inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, identityFile)
}

// Restore loads the persisted identity, if any. Missing or malformed
// data yields (nil, nil): loss of the persisted session degrades to
// "log in again", never a startup failure.
func (s *Store) Restore() (*Identity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("identity file unreadable", "path", s.path, "error", err)
		}
		return nil, nil
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		s.logger.Warn("persisted identity is malformed, ignoring", "path", s.path, "error", err)
		return nil, nil
	}
	if err := id.Validate(); err != nil {
		s.logger.Warn("persisted identity is invalid, ignoring", "error", err)
		return nil, nil
	}

	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()
	return &id, nil
}

// Login replaces the current identity wholesale and persists it.
func (s *Store) Login(id Identity) (*Identity, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	if err := s.persist(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()
	return &id, nil
}

// Logout clears the current identity and its persisted copy.
// Idempotent: logging out with no session is not an error.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing identity file: %w", err)
	}
	return nil
}

// Current returns the identity held in memory, or nil when
// unauthenticated.
func (s *Store) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// Token returns the bearer token of the current identity, or "" when
// unauthenticated. Implements backend.CredentialSource: callers read
// this per request, not once.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Username returns the current username, or "".
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Username
}

// persist writes the identity blob under an exclusive file lock.
// The blob carries the bearer token, hence the 0600 permission.
func (s *Store) persist(id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}

	fl := flock.New(s.path + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking identity file: %w", err)
	}
	defer func() {
		if unlockErr := fl.Unlock(); unlockErr != nil {
			s.logger.Warn("failed to release identity lock", "error", unlockErr)
		}
	}()

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing identity file: %w", err)
	}
	return nil
}
