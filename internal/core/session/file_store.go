// Package session provides the durable and in-memory implementations of
// domain.SessionStore.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/barruu/console/internal/core/domain"
)

// FileStore persists the session as one JSON file on disk, the console's
// analog of the browser's local storage. Writes are atomic (temp file +
// rename) so a crash mid-write cannot leave a torn record. Concurrent
// processes sharing the file (gateway + CLI) can still race on
// login/logout; last write wins.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore rooted at path. The parent directory is
// created on first write, not here.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the conventional session file location,
// $HOME/.barruu/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".barruu", "session.json"), nil
}

// Get returns the persisted session. A missing file reads as an empty
// session. A corrupted file also reads as empty: the record is disposable
// (one /auth/me call rebuilds it), so self-healing beats failing every
// caller until someone deletes the file by hand.
func (s *FileStore) Get() (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.Session{}, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Discarding corrupted session file")
		return &domain.Session{}, nil
	}
	return &sess, nil
}

// SetAuth persists token and user together, overwriting whatever was there.
func (s *FileStore) SetAuth(token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(&domain.Session{Token: token, User: user})
}

// SetUser replaces the cached user snapshot, preserving the stored token.
func (s *FileStore) SetUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &domain.Session{}
	if raw, err := os.ReadFile(s.path); err == nil {
		// Corruption here is handled the same way as in Get.
		if err := json.Unmarshal(raw, sess); err != nil {
			sess = &domain.Session{}
		}
	}
	sess.User = user
	return s.write(sess)
}

// Clear removes the session file. Clearing twice is fine.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// write serializes sess and renames it into place. Caller holds s.mu.
func (s *FileStore) write(sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
