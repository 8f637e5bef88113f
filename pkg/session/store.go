package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oculab/go-ocular/internal/log"
)

// Store persists recordings as one JSON file per session. Writes go through
// a temp file and an atomic rename, so an interrupted save never leaves a
// half-written artifact where a loader could find it.
type Store struct {
	dir string
}

// NewStore creates the session directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save serializes and persists a recording, returning the file path.
func (s *Store) Save(rec *Recording) (string, error) {
	data, err := Marshal(rec)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, rec.SessionID+".json")
	tmp, err := os.CreateTemp(s.dir, rec.SessionID+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp session file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("sync session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close session: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("finalize session: %w", err)
	}

	log.Info("session saved", "session", rec.SessionID,
		"frames", len(rec.Frames), "path", path)
	return path, nil
}

// Load reads and validates a stored session.
func (s *Store) Load(sessionID string) (*Recording, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionID+".json"))
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}
	return Unmarshal(data)
}

// LoadFile reads and validates a session from an arbitrary path.
func LoadFile(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return Unmarshal(data)
}

// List returns the session ids present in the store.
func (s *Store) List() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, strings.TrimSuffix(filepath.Base(f), ".json"))
	}
	return ids, nil
}
