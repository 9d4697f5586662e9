package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/pdasim/pkg/domain"
)

// DefaultSessionsDir is where sessions are kept when no base path is given.
var DefaultSessionsDir = filepath.Join(".pdasim", "sessions")

// Store implements ports.SnapshotStore using the local filesystem.
// It stores sessions as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// NewStore creates a new Store with the given base path.
// If basePath is empty, it defaults to DefaultSessionsDir.
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultSessionsDir
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid sessionID %q", sessionID)
	}
	return filepath.Join(s.BasePath, sessionID+".json"), nil
}

// Save persists the snapshot atomically: it writes a temporary file in the same directory,
// syncs it, and renames it over the destination.
func (s *Store) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	destPath, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+sessionID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows also refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing session file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to valid session: %w", err)
	}
	return nil
}

// Load retrieves the snapshot from its JSON file.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	filePath, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	filePath, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(sessions)
	return sessions, nil
}
