package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lox/blackjack/internal/fileutil"
)

// FileStore keeps one JSON file per session under a directory. Writes
// go through an atomic rename so a crash never leaves a torn record.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

func (s *FileStore) Save(ctx context.Context, rec Record) error {
	if !validID(rec.SessionID) {
		return ErrInvalidID
	}
	return fileutil.WriteJSONAtomic(s.path(rec.SessionID), rec, 0o644)
}

func (s *FileStore) Load(ctx context.Context, sessionID string) (*Record, error) {
	if !validID(sessionID) {
		return nil, ErrInvalidID
	}
	var rec Record
	if err := fileutil.ReadJSON(s.path(sessionID), &rec); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *FileStore) Delete(ctx context.Context, sessionID string) error {
	if !validID(sessionID) {
		return ErrInvalidID
	}
	if err := os.Remove(s.path(sessionID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store directory: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
