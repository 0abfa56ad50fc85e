package gateway

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grevocab/api/internal/model"
)

// FileStore keeps one JSON snapshot file per client under a base directory.
// Writes go through a temp file and rename so a crash mid-write never leaves
// a truncated snapshot behind.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(clientID string) string {
	// Client IDs are uuids or "user-<id>", but never trust them as paths.
	return filepath.Join(s.dir, filepath.Base(clientID)+".json")
}

func (s *FileStore) Load(clientID string) (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path(clientID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("corrupt local snapshot %s: %w", clientID, err)
	}
	if snap.WordCache == nil {
		snap.WordCache = map[string]model.WordProfile{}
	}
	return &snap, nil
}

func (s *FileStore) Save(clientID string, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	target := s.path(clientID)
	tmp, err := os.CreateTemp(s.dir, "snapshot-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}
