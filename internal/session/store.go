package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the full ledger. Save receives every turn recorded so far
// and replaces whatever was written before; there is no append path.
type Store interface {
	Save(turns []Turn) error
}

// FileStore writes the ledger as a single JSON array. Each save rewrites
// the file wholesale, so the file on disk is always a complete snapshot.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Save(turns []Turn) error {
	if turns == nil {
		turns = []Turn{}
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session ledger: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace session ledger: %w", err)
	}
	return nil
}

// Load reads a previously saved ledger. A missing file is an empty ledger.
func (f *FileStore) Load() ([]Turn, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session ledger: %w", err)
	}
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode session ledger: %w", err)
	}
	return turns, nil
}
