package storage

import (
	"encoding/json"
	"fmt"
	"os"
)

// FileStore keeps the seen-title keys in a local JSON file, ordered oldest
// to newest. The default backend for local runs.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seen file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("unmarshal seen file: %w", err)
	}
	return keys, nil
}

func (s *FileStore) Save(keys []string) error {
	data, err := json.MarshalIndent(CapKeys(keys), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen keys: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write seen file: %w", err)
	}
	return nil
}
