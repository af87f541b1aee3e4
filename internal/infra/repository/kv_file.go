package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
)

// FileKVStore は1つのJSONファイル（{"key": "value"}）に保存する。
// 書き込みは一時ファイル + rename で置き換える。
type FileKVStore struct {
	mu   sync.Mutex
	path string
}

// DI
func NewFileKVStore(path string) (*FileKVStore, error) {
	if path == "" {
		return nil, errors.New("file kv: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "file kv: create dir")
	}
	return &FileKVStore{path: path}, nil
}

func (s *FileKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := m[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (s *FileKVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		// 壊れたファイルは作り直す
		m = map[string]string{}
	}
	m[key] = string(value)
	return s.write(m)
}

func (s *FileKVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		m = map[string]string{}
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return s.write(m)
}

func (s *FileKVStore) read() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "file kv: read")
	}
	if len(b) == 0 {
		return map[string]string{}, nil
	}

	m := map[string]string{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrap(err, "file kv: decode")
	}
	return m, nil
}

func (s *FileKVStore) write(m map[string]string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "file kv: encode")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".kv-*")
	if err != nil {
		return errors.Wrap(err, "file kv: temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "file kv: write")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "file kv: close")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "file kv: rename")
	}
	return nil
}
