package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
	"github.com/noah-isme/circleed-client/pkg/storage"
)

// FileTokenStore keeps key/value pairs in a single JSON file readable only by
// the current user.
type FileTokenStore struct {
	mu       sync.Mutex
	storage  *storage.LocalStorage
	filename string
}

// NewFileTokenStore opens (or prepares) the store file at path.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	st, err := storage.NewLocalStorage(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return &FileTokenStore{storage: st, filename: filepath.Base(path)}, nil
}

func (s *FileTokenStore) load() (map[string]string, error) {
	raw, err := s.storage.Read(s.filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	values := map[string]string{}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode token store %s: %w", s.storage.Path(s.filename), err)
	}
	return values, nil
}

func (s *FileTokenStore) save(values map[string]string) error {
	if len(values) == 0 {
		return s.storage.Delete(s.filename)
	}
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token store: %w", err)
	}
	_, err = s.storage.Save(s.filename, payload, 0o600)
	return err
}

// Get implements KeyValueStore.
func (s *FileTokenStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", appErrors.ErrStoreMiss
	}
	return value, nil
}

// Set implements KeyValueStore.
func (s *FileTokenStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Delete implements KeyValueStore.
func (s *FileTokenStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(values, key)
	}
	return s.save(values)
}

// Close implements KeyValueStore.
func (s *FileTokenStore) Close() error { return nil }
