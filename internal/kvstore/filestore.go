package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

const fileSuffix = ".blob"

// FileStore keeps one file per key in a flat directory. Writes go through a
// temp file and rename so a crash never leaves a torn value behind.
type FileStore struct {
	root   string
	closed atomic.Bool
}

// OpenFileStore creates root if needed and returns a store rooted there.
func OpenFileStore(root string) (*FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("kvstore: file store directory is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: create file store directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kvstore: read %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileStore) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	found := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			found[key] = value
		}
	}
	return found, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.write(key, value)
}

func (s *FileStore) SetMany(_ context.Context, items map[string][]byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	for key, value := range items {
		if err := s.write(key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("kvstore: remove %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) RemoveMany(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) RemoveAll(_ context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("kvstore: list file store: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("kvstore: remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *FileStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, url.PathEscape(key)+fileSuffix)
}

func (s *FileStore) write(key string, value []byte) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("kvstore: ensure file store directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("kvstore: write %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: write %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: write %s: %w", key, err)
	}
	return nil
}
