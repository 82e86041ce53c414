package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"goalTracker/internal/logger"
	repo "goalTracker/internal/repository"

	"go.uber.org/zap"
)

// One file per key inside dir. Writes go to a temp file in the same
// directory and are renamed over the target, so a crash mid-write leaves the
// previous value intact.

const fileExt = ".json"

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type SlotStorage struct {
	dir string
	mtx sync.Mutex
}

func New(dir string) (*SlotStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Repository: failed to create slot directory", err, zap.String("dir", dir))
		return nil, fmt.Errorf("create dir %s: %w", dir, err)
	}
	return &SlotStorage{dir: dir}, nil
}

func (s *SlotStorage) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *SlotStorage) path(key string) (string, error) {
	if key == "." || key == ".." || !validKey.MatchString(key) {
		return "", fmt.Errorf("%w: %q", repo.ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

func (s *SlotStorage) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

func (s *SlotStorage) Set(ctx context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}
