package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultUploadsDir = "./uploads"
	DefaultUploadsURL = "/static/uploads"
)

// LocalStore writes objects below a directory served as static files.
type LocalStore struct {
	baseDir    string
	staticBase string
}

func NewLocalStore(baseDir, staticBase string) *LocalStore {
	if baseDir == "" {
		baseDir = DefaultUploadsDir
	}
	if staticBase == "" {
		staticBase = DefaultUploadsURL
	}
	return &LocalStore{baseDir: baseDir, staticBase: strings.TrimRight(staticBase, "/")}
}

// Dir is the directory to mount under StaticBase.
func (s *LocalStore) Dir() string { return s.baseDir }

func (s *LocalStore) StaticBase() string { return s.staticBase }

func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	absPath, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.staticBase + "/" + key, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	absPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// path rejects keys that would escape the base directory.
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}
