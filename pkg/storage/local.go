package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type localStorage struct {
	baseDir string
}

// NewLocalStorage stores uploads on disk under baseDir, served statically
// at /uploads. File names are randomized to avoid collisions and path games.
func NewLocalStorage(baseDir string) (ImageStorage, error) {
	if baseDir == "" {
		baseDir = "uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", baseDir, err)
	}
	return &localStorage{baseDir: baseDir}, nil
}

func (s *localStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	dir := s.baseDir
	if folder != "" {
		dir = filepath.Join(s.baseDir, filepath.Base(folder))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create folder %s: %w", dir, err)
		}
	}

	ext := filepath.Ext(filepath.Base(fileName))
	name := uuid.New().String() + ext
	fullPath := filepath.Join(dir, name)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filepath.ToSlash(fullPath), nil
}

func (s *localStorage) DeleteImage(ctx context.Context, fileURL string) error {
	// Only paths under the upload dir are deletable.
	clean := filepath.Clean(filepath.FromSlash(fileURL))
	if !strings.HasPrefix(clean, filepath.Clean(s.baseDir)+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete file outside upload dir: %s", fileURL)
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
