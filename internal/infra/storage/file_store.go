package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/google/uuid"
)

type IFileStore interface {
	SaveImage(data []byte) (string, error)
	Remove(relPath string) error
}

// LocalFileStore 把圖片寫到靜態資源目錄, 只回傳相對路徑
// 路徑存進DB, 由static file server對外提供
type LocalFileStore struct {
	baseDir string
}

func NewLocalFileStore(baseDir string) (*LocalFileStore, error) {
	imageDir := filepath.Join(baseDir, constants.ImageDirName)
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &LocalFileStore{baseDir: baseDir}, nil
}

var _ IFileStore = (*LocalFileStore)(nil)

func (s *LocalFileStore) SaveImage(data []byte) (string, error) {
	fileName := uuid.New().String() + ".jpg"
	relPath := filepath.Join(constants.ImageDirName, fileName)

	if err := os.WriteFile(filepath.Join(s.baseDir, relPath), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return relPath, nil
}

func (s *LocalFileStore) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	return os.Remove(filepath.Join(s.baseDir, relPath))
}
