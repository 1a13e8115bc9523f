// Package disk stores uploaded blobs as flat files named by id. A partial
// write is removed before the error is surfaced, so a failed upload leaves
// no trace on disk.
package disk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mkstudico/kinaflix-TV/internal/repository/storage"
)

type repo struct {
	dir string
}

func NewRepo(dir string) (*repo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	return &repo{dir: dir}, nil
}

func (r *repo) getFilePath(fileId string) string {
	return filepath.Join(r.dir, fileId)
}

func (r *repo) Store(fileId, name string, content io.Reader) (storage.StoredFile, error) {
	filePath := r.getFilePath(fileId)

	f, err := os.Create(filePath)
	if err != nil {
		return storage.StoredFile{}, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath)
		return storage.StoredFile{}, fmt.Errorf("failed to write file: %w", err)
	}

	return storage.StoredFile{
		Id:       fileId,
		Name:     name,
		Size:     size,
		StoredAt: time.Now(),
	}, nil
}

func (r *repo) Open(fileId string) (io.ReadSeekCloser, storage.StoredFile, error) {
	filePath := r.getFilePath(fileId)

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.StoredFile{}, storage.ErrFileNotFound
		}
		return nil, storage.StoredFile{}, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, storage.StoredFile{}, fmt.Errorf("failed to stat file: %w", err)
	}

	return f, storage.StoredFile{
		Id:       fileId,
		Name:     info.Name(),
		Size:     info.Size(),
		StoredAt: info.ModTime(),
	}, nil
}

func (r *repo) Remove(fileId string) error {
	if err := os.Remove(r.getFilePath(fileId)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrFileNotFound
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}

// OlderThan returns the ids of stored files last modified before cutoff.
func (r *repo) OlderThan(cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage dir: %w", err)
	}

	var fileIds []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}

		if info.ModTime().Before(cutoff) {
			fileIds = append(fileIds, entry.Name())
		}
	}

	return fileIds, nil
}
