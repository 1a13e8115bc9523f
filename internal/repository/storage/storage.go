package storage

import (
	"errors"
	"time"
)

var ErrFileNotFound = errors.New("file not found")

// StoredFile describes one blob accepted by the storage collaborator.
type StoredFile struct {
	Id       string
	Name     string
	Size     int64
	StoredAt time.Time
}
