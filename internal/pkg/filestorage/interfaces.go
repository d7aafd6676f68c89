package filestorage

import (
	"context"
	"io"
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save stores the content of r under subPath and returns its accessible URL.
	// The stored name keeps only the extension of filename.
	Save(ctx context.Context, r io.Reader, filename, subPath string) (string, error)

	// Delete removes a file previously returned by Save. Missing files are not an error.
	Delete(fileURL string) error

	// GetFullPath returns the full filesystem path for a given file URL
	GetFullPath(fileURL string) string
}
