package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // Prefix of returned URLs; "/uploads" when empty
	logger   zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage rooted at basePath, creating it if needed.
func NewLocalStorage(basePath, baseURL string, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}, nil
}

// Save implements FileStorage
func (ls *LocalStorage) Save(ctx context.Context, r io.Reader, filename, subPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	subPath = strings.Trim(filepath.ToSlash(filepath.Clean("/"+subPath)), "/")

	dir := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		ls.logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// Unique names prevent collisions and keep client names off the filesystem
	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.baseURL + "/" + path.Join(subPath, name)
	ls.logger.Info().Str("filename", filename).Str("url", url).Msg("File saved successfully")
	return url, nil
}

// Delete implements FileStorage
func (ls *LocalStorage) Delete(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	physicalPath := ls.GetFullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			ls.logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		ls.logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	ls.logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath maps a URL returned by Save back to its location on disk. URLs
// outside the storage root map to "".
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel, ok := strings.CutPrefix(fileURL, ls.baseURL+"/")
	if !ok || rel == "" {
		return ""
	}
	rel = path.Clean("/" + rel)[1:]
	if rel == "" || strings.HasSuffix(fileURL, "/") {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}
