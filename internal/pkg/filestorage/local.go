package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/hackathon/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL to access the stored files (optional, for generating full URLs)
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; if provided, it will be prepended to returned file paths.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// SaveFileWithPath saves a file to a specified subdirectory
func (ls *LocalStorage) SaveFileWithPath(_ context.Context, fileHeader *multipart.FileHeader, subPath, contentType string) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(fullDirPath, 0o750); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	key := objectKey(subPath, fileHeader.Filename)
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.urlPrefix() + key

	logger.Info().Str("filename", fileHeader.Filename).Str("key", key).Msg("File saved successfully")
	return &FileInfo{URL: url, Key: key, FileSize: written, MimeType: contentType}, nil
}

// urlPrefix is baseURL with a trailing slash, or the relative "uploads/" route
func (ls *LocalStorage) urlPrefix() string {
	if ls.baseURL != "" {
		return strings.TrimRight(ls.baseURL, "/") + "/"
	}
	return "uploads/"
}

// KeyFromURL strips the URL prefix used by SaveFileWithPath
func (ls *LocalStorage) KeyFromURL(url string) (string, bool) {
	return trimKey(url, ls.urlPrefix())
}

// DeleteFile removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(_ context.Context, key string) error {
	physicalPath, err := ls.GetFullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath resolves a key to its filesystem path, rejecting keys that escape basePath
func (ls *LocalStorage) GetFullPath(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if key == "" || cleaned == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}

func trimKey(url, prefix string) (string, bool) {
	key, found := strings.CutPrefix(url, prefix)
	if !found || key == "" {
		return "", false
	}
	return key, true
}

// objectKey builds "<subPath>/<uuid><ext>" with a lower-cased extension
func objectKey(subPath, filename string) string {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	if subPath == "" {
		return name
	}
	return path.Join(subPath, name)
}
