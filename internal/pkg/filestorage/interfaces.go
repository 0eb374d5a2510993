package filestorage

import (
	"context"
	"errors"
	"mime/multipart"
)

// ErrInvalidPath is returned for paths that do not belong to the storage
var ErrInvalidPath = errors.New("invalid file path")

// FileInfo represents information about a stored file
type FileInfo struct {
	URL      string // Public URL or path of the stored object
	Key      string // Storage key, relative to the storage root
	FileSize int64  // Size in bytes
	MimeType string // MIME type of the file
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores the upload under subPath with a generated name
	SaveFileWithPath(ctx context.Context, fileHeader *multipart.FileHeader, subPath, contentType string) (*FileInfo, error)

	// DeleteFile removes a stored file by key. Missing files are not an error.
	DeleteFile(ctx context.Context, key string) error

	// KeyFromURL maps a URL returned in FileInfo back to its key.
	// ok is false for URLs this storage did not produce.
	KeyFromURL(url string) (key string, ok bool)
}
