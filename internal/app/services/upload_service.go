package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/filestorage"
)

const idDocumentPath = "id-documents"

// UploadService stores ID documents attached to team applications
type UploadService struct {
	storage      filestorage.FileStorage
	maxSize      int64
	allowedTypes map[string]struct{}
	logger       zerolog.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(storage filestorage.FileStorage, maxSize int64, allowedTypes []string, logger zerolog.Logger) *UploadService {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &UploadService{
		storage:      storage,
		maxSize:      maxSize,
		allowedTypes: allowed,
		logger:       logger,
	}
}

// UploadIDDocument checks size and sniffed content type, then stores the file.
// The client supplied Content-Type header is ignored.
func (s *UploadService) UploadIDDocument(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.UploadResponse, error) {
	if fileHeader == nil {
		return nil, apperrors.NewValidationError().Add("file", "file is required")
	}
	if fileHeader.Size <= 0 {
		return nil, apperrors.NewValidationError().Add("file", "file is empty")
	}
	if s.maxSize > 0 && fileHeader.Size > s.maxSize {
		return nil, apperrors.NewValidationError().Add("file", "file must be at most "+strconv.FormatInt(s.maxSize, 10)+" bytes")
	}

	contentType, err := sniffContentType(fileHeader)
	if err != nil {
		return nil, err
	}
	if _, ok := s.allowedTypes[contentType]; !ok {
		return nil, apperrors.NewValidationError().Add("file", "file type "+contentType+" is not allowed")
	}

	info, err := s.storage.SaveFileWithPath(ctx, fileHeader, idDocumentPath, contentType)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to store ID document")
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	s.logger.Info().Str("key", info.Key).Int64("size", info.FileSize).Msg("ID document uploaded")
	return &dto.UploadResponse{
		URL:         info.URL,
		ContentType: contentType,
		Size:        info.FileSize,
	}, nil
}

// RemoveIDDocument deletes a document previously returned by UploadIDDocument.
// URLs pointing elsewhere are left alone.
func (s *UploadService) RemoveIDDocument(ctx context.Context, url string) error {
	key, ok := s.storage.KeyFromURL(url)
	if !ok || !strings.HasPrefix(key, idDocumentPath+"/") {
		s.logger.Debug().Str("url", url).Msg("ID document is not in managed storage, skipping removal")
		return nil
	}

	if err := s.storage.DeleteFile(ctx, key); err != nil {
		return fmt.Errorf("error removing file: %w", err)
	}
	s.logger.Info().Str("key", key).Msg("ID document removed")
	return nil
}

func sniffContentType(fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}

	ct := http.DetectContentType(head[:n])
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct), nil
}
