package application

import (
	"context"
	"io"
	"time"

	"github.com/saransh1220/snaplabel/internal/modules/filestorage/domain"
)

// FileService provides high-level file operations
type FileService struct {
	storage      domain.FileStorage
	uploadExpiry time.Duration
}

// NewFileService creates a new file service. Upload URLs stay valid for uploadExpiry.
func NewFileService(storage domain.FileStorage, uploadExpiry time.Duration) *FileService {
	return &FileService{
		storage:      storage,
		uploadExpiry: uploadExpiry,
	}
}

// PresignUpload returns a URL accepting a PUT of contentType under key.
func (s *FileService) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	return s.storage.PresignUpload(ctx, key, contentType, s.uploadExpiry)
}

// Open returns the stored object.
func (s *FileService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, key)
}

// ReadAll returns the stored object's bytes.
func (s *FileService) ReadAll(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.storage.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Bucket returns the bucket uploads land in.
func (s *FileService) Bucket() string {
	return s.storage.Bucket()
}
