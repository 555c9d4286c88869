package filestorage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/saransh1220/snaplabel/internal/modules/filestorage/application"
	"github.com/saransh1220/snaplabel/internal/modules/filestorage/domain"
	"github.com/saransh1220/snaplabel/internal/modules/filestorage/infrastructure/local"
	"github.com/saransh1220/snaplabel/internal/modules/filestorage/infrastructure/s3"
	storage_http "github.com/saransh1220/snaplabel/internal/modules/filestorage/interfaces/http"
	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/config"
)

// Module represents the FileStorage module
type Module struct {
	service *application.FileService
	storage domain.FileStorage
	handler *storage_http.UploadHandler
}

// NewModule creates and initializes the FileStorage module. publicURL is the
// address clients use to reach this server; local upload URLs point at it.
func NewModule(ctx context.Context, cfg config.FileStorageConfig, publicURL string, logger *slog.Logger) (*Module, error) {
	var storage domain.FileStorage
	var handler *storage_http.UploadHandler

	if cfg.UseS3 {
		s3Cfg := s3.S3Config{
			BucketName:     cfg.S3BucketName,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			UseSSL:         cfg.S3UseSSL,
		}
		st, err := s3.NewS3Storage(ctx, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		storage = st
	} else {
		signingKey := cfg.LocalSigningKey
		if signingKey == "" {
			key, err := randomSigningKey()
			if err != nil {
				return nil, err
			}
			logger.Warn("LOCAL_SIGNING_KEY not set, upload URLs are signed with a per-process key")
			signingKey = key
		}
		st, err := local.NewLocalStorage(cfg.LocalPath, publicURL, signingKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		storage = st
		handler = storage_http.NewUploadHandler(st, logger)
	}

	return &Module{
		service: application.NewFileService(storage, cfg.UploadURLExpiry),
		storage: storage,
		handler: handler,
	}, nil
}

// Service returns the file service for use by other modules
func (m *Module) Service() *application.FileService {
	return m.service
}

// UploadHandler serves local uploads. It is nil when objects go to S3.
func (m *Module) UploadHandler() *storage_http.UploadHandler {
	return m.handler
}

func randomSigningKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
