package domain

import (
	"context"
	"io"
	"time"
)

// FileStorage is the object store uploads land in. It is implemented by S3
// (or any S3-compatible endpoint) and by the local filesystem.
type FileStorage interface {
	// PresignUpload returns a URL that accepts a single PUT of contentType
	// under key until expiration elapses.
	PresignUpload(ctx context.Context, key, contentType string, expiration time.Duration) (string, error)

	// Open returns the stored object. Callers close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Bucket names the bucket (or directory) objects are written to.
	Bucket() string
}

// UploadReceiver is implemented by stores that accept pre-signed uploads
// themselves instead of delegating to an external service.
type UploadReceiver interface {
	Verify(upload SignedUpload) error
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error
}
