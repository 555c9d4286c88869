package domain

import (
	"context"

	"github.com/google/uuid"
)

// LabelDetector finds labels in a stored image.
type LabelDetector interface {
	DetectLabels(ctx context.Context, req DetectRequest) ([]Label, error)
	Name() string
}

// AnalysisRepository persists analyses.
type AnalysisRepository interface {
	Create(ctx context.Context, a *Analysis) error
	// GetLatest returns the newest analysis stored under id.
	GetLatest(ctx context.Context, id uuid.UUID) (*Analysis, error)
}

// ResultCache caches lookups by analysis id. Get returns (nil, nil) on a miss.
type ResultCache interface {
	Get(ctx context.Context, id uuid.UUID) (*Analysis, error)
	Set(ctx context.Context, a *Analysis) error
}

// Notifier is told about each stored analysis.
type Notifier interface {
	AnalysisCompleted(a *Analysis)
}

// UploadSigner issues pre-signed upload URLs.
type UploadSigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	Bucket() string
}

// ObjectReader reads stored objects for detectors that need the bytes.
type ObjectReader interface {
	ReadAll(ctx context.Context, key string) ([]byte, error)
}
