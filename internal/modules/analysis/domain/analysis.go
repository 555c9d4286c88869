package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultFilename is used when an upload request names no file.
	DefaultFilename = "image.jpg"

	// DefaultContentType is used when an upload request carries no type.
	DefaultContentType = "image/jpeg"

	// UploadPrefix is the key prefix every upload is stored under.
	UploadPrefix = "uploads/"
)

// Label is one detected label.
type Label struct {
	Name       string  `json:"name" dynamodbav:"name"`
	Confidence float64 `json:"confidence" dynamodbav:"confidence"`
}

// Labels is stored as a JSONB column.
type Labels []Label

// Value implements driver.Valuer.
func (l Labels) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *Labels) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = Labels{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("labels: unsupported scan type %T", src)
	}
	if err := json.Unmarshal(data, l); err != nil {
		return errors.Join(errors.New("labels: invalid json"), err)
	}
	return nil
}

// Analysis is one stored label-detection result.
type Analysis struct {
	ID        uuid.UUID `json:"analysisId" db:"id"`
	Bucket    string    `json:"bucket" db:"bucket"`
	Key       string    `json:"key" db:"storage_key"`
	Provider  string    `json:"provider,omitempty" db:"provider"`
	Labels    Labels    `json:"labels" db:"labels"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UploadGrant is returned to clients asking where to upload.
type UploadGrant struct {
	UploadURL string `json:"uploadUrl"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
}

// DetectRequest describes one label detection call.
type DetectRequest struct {
	Bucket        string
	Key           string
	MaxLabels     int32
	MinConfidence float32
}
