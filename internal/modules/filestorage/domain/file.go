package domain

import "errors"

var (
	// ErrInvalidKey is returned for keys that would escape the storage root.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrObjectNotFound is returned when no object exists under a key.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidSignature is returned when a signed upload URL does not verify.
	ErrInvalidSignature = errors.New("invalid upload signature")

	// ErrURLExpired is returned when a signed upload URL is past its expiry.
	ErrURLExpired = errors.New("upload url expired")
)

// SignedUpload describes a write request against a locally served upload URL.
type SignedUpload struct {
	Key         string
	ContentType string
	Expires     int64
	Signature   string
}
