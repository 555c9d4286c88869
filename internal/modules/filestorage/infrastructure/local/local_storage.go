package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/saransh1220/snaplabel/internal/modules/filestorage/domain"
)

// LocalStorage implements FileStorage on the local filesystem. Upload URLs
// point back at this server and carry an HMAC-SHA256 signature over the key,
// content type and expiry.
type LocalStorage struct {
	basePath   string
	baseURL    string
	signingKey []byte
	now        func() time.Time
}

// NewLocalStorage creates a new local filesystem storage. baseURL is the
// public address of the server hosting the upload endpoint.
func NewLocalStorage(basePath, baseURL, signingKey string) (*LocalStorage, error) {
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath:   basePath,
		baseURL:    baseURL,
		signingKey: []byte(signingKey),
		now:        time.Now,
	}, nil
}

// Bucket returns the storage directory.
func (l *LocalStorage) Bucket() string {
	return l.basePath
}

// PresignUpload builds a signed PUT URL for key.
func (l *LocalStorage) PresignUpload(ctx context.Context, key, contentType string, expiration time.Duration) (string, error) {
	if !filepath.IsLocal(key) {
		return "", domain.ErrInvalidKey
	}

	u, err := url.Parse(l.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	expires := l.now().Add(expiration).Unix()

	u = u.JoinPath("uploads", key)
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", l.sign(key, contentType, expires))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Verify checks the signature and expiry of an incoming upload.
func (l *LocalStorage) Verify(upload domain.SignedUpload) error {
	want := l.sign(upload.Key, upload.ContentType, upload.Expires)
	got, err := hex.DecodeString(upload.Signature)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	expected, _ := hex.DecodeString(want)
	if !hmac.Equal(got, expected) {
		return domain.ErrInvalidSignature
	}
	if l.now().Unix() > upload.Expires {
		return domain.ErrURLExpired
	}
	return nil
}

// UploadFile writes the object. A partially written file is removed.
func (l *LocalStorage) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	outFile, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(outFile, file); err != nil {
		outFile.Close()
		os.Remove(fullPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return outFile.Close()
}

// Open opens the stored object for reading.
func (l *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrObjectNotFound, key)
	}
	return f, err
}

func (l *LocalStorage) path(key string) (string, error) {
	if !filepath.IsLocal(key) {
		return "", domain.ErrInvalidKey
	}
	return filepath.Join(l.basePath, key), nil
}

func (l *LocalStorage) sign(key, contentType string, expires int64) string {
	mac := hmac.New(sha256.New, l.signingKey)
	fmt.Fprintf(mac, "PUT\n%s\n%s\n%d", key, contentType, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
