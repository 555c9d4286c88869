package workflow

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// File is the image to analyze. Type may be empty.
type File struct {
	Name string
	Type string
	Data []byte
}

// NewLocalFile reads path and guesses its type from the extension.
func NewLocalFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user selected file
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &File{
		Name: filepath.Base(path),
		Type: mime.TypeByExtension(filepath.Ext(path)),
		Data: data,
	}, nil
}
