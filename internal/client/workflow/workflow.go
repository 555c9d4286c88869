// Package workflow runs the three-step upload and analyze sequence: request
// a pre-signed URL, upload the file to it, then ask the server to analyze the
// uploaded object.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/saransh1220/snaplabel/internal/client/api"
	"github.com/saransh1220/snaplabel/internal/client/display"
)

// Status lines shown while running.
const (
	StatusRequesting = "Requesting upload URL..."
	StatusUploading  = "Uploading to S3..."
	StatusAnalyzing  = "Running analysis..."
	StatusDone       = "Done. Results saved ✅"
	StatusErrPrefix  = "Error: "
)

// DefaultContentType is sent when the file has no type.
const DefaultContentType = "image/jpeg"

// API is the subset of the API client the workflow calls.
type API interface {
	RequestUploadGrant(ctx context.Context, filename, contentType string) (*api.UploadGrant, error)
	Upload(ctx context.Context, uploadURL string, data []byte, contentType string) error
	Analyze(ctx context.Context, key string) (json.RawMessage, error)
}

// Runner runs the workflow against one API and one display surface. A
// Runner runs at most one workflow at a time.
type Runner struct {
	api     API
	surface display.Surface
	logger  *slog.Logger
	running atomic.Bool
}

func NewRunner(client API, surface display.Surface, logger *slog.Logger) *Runner {
	return &Runner{api: client, surface: surface, logger: logger}
}

// Run uploads and analyzes file. On success the analysis result is shown
// and returned. Any failure stops the remaining steps, sets the status to
// "Error: <message>" and leaves the output as it was.
func (r *Runner) Run(ctx context.Context, file *File) (json.RawMessage, error) {
	if file == nil {
		r.surface.SetStatus(MsgPickFile)
		return nil, &MissingFileError{}
	}
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.running.Store(false)

	result, err := r.run(ctx, file)
	if err != nil {
		r.logger.DebugContext(ctx, "workflow failed", "file", file.Name, "error", Detail(err))
		r.surface.SetStatus(StatusErrPrefix + err.Error())
		return nil, err
	}
	return result, nil
}

func (r *Runner) run(ctx context.Context, file *File) (json.RawMessage, error) {
	contentType := file.Type
	if contentType == "" {
		contentType = DefaultContentType
	}

	r.surface.SetStatus(StatusRequesting)
	if err := r.surface.Show(json.RawMessage(`{}`)); err != nil {
		return nil, err
	}

	grant, err := r.api.RequestUploadGrant(ctx, file.Name, contentType)
	if err != nil {
		return nil, &IssueError{Message: serverMessage(err, MsgIssueFailed), StatusCode: statusCode(err), Err: err}
	}
	r.logger.DebugContext(ctx, "upload url received", "key", grant.Key)

	r.surface.SetStatus(StatusUploading)
	if err := r.api.Upload(ctx, grant.UploadURL, file.Data, contentType); err != nil {
		return nil, &UploadError{Message: MsgUploadFailed, StatusCode: statusCode(err), Err: err}
	}

	r.surface.SetStatus(StatusAnalyzing)
	result, err := r.api.Analyze(ctx, grant.Key)
	if err != nil {
		return nil, &AnalyzeError{Message: serverMessage(err, MsgAnalyzeFailed), StatusCode: statusCode(err), Err: err}
	}

	r.surface.SetStatus(StatusDone)
	if err := r.surface.Show(result); err != nil {
		return nil, &AnalyzeError{Message: MsgAnalyzeFailed, Err: err}
	}
	return result, nil
}

// serverMessage returns the server's "error" field, or fallback.
func serverMessage(err error, fallback string) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

func statusCode(err error) int {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
