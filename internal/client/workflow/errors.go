package workflow

import (
	"errors"
	"fmt"
)

// Fallback messages when the server gives no "error" field.
const (
	MsgIssueFailed   = "Failed to get upload URL"
	MsgUploadFailed  = "Upload to S3 failed"
	MsgAnalyzeFailed = "Analyze failed"
	MsgPickFile      = "Pick an image first."
)

// ErrRunInProgress is returned when Run is called on a Runner that is
// already running.
var ErrRunInProgress = errors.New("a run is already in progress")

// MissingFileError is returned when no file was selected.
type MissingFileError struct{}

func (*MissingFileError) Error() string { return MsgPickFile }

// IssueError is a failure requesting the upload URL.
type IssueError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *IssueError) Error() string { return e.Message }
func (e *IssueError) Unwrap() error { return e.Err }

// UploadError is a failure uploading to the pre-signed URL.
type UploadError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *UploadError) Error() string { return e.Message }
func (e *UploadError) Unwrap() error { return e.Err }

// AnalyzeError is a failure running the analysis.
type AnalyzeError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *AnalyzeError) Error() string { return e.Message }
func (e *AnalyzeError) Unwrap() error { return e.Err }

// Detail describes err for logs, including the underlying cause that the
// status line omits.
func Detail(err error) string {
	var cause error
	switch e := err.(type) {
	case *IssueError:
		cause = e.Err
	case *UploadError:
		cause = e.Err
	case *AnalyzeError:
		cause = e.Err
	}
	if cause == nil || cause.Error() == err.Error() {
		return err.Error()
	}
	return fmt.Sprintf("%s (%v)", err.Error(), cause)
}
