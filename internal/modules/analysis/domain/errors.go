package domain

import "errors"

var (
	ErrMissingKey        = errors.New("missing storage key")
	ErrMissingAnalysisID = errors.New("missing analysis id")
	ErrAnalysisNotFound  = errors.New("analysis not found")
	ErrDetectionFailed   = errors.New("label detection failed")
	ErrSaveFailed        = errors.New("saving analysis failed")
	ErrPresignFailed     = errors.New("creating upload url failed")
	ErrUnsupportedImage  = errors.New("unsupported image")
)

// OpError ties a failure kind (one of the sentinels above) to its cause.
// errors.Is matches both.
type OpError struct {
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
