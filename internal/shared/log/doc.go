// Package log builds slog loggers whose handler masks secrets before they are
// written: bearer tokens, JWTs, API keys and the signature parameters of
// pre-signed upload URLs.
//
//	logger := log.New(os.Stderr, log.Options{JSON: true})
//	logger.Info("upload grant issued", "upload_url", grant.UploadURL)
//	// upload_url=https://bucket.s3.amazonaws.com/k?X-Amz-Signature=***REDACTED***
package log
