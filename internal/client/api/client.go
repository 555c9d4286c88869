// Package api is a typed client for the snaplabel HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/saransh1220/snaplabel/internal/shared/log"
)

// ErrInvalidResponse is returned when a 2xx response body cannot be decoded.
var ErrInvalidResponse = errors.New("invalid response from server")

// StatusError is a non-2xx answer. Message is the server's "error" field and
// may be empty.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// UploadGrant is the answer to POST /upload-url.
type UploadGrant struct {
	UploadURL string `json:"uploadUrl"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
}

type uploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type analyzeRequest struct {
	Key string `json:"key"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Client talks to one API base. The bearer token is sent to API routes only;
// pre-signed upload URLs carry their own authorization.
type Client struct {
	api    *resty.Client
	upload *resty.Client
	logger *slog.Logger
}

type options struct {
	httpClient *http.Client
	token      string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithToken sends token as a bearer token on API calls.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithLogger sets the debug logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New returns a client for base, e.g. https://x.execute-api.us-east-1.amazonaws.com/prod.
func New(base string, opts ...Option) *Client {
	o := options{
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	api := resty.NewWithClient(o.httpClient).SetBaseURL(strings.TrimRight(base, "/"))
	if o.token != "" {
		api.SetAuthToken(o.token)
	}
	return &Client{
		api:    api,
		upload: resty.NewWithClient(o.httpClient),
		logger: o.logger,
	}
}

// RequestUploadGrant calls POST /upload-url.
func (c *Client) RequestUploadGrant(ctx context.Context, filename, contentType string) (*UploadGrant, error) {
	resp, err := c.api.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(uploadURLRequest{Filename: filename, ContentType: contentType}).
		Post("/upload-url")
	if err != nil {
		return nil, fmt.Errorf("request upload url: %w", err)
	}
	c.logger.DebugContext(ctx, "upload url response", "status", resp.StatusCode())
	if !resp.IsSuccess() {
		return nil, statusError(resp)
	}

	var grant UploadGrant
	if err := json.Unmarshal(resp.Body(), &grant); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if grant.UploadURL == "" || grant.Key == "" {
		return nil, fmt.Errorf("%w: missing uploadUrl or key", ErrInvalidResponse)
	}
	c.logger.DebugContext(ctx, "upload url issued", "key", grant.Key, "url", log.RedactURL(grant.UploadURL))
	return &grant, nil
}

// Upload PUTs data to a pre-signed URL.
func (c *Client) Upload(ctx context.Context, uploadURL string, data []byte, contentType string) error {
	resp, err := c.upload.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put(uploadURL)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	c.logger.DebugContext(ctx, "upload response", "status", resp.StatusCode(), "bytes", len(data))
	if !resp.IsSuccess() {
		return &StatusError{StatusCode: resp.StatusCode()}
	}
	return nil
}

// Analyze calls POST /analyze and returns the result body verbatim.
func (c *Client) Analyze(ctx context.Context, key string) (json.RawMessage, error) {
	resp, err := c.api.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(analyzeRequest{Key: key}).
		Post("/analyze")
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	c.logger.DebugContext(ctx, "analyze response", "status", resp.StatusCode())
	if !resp.IsSuccess() {
		return nil, statusError(resp)
	}
	return rawJSON(resp.Body())
}

// GetResult calls GET /result?analysisId= and returns the stored analysis verbatim.
func (c *Client) GetResult(ctx context.Context, analysisID string) (json.RawMessage, error) {
	resp, err := c.api.R().
		SetContext(ctx).
		SetQueryParam("analysisId", analysisID).
		Get("/result")
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	c.logger.DebugContext(ctx, "result response", "status", resp.StatusCode(), "cache", resp.Header().Get("X-Cache"))
	if !resp.IsSuccess() {
		return nil, statusError(resp)
	}
	return rawJSON(resp.Body())
}

func statusError(resp *resty.Response) *StatusError {
	var body errorBody
	_ = json.Unmarshal(resp.Body(), &body)
	return &StatusError{StatusCode: resp.StatusCode(), Message: body.Error}
}

func rawJSON(body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, ErrInvalidResponse
	}
	return json.RawMessage(body), nil
}
