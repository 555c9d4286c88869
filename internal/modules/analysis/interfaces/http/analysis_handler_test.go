package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
	ws "github.com/saransh1220/snaplabel/internal/modules/analysis/infrastructure/websocket"
	analysishttp "github.com/saransh1220/snaplabel/internal/modules/analysis/interfaces/http"
)

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) IssueUploadURL(ctx context.Context, filename, contentType string) (*domain.UploadGrant, error) {
	args := m.Called(ctx, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadGrant), args.Error(1)
}

func (m *MockAnalysisService) Analyze(ctx context.Context, key string) (*domain.Analysis, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *MockAnalysisService) GetResult(ctx context.Context, analysisID string) (*domain.Analysis, bool, error) {
	args := m.Called(ctx, analysisID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Analysis), args.Bool(1), args.Error(2)
}

func newHandler(svc *MockAnalysisService) *analysishttp.AnalysisHandler {
	logger := slog.New(slog.DiscardHandler)
	return analysishttp.NewAnalysisHandler(svc, ws.NewHub(logger), logger)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestIssueUploadURL(t *testing.T) {
	t.Run("passes fields through", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("IssueUploadURL", mock.Anything, "cat.jpg", "image/png").Return(&domain.UploadGrant{
			UploadURL: "https://s3.example.com/put", Bucket: "images", Key: "uploads/x_cat.jpg",
		}, nil)

		req := httptest.NewRequest(stdhttp.MethodPost, "/upload-url", strings.NewReader(`{"filename":"cat.jpg","contentType":"image/png"}`))
		w := httptest.NewRecorder()
		newHandler(svc).IssueUploadURL(w, req)

		assert.Equal(t, stdhttp.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		body := decode(t, w)
		assert.Equal(t, "https://s3.example.com/put", body["uploadUrl"])
		assert.Equal(t, "images", body["bucket"])
		assert.Equal(t, "uploads/x_cat.jpg", body["key"])
		svc.AssertExpectations(t)
	})

	t.Run("malformed body uses defaults", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("IssueUploadURL", mock.Anything, "", "").Return(&domain.UploadGrant{Key: "uploads/x_image.jpg"}, nil)

		req := httptest.NewRequest(stdhttp.MethodPost, "/upload-url", strings.NewReader(`not json`))
		w := httptest.NewRecorder()
		newHandler(svc).IssueUploadURL(w, req)

		assert.Equal(t, stdhttp.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("presign failure", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("IssueUploadURL", mock.Anything, "", "").Return(nil,
			&domain.OpError{Kind: domain.ErrPresignFailed, Err: errors.New("no credentials")})

		req := httptest.NewRequest(stdhttp.MethodPost, "/upload-url", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		newHandler(svc).IssueUploadURL(w, req)

		assert.Equal(t, stdhttp.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Failed to create upload URL", body["error"])
		assert.Equal(t, "no credentials", body["details"])
	})
}

func TestAnalyze(t *testing.T) {
	id := uuid.New()
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		key        string
		result     *domain.Analysis
		err        error
		wantStatus int
		wantError  string
		wantDetail string
	}{
		{
			name:       "success",
			body:       `{"key":"uploads/x_cat.jpg"}`,
			key:        "uploads/x_cat.jpg",
			result:     &domain.Analysis{ID: id, Key: "uploads/x_cat.jpg", CreatedAt: created, Labels: domain.Labels{{Name: "Cat", Confidence: 98.5}}},
			wantStatus: stdhttp.StatusOK,
		},
		{
			name:       "missing key",
			body:       `{}`,
			key:        "",
			err:        domain.ErrMissingKey,
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "Missing required field: key",
		},
		{
			name:       "detection failed",
			body:       `{"key":"k"}`,
			key:        "k",
			err:        &domain.OpError{Kind: domain.ErrDetectionFailed, Err: errors.New("InvalidS3ObjectException")},
			wantStatus: stdhttp.StatusInternalServerError,
			wantError:  "Label detection failed",
			wantDetail: "InvalidS3ObjectException",
		},
		{
			name:       "save failed",
			body:       `{"key":"k"}`,
			key:        "k",
			err:        &domain.OpError{Kind: domain.ErrSaveFailed, Err: errors.New("connection refused")},
			wantStatus: stdhttp.StatusInternalServerError,
			wantError:  "Saving analysis failed",
			wantDetail: "connection refused",
		},
		{
			name:       "unexpected",
			body:       `{"key":"k"}`,
			key:        "k",
			err:        errors.New("boom"),
			wantStatus: stdhttp.StatusInternalServerError,
			wantError:  "Analyze failed",
			wantDetail: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAnalysisService)
			if tt.result != nil {
				svc.On("Analyze", mock.Anything, tt.key).Return(tt.result, nil)
			} else {
				svc.On("Analyze", mock.Anything, tt.key).Return(nil, tt.err)
			}

			req := httptest.NewRequest(stdhttp.MethodPost, "/analyze", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			newHandler(svc).Analyze(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			if tt.wantError == "" {
				assert.Equal(t, id.String(), body["analysisId"])
				assert.Equal(t, "2026-03-04T05:06:07Z", body["createdAt"])
				labels := body["labels"].([]any)
				require.Len(t, labels, 1)
				assert.Equal(t, "Cat", labels[0].(map[string]any)["name"])
				assert.NotContains(t, body, "key")
				return
			}
			assert.Equal(t, tt.wantError, body["error"])
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body["details"])
			} else {
				assert.NotContains(t, body, "details")
			}
		})
	}
}

func TestGetResult(t *testing.T) {
	id := uuid.New()

	t.Run("missing id", func(t *testing.T) {
		svc := new(MockAnalysisService)
		w := httptest.NewRecorder()
		newHandler(svc).GetResult(w, httptest.NewRequest(stdhttp.MethodGet, "/result", nil))

		assert.Equal(t, stdhttp.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing query param: analysisId", decode(t, w)["error"])
		svc.AssertNotCalled(t, "GetResult", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("GetResult", mock.Anything, "nope").Return(nil, false, domain.ErrAnalysisNotFound)

		w := httptest.NewRecorder()
		newHandler(svc).GetResult(w, httptest.NewRequest(stdhttp.MethodGet, "/result?analysisId=nope", nil))

		assert.Equal(t, stdhttp.StatusNotFound, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Not found", body["error"])
		assert.Equal(t, "nope", body["analysisId"])
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("GetResult", mock.Anything, id.String()).Return(nil, false, errors.New("timeout"))

		w := httptest.NewRecorder()
		newHandler(svc).GetResult(w, httptest.NewRequest(stdhttp.MethodGet, "/result?analysisId="+id.String(), nil))

		assert.Equal(t, stdhttp.StatusInternalServerError, w.Code)
		assert.Equal(t, "timeout", decode(t, w)["details"])
	})

	for _, cached := range []bool{false, true} {
		want := map[bool]string{false: "MISS", true: "HIT"}[cached]
		t.Run("found "+want, func(t *testing.T) {
			svc := new(MockAnalysisService)
			svc.On("GetResult", mock.Anything, id.String()).Return(&domain.Analysis{
				ID: id, Bucket: "images", Key: "uploads/x_cat.jpg", Labels: domain.Labels{},
			}, cached, nil)

			w := httptest.NewRecorder()
			newHandler(svc).GetResult(w, httptest.NewRequest(stdhttp.MethodGet, "/result?analysisId="+id.String(), nil))

			assert.Equal(t, stdhttp.StatusOK, w.Code)
			assert.Equal(t, want, w.Header().Get("X-Cache"))
			body := decode(t, w)
			assert.Equal(t, id.String(), body["analysisId"])
			assert.Equal(t, "uploads/x_cat.jpg", body["key"])
		})
	}
}

func TestSubscribe_MissingKey(t *testing.T) {
	w := httptest.NewRecorder()
	newHandler(new(MockAnalysisService)).Subscribe(w, httptest.NewRequest(stdhttp.MethodGet, "/ws", nil))

	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing query param: key", decode(t, w)["error"])
}
