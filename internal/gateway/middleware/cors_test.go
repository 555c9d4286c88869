package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware_PreflightRequest(t *testing.T) {
	allowedOrigins := "http://localhost:4200,https://example.com"

	nextCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	handler := CORSMiddleware(nextHandler, allowedOrigins)

	req := httptest.NewRequest("OPTIONS", "/upload-url", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:4200", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("success"))
	}), "*")

	req := httptest.NewRequest("POST", "/analyze", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "success", rec.Body.String())
}

func TestCORSMiddleware_MultipleOrigins(t *testing.T) {
	allowedOrigins := "http://localhost:4200,https://example.com,https://app.example.com"

	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), allowedOrigins)

	testCases := []struct {
		name   string
		origin string
		expect string
	}{
		{"first_origin", "http://localhost:4200", "http://localhost:4200"},
		{"second_origin", "https://example.com", "https://example.com"},
		{"third_origin", "https://app.example.com", "https://app.example.com"},
		{"unauthorized_origin", "https://evil.com", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/result", nil)
			req.Header.Set("Origin", tc.origin)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expect, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddleware_ExposesCacheHeader(t *testing.T) {
	handler := CORSMiddleware(http.NotFoundHandler(), " https://example.com ")

	req := httptest.NewRequest(http.MethodOptions, "/result", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "X-Cache", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, []string{"Origin"}, rec.Header().Values("Vary"))

	req = httptest.NewRequest(http.MethodGet, "/result", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}
