package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/config"
	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/database"
)

func localConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Server: config.ServerConfig{Port: "0", AllowedOrigins: "*", PublicURL: "http://localhost:8080"},
		FileStorage: config.FileStorageConfig{
			LocalPath:       t.TempDir(),
			LocalSigningKey: "k",
		},
		Analyzer: config.AnalyzerConfig{Provider: "local", MaxLabels: 10, MinConfidence: 50},
		Store: config.StoreConfig{
			Backend:        "dynamodb",
			Region:         "us-east-1",
			TableName:      "analyses",
			DynamoEndpoint: "http://127.0.0.1:1",
		},
	}
}

func TestNewApp_LocalStorageWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := strings.Cut(mr.Addr(), ":")

	cfg := localConfig(t)
	cfg.Store.CacheEnabled = true
	cfg.Redis = database.RedisConfig{Host: host, Port: port}

	app, err := NewApp(context.Background(), cfg, discard)
	require.NoError(t, err)
	defer app.Close()

	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload-url", strings.NewReader(`{"filename":"cat.jpg"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http://localhost:8080/uploads/uploads/")

	rec = httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "snaplabel_upload_urls_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewApp_RedisUnavailableDisablesCache(t *testing.T) {
	cfg := localConfig(t)
	cfg.Store.CacheEnabled = true
	cfg.Redis = database.RedisConfig{Host: "127.0.0.1", Port: "1"}

	app, err := NewApp(context.Background(), cfg, discard)
	require.NoError(t, err)
	app.Close()
	app.Close()
}

func TestNewApp_Errors(t *testing.T) {
	cfg := localConfig(t)
	cfg.Analyzer.Provider = "unknown"
	_, err := NewApp(context.Background(), cfg, discard)
	assert.Error(t, err)

	cfg = localConfig(t)
	cfg.Store.Backend = "unknown"
	_, err = NewApp(context.Background(), cfg, discard)
	assert.Error(t, err)
}
