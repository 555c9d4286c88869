package gateway

import (
	"log/slog"
	"net/http"

	"github.com/saransh1220/snaplabel/internal/gateway/middleware"
	analysis_http "github.com/saransh1220/snaplabel/internal/modules/analysis/interfaces/http"
	storage_http "github.com/saransh1220/snaplabel/internal/modules/filestorage/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AnalysisHandler *analysis_http.AnalysisHandler
	// UploadHandler is nil when uploads go straight to S3.
	UploadHandler  *storage_http.UploadHandler
	AuthMiddleware *middleware.AuthMiddleWare
	MetricsHandler http.Handler
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *Router {
	router := NewRouter()

	// Health Check
	router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if config.MetricsHandler != nil {
		router.Handle("GET /metrics", config.MetricsHandler)
	}

	auth := config.AuthMiddleware.RequireAuth

	// Analysis Routes
	router.Handle("POST /upload-url", auth(http.HandlerFunc(config.AnalysisHandler.IssueUploadURL)))
	router.Handle("POST /analyze", auth(http.HandlerFunc(config.AnalysisHandler.Analyze)))
	router.Handle("GET /result", auth(http.HandlerFunc(config.AnalysisHandler.GetResult)))
	router.Handle("GET /ws", auth(http.HandlerFunc(config.AnalysisHandler.Subscribe)))

	// Local uploads authenticate through the signed URL itself.
	if config.UploadHandler != nil {
		router.HandleFunc("PUT /uploads/{key...}", config.UploadHandler.Put)
	}

	return router
}

// ChainConfig configures the outer middleware.
type ChainConfig struct {
	AllowedOrigins string
	Logger         *slog.Logger
}

// Chain wraps the router in the middleware every request passes through.
func Chain(router http.Handler, metrics *middleware.Metrics, cfg ChainConfig) http.Handler {
	var handler http.Handler = router
	handler = middleware.CORSMiddleware(handler, cfg.AllowedOrigins)
	handler = middleware.LoggingMiddleware(handler, cfg.Logger)
	if metrics != nil {
		handler = metrics.PrometheusMiddleware(handler)
	}
	return handler
}
