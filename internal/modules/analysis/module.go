package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/application"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/infrastructure/cache"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/infrastructure/detector/local"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/infrastructure/detector/rekognition"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/infrastructure/detector/vision"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/infrastructure/persistence/dynamodb"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/infrastructure/persistence/postgres"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/infrastructure/websocket"
	analysis_http "github.com/saransh1220/snaplabel/internal/modules/analysis/interfaces/http"
	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/config"
)

// Storage is what the analysis module needs from the filestorage module.
type Storage interface {
	domain.UploadSigner
	domain.ObjectReader
}

// Deps are the shared resources the module is built from. DB is required for
// the postgres store; Redis is optional.
type Deps struct {
	Analyzer   config.AnalyzerConfig
	Store      config.StoreConfig
	DB         *sqlx.DB
	Redis      *redis.Client
	Storage    Storage
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

type Module struct {
	service application.AnalysisService
	handler *analysis_http.AnalysisHandler
	hub     *websocket.Hub
}

func NewModule(ctx context.Context, deps Deps) (*Module, error) {
	detector, err := newDetector(ctx, deps.Analyzer, deps.Storage)
	if err != nil {
		return nil, err
	}
	repo, err := newRepository(ctx, deps.Store, deps.DB)
	if err != nil {
		return nil, err
	}

	var resultCache domain.ResultCache
	if deps.Redis != nil {
		resultCache = cache.NewRedisResultCache(deps.Redis, deps.Store.CacheTTL)
	}

	hub := websocket.NewHub(deps.Logger)
	go hub.Run()

	service := application.NewAnalysisService(application.Deps{
		Signer:   deps.Storage,
		Detector: detector,
		Repo:     repo,
		Cache:    resultCache,
		Notifier: hub,
		Metrics:  application.NewMetrics(deps.Registerer),
		Logger:   deps.Logger,
	}, application.Options{
		MaxLabels:     deps.Analyzer.MaxLabels,
		MinConfidence: deps.Analyzer.MinConfidence,
	})

	deps.Logger.Info("analysis module ready",
		"detector", detector.Name(),
		"store", deps.Store.Backend,
		"cache", resultCache != nil,
	)

	return &Module{
		service: service,
		handler: analysis_http.NewAnalysisHandler(service, hub, deps.Logger),
		hub:     hub,
	}, nil
}

func newDetector(ctx context.Context, cfg config.AnalyzerConfig, storage Storage) (domain.LabelDetector, error) {
	switch cfg.Provider {
	case "rekognition":
		d, err := rekognition.New(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize rekognition detector: %w", err)
		}
		return d, nil
	case "vision":
		d, err := vision.New(vision.Config{
			BaseURL: cfg.VisionBaseURL,
			APIKey:  cfg.VisionAPIKey,
			Model:   cfg.VisionModel,
		}, storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vision detector: %w", err)
		}
		return d, nil
	case "local":
		return local.New(storage), nil
	default:
		return nil, fmt.Errorf("unknown analyzer provider %q", cfg.Provider)
	}
}

func newRepository(ctx context.Context, cfg config.StoreConfig, db *sqlx.DB) (domain.AnalysisRepository, error) {
	switch cfg.Backend {
	case "postgres":
		if db == nil {
			return nil, errors.New("postgres analysis store requires a database connection")
		}
		return postgres.NewPgAnalysisRepository(db), nil
	case "dynamodb":
		repo, err := dynamodb.New(ctx, cfg.Region, cfg.DynamoEndpoint, cfg.TableName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize dynamodb store: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown analysis store %q", cfg.Backend)
	}
}

func (m *Module) HTTPHandler() *analysis_http.AnalysisHandler {
	return m.handler
}

func (m *Module) Service() application.AnalysisService {
	return m.service
}

// Close stops the websocket hub.
func (m *Module) Close() {
	m.hub.Stop()
}
