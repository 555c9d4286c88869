package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
	"golang.org/x/sync/singleflight"
)

type AnalysisService interface {
	IssueUploadURL(ctx context.Context, filename, contentType string) (*domain.UploadGrant, error)
	Analyze(ctx context.Context, key string) (*domain.Analysis, error)
	// GetResult reports whether the result came from the cache.
	GetResult(ctx context.Context, analysisID string) (*domain.Analysis, bool, error)
}

// Options tunes label detection.
type Options struct {
	MaxLabels     int32
	MinConfidence float32
}

type analysisService struct {
	signer   domain.UploadSigner
	detector domain.LabelDetector
	repo     domain.AnalysisRepository
	cache    domain.ResultCache // optional
	notifier domain.Notifier    // optional
	metrics  *Metrics
	logger   *slog.Logger
	opts     Options

	lookups singleflight.Group
	now     func() time.Time
	newID   func() uuid.UUID
}

// Deps groups the collaborators of the analysis service. Cache and Notifier may be nil.
type Deps struct {
	Signer   domain.UploadSigner
	Detector domain.LabelDetector
	Repo     domain.AnalysisRepository
	Cache    domain.ResultCache
	Notifier domain.Notifier
	Metrics  *Metrics
	Logger   *slog.Logger
}

func NewAnalysisService(deps Deps, opts Options) AnalysisService {
	return &analysisService{
		signer:   deps.Signer,
		detector: deps.Detector,
		repo:     deps.Repo,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.New,
	}
}

func (s *analysisService) IssueUploadURL(ctx context.Context, filename, contentType string) (*domain.UploadGrant, error) {
	if filename == "" {
		filename = domain.DefaultFilename
	}
	if contentType == "" {
		contentType = domain.DefaultContentType
	}

	key := fmt.Sprintf("%s%s_%s", domain.UploadPrefix, s.newID(), filename)

	uploadURL, err := s.signer.PresignUpload(ctx, key, contentType)
	if err != nil {
		s.metrics.uploadURLs.WithLabelValues("error").Inc()
		return nil, &domain.OpError{Kind: domain.ErrPresignFailed, Err: err}
	}
	s.metrics.uploadURLs.WithLabelValues("ok").Inc()

	s.logger.InfoContext(ctx, "upload url issued", "key", key, "content_type", contentType)
	return &domain.UploadGrant{
		UploadURL: uploadURL,
		Bucket:    s.signer.Bucket(),
		Key:       key,
	}, nil
}

func (s *analysisService) Analyze(ctx context.Context, key string) (*domain.Analysis, error) {
	if key == "" {
		return nil, domain.ErrMissingKey
	}
	provider := s.detector.Name()
	bucket := s.signer.Bucket()

	start := time.Now()
	labels, err := s.detector.DetectLabels(ctx, domain.DetectRequest{
		Bucket:        bucket,
		Key:           key,
		MaxLabels:     s.opts.MaxLabels,
		MinConfidence: s.opts.MinConfidence,
	})
	s.metrics.detection.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.analyses.WithLabelValues(provider, "detection_failed").Inc()
		s.logger.ErrorContext(ctx, "label detection failed", "key", key, "provider", provider, "error", err)
		return nil, &domain.OpError{Kind: domain.ErrDetectionFailed, Err: err}
	}

	analysis := &domain.Analysis{
		ID:        s.newID(),
		Bucket:    bucket,
		Key:       key,
		Provider:  provider,
		Labels:    domain.Labels(labels),
		CreatedAt: s.now(),
	}
	if analysis.Labels == nil {
		analysis.Labels = domain.Labels{}
	}

	if err := s.repo.Create(ctx, analysis); err != nil {
		s.metrics.analyses.WithLabelValues(provider, "save_failed").Inc()
		s.logger.ErrorContext(ctx, "saving analysis failed", "analysis_id", analysis.ID, "error", err)
		return nil, &domain.OpError{Kind: domain.ErrSaveFailed, Err: err}
	}
	s.metrics.analyses.WithLabelValues(provider, "ok").Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, analysis); err != nil {
			s.logger.WarnContext(ctx, "caching analysis failed", "analysis_id", analysis.ID, "error", err)
		}
	}
	if s.notifier != nil {
		s.notifier.AnalysisCompleted(analysis)
	}

	s.logger.InfoContext(ctx, "analysis stored", "analysis_id", analysis.ID, "key", key, "labels", len(analysis.Labels))
	return analysis, nil
}

func (s *analysisService) GetResult(ctx context.Context, analysisID string) (*domain.Analysis, bool, error) {
	if analysisID == "" {
		return nil, false, domain.ErrMissingAnalysisID
	}
	id, err := uuid.Parse(analysisID)
	if err != nil {
		return nil, false, domain.ErrAnalysisNotFound
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "reading result cache failed", "analysis_id", id, "error", err)
		}
		if cached != nil {
			s.metrics.lookups.WithLabelValues("hit").Inc()
			return cached, true, nil
		}
	}
	s.metrics.lookups.WithLabelValues("miss").Inc()

	// The shared lookup outlives any single caller; each caller still stops
	// waiting when its own context ends.
	lookupCtx := context.WithoutCancel(ctx)
	ch := s.lookups.DoChan(id.String(), func() (any, error) {
		a, err := s.repo.GetLatest(lookupCtx, id)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(lookupCtx, a); err != nil {
				s.logger.WarnContext(lookupCtx, "caching analysis failed", "analysis_id", id, "error", err)
			}
		}
		return a, nil
	})

	var v any
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("failed to load analysis %s: %w", id, ctx.Err())
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if err != nil {
		if errors.Is(err, domain.ErrAnalysisNotFound) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("failed to load analysis %s: %w", id, err)
	}
	return v.(*domain.Analysis), false, nil
}
