package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
)

type PgAnalysisRepository struct {
	db *sqlx.DB
}

func NewPgAnalysisRepository(db *sqlx.DB) *PgAnalysisRepository {
	return &PgAnalysisRepository{db: db}
}

func (r *PgAnalysisRepository) Create(ctx context.Context, a *domain.Analysis) error {
	query := `
		INSERT INTO analyses (id, bucket, storage_key, provider, labels, created_at)
		VALUES (:id, :bucket, :storage_key, :provider, :labels, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, a)
	return err
}

func (r *PgAnalysisRepository) GetLatest(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	query := `
		SELECT id, bucket, storage_key, provider, labels, created_at
		FROM analyses
		WHERE id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var a domain.Analysis
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, err
	}
	return &a, nil
}

