package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

// RunRepository persists the audit trail of pipeline runs.
type RunRepository interface {
	Create(ctx context.Context, run *models.MigrationRun) error
	GetByBusiness(ctx context.Context, businessID string, limit int) ([]*models.MigrationRun, error)
}

type runRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a RunRepository.
func NewRunRepository(pool *pgxpool.Pool) RunRepository {
	return &runRepository{pool: pool}
}

var _ RunRepository = (*runRepository)(nil)

func (r *runRepository) Create(ctx context.Context, run *models.MigrationRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.CreatedAt = time.Now()

	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	query := `
		INSERT INTO engine_migration_runs (id, business_id, summary, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, run.ID, run.BusinessID, summary, run.CreatedAt); err != nil {
		return fmt.Errorf("failed to create migration run: %w", err)
	}
	return nil
}

func (r *runRepository) GetByBusiness(ctx context.Context, businessID string, limit int) ([]*models.MigrationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, business_id, summary, created_at
		FROM engine_migration_runs
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.MigrationRun
	for rows.Next() {
		run, err := scanMigrationRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration runs: %w", err)
	}
	return runs, nil
}

func scanMigrationRun(row pgx.Row) (*models.MigrationRun, error) {
	var run models.MigrationRun
	var summary []byte

	if err := row.Scan(&run.ID, &run.BusinessID, &summary, &run.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan migration run: %w", err)
	}
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &run.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run summary: %w", err)
		}
	}
	return &run, nil
}
