package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aetherhq/aether-engine/pkg/database"
	"github.com/aetherhq/aether-engine/pkg/models"
)

// MetricRowRepository provides data access for normalized metric rows.
// Rows are immutable: re-processing an upload replaces its rows wholesale
// via ReplaceForUpload rather than updating in place.
type MetricRowRepository interface {
	// ReplaceForUpload deletes any rows previously written for the upload and
	// bulk-inserts the new set.
	ReplaceForUpload(ctx context.Context, orgID, uploadID uuid.UUID, rows []models.MetricRow) error

	// GetByRange returns rows for the org whose date falls within [from, to].
	// Zero time bounds are unbounded. dimensionFields narrows to specific
	// dimension columns; empty means all.
	GetByRange(ctx context.Context, orgID uuid.UUID, from, to time.Time, dimensionFields []string) ([]models.MetricRow, error)
}

type metricRowRepository struct{}

// NewMetricRowRepository creates a new MetricRowRepository.
func NewMetricRowRepository() MetricRowRepository {
	return &metricRowRepository{}
}

var _ MetricRowRepository = (*metricRowRepository)(nil)

func (r *metricRowRepository) ReplaceForUpload(ctx context.Context, orgID, uploadID uuid.UUID, rows []models.MetricRow) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM engine_metric_rows WHERE upload_id = $1`, uploadID); err != nil {
		return fmt.Errorf("failed to delete superseded metric rows: %w", err)
	}

	now := time.Now()
	source := make([][]any, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.OrgID = orgID
		row.UploadID = uploadID
		row.CreatedAt = now

		source = append(source, []any{
			row.ID, row.OrgID, row.UploadID, row.Date,
			row.DimensionField, row.DimensionValue, row.Actual, row.Expected, row.CreatedAt,
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"engine_metric_rows"},
		[]string{"id", "org_id", "upload_id", "date", "dimension_field", "dimension_value", "actual", "expected", "created_at"},
		pgx.CopyFromRows(source),
	)
	if err != nil {
		return fmt.Errorf("failed to copy metric rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit metric rows: %w", err)
	}

	return nil
}

func (r *metricRowRepository) GetByRange(ctx context.Context, orgID uuid.UUID, from, to time.Time, dimensionFields []string) ([]models.MetricRow, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, upload_id, date, dimension_field, dimension_value, actual, expected, created_at
		FROM engine_metric_rows
		WHERE org_id = $1`
	args := []any{orgID}

	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	if len(dimensionFields) > 0 {
		args = append(args, dimensionFields)
		query += fmt.Sprintf(" AND dimension_field = ANY($%d)", len(args))
	}

	query += " ORDER BY date, dimension_field, dimension_value, id"

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric rows: %w", err)
	}
	defer rows.Close()

	var result []models.MetricRow
	for rows.Next() {
		var m models.MetricRow
		err := rows.Scan(
			&m.ID, &m.OrgID, &m.UploadID, &m.Date,
			&m.DimensionField, &m.DimensionValue, &m.Actual, &m.Expected, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric rows: %w", err)
	}

	return result, nil
}
