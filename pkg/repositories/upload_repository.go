package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aetherhq/aether-engine/pkg/database"
	"github.com/aetherhq/aether-engine/pkg/models"
)

// UploadRepository provides data access for upload records.
type UploadRepository interface {
	Create(ctx context.Context, upload *models.Upload) error
	GetByID(ctx context.Context, uploadID uuid.UUID) (*models.Upload, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Upload, error)
}

type uploadRepository struct{}

// NewUploadRepository creates a new UploadRepository.
func NewUploadRepository() UploadRepository {
	return &uploadRepository{}
}

var _ UploadRepository = (*uploadRepository)(nil)

func (r *uploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if upload.ID == uuid.Nil {
		upload.ID = uuid.New()
	}
	upload.CreatedAt = time.Now()

	mappingJSON, err := json.Marshal(upload.Mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal column mapping: %w", err)
	}

	query := `
		INSERT INTO engine_uploads (id, org_id, name, data_type, mapping, row_count, skipped_rows, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = scope.Conn.Exec(ctx, query,
		upload.ID, upload.OrgID, upload.Name, upload.DataType,
		mappingJSON, upload.RowCount, upload.SkippedRows, upload.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}

	return nil
}

func (r *uploadRepository) GetByID(ctx context.Context, uploadID uuid.UUID) (*models.Upload, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, name, data_type, mapping, row_count, skipped_rows, created_at
		FROM engine_uploads
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, uploadID)
	upload, err := scanUpload(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return upload, nil
}

func (r *uploadRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Upload, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, name, data_type, mapping, row_count, skipped_rows, created_at
		FROM engine_uploads
		WHERE org_id = $1
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*models.Upload
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating uploads: %w", err)
	}

	return uploads, nil
}

func scanUpload(row pgx.Row) (*models.Upload, error) {
	var u models.Upload
	var mappingJSON []byte

	err := row.Scan(
		&u.ID, &u.OrgID, &u.Name, &u.DataType, &mappingJSON,
		&u.RowCount, &u.SkippedRows, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan upload: %w", err)
	}

	if err := json.Unmarshal(mappingJSON, &u.Mapping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal column mapping: %w", err)
	}

	return &u, nil
}
