package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/apperrors"
	"github.com/aetherhq/aether-engine/pkg/mapper"
	"github.com/aetherhq/aether-engine/pkg/models"
	"github.com/aetherhq/aether-engine/pkg/repositories"
)

// ImportRequest carries one tabular import: raw cells, the (possibly
// user-edited) column mapping, and an optional ontology projection config.
type ImportRequest struct {
	Name     string
	DataType string
	Headers  []string
	Rows     []map[string]string
	Mapping  map[string]models.ColumnRole
	Ontology *ProjectionConfig
}

// ImportResult reports what one import actually did.
type ImportResult struct {
	UploadID    uuid.UUID         `json:"upload_id"`
	RowsWritten int               `json:"rows_written"`
	RowsSkipped int               `json:"rows_skipped"`
	Projection  *ProjectionResult `json:"projection,omitempty"`
}

// ImportService validates column mappings and turns uploads into persisted
// metric rows, optionally routing the same rows through the ontology
// projector.
type ImportService interface {
	// Suggest pre-fills a column role for every header. The result is a
	// suggestion only; the caller may override any column before importing.
	Suggest(headers []string) map[string]models.ColumnRole

	// Import validates the mapping, persists the upload and its normalized
	// rows, and runs the projector when an ontology config is present.
	// A mapping that fails validation writes nothing.
	Import(ctx context.Context, orgID uuid.UUID, req ImportRequest) (*ImportResult, error)

	GetUpload(ctx context.Context, uploadID uuid.UUID) (*models.Upload, error)
	ListUploads(ctx context.Context, orgID uuid.UUID) ([]*models.Upload, error)
}

type importService struct {
	uploadRepo repositories.UploadRepository
	metricRepo repositories.MetricRowRepository
	projector  OntologyProjector
	logger     *zap.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewImportService creates a new ImportService.
func NewImportService(
	uploadRepo repositories.UploadRepository,
	metricRepo repositories.MetricRowRepository,
	projector OntologyProjector,
	logger *zap.Logger,
) ImportService {
	return &importService{
		uploadRepo: uploadRepo,
		metricRepo: metricRepo,
		projector:  projector,
		logger:     logger.Named("import-service"),
		inFlight:   make(map[uuid.UUID]struct{}),
	}
}

var _ ImportService = (*importService)(nil)

func (s *importService) Suggest(headers []string) map[string]models.ColumnRole {
	return mapper.InferMapping(headers)
}

func (s *importService) Import(ctx context.Context, orgID uuid.UUID, req ImportRequest) (*ImportResult, error) {
	// One import at a time per org, so projection upserts never race a
	// concurrent import of the same entities.
	if err := s.acquire(orgID); err != nil {
		return nil, err
	}
	defer s.release(orgID)

	if err := mapper.ValidateMapping(req.Mapping); err != nil {
		return nil, err
	}

	metricRows, skipped := mapper.Normalize(req.Headers, req.Rows, req.Mapping)

	upload := &models.Upload{
		OrgID:       orgID,
		Name:        req.Name,
		DataType:    req.DataType,
		Mapping:     req.Mapping,
		RowCount:    len(metricRows),
		SkippedRows: skipped,
	}

	if err := s.uploadRepo.Create(ctx, upload); err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}

	if err := s.metricRepo.ReplaceForUpload(ctx, orgID, upload.ID, metricRows); err != nil {
		return nil, fmt.Errorf("persist metric rows: %w", err)
	}

	result := &ImportResult{
		UploadID:    upload.ID,
		RowsWritten: len(metricRows),
		RowsSkipped: skipped,
	}

	if req.Ontology != nil {
		projection, err := s.projector.Project(ctx, orgID, upload.ID, req.Headers, req.Rows, *req.Ontology)
		if err != nil {
			// Metric rows are already committed; projection failure degrades
			// the import rather than rolling it back.
			s.logger.Error("Ontology projection failed",
				zap.String("upload_id", upload.ID.String()),
				zap.Error(err))
			return nil, fmt.Errorf("project ontology: %w", err)
		}
		result.Projection = projection
	}

	s.logger.Info("Import complete",
		zap.String("upload_id", upload.ID.String()),
		zap.Int("rows_written", result.RowsWritten),
		zap.Int("rows_skipped", result.RowsSkipped))

	return result, nil
}

func (s *importService) GetUpload(ctx context.Context, uploadID uuid.UUID) (*models.Upload, error) {
	return s.uploadRepo.GetByID(ctx, uploadID)
}

func (s *importService) ListUploads(ctx context.Context, orgID uuid.UUID) ([]*models.Upload, error) {
	return s.uploadRepo.ListByOrg(ctx, orgID)
}

func (s *importService) acquire(orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[orgID]; busy {
		return fmt.Errorf("org %s: %w", orgID, apperrors.ErrUploadInProgress)
	}
	s.inFlight[orgID] = struct{}{}
	return nil
}

func (s *importService) release(orgID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, orgID)
}
