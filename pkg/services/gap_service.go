package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/gap"
	"github.com/aetherhq/aether-engine/pkg/repositories"
)

// GapService computes the week-by-dimension gap matrix from persisted
// metric rows.
type GapService interface {
	Matrix(ctx context.Context, orgID uuid.UUID, req gap.Request) (*gap.Result, error)
}

type gapService struct {
	metricRepo repositories.MetricRowRepository
	logger     *zap.Logger
}

// NewGapService creates a new GapService.
func NewGapService(metricRepo repositories.MetricRowRepository, logger *zap.Logger) GapService {
	return &gapService{
		metricRepo: metricRepo,
		logger:     logger.Named("gap-service"),
	}
}

var _ GapService = (*gapService)(nil)

func (s *gapService) Matrix(ctx context.Context, orgID uuid.UUID, req gap.Request) (*gap.Result, error) {
	metricRows, err := s.metricRepo.GetByRange(ctx, orgID, req.From, req.To, req.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("load metric rows: %w", err)
	}

	rows := make([]gap.Row, 0, len(metricRows))
	for _, mr := range metricRows {
		rows = append(rows, gap.Row{
			Date:           mr.Date,
			DimensionField: mr.DimensionField,
			DimensionValue: mr.DimensionValue,
			Actual:         mr.Actual,
			Expected:       mr.Expected,
		})
	}

	result := gap.Compute(rows, req)

	s.logger.Debug("Gap matrix computed",
		zap.Int("source_rows", len(rows)),
		zap.Int("weeks", len(result.Weeks)),
		zap.Int("entities", len(result.Entities)))

	return result, nil
}
