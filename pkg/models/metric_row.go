package models

import (
	"time"

	"github.com/google/uuid"
)

// MetricRow is one normalized performance observation produced at import time
// from a raw uploaded row plus its column mapping. Immutable once persisted;
// re-importing an upload replaces its rows wholesale rather than mutating them.
// Stored in engine_metric_rows table.
type MetricRow struct {
	ID             uuid.UUID `json:"id"`
	OrgID          uuid.UUID `json:"org_id"`
	UploadID       uuid.UUID `json:"upload_id"`
	Date           time.Time `json:"date"`
	DimensionField string    `json:"dimension_field"` // original header of the dimension column
	DimensionValue string    `json:"dimension_value"` // grouping key, e.g. a location name
	Actual         float64   `json:"actual"`
	Expected       *float64  `json:"expected,omitempty"` // nil when the row carried no expected value
	CreatedAt      time.Time `json:"created_at"`
}
