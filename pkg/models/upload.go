package models

import (
	"time"

	"github.com/google/uuid"
)

// DataType identifies what kind of operational data an upload carries.
const (
	DataTypeRevenue    = "revenue"
	DataTypeLabor      = "labor"
	DataTypeAttendance = "attendance"
)

// Upload records one tabular import: its column mapping, how many rows were
// written, and how many were skipped. The raw cells themselves are ephemeral
// and never persisted; only the normalized metric rows survive.
// Stored in engine_uploads table.
type Upload struct {
	ID          uuid.UUID             `json:"id"`
	OrgID       uuid.UUID             `json:"org_id"`
	Name        string                `json:"name"`
	DataType    string                `json:"data_type"`
	Mapping     map[string]ColumnRole `json:"mapping"`
	RowCount    int                   `json:"row_count"`
	SkippedRows int                   `json:"skipped_rows"`
	CreatedAt   time.Time             `json:"created_at"`
}
