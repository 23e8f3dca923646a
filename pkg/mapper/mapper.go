package mapper

import (
	"fmt"
	"strings"

	"github.com/aetherhq/aether-engine/pkg/apperrors"
	"github.com/aetherhq/aether-engine/pkg/models"
)

// ValidateMapping enforces the cardinality rules an import must satisfy:
// at least one Revenue column, exactly one Dimension column, and at least one
// Date column. The returned error names the violated rule and wraps
// apperrors.ErrInvalidMapping; a failed validation means no rows are written.
func ValidateMapping(mapping map[string]models.ColumnRole) error {
	var revenue, dimension, date int
	for _, role := range mapping {
		switch role {
		case models.RoleRevenue:
			revenue++
		case models.RoleDimension:
			dimension++
		case models.RoleDate:
			date++
		}
	}

	if revenue < 1 {
		return fmt.Errorf("%w: At least one column must be mapped to Revenue", apperrors.ErrInvalidMapping)
	}
	if dimension == 0 {
		return fmt.Errorf("%w: A column must be mapped to Dimension", apperrors.ErrInvalidMapping)
	}
	if dimension > 1 {
		return fmt.Errorf("%w: Only one column can be mapped to Dimension (found %d)", apperrors.ErrInvalidMapping, dimension)
	}
	if date < 1 {
		return fmt.Errorf("%w: At least one column must be mapped to Date", apperrors.ErrInvalidMapping)
	}
	return nil
}

// columnsFor returns headers carrying the given role, in header order.
func columnsFor(headers []string, mapping map[string]models.ColumnRole, role models.ColumnRole) []string {
	var out []string
	for _, h := range headers {
		if mapping[h] == role {
			out = append(out, h)
		}
	}
	return out
}

// dateColumn picks the column supplying the date axis: a week-start-style
// header if one is mapped to Date, otherwise the first Date column.
func dateColumn(headers []string, mapping map[string]models.ColumnRole) string {
	dates := columnsFor(headers, mapping, models.RoleDate)
	if len(dates) == 0 {
		return ""
	}
	for _, h := range dates {
		if isWeekStartHeader(strings.ToLower(h)) {
			return h
		}
	}
	return dates[0]
}

// Normalize converts raw uploaded rows into metric rows using a validated
// mapping. Actual defaults to 0 when the revenue cell is absent or
// unparseable; Expected is nil in the same cases. Rows whose date cell fails
// to parse are skipped and counted, never fatal.
func Normalize(headers []string, rows []map[string]string, mapping map[string]models.ColumnRole) ([]models.MetricRow, int) {
	dateCol := dateColumn(headers, mapping)
	dimCols := columnsFor(headers, mapping, models.RoleDimension)
	revCols := columnsFor(headers, mapping, models.RoleRevenue)
	expCols := columnsFor(headers, mapping, models.RoleExpected)

	var dimCol, revCol, expCol string
	if len(dimCols) > 0 {
		dimCol = dimCols[0]
	}
	if len(revCols) > 0 {
		revCol = revCols[0]
	}
	if len(expCols) > 0 {
		expCol = expCols[0]
	}

	out := make([]models.MetricRow, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		date, err := models.ParseDateCell(row[dateCol])
		if err != nil {
			skipped++
			continue
		}

		actual := 0.0
		if v, err := models.ParseNumericCell(row[revCol]); err == nil {
			actual = v
		}

		var expected *float64
		if expCol != "" {
			if v, err := models.ParseNumericCell(row[expCol]); err == nil {
				expected = &v
			}
		}

		out = append(out, models.MetricRow{
			Date:           date,
			DimensionField: dimCol,
			DimensionValue: row[dimCol],
			Actual:         actual,
			Expected:       expected,
		})
	}

	return out, skipped
}
