package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aetherhq/aether-engine/pkg/models"
)

func TestInferRole(t *testing.T) {
	tests := []struct {
		header   string
		ctx      InferContext
		expected models.ColumnRole
	}{
		{header: "week_start", expected: models.RoleDate},
		{header: "Week Start", expected: models.RoleDate},
		{header: "period_start", expected: models.RoleDate},
		{header: "start_date", expected: models.RoleDate},
		{header: "fiscal week start", expected: models.RoleDate},
		{header: "week_end", ctx: InferContext{HasWeekStart: true}, expected: models.RoleCustom},
		{header: "week_end", ctx: InferContext{HasWeekStart: false}, expected: models.RoleDate},
		{header: "Transaction Date", expected: models.RoleDate},
		{header: "Revenue", expected: models.RoleRevenue},
		{header: "gross_rev", expected: models.RoleRevenue},
		{header: "Labor Cost", expected: models.RoleCost},
		{header: "labor_hours", expected: models.RoleLaborHours},
		{header: "attendance", expected: models.RoleAttendance},
		{header: "check_ins", expected: models.RoleAttendance},
		{header: "Target", expected: models.RoleExpected},
		{header: "weekly_quota", expected: models.RoleExpected},
		{header: "capacity", expected: models.RoleExpected},
		{header: "max_possible", expected: models.RoleExpected},
		{header: "Instructor", expected: models.RoleDimension},
		{header: "sales_rep", expected: models.RoleDimension},
		{header: "Store", expected: models.RoleDimension},
		{header: "Region", expected: models.RoleDimension},
		{header: "site_code", expected: models.RoleLocation},
		{header: "member_name", expected: models.RoleName},
		{header: "notes", expected: models.RoleCustom},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferRole(tt.header, tt.ctx))
		})
	}
}

func TestInferMappingWeekEndGating(t *testing.T) {
	t.Run("week_end alone becomes the date axis", func(t *testing.T) {
		mapping := InferMapping([]string{"week_end", "revenue", "instructor"})
		assert.Equal(t, models.RoleDate, mapping["week_end"])
	})

	t.Run("week_end yields to week_start", func(t *testing.T) {
		mapping := InferMapping([]string{"week_start", "week_end", "revenue", "instructor"})
		assert.Equal(t, models.RoleDate, mapping["week_start"])
		assert.Equal(t, models.RoleCustom, mapping["week_end"])
	})
}

func TestRuleOrderIsAuditable(t *testing.T) {
	// "cost" appears before the dimension words, so "store_cost" is a cost
	// column even though "store" alone would be a dimension.
	assert.Equal(t, models.RoleCost, InferRole("store_cost", InferContext{}))

	// "rev" beats "team": a header naming both is a metric, not a dimension.
	assert.Equal(t, models.RoleRevenue, InferRole("team_revenue", InferContext{}))
}
