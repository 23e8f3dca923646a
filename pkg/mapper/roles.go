// Package mapper assigns semantic roles to uploaded columns and normalizes
// raw rows into metric records. Role inference is a heuristic pre-fill only;
// callers may override any assignment before committing an import.
package mapper

import (
	"strings"

	"github.com/aetherhq/aether-engine/pkg/models"
)

// InferContext carries upload-wide facts that individual rules depend on.
type InferContext struct {
	// HasWeekStart is true when any header in the upload looks like a
	// week-start column. Gates the week_end rule so a lone end-date column
	// can still serve as the date axis without creating an ambiguous pair.
	HasWeekStart bool
}

// RoleRule is one entry in the ordered inference table. Rules are evaluated
// top to bottom against the lowercased header; the first match wins.
type RoleRule struct {
	Name    string
	Role    models.ColumnRole
	Matches func(header string, ctx InferContext) bool
}

func containsAny(header string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(header, w) {
			return true
		}
	}
	return false
}

func isWeekStartHeader(header string) bool {
	if containsAny(header, "week_start", "week start") {
		return true
	}
	if containsAny(header, "period_start", "start_date", "date_start") {
		return true
	}
	return strings.Contains(header, "week") && strings.Contains(header, "start")
}

// RoleRules is the inference table. Order is significant and mirrors the
// priority of the matched business meaning: explicit week boundaries beat
// generic dates, metric columns beat dimension words, and anything
// unrecognized falls through to custom.
var RoleRules = []RoleRule{
	{
		Name: "week-start date",
		Role: models.RoleDate,
		Matches: func(h string, _ InferContext) bool {
			return isWeekStartHeader(h)
		},
	},
	{
		Name: "week-end date (only without a week-start column)",
		Role: models.RoleDate,
		Matches: func(h string, ctx InferContext) bool {
			return strings.Contains(h, "week_end") && !ctx.HasWeekStart
		},
	},
	{
		Name: "generic date",
		Role: models.RoleDate,
		Matches: func(h string, _ InferContext) bool {
			return strings.Contains(h, "date")
		},
	},
	{
		Name: "revenue",
		Role: models.RoleRevenue,
		Matches: func(h string, _ InferContext) bool {
			return strings.Contains(h, "rev")
		},
	},
	{
		Name: "cost",
		Role: models.RoleCost,
		Matches: func(h string, _ InferContext) bool {
			return strings.Contains(h, "cost")
		},
	},
	{
		Name: "labor hours",
		Role: models.RoleLaborHours,
		Matches: func(h string, _ InferContext) bool {
			return strings.Contains(h, "labor")
		},
	},
	{
		Name: "attendance",
		Role: models.RoleAttendance,
		Matches: func(h string, _ InferContext) bool {
			return containsAny(h, "attend", "check")
		},
	},
	{
		Name: "expected value",
		Role: models.RoleExpected,
		Matches: func(h string, _ InferContext) bool {
			return containsAny(h, "target", "quota", "expected", "capacity", "potential", "max")
		},
	},
	{
		Name: "business dimension",
		Role: models.RoleDimension,
		Matches: func(h string, _ InferContext) bool {
			return containsAny(h,
				"instructor", "coach", "trainer", "staff", "rep", "sales",
				"region", "territory", "location", "outlet", "store", "team")
		},
	},
	{
		Name: "site location",
		Role: models.RoleLocation,
		Matches: func(h string, _ InferContext) bool {
			return strings.Contains(h, "site")
		},
	},
	{
		Name: "display name",
		Role: models.RoleName,
		Matches: func(h string, _ InferContext) bool {
			return containsAny(h, "name", "member")
		},
	},
}

// InferRole runs the rule table for a single header.
func InferRole(header string, ctx InferContext) models.ColumnRole {
	h := strings.ToLower(header)
	for _, rule := range RoleRules {
		if rule.Matches(h, ctx) {
			return rule.Role
		}
	}
	return models.RoleCustom
}

// InferMapping pre-fills a column role for every header in an upload.
func InferMapping(headers []string) map[string]models.ColumnRole {
	ctx := InferContext{}
	for _, h := range headers {
		if isWeekStartHeader(strings.ToLower(h)) {
			ctx.HasWeekStart = true
			break
		}
	}

	mapping := make(map[string]models.ColumnRole, len(headers))
	for _, h := range headers {
		mapping[h] = InferRole(h, ctx)
	}
	return mapping
}
