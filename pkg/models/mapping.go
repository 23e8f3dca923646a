package models

// ColumnRole is the semantic role assigned to one uploaded column.
type ColumnRole string

const (
	RoleDate       ColumnRole = "date"
	RoleRevenue    ColumnRole = "revenue"
	RoleCost       ColumnRole = "cost"
	RoleLaborHours ColumnRole = "labor_hours"
	RoleAttendance ColumnRole = "attendance"
	RoleExpected   ColumnRole = "expected"
	RoleDimension  ColumnRole = "dimension"
	RoleCategory   ColumnRole = "category"
	RoleLocation   ColumnRole = "location"
	RoleName       ColumnRole = "name"
	RoleCustom     ColumnRole = "custom"
	RoleSkip       ColumnRole = "skip"
)

// ValidRoles lists every assignable column role, in display order.
var ValidRoles = []ColumnRole{
	RoleDate, RoleRevenue, RoleCost, RoleLaborHours, RoleAttendance,
	RoleExpected, RoleDimension, RoleCategory, RoleLocation, RoleName,
	RoleCustom, RoleSkip,
}

// IsValid reports whether r is one of the known column roles.
func (r ColumnRole) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}
