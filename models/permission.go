package models

// PermissionLevel is one of a fixed, ordered set of roles controlling which
// actions a user may perform. The set is closed; unknown values are rejected
// at the validation boundary.
type PermissionLevel string

// Permission levels in decreasing order of privilege. The ordering is a
// convention only: authorization never infers a hierarchy, each action
// enumerates every allowed level explicitly.
const (
	LevelSuperAdmin PermissionLevel = "super_admin"
	LevelAdmin      PermissionLevel = "admin"
	LevelOperator   PermissionLevel = "operator"
	LevelViewer     PermissionLevel = "viewer"
)

// Valid reports whether l is one of the defined permission levels.
func (l PermissionLevel) Valid() bool {
	switch l {
	case LevelSuperAdmin, LevelAdmin, LevelOperator, LevelViewer:
		return true
	default:
		return false
	}
}

func (l PermissionLevel) String() string {
	return string(l)
}
