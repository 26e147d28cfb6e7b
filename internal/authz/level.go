package authz

// PermissionLevel orders module permissions by increasing privilege.
// A module access check passes iff the resolved level for that module
// is at least the level required by the action.
type PermissionLevel int

const (
	LevelNone PermissionLevel = iota
	LevelRead
	LevelWrite
	LevelDelete
	LevelAdmin
)

// ParseLevel maps a stored level name to its PermissionLevel.
// Unknown names resolve to LevelNone so bad data fails closed.
func ParseLevel(s string) PermissionLevel {
	switch s {
	case "read":
		return LevelRead
	case "write":
		return LevelWrite
	case "delete":
		return LevelDelete
	case "admin":
		return LevelAdmin
	default:
		return LevelNone
	}
}

func (l PermissionLevel) String() string {
	switch l {
	case LevelRead:
		return "read"
	case LevelWrite:
		return "write"
	case LevelDelete:
		return "delete"
	case LevelAdmin:
		return "admin"
	default:
		return "none"
	}
}
