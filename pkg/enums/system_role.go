package enums

import "fmt"

// SystemRole drives coarse authorization: admins reach the /api/admin surface.
type SystemRole string

const (
	SystemRoleUser  SystemRole = "user"
	SystemRoleAdmin SystemRole = "admin"
)

var validSystemRoles = []SystemRole{
	SystemRoleUser,
	SystemRoleAdmin,
}

func (r SystemRole) String() string {
	return string(r)
}

func (r SystemRole) IsValid() bool {
	for _, candidate := range validSystemRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseSystemRole converts raw input into SystemRole.
func ParseSystemRole(value string) (SystemRole, error) {
	for _, candidate := range validSystemRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid system role %q", value)
}

// Permissions returns the permission strings granted to the role. The admin
// panel checks these per endpoint group.
func (r SystemRole) Permissions() []string {
	base := []string{
		"view cards",
		"activate cards",
		"view profiles",
		"edit profiles",
	}
	if r != SystemRoleAdmin {
		return base
	}
	return append(base,
		"create cards",
		"edit cards",
		"delete cards",
		"assign cards",
		"manage card types",
		"view statistics",
	)
}
