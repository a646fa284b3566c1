package enums

import "fmt"

// ProfileType maps to the profile_type enum in Postgres.
type ProfileType string

const (
	ProfileTypePersonal ProfileType = "personal"
	ProfileTypeBusiness ProfileType = "business"
	ProfileTypeOther    ProfileType = "other"
)

var validProfileTypes = []ProfileType{
	ProfileTypePersonal,
	ProfileTypeBusiness,
	ProfileTypeOther,
}

func (p ProfileType) String() string {
	return string(p)
}

func (p ProfileType) IsValid() bool {
	for _, candidate := range validProfileTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProfileType converts raw input into ProfileType.
func ParseProfileType(value string) (ProfileType, error) {
	for _, candidate := range validProfileTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid profile type %q", value)
}
