package enums

import "fmt"

// CardStatus maps to the card_status enum in Postgres.
type CardStatus string

const (
	CardStatusInactive CardStatus = "inactive"
	CardStatusActive   CardStatus = "active"
	CardStatusExpired  CardStatus = "expired"
)

var validCardStatuses = []CardStatus{
	CardStatusInactive,
	CardStatusActive,
	CardStatusExpired,
}

// String implements fmt.Stringer.
func (c CardStatus) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical card_status enum.
func (c CardStatus) IsValid() bool {
	for _, candidate := range validCardStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCardStatus converts raw input into CardStatus.
func ParseCardStatus(value string) (CardStatus, error) {
	for _, candidate := range validCardStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid card status %q", value)
}
