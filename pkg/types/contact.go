package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ContactEntry is one row of a profile's contact block (phone, email, address...).
type ContactEntry struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// ContactList is the profile contact document persisted as JSONB.
type ContactList []ContactEntry

// Value marshals the list into JSON for Postgres. A nil list round-trips as [].
func (c ContactList) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSONB back into the list.
func (c *ContactList) Scan(value interface{}) error {
	if value == nil {
		*c = ContactList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("contact list: unsupported scan type %T", value)
	}

	result := ContactList{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*c = result
	return nil
}
