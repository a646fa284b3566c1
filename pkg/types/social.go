package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SocialLink is one entry of a profile's social block.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// SocialList is the profile social document persisted as JSONB.
type SocialList []SocialLink

// Value marshals the list into JSON for Postgres. A nil list round-trips as [].
func (s SocialList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSONB back into the list.
func (s *SocialList) Scan(value interface{}) error {
	if value == nil {
		*s = SocialList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("social list: unsupported scan type %T", value)
	}

	result := SocialList{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*s = result
	return nil
}
