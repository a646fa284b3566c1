package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Multimedia groups a profile's video, document, and portfolio references.
// Only URLs are stored here; the blobs live in object storage.
type Multimedia struct {
	VideoURL       *string         `json:"videoUrl"`
	Documents      []DocumentRef   `json:"documents"`
	PortfolioItems []PortfolioItem `json:"portfolioItems"`
}

type DocumentRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type PortfolioItem struct {
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"imageUrl"`
	LinkURL  string `json:"linkUrl,omitempty"`
}

// ProfileSettings holds visibility and presentation switches.
type ProfileSettings struct {
	IsPublic  bool   `json:"isPublic"`
	IsPrimary bool   `json:"isPrimary"`
	CustomURL string `json:"customUrl"`
	Theme     string `json:"theme"`
	Language  string `json:"language"`
}

// SEOSettings holds the meta/Open Graph overrides for a public profile page.
type SEOSettings struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
	Keywords        string `json:"keywords"`
	UseCustomSocial bool   `json:"useCustomSocial"`
	OGTitle         string `json:"ogTitle"`
	OGDescription   string `json:"ogDescription"`
	OGImage         string `json:"ogImage"`
	NoIndex         bool   `json:"noIndex"`
}

// ProfileMeta is the profile meta document persisted as JSONB.
type ProfileMeta struct {
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	JobTitle   *string         `json:"jobTitle"`
	Company    *string         `json:"company"`
	Multimedia Multimedia      `json:"multimedia"`
	Settings   ProfileSettings `json:"settings"`
	SEO        SEOSettings     `json:"seo"`
}

// DefaultMultimedia returns the empty multimedia block the API emits for new profiles.
func DefaultMultimedia() Multimedia {
	return Multimedia{
		VideoURL:       nil,
		Documents:      []DocumentRef{},
		PortfolioItems: []PortfolioItem{},
	}
}

// DefaultSettings returns the settings block for a freshly created profile.
func DefaultSettings(customURL string) ProfileSettings {
	return ProfileSettings{
		IsPublic:  true,
		IsPrimary: false,
		CustomURL: customURL,
		Theme:     "default",
		Language:  "hu_HU",
	}
}

// DefaultSEO returns the zero-valued SEO block.
func DefaultSEO() SEOSettings {
	return SEOSettings{}
}

// DefaultProfileMeta assembles the full default document for a new profile.
func DefaultProfileMeta(customURL string) ProfileMeta {
	return ProfileMeta{
		Multimedia: DefaultMultimedia(),
		Settings:   DefaultSettings(customURL),
		SEO:        DefaultSEO(),
	}
}

// Value marshals the document into JSON for Postgres.
func (m ProfileMeta) Value() (driver.Value, error) {
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSONB back into the document. Missing blocks keep their defaults
// so partially written rows still round-trip complete documents.
func (m *ProfileMeta) Scan(value interface{}) error {
	*m = DefaultProfileMeta("")
	if value == nil {
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("profile meta: unsupported scan type %T", value)
	}

	return json.Unmarshal(raw, m)
}
