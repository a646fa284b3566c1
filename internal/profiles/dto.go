package profiles

import (
	"time"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
	"github.com/kodacard/kodacard-backend/pkg/types"
)

// ProfileDTO is the formatted profile returned by the manager and public APIs.
type ProfileDTO struct {
	ID             uint64                `json:"id"`
	Name           string                `json:"name"`
	Type           enums.ProfileType     `json:"type"`
	Description    *string               `json:"description,omitempty"`
	Image          *string               `json:"image,omitempty"`
	FirstName      string                `json:"firstName"`
	LastName       string                `json:"lastName"`
	JobTitle       *string               `json:"jobTitle,omitempty"`
	Company        *string               `json:"company,omitempty"`
	Contacts       types.ContactList     `json:"contacts"`
	SocialProfiles types.SocialList      `json:"socialProfiles"`
	Multimedia     types.Multimedia      `json:"multimedia"`
	Settings       types.ProfileSettings `json:"settings"`
	SEOSettings    types.SEOSettings     `json:"seoSettings"`
	Visits         int                   `json:"visits"`
	IsPublic       bool                  `json:"isPublic"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	Card           *CardSummary          `json:"card,omitempty"`
}

// CardSummary is the linked card view nested in a profile response.
type CardSummary struct {
	ID          uint64           `json:"id"`
	Code        string           `json:"code"`
	Status      enums.CardStatus `json:"status"`
	ActivatedAt *time.Time       `json:"activated_at,omitempty"`
}

// CreateRequest creates a standalone profile.
type CreateRequest struct {
	Name        string             `json:"name" validate:"required"`
	Type        *enums.ProfileType `json:"type,omitempty"`
	Description *string            `json:"description,omitempty"`
}

// UpdateRequest mutates a profile; nil fields are left untouched.
type UpdateRequest struct {
	Name           *string                `json:"name,omitempty"`
	Description    *string                `json:"description,omitempty"`
	Image          *string                `json:"image,omitempty"`
	FirstName      *string                `json:"firstName,omitempty"`
	LastName       *string                `json:"lastName,omitempty"`
	JobTitle       *string                `json:"jobTitle,omitempty"`
	Company        *string                `json:"company,omitempty"`
	Contacts       *types.ContactList     `json:"contacts,omitempty"`
	SocialProfiles *types.SocialList      `json:"socialProfiles,omitempty"`
	Multimedia     *types.Multimedia      `json:"multimedia,omitempty"`
	Settings       *types.ProfileSettings `json:"settings,omitempty"`
	SEOSettings    *types.SEOSettings     `json:"seoSettings,omitempty"`
}

// LinkRequest attaches the profile to a card by code.
type LinkRequest struct {
	Code string `json:"code" validate:"required"`
}

// LinkResponse returns the updated profile plus the linked card summary.
type LinkResponse struct {
	Profile *ProfileDTO  `json:"profile"`
	Card    *CardSummary `json:"card"`
}

// CheckURLRequest asks whether a custom URL is free.
type CheckURLRequest struct {
	URL       string  `json:"url" validate:"required"`
	ProfileID *uint64 `json:"profile_id,omitempty"`
}

// CheckURLResponse reports custom URL availability.
type CheckURLResponse struct {
	URL       string `json:"url"`
	Available bool   `json:"available"`
}

// SEOResponse is the public SEO document for a profile page.
type SEOResponse struct {
	Name        string            `json:"name"`
	Image       *string           `json:"image,omitempty"`
	SEOSettings types.SEOSettings `json:"seoSettings"`
}

// FromModel formats a profile row; card may be nil.
func FromModel(p *models.Profile, card *models.Card) *ProfileDTO {
	if p == nil {
		return nil
	}
	dto := &ProfileDTO{
		ID:             p.ID,
		Name:           p.Name,
		Type:           p.Type,
		Description:    p.Description,
		Image:          p.Image,
		FirstName:      p.MetaData.FirstName,
		LastName:       p.MetaData.LastName,
		JobTitle:       p.MetaData.JobTitle,
		Company:        p.MetaData.Company,
		Contacts:       p.ContactInfo,
		SocialProfiles: p.SocialLinks,
		Multimedia:     p.MetaData.Multimedia,
		Settings:       p.MetaData.Settings,
		SEOSettings:    p.MetaData.SEO,
		Visits:         p.Visits,
		IsPublic:       p.IsPublic,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if dto.Contacts == nil {
		dto.Contacts = types.ContactList{}
	}
	if dto.SocialProfiles == nil {
		dto.SocialProfiles = types.SocialList{}
	}
	if card != nil {
		dto.Card = &CardSummary{
			ID:          card.ID,
			Code:        card.Code,
			Status:      card.Status,
			ActivatedAt: card.ActivatedAt,
		}
	}
	return dto
}
