package cards

import (
	"time"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
)

// CardDTO is the transport shape for a card.
type CardDTO struct {
	ID          uint64            `json:"id"`
	Code        string            `json:"code"`
	Status      enums.CardStatus  `json:"status"`
	UserID      *uint64           `json:"user_id,omitempty"`
	ProfileID   *uint64           `json:"profile_id,omitempty"`
	CardTypeID  *uint64           `json:"card_type_id,omitempty"`
	ActivatedAt *time.Time        `json:"activated_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Profile     *ProfileSummary   `json:"profile,omitempty"`
	CardType    *CardTypeSummary  `json:"card_type,omitempty"`
}

// ProfileSummary is the nested profile view returned with a card.
type ProfileSummary struct {
	ID   uint64            `json:"id"`
	Name string            `json:"name"`
	Type enums.ProfileType `json:"type"`
}

// CardTypeSummary is the nested card type view returned with a card.
type CardTypeSummary struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ActivateRequest carries the activation payload.
type ActivateRequest struct {
	Code        string  `json:"code" validate:"required"`
	ProfileName *string `json:"profile_name,omitempty"`
}

// AdminCreateRequest creates one or more cards. When Code is omitted codes
// are generated; Count > 1 forces generation.
type AdminCreateRequest struct {
	Code       *string `json:"code,omitempty"`
	Count      int     `json:"count,omitempty" validate:"omitempty,min=1,max=500"`
	CardTypeID *uint64 `json:"card_type_id,omitempty"`
}

// AdminUpdateRequest mutates card attributes.
type AdminUpdateRequest struct {
	Status     *enums.CardStatus `json:"status,omitempty"`
	CardTypeID *uint64           `json:"card_type_id,omitempty"`
}

// AssignRequest attaches a user to an unassigned card.
type AssignRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
}

// ListFilters narrows the admin card listing.
type ListFilters struct {
	Status     *enums.CardStatus
	CardTypeID *uint64
	UserID     *uint64
	Code       string
	Limit      int
	Offset     int
}

// ListResult pairs a page of cards with the total row count.
type ListResult struct {
	Cards  []CardDTO `json:"cards"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// FromModel converts a card row into its transport shape.
func FromModel(c *models.Card) *CardDTO {
	if c == nil {
		return nil
	}
	dto := &CardDTO{
		ID:          c.ID,
		Code:        c.Code,
		Status:      c.Status,
		UserID:      c.UserID,
		ProfileID:   c.ProfileID,
		CardTypeID:  c.CardTypeID,
		ActivatedAt: c.ActivatedAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Profile != nil {
		dto.Profile = &ProfileSummary{
			ID:   c.Profile.ID,
			Name: c.Profile.Name,
			Type: c.Profile.Type,
		}
	}
	if c.CardType != nil {
		dto.CardType = &CardTypeSummary{
			ID:   c.CardType.ID,
			Name: c.CardType.Name,
		}
	}
	return dto
}

// FromModels converts a slice of card rows.
func FromModels(rows []models.Card) []CardDTO {
	out := make([]CardDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
