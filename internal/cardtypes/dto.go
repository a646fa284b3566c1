package cardtypes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
)

// CardTypeDTO is the transport shape for a catalog entry.
type CardTypeDTO struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	ValidDays   int             `json:"valid_days"`
	Price       decimal.Decimal `json:"price"`
	Features    []string        `json:"features"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateRequest adds a catalog entry.
type CreateRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description,omitempty"`
	ValidDays   int             `json:"valid_days" validate:"min=0"`
	Price       decimal.Decimal `json:"price"`
	Features    []string        `json:"features,omitempty"`
}

// UpdateRequest mutates a catalog entry; nil fields are left untouched.
type UpdateRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	ValidDays   *int             `json:"valid_days,omitempty" validate:"omitempty,min=0"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Features    *[]string        `json:"features,omitempty"`
}

// FromModel converts a card type row into its transport shape.
func FromModel(ct *models.CardType) *CardTypeDTO {
	if ct == nil {
		return nil
	}
	features := []string(ct.Features)
	if features == nil {
		features = []string{}
	}
	return &CardTypeDTO{
		ID:          ct.ID,
		Name:        ct.Name,
		Description: ct.Description,
		ValidDays:   ct.ValidDays,
		Price:       ct.Price,
		Features:    features,
		CreatedAt:   ct.CreatedAt,
		UpdatedAt:   ct.UpdatedAt,
	}
}

// FromModels converts a slice of card type rows.
func FromModels(rows []models.CardType) []CardTypeDTO {
	out := make([]CardTypeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
