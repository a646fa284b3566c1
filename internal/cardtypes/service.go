package cardtypes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/kodacard/kodacard-backend/pkg/db"
	"github.com/kodacard/kodacard-backend/pkg/db/models"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
)

// Service manages the card type catalog.
type Service interface {
	List(ctx context.Context) ([]CardTypeDTO, error)
	Create(ctx context.Context, req CreateRequest) (*CardTypeDTO, error)
	Get(ctx context.Context, id uint64) (*CardTypeDTO, error)
	Update(ctx context.Context, id uint64, req UpdateRequest) (*CardTypeDTO, error)
	Delete(ctx context.Context, id uint64) error
}

type cardCounter interface {
	CountByCardType(ctx context.Context, cardTypeID uint64) (int64, error)
}

type service struct {
	repo  *Repository
	cards cardCounter
}

// ServiceParams bundles the card type service dependencies.
type ServiceParams struct {
	Repo  *Repository
	Cards cardCounter
}

// NewService constructs the card type service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("card type repository is required")
	}
	if params.Cards == nil {
		return nil, fmt.Errorf("card counter is required")
	}
	return &service{repo: params.Repo, cards: params.Cards}, nil
}

func (s *service) List(ctx context.Context) ([]CardTypeDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list card types")
	}
	return FromModels(rows), nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*CardTypeDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if req.ValidDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_days cannot be negative")
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	row := &models.CardType{
		Name:        name,
		Description: req.Description,
		ValidDays:   req.ValidDays,
		Price:       req.Price,
		Features:    req.Features,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "card_types_name_unique") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "card type name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create card type")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uint64) (*CardTypeDTO, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(row), nil
}

func (s *service) Update(ctx context.Context, id uint64, req UpdateRequest) (*CardTypeDTO, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		row.Name = name
	}
	if req.Description != nil {
		row.Description = req.Description
	}
	if req.ValidDays != nil {
		if *req.ValidDays < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_days cannot be negative")
		}
		row.ValidDays = *req.ValidDays
	}
	if req.Price != nil {
		if req.Price.LessThan(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		row.Price = *req.Price
	}
	if req.Features != nil {
		row.Features = *req.Features
	}

	if err := s.repo.Save(ctx, row); err != nil {
		if dbpkg.IsUniqueViolation(err, "card_types_name_unique") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "card type name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist card type")
	}
	return FromModel(row), nil
}

func (s *service) Delete(ctx context.Context, id uint64) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	inUse, err := s.cards.CountByCardType(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count referencing cards")
	}
	if inUse > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("card type is referenced by %d cards", inUse))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete card type")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uint64) (*models.CardType, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card type")
	}
	return row, nil
}
