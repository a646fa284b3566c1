package cards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/kodacard/kodacard-backend/pkg/db"
	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
	"github.com/kodacard/kodacard-backend/pkg/logger"
	"github.com/kodacard/kodacard-backend/pkg/outbox"
)

const (
	notEligibleMessage = "card already activated or expired"
	defaultBatchCount  = 1
	maxBatchCount      = 500
)

// Service drives the card lifecycle: activation, deactivation, and the
// admin management surface.
type Service interface {
	Activate(ctx context.Context, actorID uint64, req ActivateRequest) (*CardDTO, error)
	Deactivate(ctx context.Context, actorID, cardID uint64) error
	GetUserCards(ctx context.Context, actorID uint64) ([]CardDTO, error)
	GetOwnedCard(ctx context.Context, actorID, cardID uint64) (*CardDTO, error)

	AdminList(ctx context.Context, filters ListFilters) (*ListResult, error)
	AdminCreate(ctx context.Context, req AdminCreateRequest) ([]CardDTO, error)
	AdminGet(ctx context.Context, id uint64) (*CardDTO, error)
	AdminUpdate(ctx context.Context, id uint64, req AdminUpdateRequest) (*CardDTO, error)
	AdminDelete(ctx context.Context, id uint64) error
	AdminAssign(ctx context.Context, id uint64, req AssignRequest) (*CardDTO, error)
	AdminActivate(ctx context.Context, id uint64) (*CardDTO, error)
}

type profileStore interface {
	CreateDefault(ctx context.Context, tx *gorm.DB, userID uint64, name string) (*models.Profile, error)
	SoftDeleteTx(ctx context.Context, tx *gorm.DB, id uint64) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uint64) (*models.User, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db       *dbpkg.Client
	repo     *Repository
	profiles profileStore
	users    userFinder
	events   eventEmitter
	logg     *logger.Logger
}

// ServiceParams bundles the card service dependencies.
type ServiceParams struct {
	DB       *dbpkg.Client
	Repo     *Repository
	Profiles profileStore
	Users    userFinder
	Events   eventEmitter
	Logger   *logger.Logger
}

// NewService constructs the card service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("card repository is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		profiles: params.Profiles,
		users:    params.Users,
		events:   params.Events,
		logg:     params.Logger,
	}, nil
}

func (s *service) Activate(ctx context.Context, actorID uint64, req ActivateRequest) (*CardDTO, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	card, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card")
	}
	if !card.IsActivatable() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, notEligibleMessage)
	}

	profileName := "Profile - " + code
	if req.ProfileName != nil && strings.TrimSpace(*req.ProfileName) != "" {
		profileName = strings.TrimSpace(*req.ProfileName)
	}

	var activatedID uint64
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.WithTx(tx).FindByCodeForUpdate(ctx, code)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock card")
		}
		// Re-check under the lock: the loser of a concurrent activation
		// sees the winner's write here.
		if !locked.IsActivatable() {
			return pkgerrors.New(pkgerrors.CodeConflict, notEligibleMessage)
		}

		profile, err := s.profiles.CreateDefault(ctx, tx, actorID, profileName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create default profile")
		}

		now := time.Now().UTC()
		locked.UserID = &actorID
		locked.ProfileID = &profile.ID
		locked.Status = enums.CardStatusActive
		locked.ActivatedAt = &now
		if !locked.CheckStateInvariant() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "card state invariant violated")
		}
		if err := s.repo.WithTx(tx).Save(ctx, locked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist activation")
		}

		activatedID = locked.ID
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCardActivated,
			AggregateType: enums.AggregateCard,
			AggregateID:   locked.ID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: enums.SystemRoleUser.String()},
			Data: map[string]any{
				"code":       locked.Code,
				"profile_id": profile.ID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	activated, err := s.repo.FindByIDWithRelations(ctx, activatedID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload card")
	}
	return FromModel(activated), nil
}

func (s *service) Deactivate(ctx context.Context, actorID, cardID uint64) error {
	card, err := s.repo.FindByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card")
	}
	if card.UserID == nil || *card.UserID != actorID {
		// Ownership failures read as absence, matching every other
		// owned-resource lookup.
		return pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, cardID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock card")
		}
		if locked.UserID == nil || *locked.UserID != actorID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}

		if locked.ProfileID != nil {
			if err := s.profiles.SoftDeleteTx(ctx, tx, *locked.ProfileID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete linked profile")
			}
		}

		if err := tx.Model(&models.Card{}).
			Where("id = ?", cardID).
			Updates(map[string]any{
				"status":       enums.CardStatusInactive,
				"user_id":      nil,
				"profile_id":   nil,
				"activated_at": nil,
			}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset card")
		}

		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCardDeactivated,
			AggregateType: enums.AggregateCard,
			AggregateID:   cardID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: enums.SystemRoleUser.String()},
			Data:          map[string]any{"code": locked.Code},
		})
	})
}

func (s *service) GetUserCards(ctx context.Context, actorID uint64) ([]CardDTO, error) {
	rows, err := s.repo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cards")
	}
	return FromModels(rows), nil
}

func (s *service) GetOwnedCard(ctx context.Context, actorID, cardID uint64) (*CardDTO, error) {
	card, err := s.repo.FindByIDWithRelations(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card")
	}
	if card.UserID == nil || *card.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
	}
	return FromModel(card), nil
}

func (s *service) AdminList(ctx context.Context, filters ListFilters) (*ListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 25
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cards")
	}
	return &ListResult{
		Cards:  FromModels(rows),
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

func (s *service) AdminCreate(ctx context.Context, req AdminCreateRequest) ([]CardDTO, error) {
	count := req.Count
	if count <= 0 {
		count = defaultBatchCount
	}
	if count > maxBatchCount {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("count must be at most %d", maxBatchCount))
	}

	if req.Code != nil && count > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code cannot be combined with count")
	}

	rows := make([]models.Card, 0, count)
	for i := 0; i < count; i++ {
		var code string
		if req.Code != nil {
			code = strings.ToUpper(strings.TrimSpace(*req.Code))
			if !ValidCode(code) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "code must match XXXX-XXXX using 0-9A-Z")
			}
			exists, err := s.repo.CodeExists(ctx, code)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check code")
			}
			if exists {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "code already exists")
			}
		} else {
			generated, err := NewUniqueCode(ctx, s.repo)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
			}
			code = generated
		}
		rows = append(rows, models.Card{
			Code:       code,
			Status:     enums.CardStatusInactive,
			CardTypeID: req.CardTypeID,
		})
	}

	created, err := s.repo.CreateBatch(ctx, rows)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "cards_code_unique") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cards")
	}
	return FromModels(created), nil
}

func (s *service) AdminGet(ctx context.Context, id uint64) (*CardDTO, error) {
	card, err := s.repo.FindByIDWithRelations(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card")
	}
	return FromModel(card), nil
}

func (s *service) AdminUpdate(ctx context.Context, id uint64, req AdminUpdateRequest) (*CardDTO, error) {
	card, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card")
	}

	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid card status")
		}
		card.Status = *req.Status
	}
	if req.CardTypeID != nil {
		card.CardTypeID = req.CardTypeID
	}

	if !card.CheckStateInvariant() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status change would violate the card state invariant")
	}

	if err := s.repo.Save(ctx, card); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist card")
	}
	return s.AdminGet(ctx, id)
}

func (s *service) AdminDelete(ctx context.Context, id uint64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete card")
	}
	return nil
}

func (s *service) AdminAssign(ctx context.Context, id uint64, req AssignRequest) (*CardDTO, error) {
	card, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card")
	}
	if card.IsAssigned() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "card already assigned")
	}

	if s.users != nil {
		if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock card")
		}
		if locked.IsAssigned() {
			return pkgerrors.New(pkgerrors.CodeConflict, "card already assigned")
		}
		return tx.Model(&models.Card{}).
			Where("id = ?", id).
			UpdateColumn("user_id", req.UserID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.AdminGet(ctx, id)
}

func (s *service) AdminActivate(ctx context.Context, id uint64) (*CardDTO, error) {
	card, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card")
	}
	if card.IsActive() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "card already active")
	}
	if !card.IsAssigned() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "card has no assigned user")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock card")
		}
		if locked.IsActive() {
			return pkgerrors.New(pkgerrors.CodeConflict, "card already active")
		}
		if locked.UserID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "card has no assigned user")
		}

		if locked.ProfileID == nil {
			profile, err := s.profiles.CreateDefault(ctx, tx, *locked.UserID, "Profile - "+locked.Code)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create default profile")
			}
			locked.ProfileID = &profile.ID
		}

		now := time.Now().UTC()
		locked.Status = enums.CardStatusActive
		locked.ActivatedAt = &now
		if !locked.CheckStateInvariant() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "card state invariant violated")
		}
		if err := s.repo.WithTx(tx).Save(ctx, locked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist activation")
		}

		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCardActivated,
			AggregateType: enums.AggregateCard,
			AggregateID:   locked.ID,
			Actor:         &outbox.ActorRef{UserID: *locked.UserID, Role: enums.SystemRoleAdmin.String()},
			Data: map[string]any{
				"code":       locked.Code,
				"profile_id": locked.ProfileID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.AdminGet(ctx, id)
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if err := s.events.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue outbox event")
	}
	return nil
}
