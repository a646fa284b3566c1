package profiles

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
	"github.com/kodacard/kodacard-backend/pkg/types"
)

// maxUnlinkedProfiles caps how many profiles without a card a user may hold.
const maxUnlinkedProfiles = 5

// Service manages profiles and the profile-to-card linkage workflow.
type Service interface {
	List(ctx context.Context, actorID uint64) ([]ProfileDTO, error)
	Create(ctx context.Context, actorID uint64, req CreateRequest) (*ProfileDTO, error)
	Get(ctx context.Context, actorID, profileID uint64) (*ProfileDTO, error)
	Update(ctx context.Context, actorID, profileID uint64, req UpdateRequest) (*ProfileDTO, error)
	LinkToCard(ctx context.Context, actorID, profileID uint64, req LinkRequest) (*LinkResponse, error)
	Delete(ctx context.Context, actorID, profileID uint64) error

	PublicGet(ctx context.Context, profileID uint64) (*ProfileDTO, error)
	CheckURL(ctx context.Context, req CheckURLRequest) (*CheckURLResponse, error)
	SEO(ctx context.Context, profileID uint64) (*SEOResponse, error)
}

type cardStore interface {
	FindByCode(ctx context.Context, code string) (*models.Card, error)
	FindByProfileID(ctx context.Context, profileID uint64) (*models.Card, error)
	FindByProfileIDTx(ctx context.Context, tx *gorm.DB, profileID uint64) (*models.Card, error)
	FindByCodeForUpdateTx(ctx context.Context, tx *gorm.DB, code string) (*models.Card, error)
	SaveTx(ctx context.Context, tx *gorm.DB, card *models.Card) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db     *dbpkg.Client
	repo   *Repository
	cards  cardStore
	events eventEmitter
	logg   *logger.Logger
}

// ServiceParams bundles the profile service dependencies.
type ServiceParams struct {
	DB     *dbpkg.Client
	Repo   *Repository
	Cards  cardStore
	Events eventEmitter
	Logger *logger.Logger
}

// NewService constructs the profile service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	if params.Cards == nil {
		return nil, fmt.Errorf("card store is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		cards:  params.Cards,
		events: params.Events,
		logg:   params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, actorID uint64) ([]ProfileDTO, error) {
	rows, err := s.repo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list profiles")
	}

	out := make([]ProfileDTO, 0, len(rows))
	for i := range rows {
		card, err := s.linkedCard(ctx, rows[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *FromModel(&rows[i], card))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, actorID uint64, req CreateRequest) (*ProfileDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	profileType := enums.ProfileTypePersonal
	if req.Type != nil {
		if !req.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid profile type")
		}
		profileType = *req.Type
	}

	unlinked, err := s.repo.CountUnlinkedByUser(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count profiles")
	}
	if unlinked >= maxUnlinkedProfiles {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("profile limit reached: at most %d profiles without a card", maxUnlinkedProfiles))
	}

	profile := &models.Profile{
		UserID:      actorID,
		Name:        name,
		Type:        profileType,
		Description: req.Description,
		ContactInfo: types.ContactList{},
		SocialLinks: types.SocialList{},
		MetaData:    types.DefaultProfileMeta(Slugify(name)),
		IsPublic:    true,
	}

	created, err := s.repo.Create(ctx, profile)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_profiles_custom_url") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "custom url already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
	}
	return FromModel(created, nil), nil
}

func (s *service) Get(ctx context.Context, actorID, profileID uint64) (*ProfileDTO, error) {
	profile, err := s.findOwned(ctx, profileID, actorID)
	if err != nil {
		return nil, err
	}
	card, err := s.linkedCard(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return FromModel(profile, card), nil
}

func (s *service) Update(ctx context.Context, actorID, profileID uint64, req UpdateRequest) (*ProfileDTO, error) {
	profile, err := s.findOwned(ctx, profileID, actorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		profile.Name = name
	}
	if req.Description != nil {
		profile.Description = req.Description
	}
	if req.Image != nil {
		profile.Image = req.Image
	}
	if req.FirstName != nil {
		profile.MetaData.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.MetaData.LastName = *req.LastName
	}
	if req.JobTitle != nil {
		profile.MetaData.JobTitle = req.JobTitle
	}
	if req.Company != nil {
		profile.MetaData.Company = req.Company
	}
	if req.Contacts != nil {
		profile.ContactInfo = *req.Contacts
	}
	if req.SocialProfiles != nil {
		profile.SocialLinks = *req.SocialProfiles
	}
	if req.Multimedia != nil {
		profile.MetaData.Multimedia = *req.Multimedia
	}
	if req.Settings != nil {
		settings := *req.Settings
		settings.CustomURL = Slugify(settings.CustomURL)
		if settings.CustomURL != profile.MetaData.Settings.CustomURL {
			taken, err := s.repo.CustomURLTaken(ctx, settings.CustomURL, &profile.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check custom url")
			}
			if taken {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "custom url already taken")
			}
		}
		profile.MetaData.Settings = settings
		profile.IsPublic = settings.IsPublic
	}
	if req.SEOSettings != nil {
		profile.MetaData.SEO = *req.SEOSettings
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_profiles_custom_url") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "custom url already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist profile")
	}

	card, err := s.linkedCard(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return FromModel(profile, card), nil
}

func (s *service) LinkToCard(ctx context.Context, actorID, profileID uint64, req LinkRequest) (*LinkResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	profile, err := s.findOwned(ctx, profileID, actorID)
	if err != nil {
		return nil, err
	}

	// Any card referencing the profile blocks another linkage, regardless
	// of its status.
	if _, err := s.cards.FindByProfileID(ctx, profile.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "profile already linked to a card")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check linked card")
	}

	card, err := s.cards.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup card")
	}
	if card.ProfileID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "card already in use")
	}

	var linked *models.Card
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		lockedCard, err := s.cards.FindByCodeForUpdateTx(ctx, tx, code)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock card")
		}
		lockedProfile, err := s.repo.WithTx(tx).FindOwnedForUpdate(ctx, profileID, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock profile")
		}

		// Re-check both sides under the locks: a concurrent linkage loser
		// must see the winner's writes here and bail out.
		if lockedCard.ProfileID != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "card already in use")
		}
		if _, err := s.cards.FindByProfileIDTx(ctx, tx, lockedProfile.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "profile already linked to a card")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check linked card")
		}

		now := time.Now().UTC()
		lockedCard.UserID = &actorID
		lockedCard.ProfileID = &lockedProfile.ID
		lockedCard.Status = enums.CardStatusActive
		lockedCard.ActivatedAt = &now
		if err := s.cards.SaveTx(ctx, tx, lockedCard); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist linkage")
		}

		linked = lockedCard
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProfileLinked,
			AggregateType: enums.AggregateProfile,
			AggregateID:   lockedProfile.ID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: enums.SystemRoleUser.String()},
			Data: map[string]any{
				"card_id": lockedCard.ID,
				"code":    lockedCard.Code,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(profile, linked)
	return &LinkResponse{Profile: dto, Card: dto.Card}, nil
}

func (s *service) Delete(ctx context.Context, actorID, profileID uint64) error {
	profile, err := s.findOwned(ctx, profileID, actorID)
	if err != nil {
		return err
	}

	if _, err := s.cards.FindByProfileID(ctx, profile.ID); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "profile is linked to a card; deactivate the card first")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check linked card")
	}

	if err := s.repo.SoftDelete(ctx, profile.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete profile")
	}
	return nil
}

func (s *service) PublicGet(ctx context.Context, profileID uint64) (*ProfileDTO, error) {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup profile")
	}
	// Hidden profiles read as absent.
	if !profile.IsPublic {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	// The visit counter is best effort; a failed bump never hides a page.
	if err := s.repo.IncrementVisits(ctx, profile.ID); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "profile_id", profile.ID), "visit counter increment failed")
		}
	} else {
		profile.Visits++
	}
	return FromModel(profile, nil), nil
}

func (s *service) CheckURL(ctx context.Context, req CheckURLRequest) (*CheckURLResponse, error) {
	slug := Slugify(req.URL)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "url is required")
	}

	taken, err := s.repo.CustomURLTaken(ctx, slug, req.ProfileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check custom url")
	}
	return &CheckURLResponse{URL: slug, Available: !taken}, nil
}

func (s *service) SEO(ctx context.Context, profileID uint64) (*SEOResponse, error) {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup profile")
	}
	if !profile.IsPublic {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return &SEOResponse{
		Name:        profile.Name,
		Image:       profile.Image,
		SEOSettings: profile.MetaData.SEO,
	}, nil
}

func (s *service) findOwned(ctx context.Context, profileID, actorID uint64) (*models.Profile, error) {
	profile, err := s.repo.FindOwned(ctx, profileID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Ownership failures read as absence, matching every other
			// owned-resource lookup.
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup profile")
	}
	return profile, nil
}

func (s *service) linkedCard(ctx context.Context, profileID uint64) (*models.Card, error) {
	card, err := s.cards.FindByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup linked card")
	}
	return card, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if err := s.events.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue outbox event")
	}
	return nil
}
