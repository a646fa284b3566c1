package statistics

import (
	"context"
	"fmt"

	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
)

const topProfilesLimit = 10

// Service assembles the admin dashboard aggregates.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
	CardsOverTime(ctx context.Context, req CardsOverTimeRequest) ([]TimeBucket, error)
	ProfileVisits(ctx context.Context) ([]ProfileVisitsEntry, error)
	CardTypeDistribution(ctx context.Context) ([]CardTypeDistributionEntry, error)
	UserGrowth(ctx context.Context) ([]TimeBucket, error)
}

type service struct {
	repo *Repository
}

// NewService constructs the statistics service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("statistics repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	var out Summary

	total, active, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	out.Users = UsersSummary{Total: total, Active: active}

	if out.Cards, err = s.repo.CountCards(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count cards")
	}
	if out.Profiles, err = s.repo.CountProfiles(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count profiles")
	}
	return &out, nil
}

func (s *service) CardsOverTime(ctx context.Context, req CardsOverTimeRequest) ([]TimeBucket, error) {
	period := req.Period
	if period == "" {
		period = "day"
	}
	if _, ok := bucketFormats[period]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period must be one of day, week, month, year")
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is inverted")
	}

	rows, err := s.repo.CardsOverTime(ctx, period, req.From, req.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate cards over time")
	}
	return rows, nil
}

func (s *service) ProfileVisits(ctx context.Context) ([]ProfileVisitsEntry, error) {
	rows, err := s.repo.TopProfilesByVisits(ctx, topProfilesLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rank profile visits")
	}
	return rows, nil
}

func (s *service) CardTypeDistribution(ctx context.Context) ([]CardTypeDistributionEntry, error) {
	rows, err := s.repo.CardTypeDistribution(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate card type distribution")
	}
	return rows, nil
}

func (s *service) UserGrowth(ctx context.Context) ([]TimeBucket, error) {
	rows, err := s.repo.UserGrowth(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate user growth")
	}
	return rows, nil
}
