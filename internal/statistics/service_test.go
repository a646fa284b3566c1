package statistics

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
)

// The to_char based series (CardsOverTime, UserGrowth) are Postgres-only and
// are not covered here; everything below runs against sqlite.

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Profile{}, &models.Card{}, &models.CardType{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, conn
}

func TestSummary(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	users := []models.User{
		{Email: "a@example.com", PasswordHash: "x", FirstName: "A", LastName: "A", IsActive: true},
		{Email: "b@example.com", PasswordHash: "x", FirstName: "B", LastName: "B", IsActive: false},
	}
	if err := conn.Create(&users).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}

	profiles := []models.Profile{
		{UserID: users[0].ID, Name: "Public", IsPublic: true, Visits: 12},
		{UserID: users[0].ID, Name: "Hidden", IsPublic: false, Visits: 3},
	}
	if err := conn.Create(&profiles).Error; err != nil {
		t.Fatalf("seed profiles: %v", err)
	}

	owner := users[0].ID
	cards := []models.Card{
		{Code: "SUMM-0001", Status: enums.CardStatusActive, UserID: &owner, ProfileID: &profiles[0].ID},
		{Code: "SUMM-0002", Status: enums.CardStatusInactive},
		{Code: "SUMM-0003", Status: enums.CardStatusExpired},
	}
	if err := conn.Create(&cards).Error; err != nil {
		t.Fatalf("seed cards: %v", err)
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Users.Total != 2 || summary.Users.Active != 1 {
		t.Fatalf("unexpected users summary: %+v", summary.Users)
	}
	if summary.Cards.Total != 3 || summary.Cards.Active != 1 ||
		summary.Cards.Inactive != 1 || summary.Cards.Expired != 1 || summary.Cards.Assigned != 1 {
		t.Fatalf("unexpected cards summary: %+v", summary.Cards)
	}
	if summary.Profiles.Total != 2 || summary.Profiles.Public != 1 ||
		summary.Profiles.Linked != 1 || summary.Profiles.Visits != 15 {
		t.Fatalf("unexpected profiles summary: %+v", summary.Profiles)
	}
}

func TestSummary_EmptyDatabase(t *testing.T) {
	svc, _ := newTestService(t)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Users.Total != 0 || summary.Cards.Total != 0 || summary.Profiles.Visits != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
}

func TestProfileVisits_TopTen(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	rows := make([]models.Profile, 0, 12)
	for i := 0; i < 12; i++ {
		rows = append(rows, models.Profile{
			UserID: 1,
			Name:   "P",
			Visits: i * 10,
		})
	}
	if err := conn.Create(&rows).Error; err != nil {
		t.Fatalf("seed profiles: %v", err)
	}

	ranked, err := svc.ProfileVisits(ctx)
	if err != nil {
		t.Fatalf("ProfileVisits: %v", err)
	}
	if len(ranked) != topProfilesLimit {
		t.Fatalf("expected %d entries, got %d", topProfilesLimit, len(ranked))
	}
	if ranked[0].Visits != 110 {
		t.Fatalf("expected most visited first, got %+v", ranked[0])
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Visits > ranked[i-1].Visits {
			t.Fatalf("ranking out of order at %d: %+v", i, ranked)
		}
	}
}

func TestCardTypeDistribution(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	cardType := models.CardType{Name: "Standard"}
	if err := conn.Create(&cardType).Error; err != nil {
		t.Fatalf("seed card type: %v", err)
	}
	cards := []models.Card{
		{Code: "DIST-0001", Status: enums.CardStatusInactive, CardTypeID: &cardType.ID},
		{Code: "DIST-0002", Status: enums.CardStatusInactive, CardTypeID: &cardType.ID},
		{Code: "DIST-0003", Status: enums.CardStatusInactive},
	}
	if err := conn.Create(&cards).Error; err != nil {
		t.Fatalf("seed cards: %v", err)
	}

	dist, err := svc.CardTypeDistribution(ctx)
	if err != nil {
		t.Fatalf("CardTypeDistribution: %v", err)
	}
	if len(dist) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", dist)
	}
	if dist[0].Name != "Standard" || dist[0].Count != 2 {
		t.Fatalf("unexpected first bucket: %+v", dist[0])
	}
	if dist[1].CardTypeID != nil || dist[1].Name != "untyped" || dist[1].Count != 1 {
		t.Fatalf("unexpected untyped bucket: %+v", dist[1])
	}
}

func TestCardsOverTime_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CardsOverTime(ctx, CardsOverTimeRequest{Period: "hourly"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad period, got %v", err)
	}
}
