package profiles

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kodacard/kodacard-backend/internal/cards"
	dbpkg "github.com/kodacard/kodacard-backend/pkg/db"
	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
	"github.com/kodacard/kodacard-backend/pkg/outbox"
	"github.com/kodacard/kodacard-backend/pkg/types"
)

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(_ context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	f.events = append(f.events, event)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Profile{}, &models.Card{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB, *fakeEmitter) {
	t.Helper()
	conn := newTestDB(t)
	emitter := &fakeEmitter{}
	svc, err := NewService(ServiceParams{
		DB:     dbpkg.NewFromConn(conn),
		Repo:   NewRepository(conn),
		Cards:  cards.NewRepository(conn),
		Events: emitter,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, conn, emitter
}

func seedCard(t *testing.T, conn *gorm.DB, card *models.Card) *models.Card {
	t.Helper()
	if card.Status == "" {
		card.Status = enums.CardStatusInactive
	}
	if err := conn.Create(card).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return card
}

func TestCreate_AppliesDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, 1, CreateRequest{Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Type != enums.ProfileTypePersonal {
		t.Fatalf("expected personal type, got %s", dto.Type)
	}
	if !dto.Settings.IsPublic || dto.Settings.IsPrimary {
		t.Fatalf("unexpected visibility defaults: %+v", dto.Settings)
	}
	if dto.Settings.CustomURL != "jane-doe" {
		t.Fatalf("expected slugged custom url, got %q", dto.Settings.CustomURL)
	}
	if dto.Settings.Theme != "default" || dto.Settings.Language != "hu_HU" {
		t.Fatalf("unexpected settings defaults: %+v", dto.Settings)
	}
	if dto.Contacts == nil || dto.SocialProfiles == nil {
		t.Fatal("expected empty contact and social lists, got nil")
	}
	if dto.Card != nil {
		t.Fatal("fresh profile should not carry a card")
	}
}

func TestCreate_EnforcesUnlinkedCap(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < maxUnlinkedProfiles; i++ {
		if _, err := svc.Create(ctx, 1, CreateRequest{Name: fmt.Sprintf("Profile %d", i)}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	_, err := svc.Create(ctx, 1, CreateRequest{Name: "One Too Many"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict past the cap, got %v", err)
	}

	// The cap is per user, and only counts profiles without a card.
	if _, err := svc.Create(ctx, 2, CreateRequest{Name: "Other User"}); err != nil {
		t.Fatalf("Create for second user: %v", err)
	}
}

func TestCreate_CapIgnoresLinkedProfiles(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < maxUnlinkedProfiles; i++ {
		dto, err := svc.Create(ctx, 1, CreateRequest{Name: fmt.Sprintf("Profile %d", i)})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if i == 0 {
			userID := uint64(1)
			seedCard(t, conn, &models.Card{
				Code:      "AAAA-0001",
				Status:    enums.CardStatusActive,
				UserID:    &userID,
				ProfileID: &dto.ID,
			})
		}
	}

	// One profile is linked, so a sixth still fits under the cap.
	if _, err := svc.Create(ctx, 1, CreateRequest{Name: "Sixth"}); err != nil {
		t.Fatalf("Create with linked profile: %v", err)
	}
}

func TestLinkToCard(t *testing.T) {
	svc, conn, emitter := newTestService(t)
	ctx := context.Background()

	seedCard(t, conn, &models.Card{Code: "ABCD-1234"})
	profile, err := svc.Create(ctx, 7, CreateRequest{Name: "Link Me"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resp, err := svc.LinkToCard(ctx, 7, profile.ID, LinkRequest{Code: "abcd-1234"})
	if err != nil {
		t.Fatalf("LinkToCard: %v", err)
	}
	if resp.Card == nil || resp.Card.Code != "ABCD-1234" {
		t.Fatalf("unexpected card summary: %+v", resp.Card)
	}
	if resp.Card.Status != enums.CardStatusActive || resp.Card.ActivatedAt == nil {
		t.Fatalf("expected active card with activation time, got %+v", resp.Card)
	}

	var card models.Card
	if err := conn.First(&card, "code = ?", "ABCD-1234").Error; err != nil {
		t.Fatalf("reload card: %v", err)
	}
	if card.UserID == nil || *card.UserID != 7 {
		t.Fatalf("expected card owner 7, got %v", card.UserID)
	}
	if card.ProfileID == nil || *card.ProfileID != profile.ID {
		t.Fatalf("expected card linked to profile %d, got %v", profile.ID, card.ProfileID)
	}

	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.EventType != enums.EventProfileLinked || event.AggregateType != enums.AggregateProfile {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.AggregateID != profile.ID {
		t.Fatalf("expected aggregate %d, got %d", profile.ID, event.AggregateID)
	}
}

func TestLinkToCard_CardAlreadyInUse(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	otherProfile := uint64(99)
	seedCard(t, conn, &models.Card{Code: "USED-0001", ProfileID: &otherProfile})
	profile, err := svc.Create(ctx, 7, CreateRequest{Name: "Loser"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.LinkToCard(ctx, 7, profile.ID, LinkRequest{Code: "USED-0001"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLinkToCard_ProfileAlreadyLinked(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Create(ctx, 7, CreateRequest{Name: "Taken"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Even an inactive card referencing the profile blocks another linkage.
	seedCard(t, conn, &models.Card{Code: "OLDC-0001", ProfileID: &profile.ID})
	seedCard(t, conn, &models.Card{Code: "NEWC-0001"})

	_, err = svc.LinkToCard(ctx, 7, profile.ID, LinkRequest{Code: "NEWC-0001"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLinkToCard_MissingPieces(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	seedCard(t, conn, &models.Card{Code: "FREE-0001"})
	profile, err := svc.Create(ctx, 7, CreateRequest{Name: "Mine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.LinkToCard(ctx, 7, profile.ID, LinkRequest{Code: "NOPE-0000"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown code, got %v", err)
	}

	// Someone else's profile reads as absent.
	_, err = svc.LinkToCard(ctx, 8, profile.ID, LinkRequest{Code: "FREE-0001"})
	coded = pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign profile, got %v", err)
	}
}

func TestUpdate_CustomURLAvailability(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, CreateRequest{Name: "First One"}); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := svc.Create(ctx, 1, CreateRequest{Name: "Second One"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	settings := second.Settings
	settings.CustomURL = "First One"
	_, err = svc.Update(ctx, 1, second.ID, UpdateRequest{Settings: &settings})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on taken url, got %v", err)
	}

	settings.CustomURL = "Fresh URL!"
	updated, err := svc.Update(ctx, 1, second.ID, UpdateRequest{Settings: &settings})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Settings.CustomURL != "fresh-url" {
		t.Fatalf("expected slugged url, got %q", updated.Settings.CustomURL)
	}

	// Re-submitting the profile's own url is not a conflict.
	if _, err := svc.Update(ctx, 1, second.ID, UpdateRequest{Settings: &updated.Settings}); err != nil {
		t.Fatalf("Update with own url: %v", err)
	}
}

func TestUpdate_AppliesPartialFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Create(ctx, 1, CreateRequest{Name: "Partial"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	firstName := "Ada"
	job := "Engineer"
	contacts := types.ContactList{{Type: "email", Value: "ada@example.com"}}
	updated, err := svc.Update(ctx, 1, profile.ID, UpdateRequest{
		FirstName: &firstName,
		JobTitle:  &job,
		Contacts:  &contacts,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FirstName != "Ada" || updated.JobTitle == nil || *updated.JobTitle != "Engineer" {
		t.Fatalf("unexpected meta after update: %+v", updated)
	}
	if len(updated.Contacts) != 1 || updated.Contacts[0].Value != "ada@example.com" {
		t.Fatalf("unexpected contacts: %+v", updated.Contacts)
	}
	if updated.Name != "Partial" {
		t.Fatalf("untouched field changed: %q", updated.Name)
	}
}

func TestDelete_RefusedWhileLinked(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Create(ctx, 1, CreateRequest{Name: "Linked"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	seedCard(t, conn, &models.Card{Code: "LOCK-0001", ProfileID: &profile.ID})

	err = svc.Delete(ctx, 1, profile.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict while linked, got %v", err)
	}

	if err := conn.Delete(&models.Card{}, "code = ?", "LOCK-0001").Error; err != nil {
		t.Fatalf("unlink card: %v", err)
	}
	if err := svc.Delete(ctx, 1, profile.ID); err != nil {
		t.Fatalf("Delete after unlink: %v", err)
	}

	_, err = svc.Get(ctx, 1, profile.ID)
	coded = pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestPublicGet(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Create(ctx, 1, CreateRequest{Name: "Visible"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.PublicGet(ctx, profile.ID)
	if err != nil {
		t.Fatalf("PublicGet: %v", err)
	}
	if first.Visits != 1 {
		t.Fatalf("expected 1 visit, got %d", first.Visits)
	}
	second, err := svc.PublicGet(ctx, profile.ID)
	if err != nil {
		t.Fatalf("PublicGet again: %v", err)
	}
	if second.Visits != 2 {
		t.Fatalf("expected 2 visits, got %d", second.Visits)
	}

	if err := conn.Model(&models.Profile{}).Where("id = ?", profile.ID).
		Update("is_public", false).Error; err != nil {
		t.Fatalf("hide profile: %v", err)
	}
	_, err = svc.PublicGet(ctx, profile.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected hidden profile to read as absent, got %v", err)
	}
}

func TestCheckURL(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Create(ctx, 1, CreateRequest{Name: "Url Holder"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resp, err := svc.CheckURL(ctx, CheckURLRequest{URL: "url holder"})
	if err != nil {
		t.Fatalf("CheckURL: %v", err)
	}
	if resp.Available {
		t.Fatalf("expected %q to be taken", resp.URL)
	}

	// The holder itself is excluded from the check.
	resp, err = svc.CheckURL(ctx, CheckURLRequest{URL: "url holder", ProfileID: &profile.ID})
	if err != nil {
		t.Fatalf("CheckURL with exclusion: %v", err)
	}
	if !resp.Available {
		t.Fatal("expected own url to be available")
	}

	resp, err = svc.CheckURL(ctx, CheckURLRequest{URL: "brand new"})
	if err != nil {
		t.Fatalf("CheckURL fresh: %v", err)
	}
	if !resp.Available || resp.URL != "brand-new" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSEO(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Create(ctx, 1, CreateRequest{Name: "Findable"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	seo := types.SEOSettings{MetaTitle: "Findable | Kodacard", NoIndex: false}
	if _, err := svc.Update(ctx, 1, profile.ID, UpdateRequest{SEOSettings: &seo}); err != nil {
		t.Fatalf("Update seo: %v", err)
	}

	resp, err := svc.SEO(ctx, profile.ID)
	if err != nil {
		t.Fatalf("SEO: %v", err)
	}
	if resp.Name != "Findable" || resp.SEOSettings.MetaTitle != "Findable | Kodacard" {
		t.Fatalf("unexpected seo response: %+v", resp)
	}
}

func TestList_IncludesLinkedCard(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	linked, err := svc.Create(ctx, 1, CreateRequest{Name: "With Card"})
	if err != nil {
		t.Fatalf("Create linked: %v", err)
	}
	if _, err := svc.Create(ctx, 1, CreateRequest{Name: "Bare"}); err != nil {
		t.Fatalf("Create bare: %v", err)
	}
	userID := uint64(1)
	seedCard(t, conn, &models.Card{
		Code:      "LIST-0001",
		Status:    enums.CardStatusActive,
		UserID:    &userID,
		ProfileID: &linked.ID,
	})

	rows, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(rows))
	}
	var withCard, bare int
	for _, row := range rows {
		if row.Card != nil {
			withCard++
			if row.Card.Code != "LIST-0001" {
				t.Fatalf("unexpected card on profile: %+v", row.Card)
			}
		} else {
			bare++
		}
	}
	if withCard != 1 || bare != 1 {
		t.Fatalf("expected one linked and one bare profile, got %d/%d", withCard, bare)
	}
}
