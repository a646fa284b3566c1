package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kodacard/kodacard-backend/api/controllers"
	"github.com/kodacard/kodacard-backend/api/middleware"
	"github.com/kodacard/kodacard-backend/internal/activitylog"
	"github.com/kodacard/kodacard-backend/internal/auth"
	"github.com/kodacard/kodacard-backend/internal/cards"
	"github.com/kodacard/kodacard-backend/internal/cardtypes"
	"github.com/kodacard/kodacard-backend/internal/media"
	"github.com/kodacard/kodacard-backend/internal/profiles"
	"github.com/kodacard/kodacard-backend/internal/statistics"
	"github.com/kodacard/kodacard-backend/internal/users"
	"github.com/kodacard/kodacard-backend/pkg/auth/session"
	"github.com/kodacard/kodacard-backend/pkg/config"
	"github.com/kodacard/kodacard-backend/pkg/db"
	"github.com/kodacard/kodacard-backend/pkg/enums"
	"github.com/kodacard/kodacard-backend/pkg/logger"
	"github.com/kodacard/kodacard-backend/pkg/metrics"
	"github.com/kodacard/kodacard-backend/pkg/redis"
	"github.com/kodacard/kodacard-backend/pkg/storage/gcs"
)

// Deps bundles everything the router wires into handlers. Optional
// dependencies (gcs, metrics, recorder) may be nil; their routes degrade
// rather than panic.
type Deps struct {
	Cfg            *config.Config
	Logg           *logger.Logger
	DB             db.Pinger
	Redis          redis.Pinger
	GCS            gcs.Pinger
	SessionManager session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics
	Recorder       *activitylog.Recorder

	AuthService      auth.Service
	CardsService     cards.Service
	ProfilesService  profiles.Service
	CardTypesService cardtypes.Service
	StatsService     statistics.Service
	ActivityService  activitylog.Service
	MediaService     media.Service
	UsersRepo        *users.Repository
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logg),
		middleware.RequestID(d.Logg),
		middleware.Logging(d.Logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Cfg))
		r.Get("/ready", controllers.HealthReady(d.Cfg, d.Logg, d.DB, d.Redis, d.GCS))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/profiles/{profileId}", controllers.PublicProfile(d.ProfilesService, d.Logg))
		r.Get("/profiles/{profileId}/seo", controllers.PublicProfileSEO(d.ProfilesService, d.Logg))
		r.Post("/profiles/check-url", controllers.PublicCheckURL(d.ProfilesService, d.Logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.AuthService, d.Logg))
		r.Post("/login", controllers.AuthLogin(d.AuthService, d.Logg))
		r.Post("/logout", controllers.AuthLogout(d.AuthService, d.Cfg.JWT, d.Logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, d.Logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.Cfg.JWT, d.SessionManager, d.Logg))
		r.Use(middleware.ActivityLog(d.Recorder))

		r.Get("/auth/permissions", controllers.AuthPermissions(d.AuthService, d.Logg))

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", controllers.ListUserCards(d.CardsService, d.Logg))
			r.Post("/activate", controllers.CardActivate(d.CardsService, d.Logg))
			r.Get("/{cardId}", controllers.GetCard(d.CardsService, d.Logg))
			r.Delete("/{cardId}", controllers.DeactivateCard(d.CardsService, d.Logg))
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", controllers.ListProfiles(d.ProfilesService, d.Logg))
			r.Post("/", controllers.CreateProfile(d.ProfilesService, d.Logg))
			r.Get("/{profileId}", controllers.GetProfile(d.ProfilesService, d.Logg))
			r.Post("/{profileId}", controllers.UpdateProfile(d.ProfilesService, d.Logg))
			r.Post("/{profileId}/link", controllers.LinkProfile(d.ProfilesService, d.Logg))
			r.Delete("/{profileId}", controllers.DeleteProfile(d.ProfilesService, d.Logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Post("/upload", controllers.MediaUpload(d.MediaService, d.Logg))
			r.Delete("/", controllers.MediaDelete(d.MediaService, d.Logg))
		})

		r.Post("/activity/events", controllers.ClientEventIngest(d.ActivityService, d.Logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.Cfg.JWT, d.SessionManager, d.Logg))
		r.Use(middleware.RequireRole(enums.SystemRoleAdmin.String(), d.Logg))
		r.Use(middleware.ActivityLog(d.Recorder))

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", controllers.AdminCardList(d.CardsService, d.Logg))
			r.Post("/", controllers.AdminCardCreate(d.CardsService, d.Logg))
			r.Get("/{cardId}", controllers.AdminCardGet(d.CardsService, d.Logg))
			r.Put("/{cardId}", controllers.AdminCardUpdate(d.CardsService, d.Logg))
			r.Delete("/{cardId}", controllers.AdminCardDelete(d.CardsService, d.Logg))
			r.Post("/{cardId}/assign", controllers.AdminCardAssign(d.CardsService, d.Logg))
			r.Post("/{cardId}/activate", controllers.AdminCardActivate(d.CardsService, d.Logg))
		})

		r.Get("/users", controllers.AdminUserList(d.UsersRepo, d.Logg))

		r.Route("/card-types", func(r chi.Router) {
			r.Get("/", controllers.CardTypeList(d.CardTypesService, d.Logg))
			r.Post("/", controllers.CardTypeCreate(d.CardTypesService, d.Logg))
			r.Get("/{cardTypeId}", controllers.CardTypeGet(d.CardTypesService, d.Logg))
			r.Put("/{cardTypeId}", controllers.CardTypeUpdate(d.CardTypesService, d.Logg))
			r.Delete("/{cardTypeId}", controllers.CardTypeDelete(d.CardTypesService, d.Logg))
		})

		r.Route("/statistics", func(r chi.Router) {
			r.Get("/summary", controllers.AdminStatsSummary(d.StatsService, d.Logg))
			r.Get("/cards-over-time", controllers.AdminStatsCardsOverTime(d.StatsService, d.Logg))
			r.Get("/profile-visits", controllers.AdminStatsProfileVisits(d.StatsService, d.Logg))
			r.Get("/card-type-distribution", controllers.AdminStatsCardTypeDistribution(d.StatsService, d.Logg))
			r.Get("/user-growth", controllers.AdminStatsUserGrowth(d.StatsService, d.Logg))
		})

		r.Get("/activity-logs", controllers.AdminActivityList(d.ActivityService, d.Logg))
	})

	return r
}
