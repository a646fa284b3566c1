package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kodacard/kodacard-backend/api/routes"
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
	"github.com/kodacard/kodacard-backend/pkg/logger"
	"github.com/kodacard/kodacard-backend/pkg/metrics"
	"github.com/kodacard/kodacard-backend/pkg/migrate"
	"github.com/kodacard/kodacard-backend/pkg/outbox"
	"github.com/kodacard/kodacard-backend/pkg/redis"
	"github.com/kodacard/kodacard-backend/pkg/storage/gcs"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	var gcsClient *gcs.Client
	if cfg.GCS.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing gcs", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, media uploads disabled")
	}

	conn := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)

	usersRepo := users.NewRepository(conn)
	cardsRepo := cards.NewRepository(conn)
	profilesRepo := profiles.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	cardsService, err := cards.NewService(cards.ServiceParams{
		DB:       dbClient,
		Repo:     cardsRepo,
		Profiles: profilesRepo,
		Users:    usersRepo,
		Events:   outboxService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create card service", err)
		os.Exit(1)
	}

	profilesService, err := profiles.NewService(profiles.ServiceParams{
		DB:     dbClient,
		Repo:   profilesRepo,
		Cards:  cardsRepo,
		Events: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	cardTypesService, err := cardtypes.NewService(cardtypes.ServiceParams{
		Repo:  cardtypes.NewRepository(conn),
		Cards: cardsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create card type service", err)
		os.Exit(1)
	}

	statsService, err := statistics.NewService(statistics.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create statistics service", err)
		os.Exit(1)
	}

	activityRepo := activitylog.NewRepository(conn)
	recorder := activitylog.NewRecorder(activityRepo, logg, cfg.ActivityLog.BufferSize)
	defer recorder.Close()

	activityService, err := activitylog.NewService(activityRepo, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create activity log service", err)
		os.Exit(1)
	}

	var mediaService media.Service
	if gcsClient != nil {
		mediaService, err = media.NewService(gcsClient, cfg.Media)
		if err != nil {
			logg.Error(context.Background(), "failed to create media service", err)
			os.Exit(1)
		}
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	deps := routes.Deps{
		Cfg:            cfg,
		Logg:           logg,
		DB:             dbClient,
		Redis:          redisClient,
		SessionManager: sessionManager,
		HTTPMetrics:    httpMetrics,
		Recorder:       recorder,

		AuthService:      authService,
		CardsService:     cardsService,
		ProfilesService:  profilesService,
		CardTypesService: cardTypesService,
		StatsService:     statsService,
		ActivityService:  activityService,
		MediaService:     mediaService,
		UsersRepo:        usersRepo,
	}
	if gcsClient != nil {
		deps.GCS = gcsClient
	}
	handler := routes.NewRouter(deps)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
