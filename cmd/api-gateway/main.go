package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/consulting-sessions-api/api/swagger"
	"github.com/noah-isme/consulting-sessions-api/internal/handler"
	internalmiddleware "github.com/noah-isme/consulting-sessions-api/internal/middleware"
	"github.com/noah-isme/consulting-sessions-api/internal/models"
	"github.com/noah-isme/consulting-sessions-api/internal/repository"
	"github.com/noah-isme/consulting-sessions-api/internal/service"
	"github.com/noah-isme/consulting-sessions-api/pkg/cache"
	"github.com/noah-isme/consulting-sessions-api/pkg/config"
	"github.com/noah-isme/consulting-sessions-api/pkg/database"
	"github.com/noah-isme/consulting-sessions-api/pkg/jobs"
	"github.com/noah-isme/consulting-sessions-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/consulting-sessions-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/consulting-sessions-api/pkg/middleware/requestid"
	"github.com/noah-isme/consulting-sessions-api/pkg/notify"
)

// @title Consulting Sessions API
// @version 1.0.0
// @description Scheduling and enrollment engine for group consulting sessions
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

// stores groups the session store contracts behind whichever driver is configured.
type stores struct {
	sessions interface {
		FindByID(ctx context.Context, id string) (*models.Session, error)
		List(ctx context.Context, rng models.SessionRange, now time.Time) ([]models.Session, error)
		NextEndAfter(ctx context.Context, now time.Time) (*time.Time, error)
		Create(ctx context.Context, session *models.Session) error
		Update(ctx context.Context, id string, patch models.SessionPatch, now time.Time) (*models.Session, error)
		CancelSession(ctx context.Context, id string, now time.Time) (*models.SessionCancellation, error)
		Delete(ctx context.Context, id string) error
		CompleteFinished(ctx context.Context, now time.Time) (int64, error)
	}
	enrollments interface {
		HasActive(ctx context.Context, sessionID, userID string) (bool, error)
		ActiveSessionIDs(ctx context.Context, userID string, sessionIDs []string) (map[string]bool, error)
		ListBySession(ctx context.Context, sessionID string) ([]models.Enrollment, error)
	}
	bookings interface {
		Enroll(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error)
		CancelEnrollment(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	location, err := cfg.Sessions.Location()
	if err != nil {
		logr.Sugar().Fatalw("invalid sessions timezone", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Pinger{}

	var st stores
	switch cfg.Database.Driver {
	case config.StoreDriverMemory:
		memory := repository.NewMemoryStore()
		st = stores{sessions: memory, enrollments: memory, bookings: memory}
		logr.Sugar().Warnw("using in-memory session store; data is lost on restart")
	case config.StoreDriverPostgres, "":
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect postgres", "error", err)
		}
		defer db.Close()
		st = postgresStores(db)
		checks["database"] = handler.PingFunc(db.PingContext)
	default:
		logr.Sugar().Fatalw("unknown store driver", "driver", cfg.Database.Driver)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient)
	if redisClient != nil {
		checks["redis"] = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.PastTTL, logr, cfg.Cache.Enabled && redisClient != nil)

	publisher, err := newPublisher(cfg, redisClient, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init notification publisher", "error", err)
	}
	notifications := service.NewNotificationService(publisher, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	}, metrics, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	validate := validator.New()
	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	})
	bookingSvc := service.NewBookingService(st.bookings, notifications, metrics, logr)
	querySvc := service.NewSessionQueryService(st.sessions, st.enrollments, cacheSvc, location, logr)
	adminSvc := service.NewSessionAdminService(st.sessions, st.enrollments, cacheSvc, notifications, metrics, validate, location, logr)

	sweep := service.NewSweepService(st.sessions, metrics, cfg.Sessions.SweepInterval, logr)
	if sweep.Enabled() {
		go sweep.Run(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	sessionHandler := handler.NewSessionHandler(querySvc, bookingSvc)
	adminHandler := handler.NewAdminSessionHandler(adminSvc)

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokens))
	{
		sessions := api.Group("/sessions")
		sessions.GET("", sessionHandler.List)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.POST("/:id/enroll", sessionHandler.Enroll)
		sessions.DELETE("/:id/enroll", sessionHandler.Cancel)

		admin := api.Group("/admin/sessions")
		admin.Use(internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
		admin.POST("", adminHandler.Create)
		admin.PATCH("/:id", adminHandler.Update)
		admin.POST("/:id/cancel", adminHandler.Cancel)
		admin.DELETE("/:id", adminHandler.Delete)
		admin.GET("/:id/roster", adminHandler.Roster)
		admin.GET("/:id/roster/export", adminHandler.ExportRoster)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func postgresStores(db *sqlx.DB) stores {
	return stores{
		sessions:    repository.NewSessionRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		bookings:    repository.NewBookingRepository(db),
	}
}

func newPublisher(cfg *config.Config, redisClient *redis.Client, logr *zap.Logger) (notify.Publisher, error) {
	switch cfg.Notifications.Driver {
	case config.NotifyDriverRedis:
		if redisClient == nil {
			return nil, errors.New("redis notification driver requires ENABLE_REDIS")
		}
		return notify.NewRedisStreamPublisher(redisClient, cfg.Notifications.RedisStream), nil
	case config.NotifyDriverKafka:
		return notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	case config.NotifyDriverLog, "":
		return notify.NewLogPublisher(logr), nil
	default:
		return nil, fmt.Errorf("unknown notification driver %q", cfg.Notifications.Driver)
	}
}
