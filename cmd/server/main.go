package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/cache"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/logging"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/memory"
	mongorepo "alcyxob/workout-tracker/internal/repository/mongo"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
)

// repositories groups the store implementations picked by database.driver.
type repositories struct {
	users       repository.UserRepository
	trainings   repository.TrainingRepository
	templates   repository.TemplateRepository
	exercises   repository.ExerciseRepository
	groups      repository.MuscleGroupRepository
	bodyMetrics repository.BodyMetricRepository
	follows     repository.FollowRepository
	tx          repository.Transactor
}

// @title Workout Tracker API
// @version 1.0
// @description Training log, templates, follows and progress analytics.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.Log.File,
		LogToStdout:      cfg.Log.Stdout,
		LogLevel:         cfg.Log.Level,
		LogFormatJSON:    cfg.Log.JSON,
		Environment:      cfg.Log.Environment,
		SentryEnabled:    cfg.Log.SentryEnabled,
		SentryDSN:        cfg.Log.SentryDSN,
		SentryServerName: "workout-tracker",
	})
	log.Warnf("---->> running in [%s] environment", cfg.Log.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Storage ---
	repos, dbClient := setupRepositories(ctx, cfg.Database)

	var fileStorage storage.FileStorage
	if cfg.S3.Enabled {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("init s3 storage: %s", err)
		}
	} else {
		log.Infoln("s3 disabled, exports are unavailable")
	}

	// --- Metrics ---
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager(cfg.Metrics.Namespace, cfg.Metrics.Subsystem, promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// --- Rate limiting ---
	var (
		rdb         *redis.Client
		rateLimiter api.RequestRateLimiter
	)
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       0, // use default DB
		})
		rdb.AddHook(redisotel.NewTracingHook())
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		}
		rateLimiter = redis_rate.NewLimiter(rdb)
	} else {
		log.Infoln("redis not configured, shared trainings are not rate limited")
	}

	// --- Services ---
	lookupCache := cache.NewMuscleGroupCache(cfg.Analytics.LookupCacheMB, cfg.Analytics.LookupCacheTTL, metricsManager)
	followService := service.NewFollowService(repos.follows, repos.users)
	analyticsService, err := service.NewAnalyticsService(
		repos.trainings, repos.bodyMetrics, repos.exercises,
		lookupCache, followService, metricsManager, cfg.Analytics.DefaultFormula,
	)
	if err != nil {
		log.Fatalf("init analytics: %s", err)
	}

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	api.SetupRoutes(router, api.RouteDeps{
		JWTSecret:        cfg.JWT.Secret,
		TrainingService:  service.NewTrainingService(repos.trainings, repos.templates, repos.exercises, followService, metricsManager),
		TemplateService:  service.NewTemplateService(repos.templates),
		ExerciseService:  service.NewExerciseService(repos.exercises, repos.groups, lookupCache),
		ProfileService:   service.NewProfileService(repos.users, repos.bodyMetrics, repos.tx, followService),
		FollowService:    followService,
		AnalyticsService: analyticsService,
		ExportService:    service.NewExportService(repos.trainings, fileStorage, cfg.S3.ExportURLExpiry),
		Metrics:          metricsManager,
		Gatherer:         promRegistry,
		RateLimiter:      rateLimiter,
		ShareRatePerMin:  cfg.Redis.ShareRatePerMin,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()
	metricsManager.GaugeLifeSignal.Set(1)

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)
	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)
	cancel()
	metricsManager.GaugeLifeSignal.Set(0)

	if err := gracefulShutdown(cfg.Server.ShutdownTimeout, server, dbClient, rdb); err != nil {
		log.Errorf("shutdown: %s", err)
	}
	log.Warnln("server shut down")
}

func setupRepositories(ctx context.Context, cfg config.DatabaseConfig) (repositories, *mongo.Client) {
	if cfg.Driver == config.DriverMemory {
		log.Warnln("using in-memory repositories, data is lost on restart")
		return repositories{
			users:       memory.NewUserRepository(),
			trainings:   memory.NewTrainingRepository(),
			templates:   memory.NewTemplateRepository(),
			exercises:   memory.NewExerciseRepository(),
			groups:      memory.NewMuscleGroupRepository(),
			bodyMetrics: memory.NewBodyMetricRepository(),
			follows:     memory.NewFollowRepository(),
			tx:          memory.NewTransactor(),
		}, nil
	}

	client, err := mongorepo.ConnectDB(cfg.URI)
	if err != nil {
		log.Fatalf("connect to mongodb: %s", err)
	}
	db := client.Database(cfg.Name)
	log.Debugf("connected to mongodb, database [%s]", cfg.Name)

	go func() {
		indexCtx, indexCancel := context.WithTimeout(ctx, time.Minute)
		defer indexCancel()
		mongorepo.EnsureIndexes(indexCtx, db)
	}()

	var tx repository.Transactor = memory.NewTransactor()
	if cfg.Transactions {
		tx = mongorepo.NewMongoTransactor(client)
	}

	return repositories{
		users:       mongorepo.NewMongoUserRepository(db),
		trainings:   mongorepo.NewMongoTrainingRepository(db),
		templates:   mongorepo.NewMongoTemplateRepository(db),
		exercises:   mongorepo.NewMongoExerciseRepository(db),
		groups:      mongorepo.NewMongoMuscleGroupRepository(db),
		bodyMetrics: mongorepo.NewMongoBodyMetricRepository(db),
		follows:     mongorepo.NewMongoFollowRepository(db),
		tx:          tx,
	}, client
}

func gracefulShutdown(timeout time.Duration, server *http.Server, dbClient *mongo.Client, rdb *redis.Client) error {
	ctx, timeoutCancel := context.WithTimeout(context.Background(), timeout)
	defer timeoutCancel()

	var err error
	if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
		err = multierr.Append(err, shutdownErr)
	}
	if rdb != nil {
		err = multierr.Append(err, rdb.Close())
	}
	if dbClient != nil {
		err = multierr.Append(err, mongorepo.DisconnectDB(dbClient))
	}
	if ok := sentry.Flush(2 * time.Second); !ok {
		log.Debugln("sentry flush timed out")
	}
	return err
}
