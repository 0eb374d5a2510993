package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/hackathon/internal/app/controllers"
	appMigrations "github.com/yigit/hackathon/internal/app/migrations"
	appRepos "github.com/yigit/hackathon/internal/app/repositories"
	appRoutes "github.com/yigit/hackathon/internal/app/routes"
	appServices "github.com/yigit/hackathon/internal/app/services"
	"github.com/yigit/hackathon/internal/config"
	"github.com/yigit/hackathon/internal/db"
	appMiddleware "github.com/yigit/hackathon/internal/middleware"
	pkgAuth "github.com/yigit/hackathon/internal/pkg/auth"
	"github.com/yigit/hackathon/internal/pkg/cache"
	"github.com/yigit/hackathon/internal/pkg/email"
	"github.com/yigit/hackathon/internal/pkg/filestorage"
	"github.com/yigit/hackathon/internal/pkg/helpers"
	"github.com/yigit/hackathon/internal/pkg/logger"
	"github.com/yigit/hackathon/internal/pkg/ratelimit"
	"github.com/yigit/hackathon/internal/seed"
	schema "github.com/yigit/hackathon/migrations"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                    *appRepos.Repositories
	JWTService               *pkgAuth.JWTService
	Notifier                 *appServices.NotificationService
	AuthService              *appServices.AuthService
	ApplicationService       *appServices.ApplicationService
	SchoolApplicationService *appServices.SchoolApplicationService
	EmailTemplateService     *appServices.EmailTemplateService
	UploadService            *appServices.UploadService
	Controllers              appRoutes.Controllers
	AuthMiddleware           *appMiddleware.AuthMiddleware
	SubmissionLimiter        ratelimit.Limiter
	FileStorage              filestorage.FileStorage
	Redis                    *redis.Client
	Logger                   zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	if err := RunMigrations(ctx, cfg, dbPool, lgr); err != nil {
		dbPool.Close()
		return nil, err
	}
	return dbPool, nil
}

// RunMigrations applies the embedded schema, or the directory configured in database.migrations_dir
func RunMigrations(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)

	var err error
	if dir := cfg.Database.MigrationsDir; dir != "" {
		lgr.Info().Str("path", dir).Msg("Using migrations directory")
		err = migrator.MigrateFromDirectory(ctx, dir)
	} else {
		err = migrator.MigrateFS(ctx, schema.FS)
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// SetupRedis connects to Redis when it is enabled. A nil client means Redis is off.
func SetupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, using in-process rate limiting and no accepted teams cache")
		return nil, nil
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		return nil, err
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return client, nil
}

// SetupFileStorage builds the configured ID document storage
func SetupFileStorage(cfg *config.Config, lgr zerolog.Logger) (filestorage.FileStorage, error) {
	if strings.ToLower(cfg.Storage.Driver) == "s3" {
		storage, err := filestorage.NewS3Storage(filestorage.S3Config{
			Endpoint:  cfg.Storage.S3.Endpoint,
			Region:    cfg.Storage.S3.Region,
			Bucket:    cfg.Storage.S3.Bucket,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			UseSSL:    cfg.Storage.S3.UseSSL,
			PublicURL: cfg.Storage.S3.PublicURL,
		})
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to initialize S3 storage")
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		lgr.Info().Str("bucket", cfg.Storage.S3.Bucket).Msg("Using S3 file storage")
		return storage, nil
	}

	// Empty base URL: stored files are referenced as "uploads/<key>", served by the static route
	storage, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath, "")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	return storage, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
// redisClient may be nil.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, redisClient *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Redis: redisClient}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = SetupFileStorage(cfg, lgr)
	if err != nil {
		return nil, err
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	smtpConfig := email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}
	sender := email.NewSender(smtpConfig, lgr.With().Str("component", "email").Logger())

	deps.Notifier = appServices.NewNotificationService(
		deps.Repos.EmailTemplateRepository,
		deps.Repos.EmailLogRepository,
		sender,
		smtpConfig.From(),
		cfg.Notifications.Async,
		cfg.Notifications.MaxConcurrent,
		lgr.With().Str("component", "notifications").Logger(),
	)

	var acceptedTeams appServices.AcceptedTeamsCache
	if redisClient != nil {
		acceptedTeams = cache.NewAcceptedTeamsCache(
			redisClient,
			helpers.ParseDuration(cfg.Cache.AcceptedTeamsTTL, 5*time.Minute),
			lgr.With().Str("component", "cache").Logger(),
		)
	}

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.UploadService = appServices.NewUploadService(deps.FileStorage, cfg.Storage.MaxFileSize, cfg.Storage.AllowedTypes, lgr)
	deps.ApplicationService = appServices.NewApplicationService(
		deps.Repos.ApplicationRepository,
		deps.Repos.EmailLogRepository,
		deps.Notifier,
		acceptedTeams,
		deps.UploadService,
		lgr,
	)
	deps.SchoolApplicationService = appServices.NewSchoolApplicationService(
		deps.Repos.SchoolApplicationRepository,
		deps.Repos.EmailLogRepository,
		deps.Notifier,
		lgr,
	)
	deps.EmailTemplateService = appServices.NewEmailTemplateService(deps.Repos.EmailTemplateRepository, lgr)

	if err := seed.CreateDefaultAdmin(ctx, deps.AuthService, seed.AdminAccount{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
	}, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default administrator, proceeding anyway...")
	}

	rule := ratelimit.Rule{
		Limit:  cfg.RateLimit.Submissions,
		Window: helpers.ParseDuration(cfg.RateLimit.Window, time.Hour),
	}
	if redisClient != nil {
		deps.SubmissionLimiter = ratelimit.NewRedisLimiter(redisClient, rule, "hackathon:ratelimit", lgr)
	} else {
		deps.SubmissionLimiter = ratelimit.NewMemoryLimiter(rule)
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:              appControllers.NewAuthController(deps.AuthService, lgr),
		Application:       appControllers.NewApplicationController(deps.ApplicationService, lgr),
		SchoolApplication: appControllers.NewSchoolApplicationController(deps.SchoolApplicationService, lgr),
		EmailTemplate:     appControllers.NewEmailTemplateController(deps.EmailTemplateService, lgr),
		Upload:            appControllers.NewUploadController(deps.UploadService, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.RegisterJSONTagNames()

	router := gin.New()
	router.Use(appMiddleware.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.SubmissionLimiter)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
