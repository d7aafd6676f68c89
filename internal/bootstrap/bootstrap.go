package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/yigit/campusnet/internal/app/auth"
	appControllers "github.com/yigit/campusnet/internal/app/controllers"
	"github.com/yigit/campusnet/internal/app/graph"
	appRepos "github.com/yigit/campusnet/internal/app/repositories"
	appRoutes "github.com/yigit/campusnet/internal/app/routes"
	appServices "github.com/yigit/campusnet/internal/app/services"
	"github.com/yigit/campusnet/internal/config"
	"github.com/yigit/campusnet/internal/db"
	appMiddleware "github.com/yigit/campusnet/internal/middleware"
	pkgAuth "github.com/yigit/campusnet/internal/pkg/auth"
	"github.com/yigit/campusnet/internal/pkg/filestorage"
	"github.com/yigit/campusnet/internal/pkg/logger"
	"github.com/yigit/campusnet/internal/pkg/websocket"
	"github.com/yigit/campusnet/internal/seed"
)

// uploadsPath is where stored files are served from
const uploadsPath = "/uploads"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store          db.Store
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	JWTService     *pkgAuth.JWTService
	AuthMiddleware *appMiddleware.AuthMiddleware
	FileStorage    *filestorage.LocalStorage
	Hub            *websocket.Hub
	GraphQL        *graph.Schema
	Controllers    *appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Format: logger.Format(strings.ToLower(cfg.Logging.Format)),
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured store, prepares its collections and
// optionally seeds sample data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (db.Store, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
	defer cancel()

	store, err := db.Open(connectCtx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	if err := store.Ping(connectCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		_ = store.Close(context.Background())
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := appRepos.EnsureCollections(connectCtx, store); err != nil {
		lgr.Error().Err(err).Msg("Failed to prepare collections")
		_ = store.Close(context.Background())
		return nil, fmt.Errorf("failed to prepare collections: %w", err)
	}
	lgr.Info().Msg("Collections are ready.")

	if cfg.Database.Seed {
		repos := appRepos.NewRepositories(store, lgr)
		if err := seed.CreateDefaultData(ctx, repos, lgr); err != nil {
			// Startup continues without sample data
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return store, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, store db.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(store, lgr)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, strings.TrimRight(cfg.Server.BaseURL, "/")+uploadsPath, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "feed-hub").Logger())
	gate := appAuth.NewGate(appAuth.DefaultPolicy(), lgr.With().Str("component", "gate").Logger())
	deps.Services = appServices.NewServices(deps.Repos, gate, deps.FileStorage, deps.Hub, lgr)

	deps.GraphQL, err = graph.NewSchema(deps.Services, lgr.With().Str("component", "graphql").Logger())
	if err != nil {
		return nil, err
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	svc := deps.Services
	deps.Controllers = &appRoutes.Controllers{
		Health:       appControllers.NewHealthController(store),
		Students:     appControllers.NewStudentController(svc.Students),
		Faculty:      appControllers.NewEntityController(svc.Faculty),
		Internships:  appControllers.NewEntityController(svc.Internships),
		Competitions: appControllers.NewEntityController(svc.Competitions),
		Certificates: appControllers.NewEntityController(svc.Certificates),
		Projects:     appControllers.NewEntityController(svc.Projects),
		Feed:         appControllers.NewFeedController(svc.Feed),
		GraphQL:      graph.Handler(deps.GraphQL),
		FeedSocket:   websocket.NewHandler(deps.Hub, appMiddleware.OriginChecker(cfg.Server.CORSOrigins), lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
		appMiddleware.Timeout(cfg.RequestTimeout()),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	router.Static(uploadsPath, cfg.Server.StoragePath)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success", "time": time.Now().UTC()})
	})

	return router
}
