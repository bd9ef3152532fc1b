package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"grimoire-backend/internal/config"
	infraCache "grimoire-backend/internal/infrastructure/cache"
	"grimoire-backend/internal/infrastructure/database"
	"grimoire-backend/internal/infrastructure/queue"
	"grimoire-backend/internal/infrastructure/storage"
	"grimoire-backend/pkg/cache"
	"grimoire-backend/pkg/jwt"

	bookHandler "grimoire-backend/internal/domains/book/handler"
	bookRepo "grimoire-backend/internal/domains/book/repository"
	bookService "grimoire-backend/internal/domains/book/service"
	"grimoire-backend/internal/domains/user"
	userHandler "grimoire-backend/internal/domains/user/handler"
	userRepo "grimoire-backend/internal/domains/user/repository"
	userService "grimoire-backend/internal/domains/user/service"
)

// =====================================================
// CONTAINER STRUCT
// =====================================================

// Container holds every long-lived dependency of the application.
// It is the root of the dependency graph; everything in it is a
// singleton created once at startup.
type Container struct {
	// Infrastructure layer - shared across all domains.
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	TaskClient *queue.Client
	Storage    *storage.MinIOStorage

	// Repository layer (data access).
	BookRepo bookRepo.BookRepository
	UserRepo user.Repository

	// Service layer (business logic).
	BookService bookService.ServiceInterface
	UserService user.Service

	// Handler layer (HTTP).
	BookHandler *bookHandler.Handler
	UserHandler *userHandler.UserHandler
}

// =====================================================
// CONSTRUCTOR
// =====================================================

// NewContainer builds the full dependency graph.
//
// Initialization order matters:
//  1. Config (depends on nothing)
//  2. Infrastructure (DB, cache, storage, queue) - depends on config
//  3. Repositories - depend on infrastructure
//  4. Services - depend on repositories
//  5. Handlers - depend on services
func NewContainer() (*Container, error) {
	c := &Container{}

	// Step 1: Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("[CONTAINER] Config loaded")

	// Step 2: Connect to PostgreSQL.
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	// Step 3: Connect to Redis. A cache failure is not critical, the
	// API degrades to uncached reads.
	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err := redisCache.Connect(context.Background()); err != nil {
		log.Warn().Err(err).Msg("[CONTAINER] Redis connection failed (non-critical)")
	}
	c.Cache = redisCache

	// Step 4: Object storage for book covers.
	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minioStorage

	// Step 5: Task queue client for background image cleanup.
	c.TaskClient = queue.NewClient(cfg.Redis)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	// Step 6: Repositories.
	if err := c.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	// Step 7: Services.
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Step 8: Handlers.
	if err := c.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	log.Info().Msg("[CONTAINER] Dependency graph initialized")
	return c, nil
}

// =====================================================
// PRIVATE INITIALIZATION
// =====================================================

func (c *Container) initRepositories() error {
	pool := c.DB.Pool

	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.UserRepo = userRepo.NewPostgresRepository(pool)

	return nil
}

func (c *Container) initServices() error {
	c.BookService = bookService.NewBookService(
		c.BookRepo,
		c.Storage,
		c.TaskClient,
	)
	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.JWTManager,
	)

	return nil
}

func (c *Container) initHandlers() error {
	c.BookHandler = bookHandler.NewHandler(c.BookService, c.Cache)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)

	return nil
}

// =====================================================
// CLEANUP
// =====================================================

// Cleanup releases every external connection. Called during graceful
// shutdown of the server.
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] Cleaning up resources")

	if c.TaskClient != nil {
		if err := c.TaskClient.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close task queue client")
		}
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Warn().Err(err).Msg("[CONTAINER] Failed to close Redis")
			}
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
	}

	log.Info().Msg("[CONTAINER] Cleanup completed")
}
