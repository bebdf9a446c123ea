package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdugdh24/location-insights/internal/config"
	"github.com/gdugdh24/location-insights/internal/delivery/http"
	"github.com/gdugdh24/location-insights/internal/delivery/http/handler"
	"github.com/gdugdh24/location-insights/internal/delivery/http/middleware"
	"github.com/gdugdh24/location-insights/internal/infrastructure/database"
	"github.com/gdugdh24/location-insights/internal/infrastructure/gemini"
	"github.com/gdugdh24/location-insights/internal/infrastructure/googlemaps"
	"github.com/gdugdh24/location-insights/internal/infrastructure/placescache"
	"github.com/gdugdh24/location-insights/internal/infrastructure/server"
	"github.com/gdugdh24/location-insights/internal/ports"
	"github.com/gdugdh24/location-insights/internal/repository/postgres"
	"github.com/gdugdh24/location-insights/internal/usecase/distanceprofile"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Gemini *gemini.GeminiClient
	Engine *distanceprofile.Engine
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	// Initialize database
	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := database.Migrate(migrateCtx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	c := &Container{
		Config: cfg,
		DB:     db,
	}

	// Location providers
	mapsClient := googlemaps.NewClient(cfg.Google.MapsAPIKey)
	if !mapsClient.Configured() {
		log.Printf("Warning: GOOGLE_MAPS_API_KEY is not set, generation will fail with provider errors")
	}
	var places ports.PlacesProvider = mapsClient

	// Redis is optional; without it every search hits the provider
	if cfg.Redis.Enabled {
		redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis, places cache disabled: %v", err)
		} else {
			c.Redis = redisClient
			places = placescache.NewRedisPlacesCache(mapsClient, redisClient, cfg.Places.CacheTTL)
		}
	}

	var summarizer ports.Summarizer = gemini.TemplateSummarizer{}
	if cfg.Google.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewGeminiClient(ctx, cfg.Google.GeminiAPIKey, cfg.Google.GeminiModel)
		if err != nil {
			// Don't fail, just continue with template summaries
			log.Printf("Warning: Failed to initialize Gemini client: %v", err)
		} else {
			c.Gemini = geminiClient
			summarizer = geminiClient
		}
	}

	// Initialize repositories
	profileRepo := postgres.NewDistanceProfileRepository(db)
	propertyRepo := postgres.NewPropertyRepository(db)

	// Initialize use cases
	c.Engine = distanceprofile.NewEngine(
		profileRepo,
		propertyRepo,
		places,
		mapsClient,
		summarizer,
		distanceprofile.Options{
			PlacesTimeout: cfg.Places.Timeout,
			Concurrency:   cfg.Places.Concurrency,
			Retention:     cfg.Profiles.Retention(),
			AdHocTTL:      cfg.Profiles.AdHocTTL(),
		},
	)

	// Initialize handlers
	if err := handler.RegisterValidators(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	profileHandler := handler.NewDistanceProfileHandler(c.Engine)
	adHocHandler := handler.NewAdHocHandler(c.Engine)
	adminHandler := handler.NewAdminHandler(c.Engine)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(&cfg.JWT)

	// Initialize router
	router := http.NewRouter(
		profileHandler,
		adHocHandler,
		adminHandler,
		authMiddleware,
	)

	// Initialize server
	c.Server = server.NewServer(&cfg.Server, router.Setup())

	return c, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
