package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/AdamSoufiane/connectsearch/internal/cache"
	"github.com/AdamSoufiane/connectsearch/internal/handler"
	"github.com/AdamSoufiane/connectsearch/internal/ratelimit"
	"github.com/AdamSoufiane/connectsearch/internal/resolver"
	"github.com/AdamSoufiane/connectsearch/internal/schedule"
	"github.com/AdamSoufiane/connectsearch/internal/schedule/data"
	"github.com/AdamSoufiane/connectsearch/internal/search"
	"github.com/AdamSoufiane/connectsearch/internal/validate"
)

type Config struct {
	Port        string
	PostgresURL string

	RedisEnabled bool
	RedisHost    string
	RedisPort    string

	CacheTTL           time.Duration
	CacheIncompleteTTL time.Duration
	CacheMaxEntries    int

	MinConnectionTime time.Duration
	MaxLayoverWindow  time.Duration
	MaxConnections    int
	MaxConnectionsCap int

	GraceWindow time.Duration
	RetryDelay  time.Duration

	IngestionTracking bool
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	store, closeStore, err := initializeStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize schedule store: %v", err)
	}
	defer closeStore()

	limiter := ratelimit.NewKeyedLimiterWithDefaults()
	limiter.SetLimit("JFK", 100, 200)
	limiter.SetLimit("ORD", 100, 200)
	limiter.SetLimit("ATL", 100, 200)
	limiter.SetLimit("LAX", 100, 200)
	limited := schedule.WithRateLimit(store, limiter)
	retrying := schedule.WithRetry(limited, cfg.RetryDelay)

	res := resolver.New(retrying, resolver.Config{
		MinConnectionTime: cfg.MinConnectionTime,
		MaxLayoverWindow:  cfg.MaxLayoverWindow,
		MaxConnectionsCap: cfg.MaxConnectionsCap,
	})

	var remote cache.RemoteStore = cache.NewNoOpStore()
	if cfg.RedisEnabled {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		remote = redisStore
		log.Printf("Redis mirror enabled (host: %s:%s)", cfg.RedisHost, cfg.RedisPort)
	} else {
		log.Println("Redis mirror disabled")
	}

	coordinator := cache.NewCoordinator(cache.Config{
		TTL:           cfg.CacheTTL,
		IncompleteTTL: cfg.CacheIncompleteTTL,
		MaxEntries:    cfg.CacheMaxEntries,
		Remote:        remote,
	})
	coordinator.Start(ctx)

	// without an ingestion pipeline posting completion notifications the
	// tracker would report every range as loading forever, so the default
	// treats schedule data as complete
	var ingest schedule.IngestionStatus = schedule.AlwaysComplete{}
	var tracker *schedule.MemoryIngestionTracker
	if cfg.IngestionTracking {
		tracker = schedule.NewMemoryIngestionTracker()
		ingest = tracker
		log.Println("Ingestion tracking enabled")
	}

	validation := validate.DefaultOptions()
	validation.GraceWindow = cfg.GraceWindow

	svc := search.NewCoordinator(res, coordinator, ingest, search.Config{
		DefaultMaxConnections: cfg.MaxConnections,
		MaxConnectionsCap:     cfg.MaxConnectionsCap,
		Validation:            validation,
	})

	searchHandler := handler.NewSearchHandler(svc)

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.Search)
	api.POST("/cache/invalidate", searchHandler.Invalidate)
	api.POST("/cache/refresh", searchHandler.Refresh)
	if tracker != nil {
		ingestionHandler := handler.NewIngestionHandler(tracker)
		api.POST("/ingestion/complete", ingestionHandler.Complete)
	}
	e.GET("/health", handler.HealthHandler)

	log.Printf("Starting connection search server on port %s", cfg.Port)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initializeStore(ctx context.Context, cfg Config) (schedule.Store, func(), error) {
	if cfg.PostgresURL != "" {
		pg, err := schedule.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Schedule store: postgres")
		return pg, pg.Close, nil
	}

	mem, err := schedule.NewMemoryStoreFromJSON(data.Legs)
	if err != nil {
		return nil, nil, err
	}
	log.Println("Schedule store: embedded demo data")
	return mem, func() {}, nil
}

func loadConfig() Config {
	return Config{
		Port:               getEnv("PORT", "8080"),
		PostgresURL:        getEnv("POSTGRES_URL", ""),
		RedisEnabled:       getEnvBool("REDIS_ENABLED", false),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		CacheTTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheIncompleteTTL: getEnvDuration("CACHE_INCOMPLETE_TTL", 30*time.Second),
		CacheMaxEntries:    getEnvInt("CACHE_MAX_ENTRIES", 10000),
		MinConnectionTime:  getEnvDuration("MIN_CONNECTION_TIME", 45*time.Minute),
		MaxLayoverWindow:   getEnvDuration("MAX_LAYOVER_WINDOW", 6*time.Hour),
		MaxConnections:     getEnvInt("MAX_CONNECTIONS", 1),
		MaxConnectionsCap:  getEnvInt("MAX_CONNECTIONS_CAP", 2),
		GraceWindow:        getEnvDuration("VALIDATION_GRACE_WINDOW", 24*time.Hour),
		RetryDelay:         getEnvDuration("STORE_RETRY_DELAY", 100*time.Millisecond),
		IngestionTracking:  getEnvBool("INGESTION_TRACKING", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
