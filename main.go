package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/config"
	"github.com/siniestros-lookup/app/controllers"
	"github.com/siniestros-lookup/app/services"
	"github.com/siniestros-lookup/internal/index"
	"github.com/siniestros-lookup/internal/search"
	"github.com/siniestros-lookup/internal/source"
	"github.com/siniestros-lookup/routes"
)

func main() {
	// 0. .env (không bắt buộc)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Cannot read .env: %v", err)
	}

	// 1. Load configuration
	loadConfig()

	// 2. Khởi tạo logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Siniestros Lookup Service")

	if err := config.Load(viper.GetString("lookup.config")); err != nil {
		logger.Warn("Lookup config not loaded, using defaults", zap.Error(err))
	}
	cfg := config.C
	ctx := context.Background()

	// 3. Shared resource cache (memory, Redis L1 + MongoDB L2 khi bật)
	cacheService, closeCache := initCache(ctx, cfg, logger)
	defer closeCache()

	// 4. Nguồn dữ liệu
	src, err := source.Open(ctx, source.Config{
		Root:        cfg.Data.Root,
		Timeout:     cfg.FetchTimeout(),
		S3Region:    viper.GetString("s3.region"),
		MinioAccess: viper.GetString("minio.access_key"),
		MinioSecret: viper.GetString("minio.secret_key"),
		MinioUseSSL: viper.GetBool("minio.use_ssl"),
	})
	if err != nil {
		logger.Fatal("Failed to open data source", zap.Error(err))
	}
	src = source.NewCachingSource(src, cacheService, logger)
	logger.Info("Data source ready", zap.String("root", cfg.Data.Root), zap.String("layout", cfg.Data.PackLayout))

	// 5. Backend + sessions
	factory, db, err := services.NewBackendFactory(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize backend", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	sessions, err := services.NewSessionManager(cfg.Session.Capacity, src, index.ParseLayout(cfg.Data.PackLayout), factory, logger)
	if err != nil {
		logger.Fatal("Failed to initialize sessions", zap.Error(err))
	}

	// 6. Meilisearch (không bắt buộc)
	var suggester services.StreetSuggester
	var indexer services.StreetIndexer
	if viper.GetBool("meilisearch.enabled") {
		streetSearcher, err := search.NewStreetSearcher(search.SearchConfig{
			Host:   viper.GetString("meilisearch.url"),
			APIKey: viper.GetString("meilisearch.master_key"),
		}, logger)
		if err != nil {
			logger.Warn("Meilisearch unavailable, suggestions use the street catalog", zap.Error(err))
		} else {
			suggester, indexer = streetSearcher, streetSearcher
		}
	}

	// 7. Khởi tạo services
	searchService := services.NewSearchService(sessions, suggester, cfg.Session.PageSize, cfg.Matcher.Suggestions, logger)
	adminService := services.NewAdminService(cacheService, searchService, indexer, logger)

	// 8. Khởi tạo controllers
	searchController := controllers.NewSearchController(searchService, logger)
	adminController := controllers.NewAdminController(adminService, logger)

	// 9. Khởi tạo Gin router
	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, searchController, adminController)

	// 10. Khởi động server
	port := getEnv("APP_PORT", viper.GetString("app.port"))
	logger.Info("Siniestros Lookup Service starting", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// loadConfig load configuration từ file và env vars
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("lookup.config", "./config/lookup.yaml")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("mongo.url", "mongodb://localhost:27017/siniestros")
	viper.SetDefault("mongo.enabled", false)
	viper.SetDefault("cache.l1_size", 2000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("meilisearch.enabled", false)
	viper.SetDefault("meilisearch.url", "http://localhost:7700")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

// initLogger khởi tạo structured logger
func initLogger() *zap.Logger {
	env := getEnv("APP_ENV", viper.GetString("app.env"))

	var logCfg zap.Config
	if env == "production" {
		logCfg = zap.NewProductionConfig()
	} else {
		logCfg = zap.NewDevelopmentConfig()
	}

	logger, err := logCfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}

	return logger
}

// initCache dựng shared cache. Without Redis or MongoDB the in-memory cache
// serves alone.
func initCache(ctx context.Context, cfg config.LookupCfg, logger *zap.Logger) (services.ICacheService, func()) {
	ttl := viper.GetDuration("cache.ttl")
	memory := services.NewCacheService(ttl)
	memory.StartCleanupWorker(ctx, 10*time.Minute)

	var l1 services.ICacheService = memory
	if viper.GetBool("redis.enabled") {
		redisURL := getEnv("REDIS_URL", viper.GetString("redis.url"))
		redisCache, err := services.NewRedisCacheService(redisURL, cfg.Data.DataVersion, logger)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		} else {
			redisCache.SetTTL(ttl)
			l1 = redisCache
		}
	}

	if !viper.GetBool("mongo.enabled") {
		return l1, func() { _ = l1.Close() }
	}

	mongoDB, err := initMongoDB(logger)
	if err != nil {
		logger.Warn("MongoDB unavailable, cache has no persistent tier", zap.Error(err))
		return l1, func() { _ = l1.Close() }
	}

	l1Size := getEnvInt("L1_CACHE_SIZE", viper.GetInt("cache.l1_size"))
	mongoCache, err := services.NewMongoCacheService(mongoDB, l1Size, cfg.Data.DataVersion, logger)
	if err != nil {
		logger.Warn("Failed to initialize MongoDB cache", zap.Error(err))
		return l1, func() { _ = l1.Close() }
	}

	// Warm up cache từ MongoDB
	if err := mongoCache.WarmUp(ctx, l1Size/2); err != nil {
		logger.Warn("Failed to warm up cache", zap.Error(err))
	}

	hybrid := services.NewHybridCacheService(l1, mongoCache, logger)
	return hybrid, func() {
		_ = hybrid.Close()
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			logger.Error("Error disconnecting MongoDB", zap.Error(err))
		}
	}
}

// initMongoDB khởi tạo kết nối MongoDB
func initMongoDB(logger *zap.Logger) (*mongo.Database, error) {
	mongoURL := getEnv("MONGO_URL", viper.GetString("mongo.url"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(mongoURL)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	dbName := "siniestros"
	if clientOpts.Auth != nil && clientOpts.Auth.AuthSource != "" {
		dbName = clientOpts.Auth.AuthSource
	}

	db := client.Database(dbName)
	logger.Info("Connected to MongoDB", zap.String("database", dbName))
	return db, nil
}

// getEnv lấy environment variable với default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt lấy environment variable as int với default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
