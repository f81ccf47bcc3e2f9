package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/config"
	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/app/services"
	"github.com/siniestros-lookup/internal/index"
	"github.com/siniestros-lookup/internal/packer"
	"github.com/siniestros-lookup/internal/search"
	"github.com/siniestros-lookup/internal/source"
	"github.com/siniestros-lookup/internal/tabular"
)

var (
	lookupConfig string
	logger       *zap.Logger
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "worker",
		Short: "Siniestros data tooling",
		Long:  `Build partitioned intersection packs, load SQL backends, seed street suggestions and warm the shared cache`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loadConfig()
			logger = initLogger()
			if err := config.Load(lookupConfig); err != nil {
				logger.Warn("Lookup config not loaded, using defaults", zap.String("path", lookupConfig), zap.Error(err))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&lookupConfig, "lookup-config", "./config/lookup.yaml", "lookup config file")

	rootCmd.AddCommand(createBuildCmd())
	rootCmd.AddCommand(createImportSQLCmd())
	rootCmd.AddCommand(createSeedStreetsCmd())
	rootCmd.AddCommand(createWarmCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig đọc config/app.yaml giống service chính
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("meilisearch.url", "http://localhost:7700")
	viper.SetDefault("cache.ttl", "24h")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

func initLogger() *zap.Logger {
	var logCfg zap.Config
	if os.Getenv("APP_ENV") == "production" {
		logCfg = zap.NewProductionConfig()
	} else {
		logCfg = zap.NewDevelopmentConfig()
	}
	l, err := logCfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	return l
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func readCSVFile(path string) ([]models.AccidentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return packer.ReadCSV(f)
}

// createBuildCmd CSV → comunas/streets/packs
func createBuildCmd() *cobra.Command {
	var csvPath, out, layout string
	var compress bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build partitioned resources from a CSV table",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readCSVFile(csvPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", csvPath, err)
			}
			b := packer.NewBuilder(packer.Options{Layout: index.ParseLayout(layout), Compress: compress}, logger)
			b.Add(records...)
			stats, err := b.Write(cmd.Context(), packer.DirSink{Root: out})
			if err != nil {
				return err
			}
			printJSON(stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "source CSV file")
	cmd.Flags().StringVar(&out, "out", "./data", "output directory")
	cmd.Flags().StringVar(&layout, "layout", string(index.LayoutWhole), "pack layout: whole | bucketed")
	cmd.Flags().BoolVar(&compress, "zstd", false, "write zstd-compressed resources")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

// createImportSQLCmd CSV → bảng SQLite/Postgres
func createImportSQLCmd() *cobra.Command {
	var csvPath, backend, dsn, table string

	cmd := &cobra.Command{
		Use:   "import-sql",
		Short: "Load a CSV table into the SQL backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if backend == "" {
				backend = config.C.Backend.Kind
			}
			if dsn == "" {
				dsn = config.C.Backend.DSN
			}
			if table == "" {
				table = config.C.Backend.Table
			}
			kind, err := tabular.ParseKind(backend)
			if err != nil {
				return err
			}
			dialect, err := tabular.DialectFor(kind)
			if err != nil {
				return err
			}

			records, err := readCSVFile(csvPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", csvPath, err)
			}
			db, err := tabular.Open(dialect, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			start := time.Now()
			n, err := tabular.LoadRecords(cmd.Context(), db, dialect, table, records)
			if err != nil {
				return err
			}
			logger.Info("Import completed", zap.String("backend", string(kind)), zap.String("table", table),
				zap.Int("rows", n), zap.Duration("took", time.Since(start)))
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "source CSV file")
	cmd.Flags().StringVar(&backend, "backend", "", "sqlite | postgres (default from lookup config)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN")
	cmd.Flags().StringVar(&table, "table", "", "table name")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func openSource(ctx context.Context, cache source.BlobCache) (source.Source, error) {
	cfg := config.C
	src, err := source.Open(ctx, source.Config{
		Root:        cfg.Data.Root,
		Timeout:     cfg.FetchTimeout(),
		S3Region:    viper.GetString("s3.region"),
		MinioAccess: viper.GetString("minio.access_key"),
		MinioSecret: viper.GetString("minio.secret_key"),
		MinioUseSSL: viper.GetBool("minio.use_ssl"),
	})
	if err != nil {
		return nil, err
	}
	if cache != nil {
		src = source.NewCachingSource(src, cache, logger)
	}
	return src, nil
}

// createSeedStreetsCmd nạp street catalogs vào Meilisearch
func createSeedStreetsCmd() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "seed-streets",
		Short: "Index street catalogs in Meilisearch",
		RunE: func(cmd *cobra.Command, args []string) error {
			searcher, err := search.NewStreetSearcher(search.SearchConfig{
				Host:   viper.GetString("meilisearch.url"),
				APIKey: viper.GetString("meilisearch.master_key"),
			}, logger)
			if err != nil {
				return err
			}
			src, err := openSource(cmd.Context(), nil)
			if err != nil {
				return err
			}
			// catalogs come from the partition index; the pack backend opens nothing
			cfg := config.C
			cfg.Backend.Kind = string(tabular.KindPack)
			factory, _, err := services.NewBackendFactory(cfg, logger)
			if err != nil {
				return err
			}
			sessions, err := services.NewSessionManager(1, src, index.ParseLayout(config.C.Data.PackLayout), factory, logger)
			if err != nil {
				return err
			}
			ss := services.NewSearchService(sessions, searcher, config.C.Session.PageSize, config.C.Matcher.Suggestions, logger)
			result, err := services.NewAdminService(nil, ss, searcher, logger).ReindexStreets(cmd.Context(), region)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "region slug (default: every region)")
	return cmd
}

// createWarmCmd tải trước resource của một region vào shared cache
func createWarmCmd() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Prefetch a region's resources into the shared Redis cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cache, err := services.NewRedisCacheService(viper.GetString("redis.url"), config.C.Data.DataVersion, logger)
			if err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			defer cache.Close()
			cache.SetTTL(viper.GetDuration("cache.ttl"))

			src, err := openSource(ctx, cache)
			if err != nil {
				return err
			}
			pi := index.NewPartitionIndex(src, index.ParseLayout(config.C.Data.PackLayout), logger)

			start := time.Now()
			districts, err := pi.LoadDistricts(ctx, region)
			if err != nil {
				return err
			}
			rows := 0
			for _, d := range districts {
				if err := ctx.Err(); err != nil {
					return err
				}
				pi.LoadStreets(ctx, region, d)
				if pack, ok := pi.LoadPack(ctx, region, d); ok {
					rows += len(pack.Scan(ctx))
				}
			}
			logger.Info("Warm-up completed",
				zap.String("region", region),
				zap.Int("comunas", len(districts)),
				zap.Int("rows", rows),
				zap.Int("cached_resources", pi.Cache().Len()),
				zap.Duration("took", time.Since(start)))
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "region slug")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}
