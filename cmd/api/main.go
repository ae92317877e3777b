package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bryanwahyu/grantsheet/internal/application"
	appgrants "github.com/bryanwahyu/grantsheet/internal/application/grants"
	"github.com/bryanwahyu/grantsheet/internal/config"
	"github.com/bryanwahyu/grantsheet/internal/domain/grants"
	"github.com/bryanwahyu/grantsheet/internal/infra/ai/openai"
	"github.com/bryanwahyu/grantsheet/internal/infra/ai/sheet"
	mysqlkv "github.com/bryanwahyu/grantsheet/internal/infra/db/mysql"
	pgkv "github.com/bryanwahyu/grantsheet/internal/infra/db/postgres"
	"github.com/bryanwahyu/grantsheet/internal/infra/httpserver"
	"github.com/bryanwahyu/grantsheet/internal/infra/kv"
	kvredis "github.com/bryanwahyu/grantsheet/internal/infra/kv/redis"
	"github.com/bryanwahyu/grantsheet/internal/infra/pdf"
	"github.com/bryanwahyu/grantsheet/internal/infra/storage"
	"github.com/bryanwahyu/grantsheet/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	ctx := context.Background()

	repo, checkers, closeStore := openRepository(ctx, cfg, logger)
	defer closeStore()

	// init document archive (optional)
	var archive grants.DocumentArchive
	if cfg.Minio.Enabled {
		docs, err := storage.NewDocumentStore(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Fatal("minio init error", zap.Error(err))
		}
		archive = docs
		logger.Info("pdf archive enabled", zap.String("bucket", cfg.Minio.BucketName))
	}

	validator, err := sheet.New(cfg.StrictEnums())
	if err != nil {
		logger.Fatal("decision sheet schema", zap.Error(err))
	}

	// one completion client for the whole process
	completion := openai.NewClient(openai.Options{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.CompletionTimeout(),
	})

	svc := &appgrants.Service{
		Extractor:      pdf.NewExtractor(),
		AI:             completion,
		Validator:      validator,
		Repo:           repo,
		Archive:        archive,
		Clock:          application.SystemClock{},
		Logger:         logger.Named("grants"),
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerMinute)
	defer limiter.Stop()

	handler := httpserver.NewRouter(httpserver.Options{
		Service:        svc,
		Logger:         logger.Named("http"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Limiter:        limiter,
		HealthCheckers: checkers,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// completion deadline plus extraction and storage
		WriteTimeout: cfg.CompletionTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("model", completion.Model),
			zap.String("storage", cfg.Storage.Backend),
			zap.Bool("strict_enums", validator.Strict()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.CompletionTimeout())
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// openRepository connects the configured key-value backend. With backend
// "none" analyses are still served, just never saved.
func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (grants.Repository, map[string]middleware.HealthChecker, func()) {
	var (
		store  kv.Store
		closer io.Closer
	)

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		s, err := kvredis.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal("redis connect error", zap.Error(err))
		}
		store, closer = s, s
	case config.BackendMySQL:
		db, err := mysqlkv.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect error", zap.Error(err))
		}
		s := mysqlkv.NewKVStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			logger.Fatal("mysql schema error", zap.Error(err))
		}
		store, closer = s, db
	case config.BackendPostgres:
		db, err := pgkv.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect error", zap.Error(err))
		}
		s := pgkv.NewKVStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			logger.Fatal("postgres schema error", zap.Error(err))
		}
		store, closer = s, db
	default:
		logger.Warn("no storage backend configured, analyses will not be saved")
		return storage.Unconfigured{}, map[string]middleware.HealthChecker{}, func() {}
	}

	repo := storage.NewAnalysisRepository(store, cfg.Storage.Prefix, cfg.Storage.ScanCount)
	checkers := map[string]middleware.HealthChecker{
		"storage": middleware.PingChecker{Target: repo},
	}
	return repo, checkers, func() {
		if err := closer.Close(); err != nil {
			logger.Warn("storage close error", zap.Error(err))
		}
	}
}
