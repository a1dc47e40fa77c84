package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"resumeBuilder/internal/api"
	"resumeBuilder/internal/auth"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/enhance"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/session"
	"resumeBuilder/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	logger.Info("database ready", slog.String("host", cfg.Database.Host), slog.String("db", cfg.Database.Name))

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password})
	defer asynqClient.Close()

	authService, err := loadAuthService(cfg.Auth)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	enhancer, closeEnhancer, err := newEnhancer(ctx, cfg.Enhance)
	if err != nil {
		log.Fatalf("init enhancer: %v", err)
	}
	defer closeEnhancer()

	sessions := session.NewRegistry(cfg.Session.IdleTTL, cfg.Session.MaxSessions, logger)

	var scanner api.VirusScanner
	if cfg.Upload.ClamdAddr != "" {
		scanner = api.NewClamdScanner(cfg.Upload.ClamdAddr)
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, api.Dependencies{
		Config:      cfg,
		Logger:      logger,
		Sessions:    sessions,
		Resumes:     persistence.NewAdapter(persistence.NewGormStore(db)),
		Enhancer:    enhancer,
		Auth:        authService,
		Blacklist:   auth.NewBlacklist(redisClient),
		Queue:       asynqClient,
		Images:      storageClient,
		Previews:    storageClient,
		Scanner:     scanner,
		RateCounter: redisClient,
		Subscriber:  redisClient,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: router,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gCtx, cfg.Session.SweepInterval)
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down api")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("api stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func loadAuthService(cfg config.AuthConfig) (*auth.AuthService, error) {
	publicPEM, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	var privatePEM []byte
	if cfg.PrivateKeyPath != "" {
		if privatePEM, err = os.ReadFile(cfg.PrivateKeyPath); err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
	}
	return auth.NewAuthService(privatePEM, publicPEM, cfg.AccessTokenTTL)
}

// newEnhancer 按配置选择 Gemini 直连或远端 enhance-content 服务。
func newEnhancer(ctx context.Context, cfg config.EnhanceConfig) (enhance.Enhancer, func(), error) {
	switch cfg.Provider {
	case "remote":
		return enhance.NewRemoteEnhancer(cfg.RemoteEndpoint, cfg.RemoteAPIKey, cfg.Timeout), func() {}, nil
	default:
		gemini, err := enhance.NewGeminiEnhancer(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.Temperature)
		if err != nil {
			return nil, nil, err
		}
		return gemini, func() { _ = gemini.Close() }, nil
	}
}
