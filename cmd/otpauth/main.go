package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/otpauth/internal/config"
	"github.com/xxxsen/otpauth/internal/db"
	"github.com/xxxsen/otpauth/internal/handler"
	"github.com/xxxsen/otpauth/internal/job"
	"github.com/xxxsen/otpauth/internal/middleware"
	"github.com/xxxsen/otpauth/internal/pkg/otp"
	"github.com/xxxsen/otpauth/internal/repo"
	"github.com/xxxsen/otpauth/internal/schedule"
	"github.com/xxxsen/otpauth/internal/service"
	"github.com/xxxsen/otpauth/internal/session"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "otpauth",
		Short: "otp verified signup and session service",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run auth server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sqlDB, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return runServer(cfg, sqlDB)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sqlDB, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (optional, env vars override)")
	rootCmd.AddCommand(runCmd, migrateCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func bootstrap(ctx context.Context, configPath string) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(ctx).Info("config loaded",
		zap.String("config", configPath),
		zap.String("env", cfg.Env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("pending_store", cfg.PendingStore.Type),
	)

	sqlDB, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, sqlDB, nil
}

func runServer(cfg *config.Config, sqlDB *sqlx.DB) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otpTTL := time.Duration(cfg.OTP.TTLSeconds) * time.Second
	retention := time.Duration(cfg.PendingStore.RetentionSeconds) * time.Second

	accountRepo := repo.NewAccountRepo(sqlDB)
	pendingRepo := repo.NewPendingRegistrationRepo(sqlDB)

	var pendingStore service.PendingRegistrationStore
	switch cfg.PendingStore.Type {
	case config.PendingStoreRedis:
		opts, err := redis.ParseURL(cfg.PendingStore.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		pendingStore = repo.NewRedisPendingStore(rdb, retention)
	case config.PendingStoreMemory:
		pendingStore = repo.NewMemoryPendingStore(cfg.PendingStore.MemorySize, otpTTL+retention)
	default:
		pendingStore = pendingRepo
	}

	issuer := session.NewIssuer([]byte(cfg.JWTSecret), time.Duration(cfg.SessionTTLHours)*time.Hour)
	authService := service.NewAuthService(
		accountRepo,
		pendingStore,
		service.NewEmailSender(cfg.Mail),
		issuer,
		otp.NewGenerator(),
		service.AuthOptions{
			OTPTTL:      otpTTL,
			MailTimeout: time.Duration(cfg.Mail.TimeoutSeconds) * time.Second,
		},
	)
	deps := handler.RouterDeps{
		Auth:    handler.NewAuthHandler(authService, session.NewCookies(cfg.IsProduction())),
		Metrics: promhttp.Handler(),
	}

	scheduler := schedule.NewCronScheduler(schedule.WithJobTimeout(time.Minute))
	if cfg.PendingStore.Type == config.PendingStoreDB && !cfg.Sweep.Disable {
		if err := scheduler.AddJob(job.NewPendingSweepJob(pendingRepo, retention), cfg.Sweep.Spec); err != nil {
			return fmt.Errorf("schedule pending sweep: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
