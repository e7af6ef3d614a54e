package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/edu_platform/internal/authlog"
	"github.com/Skotchmaster/edu_platform/internal/config"
	"github.com/Skotchmaster/edu_platform/internal/credentials"
	"github.com/Skotchmaster/edu_platform/internal/httpserver"
	"github.com/Skotchmaster/edu_platform/internal/mykafka"
	"github.com/Skotchmaster/edu_platform/internal/repo"
	"github.com/Skotchmaster/edu_platform/internal/service"
	"github.com/Skotchmaster/edu_platform/pkg/db"
	"github.com/Skotchmaster/edu_platform/pkg/logging"
	authmw "github.com/Skotchmaster/edu_platform/pkg/middleware/auth"
	"github.com/Skotchmaster/edu_platform/pkg/tokens"
)

func loadCredentials(path string) (*credentials.Store, error) {
	if path == "" {
		return credentials.Default()
	}
	return credentials.LoadFile(path)
}

func readiness(gdb *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return sqlDB.PingContext(ctx)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_open_failed", "error", err)
		os.Exit(1)
	}

	store := repo.NewGormRepo(gdb)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("migrate_failed", "error", err)
		os.Exit(1)
	}
	if cfg.SeedData {
		if err := store.Seed(ctx); err != nil {
			logger.Error("seed_failed", "error", err)
			os.Exit(1)
		}
	}

	creds, err := loadCredentials(cfg.AuthUsersFile)
	if err != nil {
		logger.Error("credentials_load_failed", "file", cfg.AuthUsersFile, "error", err)
		os.Exit(1)
	}

	eventLog := authlog.NewStore(gdb)
	var events authlog.Recorder = eventLog
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_init_failed", "error", err)
			os.Exit(1)
		}
		events = authlog.Multi{eventLog, &authlog.Publisher{P: prod, Topic: cfg.KafkaAuthTopic}}
	}

	codec := tokens.NewCodec([]byte(cfg.JWTSecret), []byte(cfg.JWTRefreshSecret))
	authSvc := &service.AuthService{
		Credentials: creds,
		Codec:       codec,
		Ledger:      store,
		Denylist:    store,
		Events:      events,
		AccessTTL:   cfg.AccessTokenTTL,
		RefreshTTL:  cfg.RefreshTokenTTL,
	}

	e := httpserver.New(&httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc:          authSvc,
			Events:       eventLog,
			CookieName:   cfg.RefreshCookieName,
			CookieSecure: cfg.CookieSecure,
		},
		ClassroomHandler: &httpserver.ClassroomHTTP{Svc: &service.ClassroomService{Store: store}},
		Gate:             authmw.NewGate(codec, store),
		Events:           events,
		Logger:           logger,
		Ready:            readiness(gdb),
	})

	go service.RunJanitor(ctx, store, cfg.PurgeInterval, nil)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", cfg.ServerAddr, "users", creds.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	logger.Info("shutdown_complete")
}
