package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/mail"
	"github.com/Skotchmaster/storefront/internal/media"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

func main() {
	cfg := config.Load()
	cfg.MustServer()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gdb.WithContext(initCtx).AutoMigrate(models.All()...); err != nil {
		log.Fatalf("automigrate: %v", err)
	}
	r := repo.New(gdb)

	var (
		store session.Store = session.NewMemory()
		guard checkout.Guard = session.NewMemoryGuard()
		rdb   *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(initCtx).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		store = session.NewRedis(rdb, cfg.SessionTTL)
		guard = session.NewRedisGuard(rdb)
	} else {
		logger.Warn("redis_not_configured", "reason", "sessions kept in process memory")
	}

	var pub events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		pub = producer
	}

	catalogSvc := &service.CatalogService{Repo: r, Events: pub, DefaultWhatsApp: cfg.DefaultWhatsApp}
	if cfg.ESURL != "" {
		es, err := search.NewClient(initCtx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("es init: %v", err)
		}
		catalogSvc.Search = search.NewIndex(es, cfg.ESIndex)
	}

	var gcs *storage.Client
	if cfg.GCSBucket != "" {
		var opts []option.ClientOption
		if cfg.GCSCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
		}
		gcs, err = storage.NewClient(initCtx, opts...)
		if err != nil {
			log.Fatalf("gcs client: %v", err)
		}
		catalogSvc.Media = media.NewGCSStore(gcs, cfg.GCSBucket, cfg.MediaPublicBaseURL)
	}

	var mailer mail.Mailer = mail.Nop{}
	if cfg.SendGridAPIKey != "" {
		mailer = mail.NewSendGridClient(cfg.SendGridAPIKey, cfg.SendGridFrom, models.DefaultSiteName)
	} else {
		logger.Warn("sendgrid_not_configured", "reason", "outgoing mail is discarded")
	}
	contentSvc := &service.ContentService{Repo: r, Mailer: mailer}

	authSvc := &service.AuthService{
		Repo:          r,
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Events:        pub,
		Mailer:        mailer,
		ResetURL:      cfg.PasswordResetURL,
		ResetTTL:      cfg.PasswordResetTTL,
	}
	asm := checkout.NewAssembler(gdb, guard, pub)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Secure(), middleware.BodyLimit("25M"))
	e.Use(loggingmw.RequestLogger(logger, "/health/"))

	var csrfCfg *csrf.Config
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.Secure = cfg.CookieSecure
		c.SkipPaths = httpserver.CSRFSkipPaths
		csrfCfg = &c
	}

	httpserver.Register(e, &httpserver.Deps{
		Catalog:            &httpserver.CatalogHTTP{Svc: catalogSvc},
		Cart:               &httpserver.CartHTTP{Repo: r, Events: pub},
		Checkout:           &httpserver.CheckoutHTTP{Assembler: asm, Catalog: r},
		Orders:             &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Assembler: asm}},
		Auth:               &httpserver.AuthHTTP{Svc: authSvc},
		Account:            &httpserver.AccountHTTP{Svc: &service.AccountService{Repo: r}},
		Content:            &httpserver.ContentHTTP{Svc: contentSvc},
		JWTSecret:          cfg.JWTAccessSecret,
		Refresher:          authSvc,
		Sessions:           store,
		SessionTTL:         cfg.SessionTTL,
		CSRF:               csrfCfg,
		CheckoutRatePerMin: cfg.CheckoutRatePerMin,
		Ready:              readiness(gdb, rdb),
	})

	addr := ":" + strconv.Itoa(cfg.ServerPort)
	go func() {
		logger.Info("http_listen", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting_down")

	ctx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if gcs != nil {
		_ = gcs.Close()
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	logger.Info("shutdown_complete")
}

func readiness(gdb *gorm.DB, rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return err
		}
		if rdb != nil {
			return rdb.Ping(ctx).Err()
		}
		return nil
	}
}
