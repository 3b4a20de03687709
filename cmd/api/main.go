package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/visitordesk/visitor-service/internal/api/http"
	"github.com/visitordesk/visitor-service/internal/api/http/handlers"
	"github.com/visitordesk/visitor-service/internal/auth"
	"github.com/visitordesk/visitor-service/internal/config"
	"github.com/visitordesk/visitor-service/internal/events"
	"github.com/visitordesk/visitor-service/internal/notify"
	"github.com/visitordesk/visitor-service/internal/observability"
	"github.com/visitordesk/visitor-service/internal/persistence"
	"github.com/visitordesk/visitor-service/internal/ratelimit"
	"github.com/visitordesk/visitor-service/internal/repository"
	"github.com/visitordesk/visitor-service/internal/repository/memory"
	"github.com/visitordesk/visitor-service/internal/service"
	"github.com/visitordesk/visitor-service/internal/storage"
	"github.com/visitordesk/visitor-service/internal/worker"
)

type repositories struct {
	users    repository.UserRepository
	staff    repository.StaffRepository
	visitors repository.VisitorRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.PoolHandle() != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	repos := buildRepositories(pg, logger)

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	codec, err := auth.NewCodec(cfg.Auth.TokenSecret)
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}

	objects, err := buildStorage(cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}

	notificationWorker := worker.NewNotificationWorker(events.NewInMemoryDispatcher(logger), 256, logger)
	notificationService := service.NewNotificationService(buildNotifier(cfg, logger), logger, service.NotificationOptions{
		Enabled:            cfg.Notification.Enabled,
		CheckInTemplateSID: cfg.WhatsApp.CheckInTemplateSID,
	})
	worker.StartNotificationWorker(notificationWorker, notificationService)

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: repos.users,
		Codec:    codec,
		Hasher:   hasher,
		Limiter:  ratelimit.NewRedis(redis.Client, cfg.Auth.LoginWindow(), logger),
		Logger:   logger,
	})
	userService := service.NewUserService(repos.users, hasher, notificationWorker, logger)
	staffService := service.NewStaffService(repos.staff)
	visitorService := service.NewVisitorService(repos.visitors, staffService, notificationWorker, cfg.App.Location(), logger)
	uploadService := service.NewUploadService(objects, storage.NewKeyBuilder(cfg.Storage.KeyPrefix), logger)

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(logger, metrics, httptransport.ServerOptions{
		Name:           cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		BodyLimitBytes: cfg.App.BodyLimitMB * 1024 * 1024,
	}, httptransport.RouteConfig{
		Gate: auth.NewGate(auth.NewResolver(codec), cfg.Auth.DevSecret),
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics,
			handlers.Dependency{Name: "postgres", Pinger: pg},
			handlers.Dependency{Name: "redis", Pinger: redis},
			handlers.Dependency{Name: "storage", Pinger: objects},
		),
		Auth:     handlers.NewAuthHandler(authService),
		Users:    handlers.NewUsersHandler(authService, userService),
		Visitors: handlers.NewVisitorsHandler(visitorService),
		Staff:    handlers.NewStaffHandler(staffService),
		Uploads:  handlers.NewUploadsHandler(uploadService),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notificationWorker.Stop()
}

func buildRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("using in-memory record store; data is lost on restart")
		store := memory.NewStore()
		return repositories{users: store.Users(), staff: store.Staff(), visitors: store.Visitors()}
	}
	return repositories{
		users:    repository.NewUserRepository(pool),
		staff:    repository.NewStaffRepository(pool),
		visitors: repository.NewVisitorRepository(pool),
	}
}

func buildStorage(cfg config.StorageConfig, logger *zap.Logger) (storage.ObjectStorage, error) {
	if !cfg.Configured() {
		logger.Warn("object storage not configured; uploads kept in memory")
		return storage.NewMemoryStorage(cfg.PublicBaseURL), nil
	}
	return storage.NewMinioStorage(cfg)
}

func buildNotifier(cfg *config.Config, logger *zap.Logger) *notify.Notifier {
	var email notify.EmailChannel
	if cfg.Mail.Configured() {
		sender, err := notify.NewEmailSender(cfg.Mail, logger)
		if err != nil {
			logger.Warn("email channel disabled", zap.Error(err))
		} else {
			email = sender
		}
	}
	var whatsapp notify.WhatsAppChannel
	if cfg.WhatsApp.Configured() {
		whatsapp = notify.NewWhatsAppSender(cfg.WhatsApp, logger)
	}
	return notify.NewNotifier(email, whatsapp, logger)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
