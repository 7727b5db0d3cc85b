package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"talent2income_backend/database"
	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/cache"
	"talent2income_backend/internal/config"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/handlers"
	"talent2income_backend/internal/logger"
	"talent2income_backend/internal/middleware"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/notify"
	"talent2income_backend/internal/repositories"
	"talent2income_backend/internal/repositories/memory"
	"talent2income_backend/internal/routes"
	"talent2income_backend/internal/services"
	"talent2income_backend/internal/validator"
	"talent2income_backend/internal/workers"
	"talent2income_backend/pkg/apperrors"
	"talent2income_backend/ws"
)

// App - собранное приложение: HTTP, шина, рассылка уведомлений и фоновые воркеры
type App struct {
	cfg        *config.Config
	Store      repositories.Store
	Services   *services.ServiceContainer
	Router     *gin.Engine
	bus        *events.Bus
	hub        *ws.Hub
	relay      *ws.Relay
	dispatcher *notify.Dispatcher
	expiry     *workers.JobExpiryWorker
	rdb        redis.UniversalClient
	closers    []func() error
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.Debug = !cfg.IsProduction()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeDB, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open entity store", "error", err)
	}

	if err := seedFirstAdmin(ctx, store, cfg); err != nil {
		// Если не удалось создать админа - не запускаем сервер
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	rdb, err := openRedis(ctx, cfg)
	if err != nil {
		logger.Fatal("Redis unavailable", "error", err)
	}

	a := New(cfg, store, rdb)
	if closeDB != nil {
		a.closers = append(a.closers, closeDB)
	}

	if err := a.Run(ctx); err != nil {
		logger.Fatal("Server stopped with error", "error", err)
	}
	logger.Info("Server stopped")
}

// New собирает приложение поверх готового хранилища. rdb может быть nil:
// тогда чтение идет без кэша, а realtime-доставка работает только внутри процесса.
func New(cfg *config.Config, store repositories.Store, rdb redis.UniversalClient) *App {
	bus := events.NewBus()

	// 1. Кэш и его инвалидация по мутациям
	var backend cache.Backend
	var redisCache *cache.RedisBackend
	if rdb != nil {
		redisCache = cache.NewRedisBackend(rdb, cfg.Cache.Prefix)
		backend = redisCache
	}
	bus.SubscribeMutations(cache.NewInvalidator(cache.NewRouter(), backend))

	// 2. Сервисы
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWTTTL())
	container := services.NewServiceContainer(services.Deps{
		Store:    store,
		Bus:      bus,
		Cache:    redisCache,
		CacheTTL: cfg.CacheTTL(),
	}, tokens, cfg.Auth.AutoVerify)

	// 3. Уведомления
	hub := ws.NewHub()
	dispatcher := notify.NewDispatcher(store.Blocks(), notify.Options{
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
	}, buildSinks(cfg, store, rdb, hub)...)
	bus.SubscribeEvents(dispatcher)

	var relay *ws.Relay
	if rdb != nil && cfg.Notify.RealtimeEnabled {
		relay = ws.NewRelay(rdb, cfg.Redis.ChannelPrefix, hub)
	}

	// 4. HTTP
	wsHandler := ws.NewWebSocketHandler(hub, container.MessageService)
	router := SetupRouter(container, tokens, wsHandler)

	return &App{
		cfg:        cfg,
		Store:      store,
		Services:   container,
		Router:     router,
		bus:        bus,
		hub:        hub,
		relay:      relay,
		dispatcher: dispatcher,
		expiry:     workers.NewJobExpiryWorker(container.JobService, cfg.Workers.JobExpirySpec),
		rdb:        rdb,
	}
}

func buildSinks(cfg *config.Config, store repositories.Store, rdb redis.UniversalClient, hub *ws.Hub) []notify.Sink {
	var sinks []notify.Sink

	if cfg.Notify.EmailEnabled {
		mailer := notify.NewGomailSender(notify.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.FromEmail,
		})
		sinks = append(sinks, notify.NewEmailSink(mailer, store.Users(), notify.DefaultTemplates()))
		logger.Info("Email notifications enabled", "smtp_host", cfg.Email.SMTPHost)
	}

	if cfg.Notify.RealtimeEnabled {
		if rdb != nil {
			// через redis доставка доходит до всех инстансов, у которых есть сокеты получателя
			sinks = append(sinks, notify.NewRealtimeSink(rdb, cfg.Redis.ChannelPrefix))
		} else {
			sinks = append(sinks, ws.NewLocalSink(hub))
		}
		logger.Info("Realtime notifications enabled", "redis", rdb != nil)
	}

	return sinks
}

// SetupRouter собирает gin.Engine со всеми маршрутами. wsHandler может быть nil.
func SetupRouter(container *services.ServiceContainer, tokens *auth.TokenManager, wsHandler *ws.WebSocketHandler) *gin.Engine {
	baseHandler := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, container.UserService),
		UserHandler:    handlers.NewUserHandler(baseHandler, container.UserService),
		JobHandler:     handlers.NewJobHandler(baseHandler, container.JobService),
		PaymentHandler: handlers.NewPaymentHandler(baseHandler, container.PaymentService),
		ReviewHandler:  handlers.NewReviewHandler(baseHandler, container.ReviewService),
		MessageHandler: handlers.NewMessageHandler(baseHandler, container.MessageService),
		SkillHandler:   handlers.NewSkillHandler(baseHandler, container.SkillService),
	}

	ginRouter := gin.New()
	ginRouter.Use(middleware.RecoveryMiddleware())
	ginRouter.Use(middleware.RequestIDMiddleware())
	ginRouter.Use(middleware.LoggingMiddleware())

	routes.RegisterRoutes(ginRouter, appHandlers, handlers.RouteMiddlewares{
		Auth:         middleware.AuthMiddleware(tokens),
		OptionalAuth: middleware.OptionalAuthMiddleware(tokens),
		Admin:        middleware.RoleMiddleware(models.UserRoleAdmin),
	}, wsHandler)

	return ginRouter
}

// Run блокируется до отмены ctx или падения одного из компонентов
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	address := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	a.startBackground(g, gctx)

	g.Go(func() error {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		// принятые события доставляем после остановки HTTP
		a.dispatcher.Stop()
		return err
	})

	return g.Wait()
}

// StartBackground запускает все, кроме HTTP-сервера (hub, relay, рассылку, воркеры).
// Возвращаемая функция останавливает их и дожидается доставки принятых событий.
func (a *App) StartBackground(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	a.startBackground(g, gctx)

	return func() {
		cancel()
		if err := g.Wait(); err != nil {
			logger.Warn("Background component stopped with error", "error", err)
		}
		a.dispatcher.Stop()
	}
}

func (a *App) startBackground(g *errgroup.Group, ctx context.Context) {
	a.dispatcher.Start(ctx)

	g.Go(func() error {
		a.hub.Run(ctx)
		return nil
	})
	if a.relay != nil {
		g.Go(func() error { return a.relay.Run(ctx) })
	}
	g.Go(func() error { return a.expiry.Run(ctx) })
}

func (a *App) close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logger.Warn("Failed to close resource", "error", err)
		}
	}
}

func openStore(cfg *config.Config) (repositories.Store, func() error, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory entity store; data is lost on restart")
		return memory.NewStore(), nil, nil
	}

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Debug:        !cfg.IsProduction(),
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			return nil, nil, err
		}
		logger.Info("Database schema migrated")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewGormStore(gormDB), sqlDB.Close, nil
}

func openRedis(ctx context.Context, cfg *config.Config) (redis.UniversalClient, error) {
	if cfg.Redis.Addr == "" {
		logger.Warn("Redis address is not set: cache disabled, realtime delivery is process-local")
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	logger.Info("Redis connected", "addr", cfg.Redis.Addr)
	return rdb, nil
}

func seedFirstAdmin(ctx context.Context, store repositories.Store, cfg *config.Config) error {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.FirstAdminEmail))
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	return store.WithinTx(ctx, func(tx repositories.Tx) error {
		_, err := tx.Users().GetByEmail(ctx, adminEmail)
		if err == nil {
			logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
			return nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to check for admin user: %w", err)
		}

		logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

		hashedPassword, err := auth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		newAdmin := &models.User{
			Email:        adminEmail,
			PasswordHash: hashedPassword,
			Name:         "Administrator",
			Role:         models.UserRoleAdmin,
			Status:       models.UserStatusActive,
			IsVerified:   true,
		}
		if err := tx.Users().Create(ctx, newAdmin); err != nil {
			return fmt.Errorf("failed to create admin user in database: %w", err)
		}

		logger.Info("✅ Successfully created first admin user", "email", adminEmail)
		return nil
	})
}
