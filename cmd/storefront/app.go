package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/config"
	"github.com/agamariel/storefront/internal/handlers"
	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/migrations"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/notify"
	"github.com/agamariel/storefront/internal/payment"
	"github.com/agamariel/storefront/internal/services"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg     *config.Config
	logger  *log.Logger
	dbPool  *pgxpool.Pool
	stores  services.Stores
	metrics *metrics.Metrics
	echo    *echo.Echo
	worker  *services.ReconcileWorker

	// Handlers
	userHandler    *handlers.UserHandler
	productHandler *handlers.ProductHandler
	addressHandler *handlers.AddressHandler
	orderHandler   *handlers.OrderHandler
	adminHandler   *handlers.AdminHandler
	webhookHandler *handlers.WebhookHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	app := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(prometheus.NewRegistry()),
	}

	if err := app.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initStorage подключает PostgreSQL и применяет миграции.
// Без DATABASE_URI используется хранилище в памяти со стартовым каталогом.
func (app *App) initStorage(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		app.logger.Warn("DATABASE_URI is not configured, using in-memory storage")
		store := storage.NewMemoryStore()
		store.AddProducts(storage.DefaultCatalog()...)
		app.stores = services.Stores{
			Orders:    store.Orders(),
			Products:  store.Products(),
			Addresses: store.Addresses(),
			Users:     store.Users(),
		}
		return nil
	}

	// Применение миграций
	app.logger.Info("Running database migrations...")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(sqlDB, app.logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Info("Migrations completed successfully")

	// Подключение к базе данных через pgxpool
	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	app.stores = services.Stores{
		Orders:    storage.NewPostgresOrderStorage(dbPool),
		Products:  storage.NewPostgresProductStorage(dbPool),
		Addresses: storage.NewPostgresAddressStorage(dbPool),
		Users:     storage.NewPostgresUserStorage(dbPool),
	}
	app.logger.Info("Successfully connected to database")

	return nil
}

// initDependencies инициализирует сервисы, воркер и обработчики.
func (app *App) initDependencies() error {
	cfg := app.cfg

	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		app.logger.Warn("STRIPE_SECRET_KEY or STRIPE_WEBHOOK_SECRET is not configured, payments will fail")
	}
	gateway := payment.NewStripeGateway(payment.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		APIURL:        cfg.StripeAPIURL,
		Currency:      cfg.Currency,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
		Timeout:       cfg.PaymentTimeout,
		MaxAttempts:   cfg.RetryMaxAttempts,
		BaseDelay:     cfg.RetryBaseDelay,
	}, app.logger)

	renderer, err := notify.NewRenderer(cfg.StoreName)
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}
	var sender notify.Sender
	if cfg.SMTPHost != "" {
		sender = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		app.logger.Warn("SMTP_HOST is not configured, emails will only be logged")
		sender = notify.NewLogSender(app.logger)
	}
	dispatcher := notify.NewDispatcher(renderer, sender, notify.Config{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Timeout:     cfg.NotifyTimeout,
	}, app.logger, app.metrics)

	// Service layer
	userService := services.NewUserService(app.stores.Users, cfg.JWTSecret, cfg.TokenExpiration, cfg.AdminLogins)
	catalogService := services.NewCatalogService(app.stores.Products)
	addressService := services.NewAddressService(app.stores.Addresses)
	orderService := services.NewOrderService(app.stores, dispatcher, app.metrics, app.logger)
	checkoutService := services.NewCheckoutService(app.stores, gateway, app.metrics, app.logger)
	confirmer := services.NewPaymentConfirmer(app.stores, dispatcher, app.metrics, app.logger)
	webhookService := services.NewWebhookService(gateway, app.stores.Orders, confirmer, services.WebhookConfig{
		TestEventPrefix: cfg.WebhookTestEventPrefix,
	}, app.metrics, app.logger)

	// Handler layer
	app.userHandler = handlers.NewUserHandler(userService, cfg.TokenExpiration)
	app.productHandler = handlers.NewProductHandler(catalogService)
	app.addressHandler = handlers.NewAddressHandler(addressService)
	app.orderHandler = handlers.NewOrderHandler(orderService, checkoutService)
	app.adminHandler = handlers.NewAdminHandler(orderService)
	app.webhookHandler = handlers.NewWebhookHandler(webhookService, cfg.WebhookSignatureHeader)

	// Сверка неподтверждённых оплат
	if cfg.ReconcileInterval > 0 {
		app.worker = services.NewReconcileWorker(app.stores.Orders, gateway, confirmer, cfg.ReconcileInterval, app.metrics, app.logger)
		app.logger.Infof("Reconcile worker initialized with interval %s", cfg.ReconcileInterval)
	}

	return nil
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()
	e.HideBanner = true
	e.Logger = app.logger

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(app.metrics.Middleware())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/metrics")
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE},
		AllowCredentials: false,
	}))

	// Служебные маршруты
	var db handlers.Pinger
	if app.dbPool != nil {
		db = app.dbPool
	}
	e.GET("/health", handlers.Health(db))
	e.GET("/metrics", echo.WrapHandler(app.metrics.Handler()))

	// Публичные маршруты (не требуют аутентификации)
	e.POST("/api/user/register", app.userHandler.Register)
	e.POST("/api/user/login", app.userHandler.Login)
	e.POST("/api/user/logout", app.userHandler.Logout)
	e.GET("/api/products", app.productHandler.List)
	e.GET("/api/products/featured", app.productHandler.Featured)
	e.GET("/api/products/:id", app.productHandler.Get)
	e.POST("/api/webhooks/stripe", app.webhookHandler.Handle)

	// Защищённые маршруты (требуют аутентификации)
	protected := e.Group("/api/user")
	protected.Use(auth.JWTMiddleware(app.cfg.JWTSecret))
	protected.GET("/me", app.userHandler.Me)
	protected.GET("/addresses", app.addressHandler.List)
	protected.POST("/addresses", app.addressHandler.Create)
	protected.POST("/checkout", app.orderHandler.Checkout)
	protected.GET("/orders", app.orderHandler.GetOrders)
	protected.GET("/orders/:id", app.orderHandler.GetOrder)

	// Маршруты оператора
	admin := e.Group("/api/admin")
	admin.Use(
		auth.JWTMiddleware(app.cfg.JWTSecret),
		auth.RequireRole(models.RoleAdmin),
		auth.RequireAdminLogin(app.cfg.IsAdminLogin),
	)
	admin.GET("/orders", app.adminHandler.ListOrders)
	admin.GET("/orders/:id", app.adminHandler.GetOrder)
	admin.PATCH("/orders/:id/status", app.adminHandler.TransitionStatus)

	app.echo = e
}

// Start запускает приложение.
func (app *App) Start(ctx context.Context) error {
	if app.worker != nil {
		app.worker.Start(ctx)
		app.logger.Info("Reconcile worker started")
	} else {
		app.logger.Info("Reconcile worker is disabled")
	}

	app.logger.Infof("Starting server on %s", app.cfg.RunAddress)
	if err := app.echo.Start(app.cfg.RunAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
// Воркер должен быть остановлен отменой контекста, переданного в Start.
func (app *App) Shutdown(ctx context.Context) error {
	app.logger.Info("Shutting down server...")

	var err error
	if shutdownErr := app.echo.Shutdown(ctx); shutdownErr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to shutdown server: %w", shutdownErr))
	}
	if app.worker != nil {
		err = multierr.Append(err, app.worker.Wait(ctx))
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	if err == nil {
		app.logger.Info("Server gracefully stopped")
	}
	return err
}
