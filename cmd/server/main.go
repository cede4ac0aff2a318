package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	accountingapp "github.com/printcloud/backend/internal/application/accounting"
	costingapp "github.com/printcloud/backend/internal/application/costing"
	documentapp "github.com/printcloud/backend/internal/application/document"
	identityapp "github.com/printcloud/backend/internal/application/identity"
	inventoryapp "github.com/printcloud/backend/internal/application/inventory"
	partnerapp "github.com/printcloud/backend/internal/application/partner"
	purchasingapp "github.com/printcloud/backend/internal/application/purchasing"
	salesapp "github.com/printcloud/backend/internal/application/sales"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/auth"
	"github.com/printcloud/backend/internal/infrastructure/cache"
	"github.com/printcloud/backend/internal/infrastructure/config"
	"github.com/printcloud/backend/internal/infrastructure/event"
	"github.com/printcloud/backend/internal/infrastructure/logger"
	"github.com/printcloud/backend/internal/infrastructure/persistence"
	"github.com/printcloud/backend/internal/infrastructure/render"
	"github.com/printcloud/backend/internal/infrastructure/scan"
	"github.com/printcloud/backend/internal/infrastructure/scheduler"
	"github.com/printcloud/backend/internal/infrastructure/storage"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
	"github.com/printcloud/backend/internal/interfaces/http/handler"
	"github.com/printcloud/backend/internal/interfaces/http/middleware"
	"github.com/printcloud/backend/internal/interfaces/http/router"
)

// version is overridden at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting PrintCloud Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	defaultTenantID, err := uuid.Parse(cfg.App.DefaultTenantID)
	if err != nil {
		log.Fatal("Invalid default tenant ID in configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize telemetry providers. Each degrades to a no-op when
	// disabled, so the rest of the wiring never branches on cfg.Telemetry.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	if cfg.Telemetry.ProfilingEnabled {
		profilerCfg := telemetry.DefaultProfilerConfig(cfg.Telemetry.PyroscopeEndpoint, cfg.App.Name)
		profiler, err := telemetry.NewProfiler(profilerCfg, log)
		if err != nil {
			log.Warn("Failed to start profiler, continuing without profiling", zap.Error(err))
		} else {
			defer func() {
				if err := profiler.Stop(); err != nil {
					log.Error("Error stopping profiler", zap.Error(err))
				}
			}()
		}
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.Register(db.DB); err != nil {
			log.Warn("Failed to register database tracing plugin", zap.Error(err))
		}
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	salesOrderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	supplierBillRepo := persistence.NewGormSupplierBillRepository(db.DB)
	billScanRepo := persistence.NewGormBillScanRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	periodRepo := persistence.NewGormFiscalPeriodRepository(db.DB)
	journalEntryRepo := persistence.NewGormJournalEntryRepository(db.DB)
	cashBookRepo := persistence.NewGormCashBookRepository(db.DB)
	sheetRepo := persistence.NewGormSheetRepository(db.DB)
	templateRepo := persistence.NewGormTemplateRepository(db.DB)
	communicationLogRepo := persistence.NewGormCommunicationLogRepository(db.DB)
	reminderRepo := persistence.NewGormReminderRepository(db.DB)
	conflictRepo := persistence.NewGormConflictRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that persist domain events
	// in the same transaction as the aggregate
	quotationRepo.SetOutboxEventSaver(outboxPublisher)
	salesOrderRepo.SetOutboxEventSaver(outboxPublisher)
	invoiceRepo.SetOutboxEventSaver(outboxPublisher)
	purchaseOrderRepo.SetOutboxEventSaver(outboxPublisher)
	supplierBillRepo.SetOutboxEventSaver(outboxPublisher)
	billScanRepo.SetOutboxEventSaver(outboxPublisher)
	itemRepo.SetOutboxEventSaver(outboxPublisher)
	journalEntryRepo.SetOutboxEventSaver(outboxPublisher)
	sheetRepo.SetOutboxEventSaver(outboxPublisher)
	reminderRepo.SetOutboxEventSaver(outboxPublisher)
	conflictRepo.SetOutboxEventSaver(outboxPublisher)

	// Infrastructure adapters for the application layer
	jwtService := auth.NewJWTService(cfg.JWT)

	scanStorage, err := storage.NewScanStorage(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize scan storage", zap.Error(err))
	}
	scanExtractor := scan.NewPipelineExtractor(&cfg.Scan, log)

	docRenderer, err := render.NewDocumentRenderer(&cfg.Render, log)
	if err != nil {
		log.Fatal("Failed to initialize document renderer", zap.Error(err))
	}
	emailSender := render.NewLogEmailSender(log)
	whatsappSender := render.NewLogWhatsAppSender(log)

	// Initialize application services
	authService := identityapp.NewAuthService(userRepo, jwtService, defaultTenantID, log)
	userService := identityapp.NewUserService(userRepo)
	customerService := partnerapp.NewCustomerService(customerRepo)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	quotationService := salesapp.NewQuotationService(quotationRepo, salesOrderRepo)
	salesOrderService := salesapp.NewSalesOrderService(salesOrderRepo)
	invoiceService := salesapp.NewInvoiceService(invoiceRepo, salesOrderRepo)
	purchaseOrderService := purchasingapp.NewPurchaseOrderService(purchaseOrderRepo)
	supplierBillService := purchasingapp.NewSupplierBillService(supplierBillRepo, purchaseOrderRepo)
	billScanService := purchasingapp.NewBillScanService(billScanRepo, supplierBillRepo, scanStorage, scanExtractor, log)
	itemService := inventoryapp.NewItemService(itemRepo, movementRepo)
	periodService := accountingapp.NewFiscalPeriodService(periodRepo)
	journalService := accountingapp.NewJournalService(journalEntryRepo, periodRepo)
	cashBookService := accountingapp.NewCashBookService(cashBookRepo, periodRepo)
	sheetService := costingapp.NewSheetService(sheetRepo)
	templateService := documentapp.NewTemplateService(templateRepo, docRenderer)
	communicationService := documentapp.NewCommunicationService(communicationLogRepo, emailSender, whatsappSender, log)
	reminderService := documentapp.NewReminderService(reminderRepo, conflictRepo, log)

	// Cross-context wiring: open document counters guard partner
	// deactivation, and the invoice share view enriches with customer data
	customerService.SetOpenOrderCounter(salesOrderRepo)
	supplierService.SetOpenPurchaseCounter(purchaseOrderRepo)
	invoiceService.SetCustomerRepository(customerRepo)
	templateService.SetDocumentStore(scanStorage)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store for event handlers; falls back to in-memory when
	// Redis is unreachable
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Register cross-context event handlers:
	// invoice issued -> sales journal entry + customer balance
	// supplier bill approved -> purchase journal entry + stock receipt + supplier balance
	// payments recorded -> partner balance adjustments
	integrationHandlers := []shared.EventHandler{
		accountingapp.NewSalesJournalHandler(journalEntryRepo, log),
		accountingapp.NewPurchaseJournalHandler(journalEntryRepo, log),
		inventoryapp.NewBillReceiptHandler(itemRepo, log),
		partnerapp.NewCustomerBalanceHandler(customerRepo, log),
		partnerapp.NewSupplierBalanceHandler(supplierRepo, log),
	}
	for _, h := range event.WrapHandlersWithIdempotency(integrationHandlers, idempotencyStore, log) {
		eventBus.Subscribe(h)
	}

	// Start event bus
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery
	if cfg.Event.ProcessorEnabled {
		outboxCfg := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			outboxCfg.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			outboxCfg.PollInterval = cfg.Event.PollInterval
		}
		outboxCfg.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			outboxCfg.CleanupRetention = cfg.Event.CleanupRetention
		}

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxCfg, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxCfg.BatchSize),
			zap.Duration("poll_interval", outboxCfg.PollInterval),
		)
	}

	// Inject event bus into services that publish events
	quotationService.SetEventPublisher(eventBus)
	salesOrderService.SetEventPublisher(eventBus)
	invoiceService.SetEventPublisher(eventBus)
	purchaseOrderService.SetEventPublisher(eventBus)
	supplierBillService.SetEventPublisher(eventBus)
	billScanService.SetEventPublisher(eventBus)
	itemService.SetEventPublisher(eventBus)
	journalService.SetEventPublisher(eventBus)
	sheetService.SetEventPublisher(eventBus)
	reminderService.SetEventPublisher(eventBus)
	customerService.SetEventPublisher(eventBus)
	supplierService.SetEventPublisher(eventBus)

	// Live order event stream for connected clients
	sseHandler := handler.NewOrderEventsSSEHandler(eventBus, handler.WithSSELogger(log))
	if err := sseHandler.Start(); err != nil {
		log.Fatal("Failed to start order event stream", zap.Error(err))
	}
	defer sseHandler.Stop()

	// Business metrics: flow counters on the application services plus
	// periodic gauges (outstanding receivables, scan backlog)
	if meterProvider.IsEnabled() {
		metricsReader := persistence.NewMetricsReader(db.DB)
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:               meterProvider.Meter("printcloud/business"),
			Logger:              log,
			ReceivablesProvider: metricsReader,
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			quotationService.SetBusinessMetrics(businessMetrics)
			invoiceService.SetBusinessMetrics(businessMetrics)
			supplierBillService.SetBusinessMetrics(businessMetrics)
			billScanService.SetBusinessMetrics(businessMetrics)
			templateService.SetBusinessMetrics(businessMetrics)
			communicationService.SetBusinessMetrics(businessMetrics)

			businessMetrics.StartPeriodicCollection(ctx, userRepo, 0)
			defer businessMetrics.Stop()
		}
	}

	// Background sweeps: overdue reminder notification, quotation expiry,
	// queued communication dispatch, pending scan extraction
	if cfg.Scheduler.Enabled {
		sweeper := scheduler.NewSweeper(
			reminderService,
			communicationService,
			quotationService,
			billScanService,
			userRepo,
			cfg.Scheduler,
			log,
		)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start background sweeper", zap.Error(err))
		}
		defer func() {
			if err := sweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping background sweeper", zap.Error(err))
			}
		}()
		log.Info("Background sweeper started",
			zap.Duration("reminder_interval", cfg.Scheduler.ReminderSweepInterval),
			zap.Duration("quotation_interval", cfg.Scheduler.QuotationSweepInterval),
		)
	}

	// Watch the scanner drop directory for new bill scans
	if cfg.Scan.DropWatchEnabled {
		dropWatcher, err := scan.NewDropWatcher(cfg.Scan.DropDir, billScanService, log)
		if err != nil {
			log.Warn("Failed to initialize scan drop watcher", zap.Error(err))
		} else {
			if err := dropWatcher.Start(ctx); err != nil {
				log.Warn("Failed to start scan drop watcher", zap.Error(err))
			} else {
				defer dropWatcher.Stop()
				log.Info("Scan drop watcher started", zap.String("dir", cfg.Scan.DropDir))
			}
		}
	}

	// Seed built-in document templates for the default tenant up front;
	// other tenants get them on first render through the seeder fallback
	if err := render.SeedDefaultTemplates(ctx, templateRepo, defaultTenantID, log); err != nil {
		log.Warn("Failed to seed default document templates", zap.Error(err))
	}
	templateService.SetTemplateSeeder(render.NewTemplateSeeder(templateRepo, log))

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	customerHandler := handler.NewCustomerHandler(customerService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	quotationHandler := handler.NewQuotationHandler(quotationService)
	salesOrderHandler := handler.NewSalesOrderHandler(salesOrderService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, templateService)
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(purchaseOrderService)
	supplierBillHandler := handler.NewSupplierBillHandler(supplierBillService)
	billScanHandler := handler.NewBillScanHandler(billScanService)
	inventoryHandler := handler.NewInventoryHandler(itemService)
	accountingHandler := handler.NewAccountingHandler(periodService, journalService, cashBookService)
	costingHandler := handler.NewCostingHandler(sheetService)
	templateHandler := handler.NewTemplateHandler(templateService)
	communicationHandler := handler.NewCommunicationHandler(communicationService)
	reminderHandler := handler.NewReminderHandler(reminderService)
	systemHandler := handler.NewSystemHandler(db.DB, version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - OpenTelemetry spans (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health probes (outside API versioning, no authentication)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// Public invoice share links, rate limited per token instead of per
	// client so a leaked link cannot be hammered from many addresses
	sharedLimiter := middleware.NewRateLimiter(30, time.Minute)
	sharedGroup := engine.Group("/shared")
	sharedGroup.Use(middleware.RateLimitByKey(sharedLimiter, func(c *gin.Context) string {
		return c.Param("token")
	}))
	sharedGroup.GET("/invoices/:token", invoiceHandler.GetShared)
	sharedGroup.GET("/invoices/:token/pdf", invoiceHandler.DownloadSharedPDF)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Identity domain - public auth routes (covered by skip paths)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)

	// Identity domain - protected routes
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.GET("/auth/me", authHandler.Me)
	identityRoutes.PUT("/auth/password", authHandler.ChangePassword)
	identityRoutes.POST("/users", userHandler.Register)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/:id", userHandler.Get)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)

	// Partner domain (customers, suppliers)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.POST("/customers", customerHandler.Create)
	partnerRoutes.GET("/customers", customerHandler.List)
	partnerRoutes.GET("/customers/stats/summary", customerHandler.StatusSummary)
	partnerRoutes.GET("/customers/:id", customerHandler.Get)
	partnerRoutes.PUT("/customers/:id", customerHandler.Update)
	partnerRoutes.DELETE("/customers/:id", customerHandler.Delete)
	partnerRoutes.POST("/customers/:id/activate", customerHandler.Activate)
	partnerRoutes.POST("/customers/:id/block", customerHandler.Block)
	partnerRoutes.POST("/customers/:id/deactivate", customerHandler.Deactivate)

	partnerRoutes.POST("/suppliers", supplierHandler.Create)
	partnerRoutes.GET("/suppliers", supplierHandler.List)
	partnerRoutes.GET("/suppliers/:id", supplierHandler.Get)
	partnerRoutes.PUT("/suppliers/:id", supplierHandler.Update)
	partnerRoutes.DELETE("/suppliers/:id", supplierHandler.Delete)
	partnerRoutes.POST("/suppliers/:id/activate", supplierHandler.Activate)
	partnerRoutes.POST("/suppliers/:id/block", supplierHandler.Block)
	partnerRoutes.POST("/suppliers/:id/deactivate", supplierHandler.Deactivate)

	// Sales domain (quotations, orders, invoices)
	salesRoutes := router.NewDomainGroup("sales", "/sales")
	salesRoutes.POST("/quotations", quotationHandler.Create)
	salesRoutes.GET("/quotations", quotationHandler.List)
	salesRoutes.GET("/quotations/number/:number", quotationHandler.GetByNumber)
	salesRoutes.GET("/quotations/:id", quotationHandler.Get)
	salesRoutes.PUT("/quotations/:id", quotationHandler.Update)
	salesRoutes.DELETE("/quotations/:id", quotationHandler.Delete)
	salesRoutes.POST("/quotations/:id/items", quotationHandler.AddItem)
	salesRoutes.DELETE("/quotations/:id/items/:itemId", quotationHandler.RemoveItem)
	salesRoutes.POST("/quotations/:id/send", quotationHandler.Send)
	salesRoutes.POST("/quotations/:id/accept", quotationHandler.Accept)
	salesRoutes.POST("/quotations/:id/reject", quotationHandler.Reject)
	salesRoutes.POST("/quotations/:id/convert", quotationHandler.Convert)
	salesRoutes.POST("/quotations/expire-due", quotationHandler.ExpireDue)

	salesRoutes.POST("/orders", salesOrderHandler.Create)
	salesRoutes.GET("/orders", salesOrderHandler.List)
	salesRoutes.GET("/orders/stats/summary", salesOrderHandler.StatusSummary)
	salesRoutes.GET("/orders/events", sseHandler.Stream)
	salesRoutes.GET("/orders/number/:number", salesOrderHandler.GetByNumber)
	salesRoutes.GET("/orders/:id", salesOrderHandler.Get)
	salesRoutes.DELETE("/orders/:id", salesOrderHandler.Delete)
	salesRoutes.POST("/orders/:id/items", salesOrderHandler.AddItem)
	salesRoutes.DELETE("/orders/:id/items/:itemId", salesOrderHandler.RemoveItem)
	salesRoutes.POST("/orders/:id/confirm", salesOrderHandler.Confirm)
	salesRoutes.POST("/orders/:id/start-production", salesOrderHandler.StartProduction)
	salesRoutes.POST("/orders/:id/ready", salesOrderHandler.MarkReady)
	salesRoutes.POST("/orders/:id/deliver", salesOrderHandler.MarkDelivered)
	salesRoutes.POST("/orders/:id/advance", salesOrderHandler.RecordAdvance)
	salesRoutes.POST("/orders/:id/cancel", salesOrderHandler.Cancel)

	salesRoutes.POST("/invoices", invoiceHandler.Create)
	salesRoutes.POST("/invoices/from-order", invoiceHandler.IssueFromOrder)
	salesRoutes.GET("/invoices", invoiceHandler.List)
	salesRoutes.GET("/invoices/number/:number", invoiceHandler.GetByNumber)
	salesRoutes.GET("/invoices/:id", invoiceHandler.Get)
	salesRoutes.POST("/invoices/:id/payments", invoiceHandler.RecordPayment)
	salesRoutes.POST("/invoices/:id/void", invoiceHandler.Void)
	salesRoutes.POST("/invoices/:id/share", invoiceHandler.EnableSharing)
	salesRoutes.DELETE("/invoices/:id/share", invoiceHandler.DisableSharing)

	// Purchasing domain (purchase orders, supplier bills, bill scans)
	purchasingRoutes := router.NewDomainGroup("purchasing", "/purchasing")
	purchasingRoutes.POST("/orders", purchaseOrderHandler.Create)
	purchasingRoutes.GET("/orders", purchaseOrderHandler.List)
	purchasingRoutes.GET("/orders/number/:number", purchaseOrderHandler.GetByNumber)
	purchasingRoutes.GET("/orders/:id", purchaseOrderHandler.Get)
	purchasingRoutes.PUT("/orders/:id", purchaseOrderHandler.Update)
	purchasingRoutes.DELETE("/orders/:id", purchaseOrderHandler.Delete)
	purchasingRoutes.POST("/orders/:id/items", purchaseOrderHandler.AddItem)
	purchasingRoutes.DELETE("/orders/:id/items/:itemId", purchaseOrderHandler.RemoveItem)
	purchasingRoutes.POST("/orders/:id/send", purchaseOrderHandler.Send)
	purchasingRoutes.POST("/orders/:id/receive", purchaseOrderHandler.ReceiveItem)
	purchasingRoutes.POST("/orders/:id/cancel", purchaseOrderHandler.Cancel)

	purchasingRoutes.POST("/bills", supplierBillHandler.Create)
	purchasingRoutes.GET("/bills", supplierBillHandler.List)
	purchasingRoutes.GET("/bills/:id", supplierBillHandler.Get)
	purchasingRoutes.DELETE("/bills/:id", supplierBillHandler.Delete)
	purchasingRoutes.POST("/bills/:id/approve", supplierBillHandler.Approve)
	purchasingRoutes.POST("/bills/:id/payments", supplierBillHandler.RecordPayment)
	purchasingRoutes.POST("/bills/:id/dispute", supplierBillHandler.Dispute)

	purchasingRoutes.POST("/scans", billScanHandler.Upload)
	purchasingRoutes.GET("/scans", billScanHandler.List)
	purchasingRoutes.POST("/scans/process-pending", billScanHandler.ProcessPending)
	purchasingRoutes.GET("/scans/:id", billScanHandler.Get)
	purchasingRoutes.GET("/scans/:id/download-url", billScanHandler.DownloadURL)
	purchasingRoutes.POST("/scans/:id/process", billScanHandler.Process)
	purchasingRoutes.POST("/scans/:id/review", billScanHandler.Review)
	purchasingRoutes.POST("/scans/:id/convert", billScanHandler.Convert)
	purchasingRoutes.POST("/scans/:id/discard", billScanHandler.Discard)

	// Inventory domain
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.POST("/items", inventoryHandler.Create)
	inventoryRoutes.GET("/items", inventoryHandler.List)
	inventoryRoutes.GET("/items/sku/:sku", inventoryHandler.GetBySKU)
	inventoryRoutes.GET("/items/:id", inventoryHandler.Get)
	inventoryRoutes.PUT("/items/:id", inventoryHandler.Update)
	inventoryRoutes.POST("/items/:id/receive", inventoryHandler.Receive)
	inventoryRoutes.POST("/items/:id/issue", inventoryHandler.Issue)
	inventoryRoutes.POST("/items/:id/adjust", inventoryHandler.Adjust)
	inventoryRoutes.GET("/items/:id/movements", inventoryHandler.Movements)
	inventoryRoutes.POST("/items/:id/activate", inventoryHandler.Activate)
	inventoryRoutes.POST("/items/:id/deactivate", inventoryHandler.Deactivate)

	// Accounting domain (fiscal periods, journal, cash book)
	accountingRoutes := router.NewDomainGroup("accounting", "/accounting")
	accountingRoutes.POST("/periods", accountingHandler.CreatePeriod)
	accountingRoutes.GET("/periods", accountingHandler.ListPeriods)
	accountingRoutes.GET("/periods/:id", accountingHandler.GetPeriod)
	accountingRoutes.POST("/periods/:id/close", accountingHandler.ClosePeriod)
	accountingRoutes.POST("/periods/:id/reopen", accountingHandler.ReopenPeriod)
	accountingRoutes.POST("/periods/:id/lock", accountingHandler.LockPeriod)

	accountingRoutes.POST("/journal-entries", accountingHandler.CreateJournalEntry)
	accountingRoutes.GET("/journal-entries", accountingHandler.ListJournalEntries)
	accountingRoutes.GET("/journal-entries/:id", accountingHandler.GetJournalEntry)
	accountingRoutes.DELETE("/journal-entries/:id", accountingHandler.DeleteJournalEntry)
	accountingRoutes.POST("/journal-entries/:id/lines", accountingHandler.AddJournalLine)
	accountingRoutes.POST("/journal-entries/:id/post", accountingHandler.PostJournalEntry)
	accountingRoutes.POST("/journal-entries/:id/reverse", accountingHandler.ReverseJournalEntry)

	accountingRoutes.POST("/cash-book", accountingHandler.RecordCashEntry)
	accountingRoutes.GET("/cash-book/report", accountingHandler.CashBookReport)
	accountingRoutes.GET("/cash-book/:id", accountingHandler.GetCashEntry)

	// Costing domain
	costingRoutes := router.NewDomainGroup("costing", "/costing")
	costingRoutes.POST("/sheets", costingHandler.Create)
	costingRoutes.GET("/sheets", costingHandler.List)
	costingRoutes.GET("/sheets/:id", costingHandler.Get)
	costingRoutes.PUT("/sheets/:id", costingHandler.Update)
	costingRoutes.DELETE("/sheets/:id", costingHandler.Delete)
	costingRoutes.POST("/sheets/:id/finalize", costingHandler.Finalize)
	costingRoutes.POST("/formulas/validate", costingHandler.ValidateFormula)

	// Document domain (templates, communications, reminders)
	documentRoutes := router.NewDomainGroup("documents", "/documents")
	documentRoutes.POST("/templates", templateHandler.Create)
	documentRoutes.GET("/templates", templateHandler.List)
	documentRoutes.GET("/templates/:id", templateHandler.Get)
	documentRoutes.PUT("/templates/:id", templateHandler.Update)
	documentRoutes.DELETE("/templates/:id", templateHandler.Delete)
	documentRoutes.POST("/templates/:id/default", templateHandler.SetDefault)
	documentRoutes.POST("/templates/:id/activate", templateHandler.Activate)
	documentRoutes.POST("/templates/:id/deactivate", templateHandler.Deactivate)
	documentRoutes.POST("/render", templateHandler.Render)
	documentRoutes.POST("/render/archive", templateHandler.RenderArchive)

	documentRoutes.POST("/communications", communicationHandler.Dispatch)
	documentRoutes.GET("/communications", communicationHandler.List)
	documentRoutes.POST("/communications/process-queued", communicationHandler.ProcessQueued)
	documentRoutes.GET("/communications/document/:documentId", communicationHandler.ListByDocument)
	documentRoutes.GET("/communications/:id", communicationHandler.Get)

	documentRoutes.POST("/reminders", reminderHandler.Schedule)
	documentRoutes.GET("/reminders", reminderHandler.List)
	documentRoutes.POST("/reminders/notify-overdue", reminderHandler.NotifyOverdue)
	documentRoutes.GET("/reminders/conflicts", reminderHandler.ListConflicts)
	documentRoutes.GET("/reminders/conflicts/:id", reminderHandler.GetConflict)
	documentRoutes.POST("/reminders/conflicts/:id/resolve", reminderHandler.ResolveConflict)
	documentRoutes.GET("/reminders/:id", reminderHandler.Get)
	documentRoutes.POST("/reminders/:id/reschedule", reminderHandler.Reschedule)
	documentRoutes.POST("/reminders/:id/complete", reminderHandler.Complete)
	documentRoutes.POST("/reminders/:id/cancel", reminderHandler.Cancel)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.Info)

	// Register all domain groups
	r.Register(authRoutes).
		Register(identityRoutes).
		Register(partnerRoutes).
		Register(salesRoutes).
		Register(purchasingRoutes).
		Register(inventoryRoutes).
		Register(accountingRoutes).
		Register(costingRoutes).
		Register(documentRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
