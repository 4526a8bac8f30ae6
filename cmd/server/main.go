package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chainfly/internal/billing"
	rediscache "chainfly/internal/cache/redis"
	"chainfly/internal/config"
	"chainfly/internal/discom"
	"chainfly/internal/email/noop"
	"chainfly/internal/email/ses"
	"chainfly/internal/events/kafka"
	noopevents "chainfly/internal/events/noop"
	"chainfly/internal/handler"
	"chainfly/internal/logger"
	"chainfly/internal/port"
	"chainfly/internal/render/xlsx"
	"chainfly/internal/repository/postgres"
	"chainfly/internal/router"
	"chainfly/internal/service"
	s3storage "chainfly/internal/storage/s3"
	"chainfly/internal/tariff"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	customerRepo := postgres.NewCustomerRepo(db)
	contractRepo := postgres.NewContractRepo(db)
	usageRepo := postgres.NewUsageRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)
	discomRepo := postgres.NewDiscomRepo(db)
	structureRepo := postgres.NewTariffStructureRepo(db)
	subsidyRepo := postgres.NewSubsidyRepo(db)

	// Tariff cache is optional
	var tariffCache port.TariffCache
	if cfg.Redis.Addr != "" {
		redisClient, err := rediscache.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		tariffCache = rediscache.NewTariffCache(redisClient)
		zlog.Info("tariff cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	resolver := tariff.NewResolver(
		discomRepo,
		structureRepo,
		discom.NewClient(time.Duration(cfg.Tariff.DiscomTimeoutSecs)*time.Second),
		tariffCache,
		tariff.ResolverConfig{
			FallbackRate:     cfg.Tariff.FallbackRate,
			FailureThreshold: cfg.Tariff.FailureThreshold,
			Cooldown:         cfg.Tariff.Cooldown,
			CacheTTL:         cfg.Tariff.CacheTTL,
		},
		zlog.Named("tariff"),
		time.Now,
	)

	var publisher port.EventPublisher
	if cfg.Kafka.Enabled() {
		kp, err := kafka.NewPublisher(&cfg.Kafka)
		if err != nil {
			return fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
		defer kp.Close()
		publisher = kp
	} else {
		publisher = noopevents.NewPublisher(zlog.Named("events"))
	}

	objectStorage, err := s3storage.NewS3Client(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(ctx, cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewNoopSender(zlog.Named("email"))
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWT)
	customerSvc := service.NewCustomerService(customerRepo, zlog.Named("customer"), time.Now)
	renderer := xlsx.NewRenderer()
	contractSvc := service.NewContractService(service.ContractDeps{
		ContractRepo: contractRepo,
		CustomerRepo: customerRepo,
		Publisher:    publisher,
		Renderer:     renderer,
		Storage:      objectStorage,
	}, service.ContractConfig{
		DefaultTimezone: cfg.Billing.DefaultTimezone,
		Limits: billing.Limits{
			MaxBackdateDays:    cfg.Billing.MaxBackdateDays,
			MaxFutureStartDays: cfg.Billing.MaxFutureStartDays,
		},
		DocumentBucket:    cfg.S3.Bucket,
		PresignExpirySecs: cfg.S3.PresignExpiry,
	}, zlog.Named("contract"), time.Now)
	usageSvc := service.NewUsageService(usageRepo, contractRepo, zlog.Named("usage"), time.Now)
	tariffSvc := service.NewTariffService(resolver, structureRepo, zlog.Named("tariff"), time.Now)
	invoiceSvc := service.NewInvoiceService(service.InvoiceDeps{
		InvoiceRepo:  invoiceRepo,
		ContractRepo: contractRepo,
		CustomerRepo: customerRepo,
		TariffSvc:    tariffSvc,
		Renderer:     renderer,
		Storage:      objectStorage,
		Email:        emailSender,
		Publisher:    publisher,
	}, service.InvoiceConfig{
		DocumentBucket:     cfg.S3.Bucket,
		PresignExpirySecs:  cfg.S3.PresignExpiry,
		NotifyOnGeneration: cfg.Email.NotifyOnGeneration,
	}, zlog.Named("invoice"), time.Now)
	paymentSvc := service.NewPaymentService(paymentRepo, contractRepo, subsidyRepo, service.PaymentConfig{
		Capex: billing.CapexPolicy{
			UpfrontPercent: cfg.Billing.CapexUpfrontPercent,
			BalanceDueDays: cfg.Billing.CapexBalanceDueDays,
		},
		ReconcileTolerance: cfg.Billing.ReconcileTolerance,
	}, zlog.Named("payment"), time.Now)

	// Start the expiry sweeper
	sweeper := service.NewExpirySweeper(contractSvc, service.ExpirySweepConfig{
		PollInterval: cfg.Billing.SweepInterval,
		BatchSize:    cfg.Billing.SweepBatchSize,
	}, zlog.Named("sweeper"))
	go sweeper.Start(ctx)

	// Initialize handlers
	handlers := &router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Customer: handler.NewCustomerHandler(customerSvc, contractSvc, zlog),
		Contract: handler.NewContractHandler(contractSvc, zlog),
		Usage:    handler.NewUsageHandler(usageSvc, zlog),
		Invoice:  handler.NewInvoiceHandler(invoiceSvc, zlog),
		Tariff:   handler.NewTariffHandler(tariffSvc, zlog),
		Payment:  handler.NewPaymentHandler(paymentSvc, zlog),
	}
	r := router.Setup(authSvc, handlers, cfg.CORS.AllowedOrigins, zlog.Named("http"))

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("addr", cfg.Server.Port), zap.String("environment", cfg.Server.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
