package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/kitzone/api/internal/di"
	"github.com/kitzone/api/internal/handlers"
	"github.com/kitzone/api/internal/notifications"
	"github.com/kitzone/api/internal/platform/auth"
	"github.com/kitzone/api/internal/platform/config"
	pfirestore "github.com/kitzone/api/internal/platform/firestore"
	"github.com/kitzone/api/internal/platform/idempotency"
	"github.com/kitzone/api/internal/platform/jobs"
	"github.com/kitzone/api/internal/platform/observability"
	"github.com/kitzone/api/internal/platform/secrets"
	platformstorage "github.com/kitzone/api/internal/platform/storage"
	firestoreRepo "github.com/kitzone/api/internal/repositories/firestore"
	"github.com/kitzone/api/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	fetcher, err := secrets.NewFetcher(ctx,
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithEnvironment(os.Getenv("APP_ENV")),
	)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}

	registry, err := firestoreRepo.NewRegistry(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier)

	mailer := buildMailer(logger, cfg.Mail)
	events, eventsCleanup := buildEventPublisher(ctx, logger, cfg.Events)
	defer eventsCleanup()
	mediaSigner := buildMediaSigner(logger, cfg)

	container, err := di.NewContainer(di.Deps{
		Config:       cfg,
		Repositories: registry,
		Mailer:       mailer,
		Events:       events,
		MediaSigner:  mediaSigner,
		Build: services.BuildInfo{
			Version:     os.Getenv("APP_VERSION"),
			Environment: os.Getenv("APP_ENV"),
			StartedAt:   startedAt,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to build service container", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("container close error", zap.Error(err))
		}
	}()

	idempotencyStore := idempotency.NewFirestoreStore(firestoreClient)
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithMethods(http.MethodPost),
		idempotency.WithLogger(observability.NewPrintfAdapter(logger.Named("idempotency"))),
	)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	var cleanupWG sync.WaitGroup
	cleanupTicker := time.NewTicker(cfg.Idempotency.CleanupInterval)
	cleanupWG.Add(1)
	go func() {
		defer cleanupWG.Done()
		cleanupLogger := logger.Named("idempotency")
		for {
			select {
			case <-cleanupTicker.C:
				runCtx, cancel := context.WithTimeout(cleanupCtx, time.Minute)
				removed, err := idempotencyStore.CleanupExpired(runCtx, time.Now().UTC(), cfg.Idempotency.CleanupBatchSize)
				cancel()
				if err != nil {
					cleanupLogger.Error("idempotency cleanup error", zap.Error(err))
					continue
				}
				if removed > 0 {
					cleanupLogger.Info("idempotency cleanup removed records", zap.Int("count", removed))
				}
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	svc := container.Services

	reviewsForHandlers := svc.Reviews
	if !cfg.Features.EnableReviews {
		reviewsForHandlers = nil
	}
	discountsForAdmin := svc.Discounts
	if !cfg.Features.EnableDiscounts {
		discountsForAdmin = nil
	}

	adminHandlers := handlers.NewAdminHandlers(handlers.AdminHandlersDeps{
		Authenticator: authenticator,
		Catalog:       svc.Catalog,
		Media:         svc.Media,
		Orders:        svc.Orders,
		Discounts:     discountsForAdmin,
		Reviews:       reviewsForHandlers,
		ListTimeout:   cfg.Admin.ListTimeout,
	})

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(cfg.Firebase.ProjectID),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(svc.System)),
		handlers.WithProductRoutes(handlers.NewCatalogHandlers(authenticator, svc.Catalog, reviewsForHandlers).Routes),
		handlers.WithContactRoutes(handlers.NewContactHandlers(svc.Contact, cfg.RateLimits.ContactPerMinute, time.Minute).Routes),
		handlers.WithCartRoutes(handlers.NewCartHandlers(authenticator, svc.Cart).Routes),
		handlers.WithWishlistRoutes(handlers.NewWishlistHandlers(authenticator, svc.Wishlist).Routes),
		handlers.WithCheckoutRoutes(handlers.NewCheckoutHandlers(authenticator, svc.Checkout).Routes, idempotencyMiddleware),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(authenticator, svc.Orders).Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("kitzone api listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}

	cleanupTicker.Stop()
	cleanupCancel()
	cleanupWG.Wait()

	logger.Info("kitzone api stopped")
}

// buildMailer returns the Resend mailer when an API key is configured and a
// silent noop otherwise so local runs work without credentials.
func buildMailer(logger *zap.Logger, cfg config.MailConfig) notifications.Mailer {
	if cfg.APIKey == "" {
		logger.Warn("mail api key not configured; outbound email disabled")
		return notifications.NoopMailer{}
	}
	mailer, err := notifications.NewResendMailer(cfg.APIKey, cfg.FromAddress)
	if err != nil {
		logger.Warn("mailer init failed; outbound email disabled", zap.Error(err))
		return notifications.NoopMailer{}
	}
	return mailer
}

// buildEventPublisher connects the Pub/Sub order event publisher when a topic
// is configured. The returned cleanup stops the topic and closes the client.
func buildEventPublisher(ctx context.Context, logger *zap.Logger, cfg config.EventsConfig) (services.OrderEventPublisher, func()) {
	noop := func() {}
	if cfg.OrdersTopic == "" {
		logger.Warn("orders topic not configured; order events disabled")
		return nil, noop
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		logger.Warn("pubsub init failed; order events disabled", zap.Error(err))
		return nil, noop
	}
	topic := client.Topic(cfg.OrdersTopic)

	publisher, err := jobs.NewPubSubOrderEventPublisher(topic)
	if err != nil {
		logger.Warn("event publisher init failed; order events disabled", zap.Error(err))
		_ = client.Close()
		return nil, noop
	}
	return publisher, func() {
		topic.Stop()
		if err := client.Close(); err != nil {
			logger.Warn("pubsub close error", zap.Error(err))
		}
	}
}

// buildMediaSigner prepares the signed URL client used for product image
// uploads. Media uploads are optional; without a service account key the
// admin upload endpoint reports the feature as unavailable.
func buildMediaSigner(logger *zap.Logger, cfg config.Config) services.URLSigner {
	if cfg.Storage.MediaBucket == "" {
		return nil
	}
	keyFile := cfg.Firebase.CredentialsFile
	if keyFile == "" {
		logger.Warn("no service account key configured; media uploads disabled")
		return nil
	}

	signer, err := platformstorage.NewServiceAccountSignerFromFile(keyFile)
	if err != nil {
		logger.Warn("storage signer init failed; media uploads disabled", zap.Error(err))
		return nil
	}
	client, err := platformstorage.NewClient(signer)
	if err != nil {
		logger.Warn("storage client init failed; media uploads disabled", zap.Error(err))
		return nil
	}
	return client
}
