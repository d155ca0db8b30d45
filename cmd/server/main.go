package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"technika/config"
	"technika/internal/adapters/auth"
	"technika/internal/adapters/email"
	"technika/internal/adapters/telemetry"
	"technika/internal/adapters/tiqr"
	delivery "technika/internal/delivery/http"
	"technika/internal/delivery/http/controllers"
	"technika/internal/delivery/http/middleware"
	"technika/internal/delivery/http/ws"
	"technika/internal/domain"
	"technika/internal/repository/postgres"
	"technika/internal/services"
)

const (
	serviceName    = "technika"
	serviceVersion = "1.0.0"

	requestTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title Technika Registration API
// @version 1.0
// @description Registration and ticketing backend for the festival.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	if telemetry.Enabled(cfg.SentryDSN, cfg.Environment, cfg.SentryDisabled) {
		if err := telemetry.Init(cfg.SentryDSN, cfg.Environment, logger); err != nil {
			logger.Error("sentry init failed", "error", err)
		} else {
			defer telemetry.Flush()
		}
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	alumniStore := postgres.NewRegistrationRepository(db, "alumni_registrations")
	accommodationStore := postgres.NewRegistrationRepository(db, "accommodation_registrations")
	ticketRepo := postgres.NewTicketBookingRepository(db)
	delegateRepo := postgres.NewDelegateRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	merchRepo := postgres.NewMerchRepository(db)

	provider := tiqr.NewClient(tiqr.Config{
		BaseURL:  cfg.TiqrBaseURL,
		APIToken: cfg.TiqrAPIToken,
		Timeout:  cfg.TiqrTimeout,
	}, logger)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret, cfg.AuthSkipExpiryCheck)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipTLS,
		},
	})
	if err != nil {
		logger.Error("mailer init failed", "error", err)
		os.Exit(1)
	}
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	alumniRegistrar := services.NewRegistrar(services.DomainConfig{
		Name:         domain.CategoryAlumni,
		Ticket:       domain.TicketAlumni,
		CallbackPath: "/alumni",
		Store:        alumniStore,
	}, provider, cfg.PaymentBaseURL, cfg.FrontendBaseURL, logger, requestTimeout)
	accommodationRegistrar := services.NewRegistrar(services.DomainConfig{
		Name:         domain.CategoryAccommodation,
		Ticket:       domain.TicketAccommodation,
		CallbackPath: "/accommodation",
		Store:        accommodationStore,
	}, provider, cfg.PaymentBaseURL, cfg.FrontendBaseURL, logger, requestTimeout)

	reconciler := services.NewReconciler(
		provider,
		map[domain.Category]services.CategoryStore{
			domain.CategoryAlumni:        alumniStore,
			domain.CategoryAccommodation: accommodationStore,
		},
		delegateRepo,
		eventRepo,
		merchRepo,
		ticketRepo,
		emailSvc,
		logger,
	)

	bitGrant := services.BitEmailGrant(cfg.BitEmailDomain)
	alumniSvc := services.NewAlumniService(alumniRegistrar, reconciler, requestTimeout)
	accommodationSvc := services.NewAccommodationService(accommodationRegistrar, reconciler, requestTimeout)
	delegateSvc := services.NewDelegateService(delegateRepo, provider, cfg.PaymentBaseURL, cfg.FrontendBaseURL+"/delegate", logger, requestTimeout)
	eventSvc := services.NewEventService(eventRepo, provider, bitGrant, cfg.FrontendBaseURL+"/events", logger, requestTimeout)
	merchSvc := services.NewMerchService(merchRepo, provider, cfg.FrontendBaseURL+"/merch", logger, requestTimeout)
	bookSvc := services.NewTicketBookingService(ticketRepo, provider, cfg.PaymentBaseURL, cfg.FrontendBaseURL, logger, requestTimeout)

	relay := ws.NewRelay(cfg.WebhookToken, cfg.CORSAllowedOrigins, logger)

	mux := delivery.NewRouter(delivery.RouterConfig{
		Verifier:     verifier,
		WebhookToken: cfg.WebhookToken,
		AuthToken:    cfg.AuthToken,
	}, delivery.Controllers{
		Root:          controllers.NewRootController(serviceName, serviceVersion, cfg.BitEmailDomain),
		Alumni:        controllers.NewAlumniController(logger, alumniSvc),
		Accommodation: controllers.NewAccommodationController(logger, accommodationSvc),
		Delegate:      controllers.NewDelegateController(logger, delegateSvc),
		Event:         controllers.NewEventController(logger, eventSvc),
		Merch:         controllers.NewMerchController(logger, merchSvc),
		Book:          controllers.NewBookController(logger, bookSvc),
		BookingProxy:  controllers.NewBookingProxyController(logger, provider),
		Webhook:       controllers.NewWebhookController(logger, reconciler),
	}, relay, logger)

	handler := middleware.CORS(cfg.CORSAllowedOrigins,
		middleware.LoggingMiddleware(logger,
			middleware.Metrics(mux)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
