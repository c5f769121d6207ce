package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/synlig/seo-portal-api/infrastructure/database/postgres"
	"github.com/synlig/seo-portal-api/infrastructure/migration"
	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/api"
	"github.com/synlig/seo-portal-api/internal/config"
	"github.com/synlig/seo-portal-api/internal/scheduler"
	"github.com/synlig/seo-portal-api/internal/usecases/authenticating"
	"github.com/synlig/seo-portal-api/internal/usecases/customering"
	"github.com/synlig/seo-portal-api/internal/usecases/messaging"
	"github.com/synlig/seo-portal-api/internal/usecases/notifying"
	"github.com/synlig/seo-portal-api/internal/usecases/reporting"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid log level: %s, falling back to 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	if err := migration.Run(ctx, pgConn); err != nil {
		logrus.WithError(err).Fatal("Failed to run database migrations")
	}

	reportRepo := repository.NewReportRepository(pgConn)
	customerRepo := repository.NewCustomerRepository(pgConn)
	userRepo := repository.NewUserRepository(pgConn)
	connectionRepo := repository.NewConnectionRepository(pgConn)
	threadRepo := repository.NewThreadRepository(pgConn)
	notificationRepo := repository.NewNotificationRepository(pgConn)
	settingsRepo := repository.NewSettingsRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg)
	notifyingService := notifying.NewService(notificationRepo, userRepo, settingsRepo)
	reportingService := reporting.NewService(reportRepo, customerRepo, notifyingService)
	customerService := customering.NewService(customerRepo, connectionRepo)
	messagingService := messaging.NewService(threadRepo, notifyingService)

	draftSeederService := scheduler.NewDraftSeederService(reportingService, settingsRepo, cfg)

	if err := draftSeederService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Failed to start draft seeder scheduler")
	} else {
		logrus.Info("Draft seeder scheduler started")
	}

	server, err := api.New(
		cfg,
		reportingService,
		customerService,
		messagingService,
		notifyingService,
		authenticator,
		settingsRepo,
		draftSeederService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to ping PostgreSQL")
	}

	logrus.Info("PostgreSQL connection established")
	return conn
}
