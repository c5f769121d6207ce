package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/synlig/seo-portal-api/infrastructure/repository"
	"github.com/synlig/seo-portal-api/internal/api/handler"
	"github.com/synlig/seo-portal-api/internal/api/handler/router"
	"github.com/synlig/seo-portal-api/internal/config"
	"github.com/synlig/seo-portal-api/internal/scheduler"
	"github.com/synlig/seo-portal-api/internal/usecases/authenticating"
	"github.com/synlig/seo-portal-api/internal/usecases/customering"
	"github.com/synlig/seo-portal-api/internal/usecases/messaging"
	"github.com/synlig/seo-portal-api/internal/usecases/notifying"
	"github.com/synlig/seo-portal-api/internal/usecases/reporting"
	"github.com/synlig/seo-portal-api/pkg/middleware"
)

type Server struct {
	httpServer *http.Server
}

func New(
	config *config.Config,
	reportingService reporting.ReportingService,
	customerService customering.CustomerService,
	messagingService messaging.MessagingService,
	notifyingService notifying.NotifyingService,
	authenticator authenticating.Authenticator,
	settingsRepo repository.SettingsRepository,
	draftSeederService *scheduler.DraftSeederService,
) (*Server, error) {
	cronServices := handler.CronJobServices{
		DraftSeederService: draftSeederService,
	}

	rt := router.New(
		router.WithRoutes(handler.Healthcheck()...),
		router.WithRoutes(handler.Authentication(authenticator)...),
		router.WithRoutes(handler.User(authenticator)...),
		router.WithRoutes(handler.Customers(customerService)...),
		router.WithRoutes(handler.Reports(reportingService, config.Upload)...),
		router.WithRoutes(handler.Messaging(messagingService)...),
		router.WithRoutes(handler.Notifications(notifyingService)...),
		router.WithRoutes(handler.Settings(settingsRepo)...),
		router.WithRoutes(handler.CronJobs(cronServices)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(),
		middleware.AuthMiddleware(authenticator),
	}

	handler := alice.New(middlewares...).Then(rt)

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 2 * time.Second,
		},
	}

	return srv, nil
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Server starting")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Server error")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Interrupt signal received")
	case <-ctx.Done():
		logrus.Info("Application context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": "15s",
	}).Info("Starting graceful shutdown")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Error during server shutdown")
		return err
	}

	logrus.Info("Server stopped")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return err
	}

	logrus.Info("HTTP server stopped")
	return nil
}
