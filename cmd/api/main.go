package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PratikDhanave/idp-hook-bridge/internal/bootstrap"
	"github.com/PratikDhanave/idp-hook-bridge/internal/config"
	"github.com/PratikDhanave/idp-hook-bridge/internal/duo"
	"github.com/PratikDhanave/idp-hook-bridge/internal/hooks"
	"github.com/PratikDhanave/idp-hook-bridge/internal/httpserver"
	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
	"github.com/PratikDhanave/idp-hook-bridge/internal/okta"
)

var (
	_ hooks.Directory[*duo.User] = (*duo.Client)(nil)
	_ hooks.Initiator            = (*okta.Client)(nil)
)

const shutdownTimeout = 15 * time.Second

// main boots the service: config → secrets → dedup store → clients → HTTP server.
func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format).
		WithField(logging.FieldService, "idp-hook-bridge")

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("service stopped")
	}
}

func run(cfg *config.Config, logger *logrus.Entry) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, err := bootstrap.LoadSecrets(ctx, cfg)
	if err != nil {
		return err
	}
	if err := creds.Validate(cfg.Hooks.OktaEnabled); err != nil {
		return err
	}

	dd, err := bootstrap.OpenDedup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer dd.Close()

	directory, err := bootstrap.NewDuoClient(cfg, creds, logger)
	if err != nil {
		return err
	}

	deps := httpserver.Deps{Ready: dd.Ready, Logger: logger}
	if cfg.Hooks.Auth0Enabled {
		deps.Auth0 = hooks.NewAuth0Processor[*duo.User](creds.RecipientAuthorizationSecret, directory, hooks.Auth0Options{
			JITGroups: cfg.Hooks.Auth0JITGroups,
		}, logger)
	}
	if cfg.Hooks.OktaEnabled {
		initiator, err := bootstrap.NewOktaClient(ctx, cfg, creds, logger)
		if err != nil {
			return err
		}
		jit := cfg.Hooks.OktaJITGroups
		deps.Okta = hooks.NewOktaProcessor[*duo.User](creds.RecipientAuthorizationSecret, directory, initiator, hooks.OktaOptions{
			JITGroups: &jit,
			Tracker:   dd.Tracker,
		}, logger)
	}

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(deps))

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":          srv.Addr,
			"auth0_enabled": cfg.Hooks.Auth0Enabled,
			"okta_enabled":  cfg.Hooks.OktaEnabled,
			"dedup_backend": cfg.Dedup.Backend,
		}).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
