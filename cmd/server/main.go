// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"google.golang.org/api/option"

	"github.com/tomtom215/tmmbs/internal/api"
	"github.com/tomtom215/tmmbs/internal/auth"
	"github.com/tomtom215/tmmbs/internal/config"
	"github.com/tomtom215/tmmbs/internal/docstore"
	"github.com/tomtom215/tmmbs/internal/logging"
	"github.com/tomtom215/tmmbs/internal/metrics"
	"github.com/tomtom215/tmmbs/internal/site"
	"github.com/tomtom215/tmmbs/internal/supervisor"
	"github.com/tomtom215/tmmbs/internal/supervisor/services"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.SetAppInfo(version, runtime.Version(), time.Now())

	logging.Info().
		Str("version", version).
		Str("identity_mode", cfg.Identity.Mode).
		Str("store_backend", cfg.Store.Backend).
		Str("project_id", cfg.Identity.ProjectID).
		Msg("Starting tmmbs")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	creds, err := cfg.Identity.ResolveCredentials()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to resolve Google credentials")
	}
	clientOpts := creds.ClientOptions()
	logging.Info().Str("source", creds.Source).Msg("Google credentials resolved")

	oracle, err := newOracle(ctx, cfg.Identity, clientOpts)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize identity oracle")
	}

	verifier := auth.NewVerifier(oracle, auth.VerifierConfig{
		Name:        "identity-" + cfg.Identity.Mode,
		Timeout:     cfg.Identity.VerifyTimeout,
		MaxFailures: cfg.Identity.BreakerMaxFailures,
		OpenTimeout: cfg.Identity.BreakerTimeout,
	})
	roles := auth.NewAdminAllowList(cfg.Security.AdminEmails, cfg.Security.AdminDomains)
	if roles.Len() == 0 {
		logging.Warn().Msg("No admin emails or domains configured; the admin dashboard is unreachable")
	}

	sameSite, err := config.ParseSameSite(cfg.Session.SameSite)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid session SameSite mode")
	}
	cookies := auth.NewSessionCookies(auth.CookieConfig{
		Name:     cfg.Session.CookieName,
		Path:     "/",
		Domain:   cfg.Session.Domain,
		TTL:      cfg.Session.TTL,
		Secure:   cfg.Session.Secure,
		SameSite: sameSite,
	})

	store, err := docstore.Open(ctx, cfg.Store, cfg.Identity.ProjectID, clientOpts...)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()
	logging.Info().Str("backend", cfg.Store.Backend).Msg("Document store opened")

	authHandlers := auth.NewHandlers(verifier, roles, cookies, auth.WebConfig{
		APIKey:            cfg.FirebaseWeb.APIKey,
		AuthDomain:        cfg.FirebaseWeb.AuthDomain,
		ProjectID:         cfg.FirebaseWeb.ProjectID,
		StorageBucket:     cfg.FirebaseWeb.StorageBucket,
		MessagingSenderID: cfg.FirebaseWeb.MessagingSenderID,
		AppID:             cfg.FirebaseWeb.AppID,
		MeasurementID:     cfg.FirebaseWeb.MeasurementID,
	})

	router := api.NewRouter(
		api.NewHandler(site.NewRepository(store, site.WithCatalogTTL(cfg.Store.CatalogTTL)), version),
		authHandlers,
		auth.NewMiddleware(verifier, roles, cookies),
		auth.NewGate(cfg.Session.SignInPath),
		auth.NewCSRFMiddleware(&auth.CSRFConfig{
			CookieDomain:   cfg.Session.Domain,
			CookieSecure:   cfg.Session.Secure,
			CookieSameSite: sameSite,
			TrustedOrigins: cfg.Security.CORSOrigins,
		}),
		api.NewChiMiddlewareFromConfig(
			cfg.Security.CORSOrigins,
			cfg.Security.RateLimitReqs,
			cfg.Security.RateLimitWindow,
			cfg.Security.RateLimitDisabled,
			cfg.Security.SignInRateLimit,
		),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if gc, ok := store.(services.GCRunner); ok && !cfg.Store.InMemory {
		tree.AddStoreService(services.NewStoreGCService(gc, cfg.Store.GCInterval))
		logging.Info().Dur("interval", cfg.Store.GCInterval).Msg("Store GC service added")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("tmmbs stopped")
}

// newOracle builds the identity oracle for the configured mode.
func newOracle(ctx context.Context, cfg config.IdentityConfig, opts []option.ClientOption) (auth.Oracle, error) {
	switch cfg.Mode {
	case "jwks":
		keys := auth.NewJWKSCache(cfg.JWKSURL, nil, cfg.JWKSCacheTTL)
		logging.Info().Str("jwks_url", keys.URI()).Msg("Verifying sessions against published signing keys")
		return auth.NewJWKSOracle(cfg.ProjectID, keys), nil
	case "firebase", "":
		o, err := auth.NewFirebaseOracle(ctx, cfg.ProjectID, opts...)
		if err != nil {
			return nil, err
		}
		logging.Info().Msg("Verifying sessions with the Firebase Admin SDK")
		return o, nil
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
}
