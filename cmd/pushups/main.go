package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "pushups/internal/adapter/http"
	"pushups/internal/adapter/memory"
	"pushups/internal/adapter/postgres"
	"pushups/internal/app"
	"pushups/internal/config"
	"pushups/internal/domain"
	"pushups/internal/logger"
)

const sessionPurgeInterval = time.Hour

// store is everything the services need from a backend.
type store interface {
	domain.GroupRepository
	domain.ProfileRepository
	domain.LogRepository
	domain.StreakCalculator
	domain.SessionRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, feed, closer, err := openStore(cfg)
	if err != nil {
		logger.Error("store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()
	logger.Success("store ready (%s)", cfg.Store)

	hub := app.NewChangeHub(feed)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("change hub: %v", err)
		}
	}()

	sessions := app.NewSessionService(db, db, db, cfg.SessionTTL)
	go purgeSessions(ctx, sessions)

	srv := adapthttp.New(adapthttp.Services{
		Groups:      app.NewGroupService(db),
		Profiles:    app.NewProfileService(db, db),
		Sessions:    sessions,
		Logs:        app.NewLogService(db, db, db),
		Leaderboard: app.NewLeaderboardService(db, db, cfg.ChallengeYear),
		Analytics:   app.NewAnalyticsService(db, cfg.ChallengeYear),
		Changes:     hub,
	}, adapthttp.Options{
		WebDir:        cfg.WebDir,
		ChallengeYear: cfg.ChallengeYear,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
	})

	if cfg.SSOEnabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCSecret, cfg.OIDCRedirectURL)
		if err != nil {
			logger.Warn("sso disabled: %v", err)
		} else {
			srv.WithOIDC(oidcCfg)
			logger.Info("sso enabled via %s", cfg.OIDCIssuer)
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening on %s (challenge year %d)", cfg.Addr, cfg.ChallengeYear)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http: %v", err)
		os.Exit(1)
	}
	logger.Success("shut down")
}

func openStore(cfg *config.Config) (store, domain.LogChangeFeed, io.Closer, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		m := memory.New()
		return m, m, io.NopCloser(nil), nil
	}
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return db, postgres.NewChangeFeed(cfg.DatabaseURL), db, nil
}

func purgeSessions(ctx context.Context, sessions *app.SessionService) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge sessions: %v", err)
				continue
			}
			if n > 0 {
				logger.Info("purged %d expired sessions", n)
			}
		}
	}
}
