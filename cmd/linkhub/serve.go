package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/linkhub/internal/accounts"
	"github.com/joestump/linkhub/internal/api"
	"github.com/joestump/linkhub/internal/auth"
	"github.com/joestump/linkhub/internal/build"
	"github.com/joestump/linkhub/internal/cache"
	"github.com/joestump/linkhub/internal/config"
	"github.com/joestump/linkhub/internal/db"
	"github.com/joestump/linkhub/internal/links"
	"github.com/joestump/linkhub/internal/logging"
	"github.com/joestump/linkhub/internal/metrics"
	"github.com/joestump/linkhub/internal/store"
)

const (
	shutdownTimeout   = 15 * time.Second
	linkGaugeInterval = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logging.New(cfg.Log.Level, cfg.Log.Format)
			defer func() { _ = log.Sync() }()
			log.Info("starting linkhub", zap.String("build", build.String()))

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			accountStore := store.NewAccountStore(database)
			linkStore := store.NewLinkStore(database)

			var accountCache auth.AccountCache
			if cfg.Redis.Addr != "" {
				client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
				if err != nil {
					return err
				}
				defer func() { _ = client.Close() }()
				accountCache = cache.NewRedisAccountCache(client, cache.DefaultTTL)
				log.Info("account cache enabled", zap.String("redis", cfg.Redis.Addr))
			}

			deps := api.Deps{
				Authenticator: auth.NewAuthenticator(accountStore, accountCache, []byte(cfg.Secrets.TokenSecret), log),
				Accounts:      accounts.NewService(accountStore, []byte(cfg.Secrets.HashSecret), []byte(cfg.Secrets.TokenSecret), log),
				Links:         links.NewService(linkStore, log),
				Log:           log,
				Ping:          database.PingContext,
				CORSOrigins:   cfg.CORSOrigins,
			}

			if cfg.OIDCEnabled() {
				provider, err := auth.NewProvider(ctx, cfg)
				if err != nil {
					return err
				}
				deps.IdentityProvider = provider
				deps.Sessions = auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, cfg.InsecureCookies)
				log.Info("oidc login enabled", zap.String("issuer", cfg.OIDC.Issuer))
			}

			go runLinkGauge(ctx, linkStore, log)

			srv := &http.Server{
				Addr:         cfg.HTTP.Addr,
				Handler:      api.NewRouter(deps),
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", zap.String("addr", cfg.HTTP.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// runLinkGauge keeps the active-links gauge current until ctx is cancelled.
func runLinkGauge(ctx context.Context, ls *store.LinkStore, log *zap.Logger) {
	ticker := time.NewTicker(linkGaugeInterval)
	defer ticker.Stop()
	for {
		if n, err := ls.CountActive(ctx); err == nil {
			metrics.LinksActive.Set(float64(n))
		} else if ctx.Err() == nil {
			log.Warn("count active links", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
