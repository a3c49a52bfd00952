package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/spf13/cobra"

	"github.com/joestump/bookmarks/internal/api"
	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/bookmarks"
	"github.com/joestump/bookmarks/internal/config"
	"github.com/joestump/bookmarks/internal/datarest"
	"github.com/joestump/bookmarks/internal/handler"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/redis"
	"github.com/joestump/bookmarks/internal/store"
)

func newServeCmd() *cobra.Command {
	var withSeed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.close()

			if env.cfg.Seed || withSeed {
				if err := seed(ctx, env); err != nil {
					return err
				}
			}

			router, cleanup, err := buildRouter(ctx, env)
			if err != nil {
				return err
			}
			defer cleanup()

			return listen(ctx, env, router)
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "create demo accounts and bookmarks before serving")
	return cmd
}

// buildRouter wires stores, services and the chosen API variant.
func buildRouter(ctx context.Context, env *runtimeEnv) (http.Handler, func(), error) {
	cfg := env.cfg
	accounts := store.NewAccountStore(env.db)
	bms := store.NewBookmarkStore(env.db)
	cleanup := func() {}

	deps := handler.Deps{
		Variant: cfg.API.Variant,
		Log:     env.log,
		API: api.Deps{
			Service: bookmarks.NewService(accounts, bms),
			BaseURL: cfg.HTTP.BaseURL,
			Log:     env.log,
		},
		DataREST: datarest.Deps{
			Accounts:     accounts,
			Bookmarks:    bms,
			HashPassword: auth.HashPassword,
			BaseURL:      cfg.HTTP.BaseURL,
			Log:          env.log,
		},
	}

	if cfg.API.Variant == config.VariantSession {
		st, closeStore, err := sessionStore(ctx, env)
		if err != nil {
			return nil, nil, err
		}
		cleanup = closeStore

		sm := auth.NewSessionManager(st, cfg.Session.Lifetime, strings.HasPrefix(cfg.HTTP.BaseURL, "https://"))
		tokens := auth.NewSQLTokenStore(env.db)

		deps.API.Sessions = auth.NewHeaderSession(sm, cfg.Session.Header, env.log)
		deps.API.Authenticator = auth.NewAuthenticator(tokens, accounts, sm, env.log)
		deps.API.TokenEndpoint = auth.NewTokenEndpoint(auth.OAuthClient{
			ID:     cfg.OAuth.ClientID,
			Secret: cfg.OAuth.ClientSecret,
			Scopes: cfg.OAuth.Scopes,
		}, cfg.OAuth.TokenTTL, tokens, accounts, env.log)

		if cfg.OIDCEnabled() {
			provider, err := auth.NewProvider(ctx, cfg)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			deps.API.OIDC = auth.NewHandlers(provider, sm, accounts, env.log)
		}
	}

	router, err := handler.NewRouter(deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return router, cleanup, nil
}

// sessionStore returns the configured scs store and a func releasing it.
func sessionStore(ctx context.Context, env *runtimeEnv) (scs.Store, func(), error) {
	cfg := env.cfg
	if cfg.Session.Store != "redis" {
		return auth.NewSQLSessionStore(env.db, cfg.DB.Driver), func() {}, nil
	}

	client, err := redis.Connect(ctx, redis.DefaultOptions(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.ConnectTimeout), env.log)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewRedisStore(client), func() { _ = client.Close() }, nil
}

func listen(ctx context.Context, env *runtimeEnv, router http.Handler) error {
	srv := &http.Server{Addr: env.cfg.HTTP.Addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		env.log.Info("listening",
			logger.String("addr", srv.Addr),
			logger.String("variant", env.cfg.API.Variant))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	env.log.Info("shutting down", logger.Duration("timeout", env.cfg.HTTP.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
