package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/prospect/internal/adapters/http/api"
	"github.com/okian/prospect/internal/adapters/http/swagger"
	"github.com/okian/prospect/internal/auth"
	"github.com/okian/prospect/pkg/logger"
)

// HTTP server timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(st *state) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the athlete and rating API.

SQL stores are migrated to the latest schema on startup. Metrics are exposed
at /healthz and API documentation at /api-docs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				st.cfg.Addr = addr
			}
			if err := st.cfg.Validate(); err != nil {
				return err
			}
			if err := st.cfg.CheckAuthSecret(); err != nil {
				return err
			}
			return serve(cmd.Context(), st)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override the listen address")
	return cmd
}

func serve(ctx context.Context, st *state) error {
	log := logger.Get()
	cfg := st.cfg

	svc, err := st.openService(ctx)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	server := api.NewServer(svc, auth.NewAuthenticator(cfg.AuthSecret),
		api.WithCORSOrigins(cfg.CORSOrigins...),
		api.WithRequestTimeout(cfg.RequestTimeout()),
		api.WithLogger(log.Named("http")),
	)
	router := server.Router(ctx)
	swagger.Register(ctx, router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("db_driver", cfg.DBDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
