package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"portfolio/app/config"
	"portfolio/app/controllers"
	"portfolio/app/middleware"
	"portfolio/app/routes"
	"portfolio/app/services"
	"portfolio/app/sessions"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return RunAppServer(ctx, cfg, newLogger(cmd, cfg))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

// RunAppServer serves the blog until ctx is canceled, then shuts down gracefully.
func RunAppServer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	handler, err := newHandler(cfg, b, logger)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	logger.Info("starting blog service", "addr", listener.Addr().String(), "driver", cfg.Database.Driver)
	return serve(ctx, srv, listener, cfg, logger)
}

func serve(ctx context.Context, srv *http.Server, listener net.Listener, cfg config.Config, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func newHandler(cfg config.Config, b *backend, logger *slog.Logger) (http.Handler, error) {
	templates, err := controllers.LoadTemplates(cfg.Paths.Views)
	if err != nil {
		return nil, err
	}

	sessionDB, err := b.sessions()
	if err != nil {
		return nil, err
	}
	manager := sessions.NewManager(sessions.NewBadgerStore(sessionDB, cfg.Session.TTL), logger)
	if cfg.Session.CookieName != "" {
		manager.CookieName = cfg.Session.CookieName
	}
	manager.Secure = cfg.Session.Secure
	manager.TTL = cfg.Session.TTL

	svc := services.New(b.repos, logger)
	deps := controllers.Dependencies{
		Posts:     svc.Posts,
		Comments:  svc.Comments,
		Tags:      svc.Tags,
		Bookmarks: svc.Bookmarks,
		Sessions:  manager,
		Templates: templates,
		Logger:    logger,
	}
	return routes.Setup(deps, routes.Options{
		StaticDir: cfg.Paths.Static,
		MediaDir:  cfg.Paths.Media,
		Limiter:   middleware.NewIPLimiter(cfg.Comments.RatePerMinute, cfg.Comments.Burst),
	}), nil
}
