package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/spendboard/internal/auth"
	"github.com/mmynk/spendboard/internal/metrics"
	"github.com/mmynk/spendboard/internal/middleware"
	"github.com/mmynk/spendboard/internal/service"
)

func newServeCommand(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Connect API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default from PORT)")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", a.cfg.DBPath)

	eng := a.cfg.Engine
	interceptors := []connect.Interceptor{middleware.LoggingInterceptor()}
	prefInterceptors := interceptors
	httpAuth := func(h http.Handler) http.Handler { return h }
	if a.cfg.JWTSecret != "" {
		jwtManager := auth.NewJWTManager(a.cfg.JWTSecret, a.cfg.TokenTTL)
		interceptors = append([]connect.Interceptor{middleware.OptionalAuth(jwtManager)}, interceptors...)
		prefInterceptors = append([]connect.Interceptor{middleware.RequireAuth(jwtManager)}, prefInterceptors...)
		httpAuth = middleware.HTTPAuth(jwtManager)
	} else {
		slog.Warn("JWT_SECRET not set; every request is anonymous")
	}
	opts := connect.WithInterceptors(interceptors...)
	prefOpts := connect.WithInterceptors(prefInterceptors...)

	mux := http.NewServeMux()
	mux.Handle(service.NewLedgerServiceHandler(service.NewLedgerService(store, eng), opts))
	mux.Handle(service.NewGroupServiceHandler(service.NewGroupService(store), opts))
	mux.Handle(service.NewImportFileServiceHandler(service.NewImportFileService(store), opts))
	mux.Handle(service.NewPreferenceServiceHandler(service.NewPreferenceService(store, eng), prefOpts))
	mux.Handle(service.ExportPath, httpAuth(service.NewExportHandler(store, eng)))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect streaming clients)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := ":" + a.cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
