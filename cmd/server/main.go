package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/hearthledger/internal/allocator"
	"github.com/mmynk/hearthledger/internal/auth"
	"github.com/mmynk/hearthledger/internal/config"
	"github.com/mmynk/hearthledger/internal/engine"
	"github.com/mmynk/hearthledger/internal/events"
	"github.com/mmynk/hearthledger/internal/export"
	"github.com/mmynk/hearthledger/internal/middleware"
	"github.com/mmynk/hearthledger/internal/service"
	"github.com/mmynk/hearthledger/internal/storage"
	"github.com/mmynk/hearthledger/internal/storage/memstore"
	"github.com/mmynk/hearthledger/internal/storage/sqlstore"
	"github.com/mmynk/hearthledger/pkg/api/apiconnect"
	"github.com/mmynk/hearthledger/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./config.yaml if present)")
	issueToken := flag.String("issue-token", "", "print an access token for the given user ID and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if *issueToken != "" {
		token, err := jwtManager.Generate(*issueToken)
		if err != nil {
			slog.Error("Failed to issue token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, jwtManager); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, jwtManager *auth.JWTManager) error {
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	policy, err := allocator.ParseUnlinkPolicy(cfg.Engine.UnlinkPolicy)
	if err != nil {
		return err
	}
	eng := engine.New(store,
		engine.WithAllocator(allocator.New(allocator.WithUnlinkPolicy(policy))),
		engine.WithPublisher(events.Multi{
			events.NewLogPublisher(slog.Default()),
			events.NewMetricsPublisher(reg),
		}),
		engine.WithDefaultCurrency(cfg.Engine.DefaultCurrency),
	)

	validator, err := service.NewValidator()
	if err != nil {
		return err
	}

	// Outermost first. Logging sits inside auth so it sees the caller.
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(reg),
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(slog.Default()),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewHouseholdServiceHandler(service.NewHouseholdService(eng, validator), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(service.NewExpenseService(eng, validator), interceptors))
	mux.Handle(apiconnect.NewPaymentServiceHandler(service.NewPaymentService(eng, validator), interceptors))
	mux.Handle(apiconnect.NewBalanceServiceHandler(service.NewBalanceService(eng, validator), interceptors))
	mux.Handle(export.Pattern, middleware.RequireAuthHTTP(jwtManager, export.NewHandler(eng)))
	mux.Handle("GET "+cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           h2c.NewHandler(loggedHandler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "database", cfg.Database.Driver)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Store, error) {
	if cfg.Driver == "memory" {
		slog.Warn("Using in-memory storage, data is lost on exit")
		return memstore.New(), nil
	}

	d, err := sqlstore.DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn := cfg.DSN
	if d == sqlstore.SQLite {
		dsn = cfg.Path
	}

	store, err := sqlstore.Open(ctx, d, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", d.Name, err)
	}
	slog.Info("Storage initialized", "driver", d.Name)
	return store, nil
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
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
