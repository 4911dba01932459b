package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/config"
	"github.com/finsight-app/backend/internal/ledger"
	"github.com/finsight-app/backend/internal/log"
	"github.com/finsight-app/backend/internal/server"
)

func main() {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(log.ParseLevel(cfg.LogLevel), "main")

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	analyticsSvc := analytics.NewService(store, logger,
		analytics.WithTaskTimeout(cfg.AnalyticsTaskTimeout))

	srv := server.New(store, analyticsSvc, logger)
	handler := withAuth(ctx, cfg, logger, srv.Handler())
	handler = corsHandler().Handler(handler)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	logger.Info("starting server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := httpSrv.ListenAndServe(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// buildStore picks the ledger backend from configuration. The returned
// cleanup closes any underlying client and is safe to call once.
func buildStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (ledger.Store, func(), error) {
	switch cfg.DataBackend {
	case "sqlite":
		store, err := ledger.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite store", "path", cfg.SQLiteDBPath)
		return store, func() { store.Close() }, nil
	case "firestore":
		client, err := firestore.NewClient(ctx, cfg.GoogleCloudProject)
		if err != nil {
			return nil, nil, fmt.Errorf("create firestore client: %w", err)
		}
		logger.Info("using firestore store", "project", cfg.GoogleCloudProject)
		return ledger.NewFirestoreStore(client), func() { client.Close() }, nil
	default:
		logger.Info("using in-memory store for local development")
		return ledger.NewMemoryStore(), func() {}, nil
	}
}

// withAuth wires Firebase token verification, or the local-dev mock when
// SKIP_AUTH is set.
func withAuth(ctx context.Context, cfg *config.Config, logger *log.Logger, next http.Handler) http.Handler {
	if cfg.SkipAuth {
		logger.Warn("SKIP_AUTH enabled, using mock authentication")
		return auth.LocalDevMiddleware()(next)
	}

	firebaseAuth, err := auth.NewFirebaseAuth(ctx, cfg.GoogleCloudProject)
	if err != nil {
		logger.Error("failed to initialize Firebase Auth", "error", err)
		os.Exit(1)
	}
	return auth.Middleware(firebaseAuth)(next)
}

func corsHandler() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:1234",
			"http://127.0.0.1:1234",
			"https://finsight.app",
			"https://www.finsight.app",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
			"X-Debug-Impersonate-User",
		},
		AllowCredentials: true,
	})
}
