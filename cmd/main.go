package main

import (
	"log"
	"net/http"
	"os"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/speechlab/dubkit/internal/config"
	"github.com/speechlab/dubkit/internal/delivery"
	"github.com/speechlab/dubkit/internal/domain"
	"github.com/speechlab/dubkit/internal/infra"
	"github.com/speechlab/dubkit/internal/notificator"
	"github.com/speechlab/dubkit/internal/ports"
	"github.com/speechlab/dubkit/internal/tools"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// CONFIG
	// =========================================================================

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	speechlab := infra.NewSpeechlabClient(cfg.BaseURL, cfg.APIKey, cfg.HTTPTimeout)

	var archive ports.ArchiveService
	if cfg.S3.Enabled() {
		s3Client, err := infra.NewS3Client(cfg.S3)
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		archive = domain.NewArchiveService(s3Client)
	}

	var notifier notificator.Notificator
	if cfg.Telegram.Enabled() {
		notifyInfra, err := notificator.NewInfra(cfg.Telegram)
		if err != nil {
			log.Fatalf("failed to init notificator: %v", err)
		}
		notifier = notificator.NewService(notifyInfra)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	dubService := domain.NewDubService(speechlab, archive, notifier, cfg.BasePath)

	// =========================================================================
	// TOOL REGISTRY
	// =========================================================================

	registry := tools.NewRegistry(dubService)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// HANDLERS
	toolHandler := delivery.NewToolHandler(registry, zl)
	projectHandler := delivery.NewProjectHandler(dubService, zl)

	// ROUTES
	delivery.RegisterRoutes(r, toolHandler, projectHandler)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "dubkit",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
