package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CapIot.telemetryAPI/config"
	"CapIot.telemetryAPI/controllers"
	"CapIot.telemetryAPI/dao"
	"CapIot.telemetryAPI/handlers"
	"CapIot.telemetryAPI/routes"
	"CapIot.telemetryAPI/services"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger, err := config.InitLogger(cfg.LogLevel, cfg.LogFormat, "telemetry-api-local")
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := dao.NewStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Error initializing store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	if client := config.GetInfluxClient(); client != nil {
		defer client.Close()
	}

	api := routes.NewRouter(controllers.NewTelemetryController(services.NewTelemetryService(store)))
	// rs/cors owns the CORS headers here, honoring CORS_ALLOWED_ORIGINS
	router := routes.SetupRouter(api, handlers.WithExternalCORS())

	// CORS setup
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server is running", zap.String("addr", srv.Addr), zap.String("backend", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Error starting server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
