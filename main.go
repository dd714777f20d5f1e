// main.go
package main

import (
	"context"
	"log"

	"CapIot.telemetryAPI/config"
	"CapIot.telemetryAPI/controllers"
	"CapIot.telemetryAPI/dao"
	"CapIot.telemetryAPI/routes"
	"CapIot.telemetryAPI/services"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var router *routes.Router

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger, err := config.InitLogger(cfg.LogLevel, cfg.LogFormat, "telemetry-api")
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	// Built once per container and reused across invocations
	store, err := dao.NewStore(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Error initializing store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}

	service := services.NewTelemetryService(store)
	router = routes.NewRouter(controllers.NewTelemetryController(service))
}

func main() {
	defer zap.L().Sync()
	lambda.Start(router.HandleRequest)
}
