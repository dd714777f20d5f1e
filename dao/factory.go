package dao

import (
	"context"
	"fmt"

	"CapIot.telemetryAPI/config"
	"go.uber.org/zap"
)

// NewStore builds the store selected by cfg.StoreBackend, initializing the
// process-wide client it needs.
func NewStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendDynamoDB:
		if cfg.DynamoDBTable == "" {
			return nil, fmt.Errorf("DYNAMODB_TABLE environment variable is required")
		}
		client, err := config.InitDynamoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewDynamoStore(client, cfg.DynamoDBTable, cfg.DynamoDBRoomIndex), nil

	case config.BackendInfluxDB:
		client, err := config.InitInfluxClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewInfluxStore(client, cfg.InfluxDBOrg, cfg.InfluxDBBucket), nil

	case config.BackendMemory:
		if cfg.SeedFile == "" {
			zap.L().Warn("No SEED_FILE set, memory store is empty")
			return NewMemoryStore(nil), nil
		}
		store, err := LoadMemoryStore(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
