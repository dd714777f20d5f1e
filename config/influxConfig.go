package config

import (
	"context"
	"fmt"

	"github.com/influxdata/influxdb-client-go/v2"
	"go.uber.org/zap"
)

var influxClient influxdb2.Client

// InitInfluxClient initializes the InfluxDB client, checks the connection
// and verifies that the telemetry bucket exists.
func InitInfluxClient(ctx context.Context, cfg Config) (influxdb2.Client, error) {
	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)

	// Check the connection health
	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return nil, fmt.Errorf("InfluxDB health check failed: %s", msg)
	}

	if _, err := client.BucketsAPI().FindBucketByName(ctx, cfg.InfluxDBBucket); err != nil {
		client.Close()
		return nil, fmt.Errorf("bucket %q not found: %w", cfg.InfluxDBBucket, err)
	}

	zap.L().Info("Successfully connected to InfluxDB",
		zap.String("url", cfg.InfluxDBURL),
		zap.String("bucket", cfg.InfluxDBBucket),
	)
	influxClient = client
	return client, nil
}

// GetInfluxClient returns the client built by InitInfluxClient, or nil.
func GetInfluxClient() influxdb2.Client {
	return influxClient
}
