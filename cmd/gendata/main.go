package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"CapIot.telemetryAPI/config"
	"CapIot.telemetryAPI/dao"
	"CapIot.telemetryAPI/models"
	"CapIot.telemetryAPI/seed"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"go.uber.org/zap"
)

func main() {
	defaults := seed.DefaultOptions()
	var (
		outDir     = flag.String("out", ".", "Directory the JSON files are written to")
		table      = flag.String("table", "IoTTelemetryTable", "Table name used in the batch-write request files")
		sensors    = flag.Int("sensors", defaults.Sensors, "Number of sensors")
		rooms      = flag.Int("rooms", defaults.Rooms, "Number of rooms")
		perRoom    = flag.Int("sensors-per-room", defaults.SensorsPerRoom, "Sensors placed in each room")
		points     = flag.Int("points-per-room", defaults.PointsPerRoom, "Records generated per room")
		errorRate  = flag.Float64("error-rate", defaults.ErrorRate, "Share of records with status sensor_error")
		start      = flag.String("start", defaults.Start.Format(models.TimestampLayout), "Timestamp of the first record")
		randomSeed = flag.Int64("seed", defaults.Seed, "Random seed")
		load       = flag.String("load", "", "Also load the records into a backend: dynamodb or influxdb (configured from the environment)")
	)
	flag.Parse()

	logger, err := config.InitLogger("info", "console", "gendata")
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	startTime, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		logger.Fatal("Invalid -start", zap.Error(err))
	}

	opts := seed.Options{
		Sensors:        *sensors,
		Rooms:          *rooms,
		SensorsPerRoom: *perRoom,
		PointsPerRoom:  *points,
		ErrorRate:      *errorRate,
		Start:          startTime,
		Seed:           *randomSeed,
	}
	records, err := seed.Generate(opts)
	if err != nil {
		logger.Fatal("Error generating test data", zap.Error(err))
	}
	logSummary(logger, records)

	if err := writeJSON(filepath.Join(*outDir, "iot_test_data_normal.json"), records); err != nil {
		logger.Fatal("Error writing records", zap.Error(err))
	}
	docs, err := seed.BatchWriteFile(*table, records)
	if err != nil {
		logger.Fatal("Error building batch-write requests", zap.Error(err))
	}
	for i, doc := range docs {
		name := filepath.Join(*outDir, fmt.Sprintf("batch_write_request_%04d.json", i+1))
		if err := writeJSON(name, doc); err != nil {
			logger.Fatal("Error writing batch-write request", zap.String("file", name), zap.Error(err))
		}
	}
	logger.Info("Test data written", zap.String("dir", *outDir), zap.Int("batch_files", len(docs)))

	if *load != "" {
		if err := loadRecords(context.Background(), *load, records); err != nil {
			logger.Fatal("Error loading records", zap.String("backend", *load), zap.Error(err))
		}
	}
}

func loadRecords(ctx context.Context, backend string, records []models.TelemetryRecord) error {
	cfg := config.FromEnv()
	cfg.StoreBackend = backend
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch backend {
	case config.BackendDynamoDB:
		client, err := config.InitDynamoClient(ctx, cfg)
		if err != nil {
			return err
		}
		return seed.Load(ctx, client, cfg.DynamoDBTable, records)
	case config.BackendInfluxDB:
		// The bucket may not exist yet, so skip the checks InitInfluxClient runs
		client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
		defer client.Close()
		store := dao.NewInfluxStore(client, cfg.InfluxDBOrg, cfg.InfluxDBBucket)
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		return store.WriteRecords(ctx, records)
	}
	return fmt.Errorf("unsupported load backend %q", backend)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// logSummary reports the per-room counts and warns about any sensor that
// ended up in more than one room.
func logSummary(logger *zap.Logger, records []models.TelemetryRecord) {
	errorsCount := 0
	roomsByDevice := map[string]map[string]struct{}{}
	perRoom := map[string]int{}
	for _, rec := range records {
		if rec.DeviceStatus == models.StatusSensorError {
			errorsCount++
		}
		perRoom[rec.RoomID]++
		if roomsByDevice[rec.DeviceID] == nil {
			roomsByDevice[rec.DeviceID] = map[string]struct{}{}
		}
		roomsByDevice[rec.DeviceID][rec.RoomID] = struct{}{}
	}

	logger.Info("Generated test data",
		zap.Int("records", len(records)),
		zap.Int("devices", len(roomsByDevice)),
		zap.Int("rooms", len(perRoom)),
		zap.Int("sensor_errors", errorsCount),
	)
	rooms := make([]string, 0, len(perRoom))
	for room := range perRoom {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	for _, room := range rooms {
		logger.Info("Room", zap.String("room_id", room), zap.Int("records", perRoom[room]))
	}
	for device, set := range roomsByDevice {
		if len(set) > 1 {
			logger.Warn("Sensor placed in more than one room", zap.String("device_id", device), zap.Int("rooms", len(set)))
		}
	}
}
