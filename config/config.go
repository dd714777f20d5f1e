package config

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends the API can read from.
const (
	BackendDynamoDB = "dynamodb"
	BackendInfluxDB = "influxdb"
	BackendMemory   = "memory"
)

// DefaultRoomIndex is the secondary index keyed by room_id then timestamp.
const DefaultRoomIndex = "room_id-timestamp-index"

// Config holds the application's configuration.
type Config struct {
	StoreBackend string

	DynamoDBTable     string
	DynamoDBRoomIndex string
	DynamoDBEndpoint  string
	AWSRegion         string

	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string

	SeedFile string

	LogLevel  string
	LogFormat string

	Port               string
	CORSAllowedOrigins []string
}

// LoadConfig loads the configuration from environment variables and
// validates it for the selected backend.
func LoadConfig() (Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv reads the configuration without validating it.
func FromEnv() Config {
	//load env variables
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}

	return Config{
		StoreBackend:       getEnv("STORE_BACKEND", BackendDynamoDB),
		DynamoDBTable:      os.Getenv("DYNAMODB_TABLE"),
		DynamoDBRoomIndex:  getEnv("DYNAMODB_ROOM_INDEX", DefaultRoomIndex),
		DynamoDBEndpoint:   os.Getenv("DYNAMODB_ENDPOINT"),
		AWSRegion:          os.Getenv("AWS_REGION"),
		InfluxDBURL:        os.Getenv("INFLUXDB_URL"),
		InfluxDBToken:      os.Getenv("INFLUXDB_TOKEN"),
		InfluxDBOrg:        os.Getenv("INFLUXDB_ORG"),
		InfluxDBBucket:     os.Getenv("INFLUXDB_BUCKET"),
		SeedFile:           os.Getenv("SEED_FILE"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		Port:               getEnv("PORT", "8000"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// Validate checks that the variables required by the selected backend are set.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE environment variable is required")
		}
	case BackendInfluxDB:
		var missing []string
		for name, value := range map[string]string{
			"INFLUXDB_URL":    c.InfluxDBURL,
			"INFLUXDB_TOKEN":  c.InfluxDBToken,
			"INFLUXDB_ORG":    c.InfluxDBOrg,
			"INFLUXDB_BUCKET": c.InfluxDBBucket,
		} {
			if value == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf("InfluxDB configuration is incomplete. Please set %s", strings.Join(missing, ", "))
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (expected %s, %s or %s)", c.StoreBackend, BackendDynamoDB, BackendInfluxDB, BackendMemory)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
